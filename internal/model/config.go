package model

import (
	"fmt"
	"time"
)

const (
	DefaultCatalogURL   = "https://addons-ecs.forgesvc.net/api/v2/addon/search"
	DefaultPrimaryURL   = "https://addons-ecs.forgesvc.net/api/v2/fingerprint"
	DefaultSecondaryURL = "https://hub.wowup.io/curseforge/addons/fingerprint"
	DefaultBatchSize    = 25
)

// Config holds all runtime settings
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Services ServicesConfig `yaml:"services" mapstructure:"services"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// HTTPConfig configures the shared HTTP client.
// Timeout bounds a whole request and is disabled when zero; ConnectTimeout bounds the dial.
type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host"`
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy       string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy      string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy         string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CatalogConfig configures the package catalog search
type CatalogConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	GameID   int    `yaml:"game_id" mapstructure:"game_id"`
	Sort     string `yaml:"sort" mapstructure:"sort"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
}

// ServicesConfig holds the fingerprint service endpoints
type ServicesConfig struct {
	PrimaryURL   string `yaml:"primary_url" mapstructure:"primary_url"`
	SecondaryURL string `yaml:"secondary_url" mapstructure:"secondary_url"`
}

// BatchConfig controls how packages are grouped into requests
type BatchConfig struct {
	Size int `yaml:"size" mapstructure:"size"` // Packages per request
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format   string `yaml:"format" mapstructure:"format"` // auto, text, table, json
	JSONPath string `yaml:"json_path,omitempty" mapstructure:"json_path"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// Output formats
const (
	FormatAuto  = "auto"
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			ConnectTimeout:  30 * time.Second,
			MaxConnsPerHost: 3,
			UserAgent:       "fpaudit/0.1 (+https://github.com/ppiankov/fpaudit)",
			MaxBodyBytes:    32 << 20,
		},
		Catalog: CatalogConfig{
			URL:      DefaultCatalogURL,
			GameID:   1,
			Sort:     SortPopularity.String(),
			PageSize: 500,
		},
		Services: ServicesConfig{
			PrimaryURL:   DefaultPrimaryURL,
			SecondaryURL: DefaultSecondaryURL,
		},
		Batch: BatchConfig{
			Size: DefaultBatchSize,
		},
		Output: OutputConfig{
			Format: FormatAuto,
		},
	}
}

// Endpoints returns the service endpoint lookup for this configuration
func (c *Config) Endpoints() Endpoints {
	return Endpoints{
		Primary:   c.Services.PrimaryURL,
		Secondary: c.Services.SecondaryURL,
	}
}

// Validate checks the configuration for values the audit cannot run with
func (c *Config) Validate() error {
	if c.Catalog.URL == "" {
		return fmt.Errorf("catalog url is empty")
	}
	if c.Services.PrimaryURL == "" {
		return fmt.Errorf("primary service url is empty")
	}
	if c.Services.SecondaryURL == "" {
		return fmt.Errorf("secondary service url is empty")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog page size must be positive, got %d", c.Catalog.PageSize)
	}
	if _, ok := ParseCatalogSort(c.Catalog.Sort); !ok {
		return fmt.Errorf("unknown catalog sort: %q", c.Catalog.Sort)
	}
	if c.Batch.Size <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.Batch.Size)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.HTTP.MaxBodyBytes)
	}

	switch c.Output.Format {
	case FormatAuto, FormatText, FormatTable, FormatJSON:
	default:
		return fmt.Errorf("unknown output format: %q", c.Output.Format)
	}

	return nil
}
