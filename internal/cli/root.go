package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/fpaudit/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fpaudit",
	Short: "fpaudit - Audit addon fingerprint matching across two services",
	Long: `fpaudit loads a page of the addon catalog, sends every package's module
fingerprints to two fingerprint matching services, and reports how many
packages each service recognizes and how many are recognized by either.

Requests are batched by package and sent to both services concurrently.
A failed request only reduces the failing service's counts.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of fpaudit.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "fpaudit v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.fpaudit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	setDefaults(viper.GetViper(), model.DefaultConfig())

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.fpaudit")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FPAUDIT_*, e.g. FPAUDIT_BATCH_SIZE
	viper.SetEnvPrefix("FPAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env variables resolve on Unmarshal
func setDefaults(v *viper.Viper, cfg *model.Config) {
	defaults := map[string]any{
		"http.timeout":            cfg.HTTP.Timeout,
		"http.connect_timeout":    cfg.HTTP.ConnectTimeout,
		"http.max_conns_per_host": cfg.HTTP.MaxConnsPerHost,
		"http.user_agent":         cfg.HTTP.UserAgent,
		"http.max_body_bytes":     cfg.HTTP.MaxBodyBytes,
		"http.http_proxy":         cfg.HTTP.HTTPProxy,
		"http.https_proxy":        cfg.HTTP.HTTPSProxy,
		"http.no_proxy":           cfg.HTTP.NoProxy,
		"catalog.url":             cfg.Catalog.URL,
		"catalog.game_id":         cfg.Catalog.GameID,
		"catalog.sort":            cfg.Catalog.Sort,
		"catalog.page_size":       cfg.Catalog.PageSize,
		"services.primary_url":    cfg.Services.PrimaryURL,
		"services.secondary_url":  cfg.Services.SecondaryURL,
		"batch.size":              cfg.Batch.Size,
		"output.format":           cfg.Output.Format,
		"output.json_path":        cfg.Output.JSONPath,
		"output.verbose":          cfg.Output.Verbose,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// loadConfig resolves the effective configuration:
// flags, then FPAUDIT_* env, then the config file, then defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newLogger returns a text logger on stderr; verbose enables debug output
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
