package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/pipeline"
	"github.com/ppiankov/fpaudit/internal/report"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit catalog fingerprints against both matching services",
	Long: `Audit fetches the addon catalog and:
- Collects module fingerprints from each package's latest files
- Groups packages into batches and deduplicates each batch
- Sends every batch to both fingerprint services concurrently
- Reports matched packages per service and across both

A failed request is reported on stderr and only lowers the counts of
the service it was sent to. A catalog failure aborts the audit.

Example:
  fpaudit audit
  fpaudit audit --batch-size 50 --format table
  fpaudit audit --format json --json audit.json`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	defaults := model.DefaultConfig()
	flags := auditCmd.Flags()

	// Batching and catalog flags
	flags.Int("batch-size", defaults.Batch.Size, "packages per fingerprint request")
	flags.String("catalog-url", defaults.Catalog.URL, "catalog search endpoint")
	flags.Int("game-id", defaults.Catalog.GameID, "catalog game id")
	flags.String("sort", defaults.Catalog.Sort, "catalog sort (date-created, last-updated, name, popularity, total-downloads)")
	flags.Int("page-size", defaults.Catalog.PageSize, "number of catalog packages to audit")

	// Service flags
	flags.String("primary-url", defaults.Services.PrimaryURL, "primary fingerprint endpoint (bare array body)")
	flags.String("secondary-url", defaults.Services.SecondaryURL, "secondary fingerprint endpoint (object body)")

	// HTTP flags
	flags.Duration("timeout", defaults.HTTP.Timeout, "timeout for each HTTP request, not the whole audit (0 disables)")
	flags.Duration("connect-timeout", defaults.HTTP.ConnectTimeout, "connection timeout")
	flags.Int("max-conns", defaults.HTTP.MaxConnsPerHost, "max connections per host")
	flags.String("ua", defaults.HTTP.UserAgent, "HTTP User-Agent")
	flags.Int64("max-bytes", defaults.HTTP.MaxBodyBytes, "max response bytes to read")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	flags.String("no-proxy", "", "hosts that bypass the proxy (overrides NO_PROXY env var)")

	// Output flags
	flags.String("format", defaults.Output.Format, "output format (auto, text, table, json)")
	flags.String("json", "", "also write the JSON report to this path")

	bindings := map[string]string{
		"batch.size":              "batch-size",
		"catalog.url":             "catalog-url",
		"catalog.game_id":         "game-id",
		"catalog.sort":            "sort",
		"catalog.page_size":       "page-size",
		"services.primary_url":    "primary-url",
		"services.secondary_url":  "secondary-url",
		"http.timeout":            "timeout",
		"http.connect_timeout":    "connect-timeout",
		"http.max_conns_per_host": "max-conns",
		"http.user_agent":         "ua",
		"http.max_body_bytes":     "max-bytes",
		"http.http_proxy":         "http-proxy",
		"http.https_proxy":        "https-proxy",
		"http.no_proxy":           "no-proxy",
		"output.format":           "format",
		"output.json_path":        "json",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.Output.Verbose)
	renderer := report.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Output.Format)

	// The run ends early only on a signal; --timeout bounds each request
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Output.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Catalog:    %s\n", cfg.Catalog.URL)
		fmt.Fprintf(cmd.ErrOrStderr(), "Primary:    %s\n", cfg.Services.PrimaryURL)
		fmt.Fprintf(cmd.ErrOrStderr(), "Secondary:  %s\n", cfg.Services.SecondaryURL)
		fmt.Fprintf(cmd.ErrOrStderr(), "Batch size: %d\n", cfg.Batch.Size)
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	start := time.Now()
	logger.Debug("rendering", "format", renderer.Format())
	p := pipeline.NewPipeline(cfg, pipeline.Hooks{
		CatalogLoaded: renderer.Catalog,
		Failure:       renderer.Failure,
	}, logger)

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if err := renderer.Render(result); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Output.JSONPath != "" {
		if err := report.WriteJSON(result, cfg.Output.JSONPath); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote JSON: %s\n", cfg.Output.JSONPath)
		}
	}

	logger.Debug("audit complete", "run_id", result.RunID, "duration", time.Since(start))
	return nil
}
