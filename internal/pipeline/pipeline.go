package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/fpaudit/internal/aggregate"
	"github.com/ppiankov/fpaudit/internal/batch"
	"github.com/ppiankov/fpaudit/internal/catalog"
	"github.com/ppiankov/fpaudit/internal/fingerprint"
	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/util"
	"github.com/ppiankov/fpaudit/internal/worker"
)

// Hooks receive progress from a running audit. Nil hooks are skipped.
type Hooks struct {
	// CatalogLoaded is called with the package count before any service is queried
	CatalogLoaded func(packages int)
	// Failure receives every failed (service, batch) request once the fan-out completes
	Failure worker.FailureFunc
}

// Pipeline orchestrates the complete audit: catalog, batching, fan-out, counts
type Pipeline struct {
	fetcher    *catalog.Fetcher
	dispatcher *worker.Dispatcher
	config     *model.Config
	hooks      Hooks
	logger     *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, hooks Hooks, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	httpClient := util.NewHTTPClient(cfg.HTTP)
	client := fingerprint.NewClient(httpClient, cfg.Endpoints(), cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, logger)

	return &Pipeline{
		fetcher:    catalog.NewFetcher(httpClient, cfg.Catalog, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes),
		dispatcher: worker.NewDispatcher(client, hooks.Failure, logger),
		config:     cfg,
		hooks:      hooks,
		logger:     logger,
	}
}

// Run executes one audit. Only a catalog failure returns an error; failed
// service requests reduce that service's counts and are reported through the
// failure hook.
func (p *Pipeline) Run(ctx context.Context) (*model.AuditReport, error) {
	started := time.Now().UTC()

	// 1. Fetch catalog
	packages, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	p.logger.Info("catalog loaded", "packages", len(packages))
	if p.hooks.CatalogLoaded != nil {
		p.hooks.CatalogLoaded(len(packages))
	}

	// 2. Extract fingerprints and batch them
	batches := batch.Split(catalog.Extract(packages), p.config.Batch.Size)
	p.logger.Debug("batched fingerprints", "batches", len(batches), "batch_size", p.config.Batch.Size)

	// 3. Query both services
	outcomes := p.dispatcher.Dispatch(ctx, batches)

	// 4. Aggregate
	summary := aggregate.Summarize(len(packages), outcomes)

	report := &model.AuditReport{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		CatalogURL: p.config.Catalog.URL,
		BatchSize:  p.config.Batch.Size,
		Batches:    len(batches),
		Packages:   summary.Packages,
		Unique:     summary.Unique,
	}

	endpoints := p.config.Endpoints()
	for _, svc := range model.Services {
		s := summary.Services[svc]
		report.Services = append(report.Services, model.ServiceReport{
			Service:       svc.String(),
			Endpoint:      endpoints.URL(svc),
			Distinct:      s.Distinct,
			Matches:       s.Matches,
			Batches:       s.Batches,
			FailedBatches: s.FailedBatches,
		})
	}

	return report, nil
}
