package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/fpaudit/internal/batch"
	"github.com/ppiankov/fpaudit/internal/model"
)

// errNotExecuted marks jobs the pool dropped because its context ended first
var errNotExecuted = errors.New("request not executed")

// Querier defines the interface for querying a fingerprint service
type Querier interface {
	Query(ctx context.Context, svc model.Service, fingerprints []model.Fingerprint) (*model.MatchResult, error)
}

// QueryError records which service and batch a failed request belonged to
type QueryError struct {
	Service model.Service
	Batch   int
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s batch %d: %v", e.Service, e.Batch, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// QueryJob sends one batch to one service
type QueryJob struct {
	Service      model.Service
	Batch        int
	Fingerprints []model.Fingerprint
	Querier      Querier
}

// Execute executes the query job. Failures are captured on the outcome.
func (j *QueryJob) Execute(ctx context.Context) Result {
	result, err := j.Querier.Query(ctx, j.Service, j.Fingerprints)
	if err != nil {
		return &Outcome{
			Service: j.Service,
			Batch:   j.Batch,
			Err:     &QueryError{Service: j.Service, Batch: j.Batch, Err: err},
		}
	}
	return &Outcome{
		Service: j.Service,
		Batch:   j.Batch,
		Result:  result,
	}
}

// Outcome is the result of one (service, batch) request: a match result or an error
type Outcome struct {
	Service model.Service
	Batch   int
	Result  *model.MatchResult
	Err     error
}

// GetError returns the error from the outcome
func (o *Outcome) GetError() error {
	return o.Err
}

// FailureFunc is called once per failed outcome after all requests finish
type FailureFunc func(*Outcome)

// Dispatcher fans batches out to every service concurrently
type Dispatcher struct {
	querier   Querier
	services  []model.Service
	onFailure FailureFunc
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher querying both services
func NewDispatcher(querier Querier, onFailure FailureFunc, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		querier:   querier,
		services:  model.Services,
		onFailure: onFailure,
		logger:    logger,
	}
}

// Dispatch issues one request per batch to each service, all at once, and
// waits for every request to finish. A failed request only fails its own
// outcome; siblings keep running. Outcomes are ordered by batch index.
func (d *Dispatcher) Dispatch(ctx context.Context, batches []batch.Batch) map[model.Service][]*Outcome {
	outcomes := make(map[model.Service][]*Outcome, len(d.services))
	for _, svc := range d.services {
		outcomes[svc] = make([]*Outcome, len(batches))
	}

	jobs := len(d.services) * len(batches)
	if jobs == 0 {
		return outcomes
	}

	start := time.Now()

	// One worker per job: the pool adds no bound beyond the transport's
	pool := NewPool(ctx, jobs)
	pool.Start()

	for i, b := range batches {
		d.logger.Debug("queue batch", "batch", i, "fingerprints", b.Len())
		fingerprints := b.Fingerprints()
		for _, svc := range d.services {
			pool.Submit(&QueryJob{
				Service:      svc,
				Batch:        i,
				Fingerprints: fingerprints,
				Querier:      d.querier,
			})
		}
	}

	if skipped := slotOutcomes(outcomes, pool.Wait()); skipped > 0 {
		d.logger.Warn("ignored unexpected pool results", "count", skipped)
	}

	failed := 0
	for _, svc := range d.services {
		for i, outcome := range outcomes[svc] {
			if outcome == nil {
				err := ctx.Err()
				if err == nil {
					err = errNotExecuted
				}
				outcome = &Outcome{
					Service: svc,
					Batch:   i,
					Err:     &QueryError{Service: svc, Batch: i, Err: err},
				}
				outcomes[svc][i] = outcome
			}
			if outcome.Err != nil {
				failed++
				if d.onFailure != nil {
					d.onFailure(outcome)
				}
			}
		}
	}

	d.logger.Debug("fan-out complete",
		"requests", jobs,
		"failed", failed,
		"duration", time.Since(start),
	)

	return outcomes
}

// slotOutcomes places each *Outcome at its service and batch index and
// returns how many results could not be placed
func slotOutcomes(outcomes map[model.Service][]*Outcome, results []Result) int {
	skipped := 0
	for _, result := range results {
		outcome, ok := result.(*Outcome)
		if !ok {
			skipped++
			continue
		}
		slots, ok := outcomes[outcome.Service]
		if !ok || outcome.Batch < 0 || outcome.Batch >= len(slots) {
			skipped++
			continue
		}
		slots[outcome.Batch] = outcome
	}
	return skipped
}
