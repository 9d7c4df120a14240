// Package aggregate merges per-batch service responses into audit counts.
package aggregate

import (
	"github.com/ppiankov/fpaudit/internal/model"
	"github.com/ppiankov/fpaudit/internal/worker"
)

// ServiceSummary holds the counts for one service
type ServiceSummary struct {
	Distinct      int // Distinct package ids matched
	Matches       int // Raw exact-match records, duplicates included
	Batches       int
	FailedBatches int
}

// Summary is the merged result across both services
type Summary struct {
	Packages int
	Unique   int // Distinct package ids matched by either service
	Services map[model.Service]ServiceSummary
}

// ExactMatches flattens the exact matches of all successful outcomes.
// Failed outcomes contribute nothing.
func ExactMatches(outcomes []*worker.Outcome) []model.ExactMatch {
	var matches []model.ExactMatch
	for _, outcome := range outcomes {
		if outcome == nil || outcome.Err != nil || outcome.Result == nil {
			continue
		}
		matches = append(matches, outcome.Result.ExactMatches...)
	}
	return matches
}

// Summarize derives per-service and cross-service counts from dispatcher outcomes
func Summarize(packages int, outcomes map[model.Service][]*worker.Outcome) Summary {
	summary := Summary{
		Packages: packages,
		Services: make(map[model.Service]ServiceSummary, len(model.Services)),
	}

	all := make(map[int64]struct{})
	for _, svc := range model.Services {
		matches := ExactMatches(outcomes[svc])

		ids := make(map[int64]struct{}, len(matches))
		for _, m := range matches {
			ids[m.ID] = struct{}{}
			all[m.ID] = struct{}{}
		}

		failed := 0
		for _, outcome := range outcomes[svc] {
			if outcome == nil || outcome.Err != nil {
				failed++
			}
		}

		summary.Services[svc] = ServiceSummary{
			Distinct:      len(ids),
			Matches:       len(matches),
			Batches:       len(outcomes[svc]),
			FailedBatches: failed,
		}
	}
	summary.Unique = len(all)

	return summary
}
