package research

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/models"
)

// Item pairs a work item spec with the call that performs one attempt
type Item struct {
	Spec *models.WorkItem
	Call ItemFunc
}

// Runner executes a homogeneous batch of work items belonging to one phase
// with bounded concurrency and aggregates their outcomes. One item's failure
// never aborts the remaining items; criticality only matters at aggregation.
type Runner struct {
	executor    *Executor
	concurrency int
	logger      arbor.ILogger
}

// NewRunner creates a phase runner with the given fan-out limit
func NewRunner(executor *Executor, concurrency int, logger arbor.ILogger) *Runner {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Runner{
		executor:    executor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run dispatches all items and derives the phase status: failed iff any
// critical item failed, partially succeeded iff only best-effort items
// failed, succeeded otherwise. A phase with zero items succeeds with an
// empty outcome list.
func (r *Runner) Run(ctx context.Context, phase models.PhaseName, items []*Item) *models.PhaseResult {
	result := &models.PhaseResult{
		Phase:  phase,
		Status: models.PhaseSucceeded,
		Items:  []models.ItemOutcome{},
	}

	if len(items) == 0 {
		return result
	}

	r.logger.Info().
		Str("phase", string(phase)).
		Int("items", len(items)).
		Int("concurrency", r.concurrency).
		Msg("Running phase items")

	outcomes := make([]models.ItemOutcome, len(items))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item *Item) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = r.executor.Execute(ctx, item.Spec, item.Call)
		}(i, item)
	}
	wg.Wait()

	result.Items = outcomes
	for _, outcome := range outcomes {
		if outcome.Status != models.ItemFailed {
			continue
		}
		if outcome.Class == models.ItemCritical {
			result.Status = models.PhaseFailed
			if result.FailureReason == "" {
				result.FailureReason = outcome.Reason
				result.FailureDetail = fmt.Sprintf("%s: %s", outcome.Name, outcome.Error)
			}
		} else if result.Status == models.PhaseSucceeded {
			result.Status = models.PhasePartiallySucceeded
		}
	}

	r.logger.Info().
		Str("phase", string(phase)).
		Str("status", string(result.Status)).
		Int("items", len(result.Items)).
		Msg("Phase items completed")

	return result
}
