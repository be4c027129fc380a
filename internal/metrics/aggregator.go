package metrics

import (
	"context"
	"fmt"
	"time"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/observability"
	"ad-revenue-lab/internal/storage"
)

// Aggregator computes summaries from a stored ledger.
type Aggregator struct {
	store storage.TransactionStore
	now   func() time.Time // Injectable clock for deterministic durations
}

// NewAggregator creates a new store-backed aggregator.
func NewAggregator(store storage.TransactionStore) *Aggregator {
	return &Aggregator{
		store: store,
		now:   time.Now,
	}
}

// WithClock sets a custom clock function.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// ComputeSummary loads the target period and computes the summary.
// Only target-period rows can contribute to any metric, so rows from other
// periods are never loaded. An empty period yields an all-zero summary.
func (a *Aggregator) ComputeSummary(ctx context.Context, c domain.Context) (*Summary, error) {
	start := a.now()

	txs, err := a.store.GetByPeriod(ctx, c.Period)
	if err != nil {
		return nil, fmt.Errorf("load period %d: %w", c.Period, err)
	}

	summary := Compute(txs, c)
	observability.RecordComputation(len(txs), summary.Len(), a.now().Sub(start).Seconds())

	return summary, nil
}
