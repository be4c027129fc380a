package reporting

import (
	"context"
	"fmt"
	"time"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/metrics"
	"ad-revenue-lab/internal/storage"
	"ad-revenue-lab/internal/verification"
)

// Generator produces reports from stored transactions.
type Generator struct {
	store storage.TransactionStore
	now   func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(store storage.TransactionStore) *Generator {
	return &Generator{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate computes and reconciles the summary for c and builds a report.
func (g *Generator) Generate(ctx context.Context, c domain.Context) (*Report, error) {
	txs, err := g.store.GetByPeriod(ctx, c.Period)
	if err != nil {
		return nil, fmt.Errorf("load period %d: %w", c.Period, err)
	}

	summary := metrics.Compute(txs, c)
	rec := verification.Reconcile(txs, summary)

	return Build(g.now(), len(txs), summary, rec), nil
}

// Build assembles a report from an already computed summary. rec may be
// nil when reconciliation was not run.
func Build(generatedAt time.Time, transactions int, summary *metrics.Summary, rec *verification.Report) *Report {
	r := &Report{
		GeneratedAt:      generatedAt,
		Context:          summary.Context,
		TransactionCount: transactions,
		RecordCount:      summary.Len(),
	}

	for _, region := range summary.Regions() {
		sec := RegionSection{Region: region}
		for _, record := range summary.RegionRecords(region) {
			sec.Rows = append(sec.Rows, MetricRow{
				Region: record.Region,
				Metric: record.Metric,
				Value:  record.Value,
			})
		}
		r.Regions = append(r.Regions, sec)
	}

	if rec != nil {
		r.Reconciliation = reconciliationSection(rec)
	}

	return r
}

func reconciliationSection(rec *verification.Report) ReconciliationSection {
	sec := ReconciliationSection{
		Checks:          rec.Checks,
		Passed:          rec.Passed,
		Failed:          rec.Failed,
		Warnings:        rec.Warnings,
		AllChecksPassed: rec.OK(),
	}

	for _, res := range rec.Results {
		if res.Pass {
			continue
		}
		level := "FAIL"
		if res.Warning {
			level = "WARN"
		}
		for _, d := range res.Divergences {
			sec.Issues = append(sec.Issues, fmt.Sprintf("%s %s [%s] %s: expected %v, got %v",
				level, res.Check, res.Region, d.Field, d.Expected, d.Actual))
		}
	}

	return sec
}
