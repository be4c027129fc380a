// Package detail reconstructs the ledger rows behind a single summary cell.
// It resolves metrics through the same predicates the engine aggregates
// with, so summing a revenue selection reproduces the summary value.
package detail

import (
	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/predicate"
)

// DefaultPreviewLimit is the number of rows shown before export.
const DefaultPreviewLimit = 100

// Select returns the rows contributing to (region, metric), in input order.
// total_bd_count returns rows of either headcount population once each.
// Productivity metrics return the region's total_revenue rows; that set is
// an approximation, not a reconciliation of the quotient.
// An unknown region yields an empty slice.
func Select(txs []*domain.Transaction, m domain.Metric, region string, ctx domain.Context) []*domain.Transaction {
	match, ok := predicate.Rows(m, domain.NormalizeRegion(region), ctx)
	if !ok {
		return []*domain.Transaction{}
	}
	return predicate.Filter(txs, match)
}

// SelectByName is Select for callers holding a metric name or label.
// Unrecognised names yield an empty slice.
func SelectByName(txs []*domain.Transaction, metricName, region string, ctx domain.Context) []*domain.Transaction {
	m, err := domain.ParseMetric(metricName)
	if err != nil {
		return []*domain.Transaction{}
	}
	return Select(txs, m, region, ctx)
}

// Result is a selection plus the figures shown alongside its preview.
type Result struct {
	Region      string
	Metric      domain.Metric
	Period      int
	Rows        []*domain.Transaction
	AmountSum   decimal.Decimal // sum of Amount over Rows, 2 dp
	Salespeople int             // distinct salesperson ids in Rows
	Approximate bool            // true for productivity metrics
}

// Describe runs Select and summarises the selection.
func Describe(txs []*domain.Transaction, m domain.Metric, region string, ctx domain.Context) *Result {
	region = domain.NormalizeRegion(region)
	rows := Select(txs, m, region, ctx)

	sum := decimal.Zero
	people := make(map[string]struct{})
	for _, t := range rows {
		sum = sum.Add(t.Amount)
		if t.SalespersonID != "" {
			people[t.SalespersonID] = struct{}{}
		}
	}

	return &Result{
		Region:      region,
		Metric:      m,
		Period:      ctx.Period,
		Rows:        rows,
		AmountSum:   domain.RoundAmount(sum),
		Salespeople: len(people),
		Approximate: m.Group() == domain.GroupProductivity,
	}
}

// Len returns the number of selected rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Preview returns at most limit rows. A non-positive limit uses DefaultPreviewLimit.
func (r *Result) Preview(limit int) []*domain.Transaction {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if len(r.Rows) <= limit {
		return r.Rows
	}
	return r.Rows[:limit]
}
