// Package metrics computes the fifteen ad-revenue metrics for Global and
// for every configured country.
package metrics

import (
	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
)

// Key addresses one cell of the summary table.
type Key struct {
	Region string
	Metric domain.Metric
}

// Summary is the result of one computation run. It is never mutated after
// Compute returns.
type Summary struct {
	Context domain.Context
	values  map[Key]decimal.Decimal
	records []domain.MetricRecord
}

// Compute evaluates every metric for Global and each country in ctx.
// Blocks are ordered Global first, then countries in list order; metrics
// within a block follow canonical order. Countries without rows are still
// emitted, zero-filled.
func Compute(txs []*domain.Transaction, ctx domain.Context) *Summary {
	regions := ctx.Regions()
	s := &Summary{
		Context: ctx,
		values:  make(map[Key]decimal.Decimal, len(regions)*domain.MetricCount),
		records: make([]domain.MetricRecord, 0, len(regions)*domain.MetricCount),
	}

	for _, region := range regions {
		values := computeRegion(txs, region, ctx)
		for _, m := range domain.AllMetrics() {
			s.values[Key{Region: region, Metric: m}] = values[m]
			s.records = append(s.records, domain.MetricRecord{
				Region: region,
				Metric: m,
				Value:  values[m],
			})
		}
	}

	return s
}

// Value returns the value of one cell.
func (s *Summary) Value(region string, m domain.Metric) (decimal.Decimal, bool) {
	v, ok := s.values[Key{Region: region, Metric: m}]
	return v, ok
}

// MustValue returns the value of one cell, or zero if absent.
func (s *Summary) MustValue(region string, m domain.Metric) decimal.Decimal {
	v, _ := s.Value(region, m)
	return v
}

// Records returns a copy of the long-format table in output order.
func (s *Summary) Records() []domain.MetricRecord {
	out := make([]domain.MetricRecord, len(s.records))
	copy(out, s.records)
	return out
}

// RegionRecords returns the fifteen records of one region, or nil if the
// region was not computed.
func (s *Summary) RegionRecords(region string) []domain.MetricRecord {
	var out []domain.MetricRecord
	for _, r := range s.records {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return out
}

// Regions returns the computed regions in output order.
func (s *Summary) Regions() []string {
	return s.Context.Regions()
}

// Len returns the number of records.
func (s *Summary) Len() int {
	return len(s.records)
}
