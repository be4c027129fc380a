package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
)

// Report represents the metric summary report for one period.
type Report struct {
	// Metadata
	GeneratedAt      time.Time
	Context          domain.Context
	TransactionCount int // ledger rows in the period
	RecordCount      int // metric cells, regions x metrics

	// Metric cells grouped by region, Global first then countries in
	// configured order.
	Regions []RegionSection

	// Reconciliation outcome of the summary against its ledger rows
	Reconciliation ReconciliationSection
}

// RegionSection holds every metric cell of one region in canonical order.
type RegionSection struct {
	Region string
	Rows   []MetricRow
}

// MetricRow is one summary cell.
type MetricRow struct {
	Region string
	Metric domain.Metric
	Value  decimal.Decimal
}

// ReconciliationSection summarises verification results.
type ReconciliationSection struct {
	Checks          int
	Passed          int
	Failed          int
	Warnings        int
	AllChecksPassed bool
	Issues          []string // one line per failed or warning check
}

// Value returns the cell for (region, metric) and whether it exists.
func (r *Report) Value(region string, m domain.Metric) (decimal.Decimal, bool) {
	for _, sec := range r.Regions {
		if sec.Region != region {
			continue
		}
		for _, row := range sec.Rows {
			if row.Metric == m {
				return row.Value, true
			}
		}
	}
	return decimal.Zero, false
}
