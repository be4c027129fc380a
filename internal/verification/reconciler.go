// Package verification reconciles a computed summary against the ledger it
// was computed from. Every revenue cell must be reproducible from its
// detail rows, and headcount and productivity cells must agree with each
// other.
package verification

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/detail"
	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/metrics"
	"ad-revenue-lab/internal/observability"
	"ad-revenue-lab/internal/predicate"
)

// Check names one class of reconciliation.
type Check string

const (
	CheckCompleteness          Check = "completeness"
	CheckRevenueReconciliation Check = "revenue_reconciliation"
	CheckHeadcountAdditivity   Check = "headcount_additivity"
	CheckZeroGuard             Check = "zero_guard"
	CheckHeadcountDisjoint     Check = "headcount_disjoint"
)

// FieldDivergence represents a mismatch between the summary and the value
// rebuilt from detail rows.
type FieldDivergence struct {
	Field    string      `json:"field"`    // metric or field name
	Expected interface{} `json:"expected"` // value rebuilt from the ledger
	Actual   interface{} `json:"actual"`   // value in the summary
}

// Result is the outcome of one check for one region.
type Result struct {
	Check       Check             `json:"check"`
	Region      string            `json:"region"`
	Pass        bool              `json:"pass"`
	Warning     bool              `json:"warning"` // failed, but does not invalidate the summary
	Divergences []FieldDivergence `json:"divergences,omitempty"`
}

// Report contains every check result for a summary.
type Report struct {
	Context  domain.Context
	Checks   int
	Passed   int
	Failed   int
	Warnings int
	Results  []Result
}

// OK reports whether every non-warning check passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Failures returns the failed, non-warning results.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Pass && !res.Warning {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) add(res Result) {
	r.Checks++
	switch {
	case res.Pass:
		r.Passed++
	case res.Warning:
		r.Warnings++
	default:
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// Reconcile runs every check against summary, which must have been
// computed from txs.
func Reconcile(txs []*domain.Transaction, summary *metrics.Summary) *Report {
	ctx := summary.Context
	report := &Report{Context: ctx}

	report.add(checkCompleteness(summary))

	for _, region := range ctx.Regions() {
		report.add(checkRevenue(txs, summary, region))
		report.add(checkAdditivity(summary, region))
		report.add(checkZeroGuard(summary, region))
		report.add(checkDisjoint(txs, ctx, region))
	}

	observability.RecordReconciliation(report.Passed, report.Failed, report.Warnings)
	return report
}

// checkCompleteness verifies the record count and that no cell is missing.
func checkCompleteness(summary *metrics.Summary) Result {
	ctx := summary.Context
	res := Result{Check: CheckCompleteness, Region: "*"}

	want := len(ctx.Regions()) * domain.MetricCount
	if summary.Len() != want {
		res.Divergences = append(res.Divergences, FieldDivergence{
			Field:    "record_count",
			Expected: want,
			Actual:   summary.Len(),
		})
	}

	for _, region := range ctx.Regions() {
		for _, m := range domain.AllMetrics() {
			if _, ok := summary.Value(region, m); !ok {
				res.Divergences = append(res.Divergences, FieldDivergence{
					Field:    region + "/" + m.String(),
					Expected: "present",
					Actual:   "missing",
				})
			}
		}
	}

	res.Pass = len(res.Divergences) == 0
	return res
}

// checkRevenue rebuilds every revenue cell of a region from detail rows.
func checkRevenue(txs []*domain.Transaction, summary *metrics.Summary, region string) Result {
	ctx := summary.Context
	res := Result{Check: CheckRevenueReconciliation, Region: region}

	for _, m := range domain.AllMetrics() {
		rule, ok := predicate.Revenue(m, region, ctx)
		if !ok {
			continue
		}

		rows := detail.Select(txs, m, region, ctx)
		sum := decimal.Zero
		for _, t := range rows {
			sum = sum.Add(t.Amount)
		}
		expected := domain.RoundAmount(domain.RoundAmount(sum).Mul(rule.Multiplier))
		actual := summary.MustValue(region, m)

		if !expected.Equal(actual) {
			res.Divergences = append(res.Divergences, FieldDivergence{
				Field:    m.String(),
				Expected: expected.StringFixed(domain.AmountPrecision),
				Actual:   actual.StringFixed(domain.AmountPrecision),
			})
		}
	}

	res.Pass = len(res.Divergences) == 0
	return res
}

// checkAdditivity verifies total_bd_count == country_bd_count + ad_dept_bd_count.
func checkAdditivity(summary *metrics.Summary, region string) Result {
	res := Result{Check: CheckHeadcountAdditivity, Region: region}

	country := summary.MustValue(region, domain.MetricCountryBDCount)
	ad := summary.MustValue(region, domain.MetricADDeptBDCount)
	total := summary.MustValue(region, domain.MetricTotalBDCount)

	if !country.Add(ad).Equal(total) {
		res.Divergences = append(res.Divergences, FieldDivergence{
			Field:    domain.MetricTotalBDCount.String(),
			Expected: country.Add(ad).IntPart(),
			Actual:   total.IntPart(),
		})
	}

	res.Pass = len(res.Divergences) == 0
	return res
}

// checkZeroGuard verifies productivity is 0 wherever its headcount is 0.
func checkZeroGuard(summary *metrics.Summary, region string) Result {
	res := Result{Check: CheckZeroGuard, Region: region}

	for _, m := range domain.AllMetrics() {
		_, denominator, ok := m.Operands()
		if !ok {
			continue
		}
		if !summary.MustValue(region, denominator).IsZero() {
			continue
		}
		if v := summary.MustValue(region, m); !v.IsZero() {
			res.Divergences = append(res.Divergences, FieldDivergence{
				Field:    m.String(),
				Expected: "0.00",
				Actual:   v.StringFixed(domain.AmountPrecision),
			})
		}
	}

	res.Pass = len(res.Divergences) == 0
	return res
}

// checkDisjoint verifies no salesperson is counted in both the country and
// the AD population of a region. An overlap means total_bd_count
// double-counts; it is reported as a warning.
func checkDisjoint(txs []*domain.Transaction, ctx domain.Context, region string) Result {
	res := Result{Check: CheckHeadcountDisjoint, Region: region}

	country := salespeople(detail.Select(txs, domain.MetricCountryBDCount, region, ctx))
	ad := salespeople(detail.Select(txs, domain.MetricADDeptBDCount, region, ctx))

	var overlap []string
	for id := range country {
		if _, ok := ad[id]; ok {
			overlap = append(overlap, id)
		}
	}
	sort.Strings(overlap)

	if len(overlap) > 0 {
		res.Warning = true
		res.Divergences = append(res.Divergences, FieldDivergence{
			Field:    "salesperson_id",
			Expected: "disjoint",
			Actual:   fmt.Sprintf("%d shared: %s", len(overlap), strings.Join(overlap, ",")),
		})
	}

	res.Pass = len(overlap) == 0
	return res
}

func salespeople(rows []*domain.Transaction) map[string]struct{} {
	ids := make(map[string]struct{}, len(rows))
	for _, t := range rows {
		if t.SalespersonID != "" {
			ids[t.SalespersonID] = struct{}{}
		}
	}
	return ids
}
