package metrics

import (
	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/predicate"
)

// sumAmount sums Amount over matching rows, rounded to 2 dp.
func sumAmount(txs []*domain.Transaction, match predicate.Predicate) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t != nil && match(t) {
			sum = sum.Add(t.Amount)
		}
	}
	return domain.RoundAmount(sum)
}

// countDistinctSalespeople counts distinct SalespersonID over matching rows.
// Blank ids are not counted.
func countDistinctSalespeople(txs []*domain.Transaction, match predicate.Predicate) int {
	seen := make(map[string]struct{})
	for _, t := range txs {
		if t == nil || t.SalespersonID == "" || !match(t) {
			continue
		}
		seen[t.SalespersonID] = struct{}{}
	}
	return len(seen)
}

// safeDivide returns numerator / denominator rounded to 2 dp,
// or 0 when the denominator is 0.
func safeDivide(numerator decimal.Decimal, denominator int) decimal.Decimal {
	if denominator == 0 {
		return decimal.Zero
	}
	return numerator.DivRound(decimal.NewFromInt(int64(denominator)), domain.AmountPrecision)
}

// computeRevenue evaluates one revenue metric for a region.
func computeRevenue(txs []*domain.Transaction, m domain.Metric, region string, ctx domain.Context) decimal.Decimal {
	rule, ok := predicate.Revenue(m, region, ctx)
	if !ok {
		return decimal.Zero
	}
	return domain.RoundAmount(sumAmount(txs, rule.Match).Mul(rule.Multiplier))
}

// computeHeadcount evaluates country_bd_count or ad_dept_bd_count.
func computeHeadcount(txs []*domain.Transaction, m domain.Metric, region string, ctx domain.Context) int {
	match, ok := predicate.Headcount(m, region, ctx)
	if !ok {
		return 0
	}
	return countDistinctSalespeople(txs, match)
}

// computeRegion fills all fifteen metric values for one region.
func computeRegion(txs []*domain.Transaction, region string, ctx domain.Context) [domain.MetricCount]decimal.Decimal {
	var values [domain.MetricCount]decimal.Decimal

	for _, m := range domain.AllMetrics() {
		if m.Group() == domain.GroupRevenue {
			values[m] = computeRevenue(txs, m, region, ctx)
		}
	}

	// total_bd_count is a plain sum: the two populations are disjoint by department.
	countryBD := computeHeadcount(txs, domain.MetricCountryBDCount, region, ctx)
	adBD := computeHeadcount(txs, domain.MetricADDeptBDCount, region, ctx)
	values[domain.MetricCountryBDCount] = decimal.NewFromInt(int64(countryBD))
	values[domain.MetricADDeptBDCount] = decimal.NewFromInt(int64(adBD))
	values[domain.MetricTotalBDCount] = decimal.NewFromInt(int64(countryBD + adBD))

	for _, m := range domain.AllMetrics() {
		numerator, denominator, ok := m.Operands()
		if !ok {
			continue
		}
		values[m] = safeDivide(values[numerator], int(values[denominator].IntPart()))
	}

	return values
}
