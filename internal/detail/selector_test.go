package detail

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/fixtures"
	"ad-revenue-lab/internal/metrics"
)

func testContext() domain.Context {
	return domain.Context{
		Period:                  202509,
		TargetBusinessAttribute: "外卖BD",
		Countries:               []string{"AU", "NZ", "US", "CA", "UK", "EU", "JP", "KP"},
	}
}

func sampleLedger(ctx domain.Context) []*domain.Transaction {
	return fixtures.Generate(fixtures.DefaultOptions(ctx))
}

func sumRows(rows []*domain.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range rows {
		sum = sum.Add(t.Amount)
	}
	return domain.RoundAmount(sum)
}

func TestSelect_RevenueReconcilesWithSummary(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)
	summary := metrics.Compute(txs, ctx)

	for _, region := range ctx.Regions() {
		for _, m := range domain.AllMetrics() {
			if m.Group() != domain.GroupRevenue {
				continue
			}

			rows := Select(txs, m, region, ctx)
			got := sumRows(rows)
			if region != domain.RegionGlobal && isTotal(m) {
				got = got.Mul(decimal.NewFromInt(2))
			}

			want := summary.MustValue(region, m)
			assert.True(t, want.Equal(got), "%s/%s: detail %s, summary %s", region, m, got, want)
		}
	}
}

func isTotal(m domain.Metric) bool {
	switch m {
	case domain.MetricTotalRevenue, domain.MetricTotalCoreRevenue, domain.MetricTotalNonCoreRevenue:
		return true
	default:
		return false
	}
}

func TestSelect_HeadcountReconcilesWithSummary(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)
	summary := metrics.Compute(txs, ctx)

	for _, region := range ctx.Regions() {
		for _, m := range []domain.Metric{domain.MetricCountryBDCount, domain.MetricADDeptBDCount, domain.MetricTotalBDCount} {
			res := Describe(txs, m, region, ctx)
			want := summary.MustValue(region, m).IntPart()
			assert.Equal(t, want, int64(res.Salespeople), "%s/%s", region, m)
		}
	}
}

func TestSelect_TotalBDCountIsUnionWithoutDuplicates(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)

	for _, region := range ctx.Regions() {
		country := Select(txs, domain.MetricCountryBDCount, region, ctx)
		ad := Select(txs, domain.MetricADDeptBDCount, region, ctx)
		total := Select(txs, domain.MetricTotalBDCount, region, ctx)

		seen := make(map[string]struct{}, len(total))
		for _, row := range total {
			_, dup := seen[row.TxID]
			require.False(t, dup, "%s: row %s returned twice", region, row.TxID)
			seen[row.TxID] = struct{}{}
		}
		// Populations are disjoint by department
		assert.Equal(t, len(country)+len(ad), len(total), region)
	}
}

func TestSelect_ADAttribution(t *testing.T) {
	ctx := testContext()
	adRow := &domain.Transaction{
		TxID: "ad-jp", Period: 202509, Department: domain.DepartmentAD, Country: "JP",
		AdType: domain.AdTypeCore, Amount: decimal.RequireFromString("50.00"), SalespersonID: "2",
	}
	txs := []*domain.Transaction{adRow}

	assert.Len(t, Select(txs, domain.MetricADDeptRevenue, domain.RegionGlobal, ctx), 1)
	assert.Len(t, Select(txs, domain.MetricADDeptRevenue, "JP", ctx), 1)
	assert.Empty(t, Select(txs, domain.MetricCountryRevenue, "JP", ctx))
	assert.Empty(t, Select(txs, domain.MetricADDeptRevenue, "AU", ctx))
}

func TestSelect_UnknownRegionOrMetric(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)

	got := Select(txs, domain.MetricTotalRevenue, "ZZ", ctx)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, SelectByName(txs, "no_such_metric", domain.RegionGlobal, ctx))
	assert.Empty(t, Select(txs, domain.Metric(42), domain.RegionGlobal, ctx))
}

func TestSelectByName_AcceptsLabelsAndLegacyGlobal(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)

	byName := Select(txs, domain.MetricTotalRevenue, domain.RegionGlobal, ctx)
	byLabel := SelectByName(txs, "广告收入", domain.RegionGlobalLabel, ctx)

	require.Equal(t, len(byName), len(byLabel))
	for i := range byName {
		assert.Equal(t, byName[i].TxID, byLabel[i].TxID)
	}
}

func TestSelect_ProductivityReturnsTotalRevenueRows(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)

	for _, region := range ctx.Regions() {
		want := Select(txs, domain.MetricTotalRevenue, region, ctx)
		for _, m := range []domain.Metric{domain.MetricGlobalBDAvgRevenue, domain.MetricADDeptBDAvgRevenue, domain.MetricCountryBDAvgRevenue} {
			got := Select(txs, m, region, ctx)
			require.Equal(t, len(want), len(got), "%s/%s", region, m)
			for i := range want {
				assert.Same(t, want[i], got[i], "%s/%s row %d", region, m, i)
			}

			res := Describe(txs, m, region, ctx)
			assert.True(t, res.Approximate)
		}
	}
}

func TestSelect_PreservesInputOrder(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)

	rows := Select(txs, domain.MetricTotalRevenue, domain.RegionGlobal, ctx)
	pos := make(map[string]int, len(txs))
	for i, tx := range txs {
		pos[tx.TxID] = i
	}
	for i := 1; i < len(rows); i++ {
		assert.Less(t, pos[rows[i-1].TxID], pos[rows[i].TxID])
	}
}

func TestResult_Preview(t *testing.T) {
	ctx := testContext()
	txs := sampleLedger(ctx)

	res := Describe(txs, domain.MetricTotalRevenue, domain.RegionGlobal, ctx)
	require.Greater(t, res.Len(), DefaultPreviewLimit)

	assert.Len(t, res.Preview(0), DefaultPreviewLimit)
	assert.Len(t, res.Preview(5), 5)
	assert.Len(t, res.Preview(res.Len()+10), res.Len())
	assert.True(t, res.AmountSum.Equal(sumRows(res.Rows)))
	assert.False(t, res.Approximate)
}
