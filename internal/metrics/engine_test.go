package metrics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
)

const (
	testPeriod = 202509
	testAttr   = "外卖BD"
)

func testContext(countries ...string) domain.Context {
	return domain.Context{
		Period:                  testPeriod,
		TargetBusinessAttribute: testAttr,
		Countries:               countries,
	}
}

// row builds a transaction; country defaults to department for non-AD rows.
func row(period int, dept, country string, adType domain.AdType, amount, attr, salesperson string) *domain.Transaction {
	if country == "" {
		country = dept
	}
	return &domain.Transaction{
		TxID:              fmt.Sprintf("%d-%s-%s-%s-%s", period, dept, country, amount, salesperson),
		Period:            period,
		Department:        dept,
		Country:           country,
		AdType:            adType,
		Amount:            decimal.RequireFromString(amount),
		BusinessAttribute: attr,
		SalespersonID:     salesperson,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertValue(t *testing.T, s *Summary, region string, m domain.Metric, want string) {
	t.Helper()
	got, ok := s.Value(region, m)
	if !ok {
		t.Fatalf("%s/%s missing from summary", region, m)
	}
	if !got.Equal(dec(want)) {
		t.Errorf("%s/%s: got %s, want %s", region, m, got.StringFixed(2), want)
	}
}

func TestCompute_SingleCountryRow(t *testing.T) {
	txs := []*domain.Transaction{
		row(testPeriod, "AU", "AU", domain.AdTypeCore, "100.00", testAttr, "1"),
	}

	s := Compute(txs, testContext("AU"))

	assertValue(t, s, "AU", domain.MetricCountryRevenue, "100.00")
	assertValue(t, s, "AU", domain.MetricCountryCoreRevenue, "100.00")
	assertValue(t, s, "AU", domain.MetricCountryNonCoreRevenue, "0")
	assertValue(t, s, "AU", domain.MetricTotalRevenue, "200.00")
	assertValue(t, s, "AU", domain.MetricTotalCoreRevenue, "200.00")
	assertValue(t, s, "AU", domain.MetricCountryBDCount, "1")
	assertValue(t, s, "AU", domain.MetricADDeptBDCount, "0")
	assertValue(t, s, "AU", domain.MetricTotalBDCount, "1")
	assertValue(t, s, "AU", domain.MetricCountryBDAvgRevenue, "100.00")
	assertValue(t, s, "AU", domain.MetricGlobalBDAvgRevenue, "200.00")
	assertValue(t, s, "AU", domain.MetricADDeptBDAvgRevenue, "0")

	// Global sums the two pools instead of doubling
	assertValue(t, s, domain.RegionGlobal, domain.MetricCountryRevenue, "100.00")
	assertValue(t, s, domain.RegionGlobal, domain.MetricADDeptRevenue, "0")
	assertValue(t, s, domain.RegionGlobal, domain.MetricTotalRevenue, "100.00")
}

func TestCompute_OffPeriodExcluded(t *testing.T) {
	txs := []*domain.Transaction{
		row(202508, "AU", "AU", domain.AdTypeCore, "999.99", testAttr, "1"),
		row(202508, domain.DepartmentAD, "AU", domain.AdTypeNonCore, "500.00", testAttr, "2"),
	}

	s := Compute(txs, testContext("AU"))

	for _, r := range s.Records() {
		if !r.Value.IsZero() {
			t.Errorf("%s/%s: off-period rows contributed %s", r.Region, r.Metric, r.Value)
		}
	}
}

func TestCompute_ADAttribution(t *testing.T) {
	txs := []*domain.Transaction{
		row(testPeriod, domain.DepartmentAD, "JP", domain.AdTypeCore, "50.00", "其他业务", "2"),
	}

	s := Compute(txs, testContext("AU", "JP"))

	assertValue(t, s, domain.RegionGlobal, domain.MetricADDeptRevenue, "50.00")
	assertValue(t, s, "JP", domain.MetricADDeptRevenue, "50.00")
	assertValue(t, s, "JP", domain.MetricCountryRevenue, "0")
	assertValue(t, s, "AU", domain.MetricADDeptRevenue, "0")
	assertValue(t, s, "JP", domain.MetricADDeptBDCount, "1")
	assertValue(t, s, "JP", domain.MetricADDeptBDAvgRevenue, "50.00")
	assertValue(t, s, domain.RegionGlobal, domain.MetricCountryRevenue, "0")
}

func TestCompute_GlobalCountryRevenueIncludesOther(t *testing.T) {
	txs := []*domain.Transaction{
		row(testPeriod, "AU", "", domain.AdTypeCore, "10.00", testAttr, "1"),
		row(testPeriod, domain.DepartmentOther, "", domain.AdTypeNonCore, "5.25", testAttr, "9"),
		row(testPeriod, domain.DepartmentAD, "AU", domain.AdTypeNonCore, "1.10", testAttr, "3"),
	}

	s := Compute(txs, testContext("AU"))

	assertValue(t, s, domain.RegionGlobal, domain.MetricCountryRevenue, "15.25")
	assertValue(t, s, domain.RegionGlobal, domain.MetricCountryNonCoreRevenue, "5.25")
	assertValue(t, s, domain.RegionGlobal, domain.MetricTotalRevenue, "16.35")
	assertValue(t, s, domain.RegionGlobal, domain.MetricTotalNonCoreRevenue, "6.35")
	// OTHER salespeople are outside the country list
	assertValue(t, s, domain.RegionGlobal, domain.MetricCountryBDCount, "1")
	assertValue(t, s, domain.RegionGlobal, domain.MetricADDeptBDCount, "1")
	assertValue(t, s, domain.RegionGlobal, domain.MetricTotalBDCount, "2")
	assertValue(t, s, domain.RegionGlobal, domain.MetricGlobalBDAvgRevenue, "8.18")
}

func TestCompute_CountryBDRequiresTargetAttribute(t *testing.T) {
	txs := []*domain.Transaction{
		row(testPeriod, "NZ", "", domain.AdTypeCore, "10.00", testAttr, "1"),
		row(testPeriod, "NZ", "", domain.AdTypeCore, "20.00", testAttr, "1"),
		row(testPeriod, "NZ", "", domain.AdTypeCore, "30.00", "其他业务", "2"),
	}

	s := Compute(txs, testContext("NZ"))

	assertValue(t, s, "NZ", domain.MetricCountryRevenue, "60.00")
	assertValue(t, s, "NZ", domain.MetricCountryBDCount, "1")
	assertValue(t, s, "NZ", domain.MetricCountryBDAvgRevenue, "60.00")
}

func TestCompute_Completeness(t *testing.T) {
	countries := []string{"AU", "NZ", "US", "CA", "UK", "EU", "JP", "KP"}
	txs := []*domain.Transaction{
		row(testPeriod, "AU", "", domain.AdTypeCore, "1.00", testAttr, "1"),
	}

	s := Compute(txs, testContext(countries...))

	want := (1 + len(countries)) * domain.MetricCount
	if s.Len() != want {
		t.Fatalf("expected %d records, got %d", want, s.Len())
	}

	records := s.Records()
	regions := append([]string{domain.RegionGlobal}, countries...)
	for i, region := range regions {
		for j, m := range domain.AllMetrics() {
			r := records[i*domain.MetricCount+j]
			if r.Region != region || r.Metric != m {
				t.Errorf("record %d: got %s/%s, want %s/%s", i*domain.MetricCount+j, r.Region, r.Metric, region, m)
			}
		}
	}

	// Countries without rows are zero-filled, not omitted
	if got := s.RegionRecords("KP"); len(got) != domain.MetricCount {
		t.Errorf("KP: expected %d records, got %d", domain.MetricCount, len(got))
	}
	assertValue(t, s, "KP", domain.MetricTotalRevenue, "0")
}

func TestCompute_EmptySnapshot(t *testing.T) {
	s := Compute(nil, testContext("AU", "NZ"))

	if s.Len() != 3*domain.MetricCount {
		t.Fatalf("expected %d records, got %d", 3*domain.MetricCount, s.Len())
	}
	for _, r := range s.Records() {
		if !r.Value.IsZero() {
			t.Errorf("%s/%s: expected 0, got %s", r.Region, r.Metric, r.Value)
		}
	}
}

func TestCompute_HeadcountAdditivityAndZeroGuard(t *testing.T) {
	txs := []*domain.Transaction{
		row(testPeriod, "AU", "", domain.AdTypeCore, "10.00", testAttr, "a1"),
		row(testPeriod, "AU", "", domain.AdTypeNonCore, "10.00", testAttr, "a2"),
		row(testPeriod, "US", "", domain.AdTypeNonCore, "7.77", testAttr, "u1"),
		row(testPeriod, domain.DepartmentAD, "AU", domain.AdTypeCore, "3.00", testAttr, "ad1"),
		row(testPeriod, domain.DepartmentAD, "AU", domain.AdTypeCore, "4.00", testAttr, "ad1"),
	}

	s := Compute(txs, testContext("AU", "US"))

	for _, region := range s.Regions() {
		c := s.MustValue(region, domain.MetricCountryBDCount)
		a := s.MustValue(region, domain.MetricADDeptBDCount)
		total := s.MustValue(region, domain.MetricTotalBDCount)
		if !c.Add(a).Equal(total) {
			t.Errorf("%s: total_bd_count %s != %s + %s", region, total, c, a)
		}
	}

	// US has no AD rows; its AD productivity must be zero
	assertValue(t, s, "US", domain.MetricADDeptBDCount, "0")
	assertValue(t, s, "US", domain.MetricADDeptBDAvgRevenue, "0")
	assertValue(t, s, "AU", domain.MetricADDeptRevenue, "7.00")
	assertValue(t, s, "AU", domain.MetricADDeptBDAvgRevenue, "7.00")
	assertValue(t, s, "AU", domain.MetricTotalBDCount, "3")
	// total_revenue / total_bd_count = 40.00 / 3
	assertValue(t, s, "AU", domain.MetricGlobalBDAvgRevenue, "13.33")
}

func TestCompute_Idempotent(t *testing.T) {
	txs := []*domain.Transaction{
		row(testPeriod, "AU", "", domain.AdTypeCore, "12.34", testAttr, "1"),
		row(testPeriod, "NZ", "", domain.AdTypeNonCore, "0.01", testAttr, "2"),
		row(testPeriod, domain.DepartmentAD, "NZ", domain.AdTypeNonCore, "99.99", testAttr, "3"),
		row(202508, "AU", "", domain.AdTypeCore, "5.00", testAttr, "1"),
	}
	ctx := testContext("AU", "NZ")

	render := func(s *Summary) string {
		var sb strings.Builder
		for _, r := range s.Records() {
			fmt.Fprintf(&sb, "%s,%s,%s\n", r.Region, r.Metric, r.Value.StringFixed(2))
		}
		return sb.String()
	}

	first := render(Compute(txs, ctx))
	second := render(Compute(txs, ctx))
	if first != second {
		t.Errorf("Compute is not deterministic:\n%s\n---\n%s", first, second)
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	tx := row(testPeriod, "AU", "", domain.AdTypeCore, "12.34", testAttr, "1")
	before := *tx

	Compute([]*domain.Transaction{tx, nil}, testContext("AU"))

	if tx.TxID != before.TxID || !tx.Amount.Equal(before.Amount) || tx.Department != before.Department {
		t.Errorf("input row mutated: %+v", tx)
	}
}

func TestSummary_ValueUnknownKey(t *testing.T) {
	s := Compute(nil, testContext("AU"))

	if _, ok := s.Value("NZ", domain.MetricTotalRevenue); ok {
		t.Error("expected NZ to be absent")
	}
	if v := s.MustValue("NZ", domain.MetricTotalRevenue); !v.IsZero() {
		t.Errorf("MustValue on absent key: got %s", v)
	}
	if got := s.RegionRecords("NZ"); got != nil {
		t.Errorf("RegionRecords on absent region: got %v", got)
	}
}
