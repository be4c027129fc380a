package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Metric enumerates the fifteen summary metrics, in canonical output order.
type Metric int

const (
	MetricCountryRevenue Metric = iota
	MetricCountryCoreRevenue
	MetricCountryNonCoreRevenue
	MetricADDeptRevenue
	MetricADDeptCoreRevenue
	MetricADDeptNonCoreRevenue
	MetricTotalRevenue
	MetricTotalCoreRevenue
	MetricTotalNonCoreRevenue
	MetricCountryBDCount
	MetricADDeptBDCount
	MetricTotalBDCount
	MetricGlobalBDAvgRevenue
	MetricADDeptBDAvgRevenue
	MetricCountryBDAvgRevenue

	metricCount
)

// MetricGroup partitions metrics by how they are aggregated.
type MetricGroup string

const (
	GroupRevenue      MetricGroup = "revenue"
	GroupHeadcount    MetricGroup = "headcount"
	GroupProductivity MetricGroup = "productivity"
)

type metricInfo struct {
	name  string
	label string
}

var metricInfos = [metricCount]metricInfo{
	MetricCountryRevenue:        {"country_revenue", "国家：广告收入"},
	MetricCountryCoreRevenue:    {"country_core_revenue", "国家-同业收入"},
	MetricCountryNonCoreRevenue: {"country_noncore_revenue", "国家-异业收入"},
	MetricADDeptRevenue:         {"ad_dept_revenue", "广告部：广告收入"},
	MetricADDeptCoreRevenue:     {"ad_dept_core_revenue", "广告部—同业收入"},
	MetricADDeptNonCoreRevenue:  {"ad_dept_noncore_revenue", "广告部—异业收入"},
	MetricTotalRevenue:          {"total_revenue", "广告收入"},
	MetricTotalCoreRevenue:      {"total_core_revenue", "广告收入——同业收入"},
	MetricTotalNonCoreRevenue:   {"total_noncore_revenue", "广告收入——异业收入"},
	MetricCountryBDCount:        {"country_bd_count", "国家BD人数（实际为有售卖的BD）"},
	MetricADDeptBDCount:         {"ad_dept_bd_count", "广告部BD人数"},
	MetricTotalBDCount:          {"total_bd_count", "全球BD人数"},
	MetricGlobalBDAvgRevenue:    {"global_bd_avg_revenue", "全球BD：人均广告收入"},
	MetricADDeptBDAvgRevenue:    {"ad_dept_bd_avg_revenue", "广告部BD：人均广告收入"},
	MetricCountryBDAvgRevenue:   {"country_bd_avg_revenue", "国家BD：人均广告收入"},
}

var metricsByName = func() map[string]Metric {
	m := make(map[string]Metric, 2*int(metricCount))
	for i, info := range metricInfos {
		m[info.name] = Metric(i)
		m[info.label] = Metric(i)
	}
	return m
}()

// AllMetrics returns the fifteen metrics in canonical order.
func AllMetrics() []Metric {
	out := make([]Metric, metricCount)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// MetricCount is the number of metrics computed per region.
const MetricCount = int(metricCount)

// ParseMetric resolves a canonical metric name or its display label.
func ParseMetric(s string) (Metric, error) {
	if m, ok := metricsByName[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// IsValid checks if m is one of the fifteen metrics.
func (m Metric) IsValid() bool {
	return m >= 0 && m < metricCount
}

// String returns the canonical metric name.
func (m Metric) String() string {
	if !m.IsValid() {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricInfos[m].name
}

// Label returns the Chinese display label.
func (m Metric) Label() string {
	if !m.IsValid() {
		return m.String()
	}
	return metricInfos[m].label
}

// Group returns the aggregation group of the metric.
func (m Metric) Group() MetricGroup {
	switch {
	case m <= MetricTotalNonCoreRevenue:
		return GroupRevenue
	case m <= MetricTotalBDCount:
		return GroupHeadcount
	default:
		return GroupProductivity
	}
}

// IsHeadcount reports whether values of m are distinct-salesperson counts.
func (m Metric) IsHeadcount() bool {
	return m.Group() == GroupHeadcount
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("invalid metric %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(b []byte) error {
	parsed, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MetricRecord is one row of the long-format summary table.
type MetricRecord struct {
	Region string
	Metric Metric
	Value  decimal.Decimal
}

// Operands returns the numerator and denominator of a productivity metric.
// ok is false for revenue and headcount metrics.
func (m Metric) Operands() (numerator, denominator Metric, ok bool) {
	switch m {
	case MetricGlobalBDAvgRevenue:
		return MetricTotalRevenue, MetricTotalBDCount, true
	case MetricADDeptBDAvgRevenue:
		return MetricADDeptRevenue, MetricADDeptBDCount, true
	case MetricCountryBDAvgRevenue:
		return MetricCountryRevenue, MetricCountryBDCount, true
	default:
		return 0, 0, false
	}
}
