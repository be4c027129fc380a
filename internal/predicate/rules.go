package predicate

import (
	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
)

// RevenueRule is the row filter of a revenue metric plus the factor the
// filtered sum is scaled by.
type RevenueRule struct {
	Match      Predicate
	Multiplier decimal.Decimal
}

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// Revenue returns the rule for one of the nine revenue metrics.
// ok is false for other metrics and for regions outside ctx.
//
// Country totals scale the department's own revenue by two.
func Revenue(m domain.Metric, region string, ctx domain.Context) (rule RevenueRule, ok bool) {
	if !ctx.IsKnownRegion(region) {
		return RevenueRule{}, false
	}

	var scope Predicate
	multiplier := one

	switch m {
	case domain.MetricCountryRevenue, domain.MetricCountryCoreRevenue, domain.MetricCountryNonCoreRevenue:
		scope = countryScope(region)
	case domain.MetricADDeptRevenue, domain.MetricADDeptCoreRevenue, domain.MetricADDeptNonCoreRevenue:
		scope = adScope(region)
	case domain.MetricTotalRevenue, domain.MetricTotalCoreRevenue, domain.MetricTotalNonCoreRevenue:
		if region == domain.RegionGlobal {
			scope = Or(adScope(region), countryScope(region))
		} else {
			scope = DepartmentIs(region)
			multiplier = two
		}
	case domain.MetricCountryBDCount, domain.MetricADDeptBDCount, domain.MetricTotalBDCount,
		domain.MetricGlobalBDAvgRevenue, domain.MetricADDeptBDAvgRevenue, domain.MetricCountryBDAvgRevenue:
		return RevenueRule{}, false
	default:
		return RevenueRule{}, false
	}

	match := And(InPeriod(ctx.Period), scope)
	if adType, narrowed := adTypeOf(m); narrowed {
		match = And(match, AdTypeIs(adType))
	}
	return RevenueRule{Match: match, Multiplier: multiplier}, true
}

// Headcount returns the row filter of one of the three headcount metrics.
// total_bd_count matches rows of either population.
func Headcount(m domain.Metric, region string, ctx domain.Context) (Predicate, bool) {
	if !ctx.IsKnownRegion(region) {
		return nil, false
	}

	switch m {
	case domain.MetricCountryBDCount:
		return countryBD(region, ctx), true
	case domain.MetricADDeptBDCount:
		return adBD(region, ctx), true
	case domain.MetricTotalBDCount:
		return Or(countryBD(region, ctx), adBD(region, ctx)), true
	default:
		return nil, false
	}
}

// Rows returns the row filter behind any metric. Productivity metrics have
// no contributing row set; they resolve to the region's total_revenue rows.
func Rows(m domain.Metric, region string, ctx domain.Context) (Predicate, bool) {
	switch m.Group() {
	case domain.GroupRevenue:
		rule, ok := Revenue(m, region, ctx)
		return rule.Match, ok
	case domain.GroupHeadcount:
		return Headcount(m, region, ctx)
	case domain.GroupProductivity:
		rule, ok := Revenue(domain.MetricTotalRevenue, region, ctx)
		return rule.Match, ok
	default:
		return nil, false
	}
}

func countryScope(region string) Predicate {
	if region == domain.RegionGlobal {
		return DepartmentNot(domain.DepartmentAD)
	}
	return DepartmentIs(region)
}

func adScope(region string) Predicate {
	if region == domain.RegionGlobal {
		return DepartmentIs(domain.DepartmentAD)
	}
	return And(DepartmentIs(domain.DepartmentAD), CountryIs(region))
}

func countryBD(region string, ctx domain.Context) Predicate {
	dept := DepartmentIs(region)
	if region == domain.RegionGlobal {
		dept = DepartmentIn(ctx.Countries)
	}
	return And(InPeriod(ctx.Period), dept, BusinessAttributeIs(ctx.TargetBusinessAttribute))
}

func adBD(region string, ctx domain.Context) Predicate {
	return And(InPeriod(ctx.Period), adScope(region))
}

// adTypeOf reports the ad type a revenue metric is narrowed to.
func adTypeOf(m domain.Metric) (domain.AdType, bool) {
	switch m {
	case domain.MetricCountryCoreRevenue, domain.MetricADDeptCoreRevenue, domain.MetricTotalCoreRevenue:
		return domain.AdTypeCore, true
	case domain.MetricCountryNonCoreRevenue, domain.MetricADDeptNonCoreRevenue, domain.MetricTotalNonCoreRevenue:
		return domain.AdTypeNonCore, true
	default:
		return "", false
	}
}
