// Package predicate holds the row filters shared by the metric engine and
// the detail selector. Every metric resolves to exactly one filter, so the
// rows a detail request returns are the rows the summary aggregated.
package predicate

import (
	"slices"

	"ad-revenue-lab/internal/domain"
)

// Predicate reports whether a transaction belongs to a row set.
type Predicate func(t *domain.Transaction) bool

// None matches no rows.
func None(*domain.Transaction) bool { return false }

// And matches rows satisfying every predicate.
func And(ps ...Predicate) Predicate {
	return func(t *domain.Transaction) bool {
		for _, p := range ps {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

// Or matches rows satisfying at least one predicate.
func Or(ps ...Predicate) Predicate {
	return func(t *domain.Transaction) bool {
		for _, p := range ps {
			if p(t) {
				return true
			}
		}
		return false
	}
}

// InPeriod matches rows booked in the given accounting period.
func InPeriod(period int) Predicate {
	return func(t *domain.Transaction) bool { return t.Period == period }
}

// DepartmentIs matches rows of one department.
func DepartmentIs(department string) Predicate {
	return func(t *domain.Transaction) bool { return t.Department == department }
}

// DepartmentNot matches rows of every department except one.
func DepartmentNot(department string) Predicate {
	return func(t *domain.Transaction) bool { return t.Department != department }
}

// DepartmentIn matches rows whose department is in the list.
func DepartmentIn(departments []string) Predicate {
	set := slices.Clone(departments)
	return func(t *domain.Transaction) bool { return slices.Contains(set, t.Department) }
}

// CountryIs matches rows attributed to a country.
func CountryIs(country string) Predicate {
	return func(t *domain.Transaction) bool { return t.Country == country }
}

// AdTypeIs matches rows of one ad type.
func AdTypeIs(adType domain.AdType) Predicate {
	return func(t *domain.Transaction) bool { return t.AdType == adType }
}

// BusinessAttributeIs matches rows tagged with a business attribute.
func BusinessAttributeIs(attr string) Predicate {
	return func(t *domain.Transaction) bool { return t.BusinessAttribute == attr }
}

// Filter returns the rows matching p, preserving input order.
func Filter(txs []*domain.Transaction, p Predicate) []*domain.Transaction {
	out := make([]*domain.Transaction, 0)
	for _, t := range txs {
		if t != nil && p(t) {
			out = append(out, t)
		}
	}
	return out
}
