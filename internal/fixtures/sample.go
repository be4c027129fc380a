// Package fixtures generates a deterministic simulated ledger for demos,
// load tests and the sample snapshot source.
package fixtures

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/idhash"
)

// Defaults mirror the finance team's demo dataset.
const (
	DefaultRows       = 1000
	DefaultNoiseRows  = 50
	DefaultSeed       = 42
	DefaultOtherAttr  = "其他业务"
	targetPeriodShare = 0.9
)

// Sales id ranges. AD salespeople never sell for a country department,
// which keeps the two headcount populations disjoint.
const (
	countrySalesFirst = 10000
	countrySalesCount = 500
	adSalesFirst      = 20000
	adSalesCount      = 100
)

// Options controls sample generation.
type Options struct {
	Context   domain.Context
	Rows      int    // rows drawn across the target and previous period
	NoiseRows int    // extra rows always booked in the previous period
	Seed      uint64 // same seed, same ledger
	OtherAttr string // non-target business attribute
}

// DefaultOptions returns options for the given context.
func DefaultOptions(ctx domain.Context) Options {
	return Options{
		Context:   ctx,
		Rows:      DefaultRows,
		NoiseRows: DefaultNoiseRows,
		Seed:      DefaultSeed,
		OtherAttr: DefaultOtherAttr,
	}
}

// Generate builds the simulated ledger. Every row satisfies the loader
// invariants: known department, consistent country, 2 dp amount.
func Generate(opts Options) []*domain.Transaction {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	prev := PreviousPeriod(opts.Context.Period)

	departments := append(append([]string{}, opts.Context.Countries...), domain.DepartmentAD, domain.DepartmentOther)
	attrs := []string{opts.Context.TargetBusinessAttribute, opts.OtherAttr}

	txs := make([]*domain.Transaction, 0, opts.Rows+opts.NoiseRows)

	draw := func(period int, maxCents int) *domain.Transaction {
		dept := departments[rng.IntN(len(departments))]
		t := &domain.Transaction{
			Period:            period,
			Department:        dept,
			Country:           countryFor(rng, dept, opts.Context.Countries),
			AdType:            adTypeFor(rng),
			Amount:            decimal.New(int64(100+rng.IntN(maxCents-100)), -domain.AmountPrecision),
			BusinessAttribute: attrs[rng.IntN(len(attrs))],
			SalespersonID:     salespersonFor(rng, dept),
		}
		t.TxID = idhash.ComputeTransactionID("sample", len(txs)+1, t)
		return t
	}

	for i := 0; i < opts.Rows; i++ {
		period := opts.Context.Period
		if rng.Float64() >= targetPeriodShare {
			period = prev
		}
		txs = append(txs, draw(period, 100000))
	}
	for i := 0; i < opts.NoiseRows; i++ {
		txs = append(txs, draw(prev, 50000))
	}

	return txs
}

// PreviousPeriod returns the YYYYMM period before p.
func PreviousPeriod(p int) int {
	year, month := p/100, p%100
	if month <= 1 {
		return (year-1)*100 + 12
	}
	return year*100 + month - 1
}

func countryFor(rng *rand.Rand, dept string, countries []string) string {
	switch dept {
	case domain.DepartmentAD:
		if len(countries) == 0 {
			return domain.DepartmentOther
		}
		return countries[rng.IntN(len(countries))]
	default:
		return dept
	}
}

func adTypeFor(rng *rand.Rand) domain.AdType {
	if rng.IntN(2) == 0 {
		return domain.AdTypeCore
	}
	return domain.AdTypeNonCore
}

func salespersonFor(rng *rand.Rand, dept string) string {
	if dept == domain.DepartmentAD {
		return fmt.Sprintf("%d", adSalesFirst+rng.IntN(adSalesCount))
	}
	return fmt.Sprintf("%d", countrySalesFirst+rng.IntN(countrySalesCount))
}
