package domain

import "github.com/shopspring/decimal"

// Transaction is one row of the ad-revenue ledger.
// Corresponds to the ad_transactions table in PostgreSQL and ClickHouse.
type Transaction struct {
	TxID              string          // deterministic hash, see idhash.ComputeTransactionID
	Period            int             // accounting period, YYYYMM
	Department        string          // country code | AD | OTHER
	Country           string          // attributed country; == Department unless Department is AD
	AdType            AdType          // core | non-core
	Amount            decimal.Decimal // non-negative, rounded to 2 dp at load
	BusinessAttribute string          // line of business the salesperson is tagged with
	SalespersonID     string          // opaque id, kept as text end to end
}

// Department codes outside the country list.
const (
	DepartmentAD    = "AD"
	DepartmentOther = "OTHER"
)

// IsAD reports whether the row is booked by the global ad department.
func (t *Transaction) IsAD() bool {
	return t.Department == DepartmentAD
}

// Clone returns a copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}

// AmountPrecision is the number of decimal places amounts and sums are kept at.
const AmountPrecision = 2

// RoundAmount rounds half away from zero to AmountPrecision places.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPrecision)
}
