// Package ledger loads ad-revenue ledgers from CSV exports into validated
// transactions. Coercion happens here, once: amounts are parsed, rounded
// to cents and defaulted to zero when unreadable; departments and
// countries are checked against the configured closed set.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/idhash"
	"ad-revenue-lab/internal/storage"
)

var (
	// ErrEmptyLedger is returned when the input has no header row.
	ErrEmptyLedger = errors.New("ledger is empty")

	// ErrBadHeader is returned when required columns are missing.
	ErrBadHeader = errors.New("ledger header invalid")
)

// RowError describes an invalid ledger row. It wraps storage.ErrInvalidInput.
type RowError struct {
	Line   int // 1-based line in the file, header is line 1
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %s", e.Line, e.Column, e.Value, e.Reason)
}

func (e *RowError) Unwrap() error {
	return storage.ErrInvalidInput
}

// Options controls ledger loading.
type Options struct {
	Context     domain.Context
	Source      string // name hashed into generated tx ids
	SkipInvalid bool   // drop invalid rows instead of failing the load
}

// Result is a loaded ledger.
type Result struct {
	Transactions  []*domain.Transaction
	Skipped       []*RowError // populated only with SkipInvalid
	CoercedAmount int         // rows whose amount was unreadable and set to 0
}

// row mirrors one CSV record after header canonicalisation.
type row struct {
	TxID              string `csv:"tx_id"`
	Period            string `csv:"period"`
	Department        string `csv:"department"`
	Country           string `csv:"country"`
	AdType            string `csv:"ad_type"`
	Amount            string `csv:"amount"`
	BusinessAttribute string `csv:"business_attribute"`
	SalespersonID     string `csv:"salesperson_id"`
}

// LoadFile loads a ledger CSV from disk. Source defaults to the file name.
func LoadFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	return Load(f, opts)
}

// Load parses a ledger CSV. A row error aborts the load unless
// opts.SkipInvalid is set.
func Load(in io.Reader, opts Options) (*Result, error) {
	var rows []*row
	if err := gocsv.UnmarshalCSV(newAliasReader(in), &rows); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}

	res := &Result{Transactions: make([]*domain.Transaction, 0, len(rows))}
	for i, r := range rows {
		line := i + 2
		t, coerced, rowErr := convert(r, line, opts.Context)
		if rowErr != nil {
			if !opts.SkipInvalid {
				return nil, rowErr
			}
			res.Skipped = append(res.Skipped, rowErr)
			continue
		}
		if coerced {
			res.CoercedAmount++
		}
		if t.TxID == "" {
			t.TxID = idhash.ComputeTransactionID(opts.Source, line, t)
		}
		res.Transactions = append(res.Transactions, t)
	}

	return res, nil
}

// convert validates one row. coerced is true when the amount was
// unreadable and replaced with zero.
func convert(r *row, line int, ctx domain.Context) (t *domain.Transaction, coerced bool, err *RowError) {
	fail := func(column, value, reason string) (*domain.Transaction, bool, *RowError) {
		return nil, false, &RowError{Line: line, Column: column, Value: value, Reason: reason}
	}

	period, perr := parsePeriod(r.Period)
	if perr != nil {
		return fail(ColPeriod, r.Period, perr.Error())
	}

	dept := strings.ToUpper(strings.TrimSpace(r.Department))
	if !ctx.IsValidDepartment(dept) {
		return fail(ColDepartment, r.Department, "not a configured country, AD or OTHER")
	}

	country := strings.ToUpper(strings.TrimSpace(r.Country))
	switch dept {
	case domain.DepartmentAD:
		if !ctx.HasCountry(country) {
			return fail(ColCountry, r.Country, "AD rows must be attributed to a configured country")
		}
	default:
		if country == "" {
			country = dept
		}
		if country != dept {
			return fail(ColCountry, r.Country, "must equal department "+dept)
		}
	}

	adType, ok := domain.ParseAdType(r.AdType)
	if !ok {
		return fail(ColAdType, r.AdType, "expected core/non-core or 同业广告/异业广告")
	}

	amount, coerced := parseAmount(r.Amount)
	if amount.IsNegative() {
		return fail(ColAmount, r.Amount, "must not be negative")
	}

	return &domain.Transaction{
		TxID:              strings.TrimSpace(r.TxID),
		Period:            period,
		Department:        dept,
		Country:           country,
		AdType:            adType,
		Amount:            amount,
		BusinessAttribute: strings.TrimSpace(r.BusinessAttribute),
		SalespersonID:     normalizeSalespersonID(r.SalespersonID),
	}, coerced, nil
}

// parsePeriod accepts YYYYMM, tolerating a trailing ".0" from spreadsheet exports.
func parsePeriod(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("not an integer YYYYMM")
	}
	if month := p % 100; p < 100000 || month < 1 || month > 12 {
		return 0, errors.New("not a valid YYYYMM")
	}
	return p, nil
}

// parseAmount parses a monetary value rounded to cents. Blank or
// unreadable values become zero.
func parseAmount(s string) (amount decimal.Decimal, coerced bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, true
	}
	return domain.RoundAmount(d), false
}

// normalizeSalespersonID keeps ids textual. Spreadsheet float artefacts
// like "10042.0" are trimmed; leading zeros are preserved.
func normalizeSalespersonID(s string) string {
	s = strings.TrimSpace(s)
	if head, ok := strings.CutSuffix(s, ".0"); ok {
		if _, err := strconv.ParseUint(head, 10, 64); err == nil {
			return head
		}
	}
	return s
}
