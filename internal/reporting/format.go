package reporting

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ad-revenue-lab/internal/domain"
)

var printer = message.NewPrinter(language.English)

// FormatValue renders a metric value for display: headcounts as integers,
// money with two decimals and thousands separators.
func FormatValue(m domain.Metric, v decimal.Decimal) string {
	if m.IsHeadcount() {
		return printer.Sprintf("%d", v.IntPart())
	}
	return FormatMoney(v)
}

// FormatMoney renders v with two decimals and thousands separators.
func FormatMoney(v decimal.Decimal) string {
	fixed := v.StringFixed(domain.AmountPrecision)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := decimal.NewFromString(whole)
	if err != nil {
		return sign + fixed
	}
	return sign + printer.Sprintf("%d", n.IntPart()) + "." + frac
}

// RawValue renders a metric value for machine output: headcounts as
// integers, everything else with two decimals.
func RawValue(m domain.Metric, v decimal.Decimal) string {
	if m.IsHeadcount() {
		return v.StringFixed(0)
	}
	return v.StringFixed(domain.AmountPrecision)
}
