package ledger

import "strings"

// Canonical column names. Finance exports use the Chinese headers; both
// spellings are accepted on load.
const (
	ColTxID              = "tx_id"
	ColPeriod            = "period"
	ColDepartment        = "department"
	ColCountry           = "country"
	ColAdType            = "ad_type"
	ColAmount            = "amount"
	ColBusinessAttribute = "business_attribute"
	ColSalespersonID     = "salesperson_id"
)

// Labels holds the finance-export header for each column.
var Labels = map[string]string{
	ColPeriod:            "所属账期",
	ColDepartment:        "3级部门",
	ColCountry:           "国家",
	ColAdType:            "广告类型",
	ColAmount:            "到账金额_gbp",
	ColBusinessAttribute: "业务属性",
	ColSalespersonID:     "销售人工号",
}

// requiredColumns must be present in every ledger header. country is
// optional: it can be derived for non-AD departments.
var requiredColumns = []string{
	ColPeriod,
	ColDepartment,
	ColAdType,
	ColAmount,
	ColBusinessAttribute,
	ColSalespersonID,
}

var headerAliases = func() map[string]string {
	m := map[string]string{
		ColTxID:              ColTxID,
		ColPeriod:            ColPeriod,
		ColDepartment:        ColDepartment,
		ColCountry:           ColCountry,
		ColAdType:            ColAdType,
		ColAmount:            ColAmount,
		ColBusinessAttribute: ColBusinessAttribute,
		ColSalespersonID:     ColSalespersonID,
		"amount_gbp":         ColAmount,
		"dept":               ColDepartment,
	}
	for col, label := range Labels {
		m[label] = col
	}
	return m
}()

// canonicalHeader maps a raw header cell to its canonical column name.
// Unknown headers are returned lower-cased and trimmed.
func canonicalHeader(raw string) string {
	h := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if col, ok := headerAliases[h]; ok {
		return col
	}
	if col, ok := headerAliases[strings.ToLower(h)]; ok {
		return col
	}
	return strings.ToLower(h)
}
