// Package export writes detail selections as downloadable files. Every
// format uses the finance-export column headers so an exported CSV loads
// back through the ledger loader unchanged.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/ledger"
	"ad-revenue-lab/internal/observability"
)

// Format is an export file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// ParseFormat parses a format name, case-insensitive. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatParquet:
		return FormatParquet, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns the download name for a detail selection,
// e.g. AU_国家：广告收入_明细_202509.csv.
func Filename(region string, m domain.Metric, period int, f Format) string {
	return fmt.Sprintf("%s_%s_明细_%d.%s", domain.NormalizeRegion(region), m.Label(), period, f)
}

// Write encodes txs to w in format f.
func Write(w io.Writer, f Format, txs []*domain.Transaction) error {
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(w, txs)
	case FormatXLSX:
		err = WriteXLSX(w, txs)
	case FormatParquet:
		err = WriteParquet(w, txs)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return err
	}
	observability.RecordExport(string(f))
	return nil
}

// WriteFile writes txs into dir/name and returns the full path.
func WriteFile(dir, name string, f Format, txs []*domain.Transaction) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)

	if f == FormatParquet {
		if err := WriteParquetFile(path, txs); err != nil {
			return "", err
		}
		observability.RecordExport(string(f))
		return path, nil
	}

	fh, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer fh.Close()

	if err := Write(fh, f, txs); err != nil {
		return "", err
	}
	return path, fh.Close()
}

// Row is the flat export shape of a transaction.
type Row struct {
	Period            int32  `csv:"所属账期" parquet:"name=period, type=INT32"`
	Department        string `csv:"3级部门" parquet:"name=department, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Country           string `csv:"国家" parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	AdType            string `csv:"广告类型" parquet:"name=ad_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Amount            string `csv:"到账金额_gbp" parquet:"name=amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	BusinessAttribute string `csv:"业务属性" parquet:"name=business_attribute, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SalespersonID     string `csv:"销售人工号" parquet:"name=salesperson_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TxID              string `csv:"-" parquet:"name=tx_id, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Rows converts transactions to export rows. Nil entries are skipped.
func Rows(txs []*domain.Transaction) []*Row {
	rows := make([]*Row, 0, len(txs))
	for _, t := range txs {
		if t == nil {
			continue
		}
		rows = append(rows, &Row{
			Period:            int32(t.Period),
			Department:        t.Department,
			Country:           t.Country,
			AdType:            t.AdType.Label(),
			Amount:            t.Amount.StringFixed(domain.AmountPrecision),
			BusinessAttribute: t.BusinessAttribute,
			SalespersonID:     t.SalespersonID,
			TxID:              t.TxID,
		})
	}
	return rows
}

// headers lists the column headers in export order.
var headers = []string{
	ledger.Labels[ledger.ColPeriod],
	ledger.Labels[ledger.ColDepartment],
	ledger.Labels[ledger.ColCountry],
	ledger.Labels[ledger.ColAdType],
	ledger.Labels[ledger.ColAmount],
	ledger.Labels[ledger.ColBusinessAttribute],
	ledger.Labels[ledger.ColSalespersonID],
}
