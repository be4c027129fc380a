package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"ad-revenue-lab/internal/domain"
)

// utf8BOM prefixes every CSV export.
const utf8BOM = "\ufeff"

// WriteCSV writes txs as CSV with a UTF-8 BOM and finance-export headers.
// An empty selection still writes the header line.
func WriteCSV(w io.Writer, txs []*domain.Transaction) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	rows := Rows(txs)
	out := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if len(rows) == 0 {
		if err := out.Write(headers); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		out.Flush()
		return out.Error()
	}

	if err := gocsv.MarshalCSV(rows, out); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}
