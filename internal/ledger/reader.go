package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// aliasReader is a gocsv.CSVReader that rewrites the header row to
// canonical column names and checks the required columns are present.
type aliasReader struct {
	r          *csv.Reader
	headerRead bool
}

func newAliasReader(in io.Reader) *aliasReader {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return &aliasReader{r: r}
}

func (a *aliasReader) Read() ([]string, error) {
	record, err := a.r.Read()
	if err != nil {
		if !a.headerRead && errors.Is(err, io.EOF) {
			return nil, ErrEmptyLedger
		}
		return nil, err
	}
	if a.headerRead {
		return record, nil
	}

	a.headerRead = true
	header := make([]string, len(record))
	for i, cell := range record {
		header[i] = canonicalHeader(cell)
	}

	var missing []string
	for _, col := range requiredColumns {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrBadHeader, strings.Join(missing, ", "))
	}
	return header, nil
}

func (a *aliasReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := a.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}
