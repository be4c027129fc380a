package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ad-revenue-lab/internal/domain"
)

// SheetName is the worksheet holding exported rows.
const SheetName = "明细"

// WriteXLSX writes txs as a single-sheet workbook. Salesperson ids are
// stored as text cells so leading zeros survive.
func WriteXLSX(w io.Writer, txs []*domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range Rows(txs) {
		line := i + 2
		cells := []struct {
			col int
			set func(cell string) error
		}{
			{1, func(c string) error { return f.SetCellInt(SheetName, c, int(r.Period)) }},
			{2, func(c string) error { return f.SetCellStr(SheetName, c, r.Department) }},
			{3, func(c string) error { return f.SetCellStr(SheetName, c, r.Country) }},
			{4, func(c string) error { return f.SetCellStr(SheetName, c, r.AdType) }},
			{5, func(c string) error { return setAmount(f, c, r.Amount) }},
			{6, func(c string) error { return f.SetCellStr(SheetName, c, r.BusinessAttribute) }},
			{7, func(c string) error { return f.SetCellStr(SheetName, c, r.SalespersonID) }},
		}
		for _, c := range cells {
			cell, _ := excelize.CoordinatesToCellName(c.col, line)
			if err := c.set(cell); err != nil {
				return fmt.Errorf("write row %d: %w", line, err)
			}
		}
		amountCell, _ := excelize.CoordinatesToCellName(5, line)
		if err := f.SetCellStyle(SheetName, amountCell, amountCell, amountStyle); err != nil {
			return fmt.Errorf("style row %d: %w", line, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "G", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setAmount(f *excelize.File, cell, amount string) error {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return f.SetCellStr(SheetName, cell, amount)
	}
	return f.SetCellFloat(SheetName, cell, d.InexactFloat64(), domain.AmountPrecision, 64)
}
