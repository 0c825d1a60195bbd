// Package export renders cash flows as downloadable spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cashflow/internal/core"
)

// Supported download formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "CashFlows"

// Header lists the exported columns in order.
var Header = []string{"id", "type", "source", "label", "amount", "description", "createdAt", "updatedAt"}

// Row returns the exported column values of c.
func Row(c core.CashFlow) []string {
	return []string{c.ID, c.Type, c.Source, c.Label, c.Amount.String(), c.Description, c.CreatedAt, c.UpdatedAt}
}

// ContentType returns the MIME type of format, and false when the format
// is not supported.
func ContentType(format string) (string, bool) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", true
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true
	default:
		return "", false
	}
}

// Write renders records in format to w.
func Write(w io.Writer, format string, records []core.CashFlow) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatXLSX:
		return WriteXLSX(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func WriteCSV(w io.Writer, records []core.CashFlow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range records {
		if err := cw.Write(Row(c)); err != nil {
			return fmt.Errorf("write csv row %s: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook. Amounts are stored as numbers.
func WriteXLSX(w io.Writer, records []core.CashFlow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.ID, c.Type, c.Source, c.Label, c.Amount.InexactFloat64(), c.Description, c.CreatedAt, c.UpdatedAt}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %s: %w", c.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
