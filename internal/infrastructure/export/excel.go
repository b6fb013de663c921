// Package export renders bills into downloadable spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/i18n"
)

// SheetName is the name of the only sheet of the workbook
const SheetName = "Bills"

// ContentType is the MIME type of the produced workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var columns = []struct {
	code  string
	width float64
}{
	{"col_type", 24},
	{"col_name", 30},
	{"col_date", 14},
	{"col_amount", 12},
	{"field_vat", 10},
	{"field_pct", 8},
	{"col_status", 14},
	{"field_commentary", 40},
	{"field_file", 40},
}

// BillsWorkbook writes bill views as an xlsx workbook
type BillsWorkbook struct {
	lang string
}

// NewBillsWorkbook creates a BillsWorkbook with headers in lang
func NewBillsWorkbook(lang string) *BillsWorkbook {
	return &BillsWorkbook{lang: lang}
}

// Write renders views in their given order to w
func (b *BillsWorkbook) Write(w io.Writer, views []*entity.BillView) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := b.writeHeader(file); err != nil {
		return err
	}

	for i, view := range views {
		row := i + 2
		values := []interface{}{
			view.Type,
			view.Name,
			view.DisplayDate,
			view.Amount,
			view.VAT,
			view.Pct,
			view.DisplayStatus,
			view.Commentary,
			view.FileURL,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", cell, err)
			}
		}
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (b *BillsWorkbook) writeHeader(file *excelize.File) error {
	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(SheetName, cell, i18n.T(b.lang, column.code)); err != nil {
			return fmt.Errorf("failed to set header %s: %w", cell, err)
		}

		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := file.SetColWidth(SheetName, colName, colName, column.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := file.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return file.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
