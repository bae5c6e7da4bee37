package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures workbook output
type ExcelOptions struct {
	SheetName      string
	FreezeHeader   bool
	AutoFilter     bool
	HeaderFill     string
	HeaderFont     string
	MinColumnWidth float64
	MaxColumnWidth float64
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:      "History",
		FreezeHeader:   true,
		AutoFilter:     true,
		HeaderFill:     "4472C4",
		HeaderFont:     "FFFFFF",
		MinColumnWidth: 10,
		MaxColumnWidth: 60,
	}
}

func writeExcel(w io.Writer, table Table, options ExcelOptions) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := options.SheetName
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: options.HeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{options.HeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dateStyle, err := file.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	widths := make([]float64, len(table.Columns))
	for i, col := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, col.Label); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		_ = file.SetCellStyle(sheet, cell, cell, headerStyle)
		widths[i] = float64(len(col.Label))
	}

	for r, row := range table.Rows {
		for i, col := range table.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			val := row[col.Key]
			if p, ok := val.(*string); ok {
				val = ""
				if p != nil {
					val = *p
				}
			}
			if err := file.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
			if _, ok := val.(time.Time); ok {
				_ = file.SetCellStyle(sheet, cell, cell, dateStyle)
			}
			if width := float64(len(fmt.Sprintf("%v", val))) * 1.2; width > widths[i] {
				widths[i] = width
			}
		}
	}

	for i, width := range widths {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		width = max(options.MinColumnWidth, min(width, options.MaxColumnWidth))
		_ = file.SetColWidth(sheet, colName, colName, width)
	}

	if options.FreezeHeader {
		_ = file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	if options.AutoFilter && len(table.Columns) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(table.Columns), 1)
		if err := file.AutoFilter(sheet, "A1:"+lastCol, nil); err != nil {
			return fmt.Errorf("failed to set auto filter: %w", err)
		}
	}

	return file.Write(w)
}
