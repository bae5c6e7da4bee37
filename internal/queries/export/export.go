// Package export renders verification history as downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is a supported download format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ParseFormat resolves a format name; "excel" is accepted for xlsx
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", name)
}

// ContentType is the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Filename builds the attachment name for an export generated at t
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("verification-history-%s.%s", t.UTC().Format("20060102-150405"), string(f))
}

// Column is one exported field
type Column struct {
	Key   string
	Label string
}

// Row maps column keys to values
type Row map[string]interface{}

// Table is the data handed to every writer
type Table struct {
	Title   string
	Columns []Column
	Rows    []Row
}

func (t Table) keys() []string {
	keys := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}

func (t Table) labels() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}

// Write renders table to w in the given format
func Write(w io.Writer, format Format, table Table) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, table, DefaultCSVOptions())
	case FormatExcel:
		return writeExcel(w, table, DefaultExcelOptions())
	case FormatPDF:
		return writePDF(w, table, DefaultPDFOptions())
	}
	return fmt.Errorf("unsupported export format %q", format)
}
