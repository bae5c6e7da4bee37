package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFColor represents an RGB color
type PDFColor struct {
	R, G, B int
}

// PDFOptions configures the PDF table
type PDFOptions struct {
	PageSize       string
	Orientation    string
	FontFamily     string
	FontSize       float64
	TitleFontSize  float64
	HeaderColor    PDFColor
	AlternateColor PDFColor
	Margin         float64
	DateFormat     string
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Orientation:    "L",
		FontFamily:     "Arial",
		FontSize:       8,
		TitleFontSize:  14,
		HeaderColor:    PDFColor{R: 68, G: 114, B: 196},
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		Margin:         10,
		DateFormat:     "2006-01-02 15:04",
	}
}

type pdfTable struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
	widths  []float64
}

func writePDF(w io.Writer, table Table, options PDFOptions) error {
	pdf := gofpdf.New(options.Orientation, "mm", options.PageSize, "")
	pdf.SetMargins(options.Margin, options.Margin, options.Margin)
	pdf.SetAutoPageBreak(false, options.Margin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(options.FontFamily, "", 7)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	t := &pdfTable{pdf: pdf, options: options}
	pdf.AddPage()

	pdf.SetFont(options.FontFamily, "B", options.TitleFontSize)
	pdf.CellFormat(0, 10, table.Title, "", 1, "C", false, 0, "")
	pdf.SetFont(options.FontFamily, "", options.FontSize)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s - %d records",
		time.Now().UTC().Format(options.DateFormat), len(table.Rows)), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	t.widths = t.columnWidths(len(table.Columns))
	t.header(table.labels())

	_, pageHeight := pdf.GetPageSize()
	for i, row := range table.Rows {
		if pdf.GetY()+7 > pageHeight-options.Margin-10 {
			pdf.AddPage()
			t.header(table.labels())
		}
		if i%2 == 1 {
			pdf.SetFillColor(options.AlternateColor.R, options.AlternateColor.G, options.AlternateColor.B)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, col := range table.Columns {
			val := t.fit(t.format(row[col.Key]), t.widths[j])
			pdf.CellFormat(t.widths[j], 7, val, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf.Output(w)
}

// columnWidths gives the text column most of the page and splits the rest
func (t *pdfTable) columnWidths(n int) []float64 {
	pageWidth, _ := t.pdf.GetPageSize()
	available := pageWidth - 2*t.options.Margin
	widths := make([]float64, n)
	if n == 0 {
		return widths
	}
	if n == 1 {
		widths[0] = available
		return widths
	}
	widths[1] = available * 0.4
	rest := (available - widths[1]) / float64(n-1)
	for i := range widths {
		if i != 1 {
			widths[i] = rest
		}
	}
	return widths
}

func (t *pdfTable) header(labels []string) {
	c := t.options.HeaderColor
	t.pdf.SetFont(t.options.FontFamily, "B", t.options.FontSize)
	t.pdf.SetFillColor(c.R, c.G, c.B)
	t.pdf.SetTextColor(255, 255, 255)
	for i, label := range labels {
		t.pdf.CellFormat(t.widths[i], 8, label, "1", 0, "C", true, 0, "")
	}
	t.pdf.Ln(-1)
	t.pdf.SetFont(t.options.FontFamily, "", t.options.FontSize)
	t.pdf.SetTextColor(0, 0, 0)
}

func (t *pdfTable) format(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(t.options.DateFormat)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// fit trims s so it renders inside width
func (t *pdfTable) fit(s string, width float64) string {
	tr := t.pdf.UnicodeTranslatorFromDescriptor("")
	s = tr(s)
	if t.pdf.GetStringWidth(s) <= width-2 {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && t.pdf.GetStringWidth(string(runes)+"...") > width-2 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
