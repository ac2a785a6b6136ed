package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Usable width of an A4 landscape page inside 10mm margins.
const pdfUsableWidth = 277.0

// PDFExporter renders datasets into a tabular PDF. Review trails are wide,
// so the table is laid out landscape with column widths weighted per
// Column.Width and long values trimmed to their cell.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body. The
// header row repeats on every page.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	widths := columnWidths(data.Columns)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	header := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(235, 235, 235)
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], 7, col.Label, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	pdf.SetFont("Arial", "", 7)
	for _, row := range data.Rows {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 7)
		}
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], 6, fitCell(pdf, row[col.Key], widths[i]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths scales relative weights to the printable width. Columns
// without a weight take an even share.
func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, col := range cols {
		if col.Width > 0 {
			total += col.Width
		} else {
			total++
		}
	}
	widths := make([]float64, len(cols))
	for i, col := range cols {
		w := col.Width
		if w <= 0 {
			w = 1
		}
		widths[i] = pdfUsableWidth * w / total
	}
	return widths
}

// fitCell trims a value until it fits its column, keeping a trailing marker
// so truncation is visible on the page.
func fitCell(pdf *gofpdf.Fpdf, value string, width float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(value) <= width-pad {
		return value
	}
	for len(value) > 0 && pdf.GetStringWidth(value+"...") > width-pad {
		value = value[:len(value)-1]
	}
	return value + "..."
}
