package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 190.0
	pdfRowHeight  = 7.0
	pdfBreakAtY   = 270.0
	pdfMaxCellLen = 48
)

// PDFExporter renders a Dataset as a paginated A4 table.
type PDFExporter struct{}

// NewPDFExporter builds a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays out the title, the generation timestamp and a striped table.
// The column header repeats after every page break.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 15)
		pdf.CellFormat(0, 9, data.Title, "", 1, "L", false, 0, "")
	}
	if !data.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		stamp := data.GeneratedAt.UTC().Format("Generated 2006-01-02 15:04 UTC")
		pdf.CellFormat(0, 5, stamp, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(3)

	colWidth := pdfPageWidth / float64(len(data.Columns))
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(225, 231, 239)
		for _, col := range data.Columns {
			pdf.CellFormat(colWidth, pdfRowHeight, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		pdf.SetFillColor(245, 247, 250)
	}
	writeHeader()

	for i, row := range data.Rows {
		if pdf.GetY() > pdfBreakAtY {
			pdf.AddPage()
			writeHeader()
		}
		stripe := i%2 == 1
		for _, col := range data.Columns {
			pdf.CellFormat(colWidth, pdfRowHeight, clip(row[col]), "1", 0, "L", stripe, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(pdfPageWidth, pdfRowHeight, "No records", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// clip keeps cells from overflowing their fixed-width columns.
func clip(value string) string {
	if len(value) <= pdfMaxCellLen {
		return value
	}
	return value[:pdfMaxCellLen-3] + "..."
}
