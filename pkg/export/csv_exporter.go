package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// Row maps a column name to its rendered cell value.
type Row map[string]string

// Dataset is the renderer-agnostic table an export is built from. Columns
// fixes both the order and the subset of row keys that appear in the output.
type Dataset struct {
	Title       string
	GeneratedAt time.Time
	Columns     []string
	Rows        []Row
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("export: dataset has no columns")
	}
	return nil
}

// CSVExporter renders a Dataset as UTF-8 CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the column header followed by one record per row. Cells for
// columns a row does not carry come out empty. The output starts with a BOM
// because Excel will not detect UTF-8 without one.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	if err := w.Write(data.Columns); err != nil {
		return nil, fmt.Errorf("export: csv header: %w", err)
	}
	record := make([]string, len(data.Columns))
	for _, row := range data.Rows {
		for i, col := range data.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: csv flush: %w", err)
	}
	return buf.Bytes(), nil
}
