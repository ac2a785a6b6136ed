package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Column describes one report column. Key addresses row values, Label is the
// printed heading. Width is a relative weight used by renderers that divide
// limited page space; zero takes an even share.
type Column struct {
	Key   string
	Label string
	Width float64
}

// Dataset is tabular report content: ordered columns plus rows keyed by
// column key.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// CSVExporter renders datasets into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV bytes for the dataset. Output starts with a UTF-8 BOM
// so spreadsheet tools decode reviewer names and rejection reasons correctly.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	buf.WriteString("\ufeff")
	writer := csv.NewWriter(buf)

	labels := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		labels[i] = col.Label
	}
	if err := writer.Write(labels); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(data.Columns))
	for _, row := range data.Rows {
		for i, col := range data.Columns {
			record[i] = row[col.Key]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
