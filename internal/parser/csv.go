package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"contractparser/internal/docblock"
)

// CSVParser handles CSV files. The whole file maps to one table block.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]docblock.Block, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var rows [][]string
	for _, record := range records {
		filled := false
		for _, cell := range record {
			if cleanNoise(cell) != "" {
				filled = true
				break
			}
		}
		if filled {
			rows = append(rows, record)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return []docblock.Block{{Type: docblock.Table, Rows: rows}}, nil
}
