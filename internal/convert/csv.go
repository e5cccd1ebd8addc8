package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVConverter renders CSV files as sections of labelled rows, batched so
// very wide files still produce navigable sections.
type CSVConverter struct{}

const csvBatchSize = 20

func (c *CSVConverter) ToMarkdown(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	var sb strings.Builder
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		// 1-indexed source rows, skipping the header.
		fmt.Fprintf(&sb, "## Rows %d-%d\n\n", i+2, end+1)
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					sb.WriteString(headers[j] + ": " + cell)
				} else {
					sb.WriteString(cell)
				}
				if j < len(row)-1 {
					sb.WriteString(", ")
				}
			}
			sb.WriteString("\n")
		}
	}

	return normalizeNewlines(sb.String()), nil
}
