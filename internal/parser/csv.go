package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inddraft/internal/filedoc"
	"inddraft/internal/numfmt"
	"inddraft/internal/report"
)

// CSVParser handles CSV study data files. The whole sheet becomes a single
// report.Table; a short text section describes its shape so excerpts still
// carry something useful when the table itself is not forwarded.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*filedoc.File, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := strings.TrimSuffix(filename, ".csv")
	f := &filedoc.File{Title: title}
	if len(records) == 0 {
		return f, nil
	}

	headers := records[0]
	rows := records[1:]

	f.Tables = append(f.Tables, report.Table{
		Number:  1,
		Caption: title,
		Headers: headers,
		Rows:    rows,
	})

	// Render a bounded preview of the data as text for prompt excerpts.
	const previewRows = 20
	var text strings.Builder
	text.WriteString("Columns: " + strings.Join(headers, ", ") + "\n")
	text.WriteString(fmt.Sprintf("Data rows: %d\n\n", len(rows)))
	for i, row := range rows {
		if i >= previewRows {
			text.WriteString(fmt.Sprintf("... (%d more rows)\n", len(rows)-previewRows))
			break
		}
		for j, cell := range row {
			if j > 0 {
				text.WriteString(", ")
			}
			if j < len(headers) {
				text.WriteString(headers[j] + ": " + cell)
			} else {
				text.WriteString(cell)
			}
		}
		text.WriteString("\n")
	}

	if stats := columnStats(headers, rows); stats != "" {
		text.WriteString("\nColumn statistics:\n")
		text.WriteString(stats)
	}

	f.Sections = append(f.Sections, &filedoc.Section{
		Title: title,
		Text:  text.String(),
	})
	return f, nil
}

// columnStats summarizes every fully numeric column as "mean ± SD" and
// "mean (CV%)" lines, the forms used in PK data tables.
func columnStats(headers []string, rows [][]string) string {
	var sb strings.Builder
	for j, h := range headers {
		var values []float64
		numeric := true
		for _, row := range rows {
			if j >= len(row) || strings.TrimSpace(row[j]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				numeric = false
				break
			}
			values = append(values, v)
		}
		if !numeric || len(values) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s, CV %s, n=%d\n",
			h, numfmt.MeanSD(values), numfmt.MeanCV(values), len(values)))
	}
	return sb.String()
}
