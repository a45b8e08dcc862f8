package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of an uploaded workbook into the same
// header-keyed rows the CSV parser produces. The first non-empty row is
// the header; empty rows are skipped.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	var headers []string
	var rows []Row
	dataLine := 0

	for _, record := range records {
		if rowEmpty(record) {
			continue
		}

		if headers == nil {
			headers = make([]string, len(record))
			for i, cell := range record {
				headers[i] = strings.ToLower(strings.TrimSpace(cell))
			}
			if missing := missingColumns(headers); len(missing) > 0 {
				return nil, &MissingColumnsError{Missing: missing}
			}
			continue
		}

		dataLine++
		row := Row{Line: dataLine, Headers: headers, Fields: make(map[string]string, len(headers))}
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(record) {
				row.Fields[header] = record[i]
			} else {
				row.Fields[header] = ""
			}
		}
		rows = append(rows, row)
	}

	if headers == nil {
		return nil, fmt.Errorf("sheet contains no header row")
	}

	return rows, nil
}

func rowEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
