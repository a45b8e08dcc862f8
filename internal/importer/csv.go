package importer

import (
	"fmt"
	"sort"
	"strings"
)

// RequiredColumns must all be present (case-insensitive substring match
// against the header row) before any row is processed.
var RequiredColumns = []string{"domain", "price", "country", "language", "category"}

// Row is one parsed data row: lower-cased header name → raw string value.
// Headers keeps the header names in input order so substring lookups stay
// deterministic. Line is the 1-based data row number, counting from the
// first row after the header.
type Row struct {
	Line    int
	Headers []string
	Fields  map[string]string
}

// Get returns the value for a column, preferring an exact header match and
// falling back to the first header (in input order) containing name as a
// substring.
func (r Row) Get(name string) string {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	for _, header := range r.headerOrder() {
		if strings.Contains(header, name) {
			return r.Fields[header]
		}
	}
	return ""
}

// headerOrder falls back to sorted field names for rows built without a
// header list, as tests do.
func (r Row) headerOrder() []string {
	if len(r.Headers) > 0 {
		return r.Headers
	}
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the row has a non-empty value for a column.
func (r Row) Has(name string) bool {
	return strings.TrimSpace(r.Get(name)) != ""
}

// MissingColumnsError names the required columns absent from the header.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ParseCSV splits raw delimited text into header-keyed rows. Blank lines
// are skipped; the first non-blank line is the header. Fields opened with
// a quote absorb delimiters until the matching closing quote, and a doubled
// quote inside a quoted field is an escaped literal quote.
func ParseCSV(input string) ([]Row, error) {
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")

	var headers []string
	var rows []Row
	dataLine := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := parseCSVLine(line)

		if headers == nil {
			headers = make([]string, len(fields))
			for i, f := range fields {
				headers[i] = strings.ToLower(strings.TrimSpace(f))
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
			if i < len(fields) {
				row.Fields[header] = fields[i]
			} else {
				row.Fields[header] = ""
			}
		}
		rows = append(rows, row)
	}

	if headers == nil {
		return nil, fmt.Errorf("input contains no header row")
	}

	return rows, nil
}

// parseCSVLine is a character scan, not a full RFC-4180 reader: quoted
// fields absorb commas, and "" inside quotes yields a literal quote.
func parseCSVLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	fields = append(fields, field.String())

	return fields
}

func missingColumns(headers []string) []string {
	var missing []string
	for _, required := range RequiredColumns {
		found := false
		for _, header := range headers {
			if strings.Contains(header, required) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, required)
		}
	}
	return missing
}
