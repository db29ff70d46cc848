// Package sheet turns spreadsheet exports into weekly sections.
package sheet

import "strings"

// Row is one line of the sheet split into trimmed fields.
type Row []string

// Field returns the i-th field or "" when the row is shorter.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Tokenize splits CSV text into rows. It never fails: unbalanced quotes
// simply leave the rest of the line in one field.
func Tokenize(text string) []Row {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, SplitLine(line))
	}
	return rows
}

// SplitLine splits a single line on commas outside double quotes.
// A quote always toggles quoting and is dropped; "" is not an escape.
func SplitLine(line string) Row {
	var (
		row      Row
		field    strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			row = append(row, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(row, strings.TrimSpace(field.String()))
}
