package core

// csv.go renders export rows as CSV text.
//
// The dialect is fixed by what recipients already import:
//   - header cells are always quoted
//   - a data cell is quoted only when it contains a comma, a double quote or
//     a newline, with inner quotes doubled
//   - lines are joined with "\n" and there is no trailing newline after the
//     last row (an empty row set leaves "header\n")
//
// Carriage returns are not treated as special and pass through unquoted.

import "strings"

// EscapedText is cell text whose double quotes have already been doubled
// by a row mapper. EncodeCSV wraps it in quotes when needed but does not
// double its quotes again.
type EscapedText string

// EncodeCSV renders headers and rows as CSV text. Cells may be strings,
// EscapedText, numbers or nil (rendered empty).
func EncodeCSV(headers []string, rows [][]any) string {
	var b strings.Builder

	for i, h := range headers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(h)
		b.WriteByte('"')
	}
	b.WriteByte('\n')

	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(encodeCell(cell))
		}
	}

	return b.String()
}

func encodeCell(cell any) string {
	if escaped, ok := cell.(EscapedText); ok {
		s := string(escaped)
		if needsQuoting(s) {
			return `"` + s + `"`
		}
		return s
	}

	s := textOf(cell)
	if needsQuoting(s) {
		return `"` + EscapeQuotes(s) + `"`
	}
	return s
}

func needsQuoting(s string) bool {
	return strings.ContainsAny(s, ",\"\n")
}
