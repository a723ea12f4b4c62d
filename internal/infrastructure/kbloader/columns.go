package kbloader

import (
	"strconv"
	"strings"
)

var (
	badColumnNames = map[string]struct{}{
		"konglish": {}, "wrong": {}, "bad": {}, "input": {}, "term": {}, "word": {},
		"pattern": {}, "phrase": {}, "error": {}, "typo": {}, "original": {},
	}
	goodColumnNames = map[string]struct{}{
		"natural": {}, "right": {}, "good": {}, "output": {}, "rewrite": {},
		"correction": {}, "fix": {}, "native": {}, "suggestion": {}, "target": {},
	}
	// Checked in priority order.
	contextColumnNames = []string{"context", "example", "desc", "note", "explain", "korean", "source"}
)

type columns struct {
	bad, good int
	// context is -1 when the table has no context column.
	context int
}

type table struct {
	header []string
	rows   [][]string
}

func (t table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// inferColumns picks bad/good columns by header name, falling back to the
// first two text columns. ok is false when no pair can be found.
func inferColumns(t table) (columns, bool) {
	cols := columns{bad: -1, good: -1, context: -1}
	lower := make([]string, len(t.header))
	for i, h := range t.header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for i, name := range lower {
		if _, ok := badColumnNames[name]; ok && cols.bad < 0 {
			cols.bad = i
		}
		if _, ok := goodColumnNames[name]; ok && cols.good < 0 {
			cols.good = i
		}
	}

	if cols.bad < 0 || cols.good < 0 {
		var textual []int
		for i := range t.header {
			if t.isTextual(i) {
				textual = append(textual, i)
			}
		}
		if len(textual) >= 2 {
			if cols.bad < 0 {
				cols.bad = textual[0]
			}
			if cols.good < 0 {
				cols.good = textual[1]
			}
		}
	}

	for _, want := range contextColumnNames {
		for i, name := range lower {
			if name == want {
				cols.context = i
				break
			}
		}
		if cols.context >= 0 {
			break
		}
	}

	return cols, cols.bad >= 0 && cols.good >= 0 && cols.bad != cols.good
}

// isTextual reports whether a column holds at least one non-numeric value.
func (t table) isTextual(col int) bool {
	for _, row := range t.rows {
		v := strings.TrimSpace(t.cell(row, col))
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return true
		}
	}
	return false
}
