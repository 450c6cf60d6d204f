package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TableFormatter helps create formatted tables for CLI output
type TableFormatter struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTableFormatter creates a new table formatter with headers
func NewTableFormatter(headers ...string) *TableFormatter {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &TableFormatter{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row to the table. Missing cells are left blank and extra
// cells are dropped.
func (t *TableFormatter) AddRow(cells ...string) *TableFormatter {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
	for i, cell := range row {
		if n := utf8.RuneCountInString(cell); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	return t
}

// Len returns the number of rows added
func (t *TableFormatter) Len() int {
	return len(t.rows)
}

// String returns the formatted table
func (t *TableFormatter) String() string {
	var sb strings.Builder

	t.writeBorder(&sb, "┌", "┬", "┐")
	t.writeRow(&sb, t.headers)
	t.writeBorder(&sb, "├", "┼", "┤")
	for _, row := range t.rows {
		t.writeRow(&sb, row)
	}
	t.writeBorder(&sb, "└", "┴", "┘")

	return sb.String()
}

func (t *TableFormatter) writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("│")
	for i, cell := range cells {
		pad := t.widths[i] - utf8.RuneCountInString(cell)
		sb.WriteString(fmt.Sprintf(" %s%s │", cell, strings.Repeat(" ", pad)))
	}
	sb.WriteString("\n")
}

func (t *TableFormatter) writeBorder(sb *strings.Builder, left, middle, right string) {
	sb.WriteString(left)
	for i, w := range t.widths {
		sb.WriteString(strings.Repeat("─", w+2))
		if i < len(t.widths)-1 {
			sb.WriteString(middle)
		}
	}
	sb.WriteString(right)
	sb.WriteString("\n")
}
