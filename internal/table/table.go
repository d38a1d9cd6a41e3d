// Package table renders rows of text as a bordered, aligned table. Cells
// may carry ANSI color codes; widths are computed on the visible text so
// colored cells do not break alignment.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Alignment positions cell text within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Table accumulates rows and renders them once.
type Table struct {
	w           io.Writer
	header      []string
	headerAlign []Alignment
	columnAlign []Alignment
	rows        [][]string
}

// NewTable returns a table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) {
	t.header = header
}

// WithHeaderAlignment sets per-column alignment for the header row.
// Columns without an entry align left.
func (t *Table) WithHeaderAlignment(align []Alignment) {
	t.headerAlign = align
}

// WithColumnAlignment sets per-column alignment for data rows.
func (t *Table) WithColumnAlignment(align []Alignment) {
	t.columnAlign = align
}

// Append adds one data row.
func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

// Render writes the bordered table, header first if one was set.
func (t *Table) Render() {
	widths := t.widths()
	border := renderBorder(widths)
	if len(t.header) > 0 {
		fmt.Fprintln(t.w, border)
		fmt.Fprintln(t.w, renderRow(t.header, widths, t.headerAlign))
	}
	fmt.Fprintln(t.w, border)
	for _, row := range t.rows {
		fmt.Fprintln(t.w, renderRow(row, widths, t.columnAlign))
	}
	fmt.Fprintln(t.w, border)
}

func (t *Table) columns() int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

func (t *Table) widths() []int {
	widths := make([]int, t.columns())
	measure := func(row []string) {
		for i, cell := range row {
			if w := visibleWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func renderBorder(widths []int) string {
	var sb strings.Builder
	for _, width := range widths {
		sb.WriteString("+")
		sb.WriteString(strings.Repeat("-", width+2))
	}
	sb.WriteString("+")
	return sb.String()
}

func renderRow(cells []string, widths []int, align []Alignment) string {
	var sb strings.Builder
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		a := AlignLeft
		if i < len(align) {
			a = align[i]
		}
		sb.WriteString("| ")
		sb.WriteString(pad(cell, width, a))
		sb.WriteString(" ")
	}
	sb.WriteString("|")
	return sb.String()
}

func pad(cell string, width int, align Alignment) string {
	gap := width - visibleWidth(cell)
	if gap <= 0 {
		return cell
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + cell
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func visibleWidth(s string) int {
	return len(stripAnsi(s))
}
