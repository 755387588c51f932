package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	columnGap = "  "

	// minLastColumn is the narrowest the trailing column is squeezed to
	// when a table overflows the line width.
	minLastColumn = 12
)

// Table renders rows in aligned columns under a bold header. Cells may
// already carry ANSI styling.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
	right   map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visualLen(h)
	}
	return &Table{headers: headers, widths: widths, right: map[int]bool{}}
}

// AlignRight right-aligns the given zero-based columns, typically numbers.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// AddRow adds a row. Missing values render empty; extras are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		if w := visualLen(row[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the formatted table. When the table is wider than the
// configured line width the last column is truncated with an ellipsis.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	widths := t.fitWidths(LineWidth())
	headerStyle := StyleHeader

	var sb strings.Builder
	writeRow := func(cells []string, render func(string) string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString(columnGap)
			}
			cell = ansi.Truncate(cell, widths[i], "…")
			if t.right[i] {
				cell = padLeft(cell, widths[i])
			} else if i < len(cells)-1 {
				cell = pad(cell, widths[i])
			}
			sb.WriteString(render(cell))
		}
		sb.WriteString("\n")
	}

	writeRow(t.headers, func(s string) string { return headerStyle.Render(s) })
	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	writeRow(rules, func(s string) string { return StyleMuted.Render(s) })
	for _, row := range t.rows {
		writeRow(row, func(s string) string { return s })
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

// fitWidths shrinks the last column so a row fits in limit columns.
func (t *Table) fitWidths(limit int) []int {
	widths := append([]int(nil), t.widths...)
	if limit <= 0 {
		return widths
	}
	total := len(columnGap) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	last := len(widths) - 1
	if over := total - limit; over > 0 {
		widths[last] -= over
		if floor := min(minLastColumn, t.widths[last]); widths[last] < floor {
			widths[last] = floor
		}
	}
	return widths
}

// visualLen returns the printed width of s, ignoring ANSI escape codes.
func visualLen(s string) int {
	return lipgloss.Width(s)
}

// pad right-pads s to the given printed width.
func pad(s string, width int) string {
	if n := visualLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// padLeft left-pads s to the given printed width.
func padLeft(s string, width int) string {
	if n := visualLen(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
