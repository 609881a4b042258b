package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth bounds a column so long concept names do not push the
// numeric columns off screen.
const maxCellWidth = 32

// textTable is a plain-text table with a rule under the header row.
type textTable struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func (t textTable) columns() int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	return n
}

func (t textTable) widths() []int {
	widths := make([]int, t.columns())
	measure := func(row []string) {
		for i := range widths {
			widths[i] = max(widths[i], runewidth.StringWidth(clip(cellAt(row, i))))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

// lines renders the header, a rule, and one line per row.
func (t textTable) lines() []string {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+2)
	if len(t.headers) > 0 {
		out = append(out, t.format(t.headers, widths))
		rule := make([]string, len(widths))
		for i, w := range widths {
			rule[i] = strings.Repeat("─", w)
		}
		out = append(out, strings.Join(rule, " "))
	}
	for _, row := range t.rows {
		out = append(out, t.format(row, widths))
	}
	return out
}

func (t textTable) format(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		cell := clip(cellAt(row, i))
		if t.right[i] {
			cells[i] = runewidth.FillLeft(cell, w)
		} else {
			cells[i] = runewidth.FillRight(cell, w)
		}
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}

func (t textTable) writeTo(w io.Writer) error {
	for _, line := range t.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func clip(cell string) string {
	return runewidth.Truncate(cell, maxCellWidth, "…")
}
