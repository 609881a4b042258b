// Package layout maps token indices to wrapped screen positions.
package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/codetype/internal/tokenizer"
)

// ErrOutOfRange is returned for positions outside the laid out text.
var ErrOutOfRange = errors.New("index out of range")

// Metrics holds the fixed cell size of a display mode.
type Metrics struct {
	CharWidth  float64
	LineHeight float64
	TabWidth   int
}

var (
	// Terminal lays out in character cells.
	Terminal = Metrics{CharWidth: 1, LineHeight: 1, TabWidth: 4}
	// Editor lays out in pixels for a monospace editor font.
	Editor = Metrics{CharWidth: 8.4, LineHeight: 20, TabWidth: 4}
)

// MetricsForMode resolves a mode name from config or flags.
func MetricsForMode(mode string) (Metrics, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "terminal":
		return Terminal, nil
	case "editor":
		return Editor, nil
	default:
		return Metrics{}, fmt.Errorf("unknown layout mode %q (want terminal or editor)", mode)
	}
}

// Position is where a token lands on screen.
type Position struct {
	Line  int
	Col   int
	Width int
	X     float64
	Y     float64
}

// Layout is the wrapped placement of every token.
type Layout struct {
	positions []Position
	columns   int
	lines     int
	lineStart []int
}

// Compute places tokens into lines of floor(width/CharWidth) columns.
// Non-whitespace tokens that would cross the right edge wrap to the next
// line; whitespace never wraps and may hang past the edge.
func Compute(tokens []tokenizer.Token, width float64, m Metrics) *Layout {
	if m.CharWidth <= 0 {
		m.CharWidth = 1
	}
	if m.TabWidth <= 0 {
		m.TabWidth = 1
	}
	columns := int(math.Floor(width / m.CharWidth))
	if columns < 1 {
		columns = 1
	}

	l := &Layout{
		positions: make([]Position, len(tokens)),
		columns:   columns,
		lineStart: []int{0},
	}
	line, col := 0, 0
	for i, tok := range tokens {
		w := cellWidth(tok, col, m.TabWidth)
		if tok.Syntax != tokenizer.Newline && tok.Syntax != tokenizer.Whitespace && col > 0 && col+w > columns {
			line++
			col = 0
			l.lineStart = append(l.lineStart, i)
		}
		l.positions[i] = Position{
			Line:  line,
			Col:   col,
			Width: w,
			X:     float64(col) * m.CharWidth,
			Y:     float64(line) * m.LineHeight,
		}
		if tok.Syntax == tokenizer.Newline {
			line++
			col = 0
			l.lineStart = append(l.lineStart, i+1)
			continue
		}
		col += w
	}
	l.lines = line + 1
	return l
}

func cellWidth(tok tokenizer.Token, col, tabWidth int) int {
	switch tok.Char {
	case '\n':
		return 0
	case '\t':
		return tabWidth - col%tabWidth
	}
	w := runewidth.RuneWidth(tok.Char)
	if w < 1 {
		w = 1
	}
	return w
}

// Position returns the placement of token i.
func (l *Layout) Position(i int) (Position, error) {
	if i < 0 || i >= len(l.positions) {
		return Position{}, fmt.Errorf("index %d: %w", i, ErrOutOfRange)
	}
	return l.positions[i], nil
}

// Len returns the number of placed tokens.
func (l *Layout) Len() int {
	return len(l.positions)
}

// Columns returns the wrap width in cells.
func (l *Layout) Columns() int {
	return l.columns
}

// Lines returns the number of visual lines.
func (l *Layout) Lines() int {
	return l.lines
}

// LineRange returns the half-open token index range of visual line n.
func (l *Layout) LineRange(n int) (start, end int, err error) {
	if n < 0 || n >= l.lines {
		return 0, 0, fmt.Errorf("line %d: %w", n, ErrOutOfRange)
	}
	start = l.lineStart[n]
	end = len(l.positions)
	if n+1 < len(l.lineStart) {
		end = l.lineStart[n+1]
	}
	return start, end, nil
}
