package concept

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrOutOfRange is returned for index queries outside the text.
var ErrOutOfRange = errors.New("index out of range")

// Index maps global rune indices of a text to concept spans.
type Index struct {
	spans  []Span
	active []int
	ending map[int][]int
}

// NewIndex builds the lookup for spans detected in text. Spans whose columns
// fall outside their line are ignored.
func NewIndex(text string, spans []Span) *Index {
	lineStarts := []int{0}
	lineLens := []int{}
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		lineLens = append(lineLens, n)
		offset += n + 1
		lineStarts = append(lineStarts, offset)
	}
	total := utf8.RuneCountInString(text)

	idx := &Index{
		spans:  append([]Span(nil), spans...),
		active: make([]int, total),
		ending: map[int][]int{},
	}
	for i := range idx.active {
		idx.active[i] = -1
	}
	for si, s := range idx.spans {
		if s.Line < 0 || s.Line >= len(lineLens) {
			continue
		}
		if s.StartCol < 0 || s.EndCol > lineLens[s.Line] || s.StartCol >= s.EndCol {
			continue
		}
		start := lineStarts[s.Line] + s.StartCol
		end := lineStarts[s.Line] + s.EndCol
		for i := start; i < end; i++ {
			cur := idx.active[i]
			// Shortest span wins; earlier detection keeps ties.
			if cur < 0 || s.Len() < idx.spans[cur].Len() {
				idx.active[i] = si
			}
		}
		idx.ending[end-1] = append(idx.ending[end-1], si)
	}
	return idx
}

// Len returns the number of indexed runes.
func (x *Index) Len() int {
	return len(x.active)
}

// Spans returns every span known to the index.
func (x *Index) Spans() []Span {
	return append([]Span(nil), x.spans...)
}

// At returns the most specific span covering index i.
func (x *Index) At(i int) (Span, bool, error) {
	if i < 0 || i >= len(x.active) {
		return Span{}, false, fmt.Errorf("index %d: %w", i, ErrOutOfRange)
	}
	si := x.active[i]
	if si < 0 {
		return Span{}, false, nil
	}
	return x.spans[si], true, nil
}

// EndingAt returns the spans whose last rune is at index i, in detection order.
func (x *Index) EndingAt(i int) []Span {
	ids := x.ending[i]
	if len(ids) == 0 {
		return nil
	}
	out := make([]Span, 0, len(ids))
	for _, si := range ids {
		out = append(out, x.spans[si])
	}
	return out
}
