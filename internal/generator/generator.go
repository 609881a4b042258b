// Package generator picks practice windows out of longer snippets.
package generator

import (
	"math/rand"
	"strings"
	"time"
)

// Generator selects randomized snippet windows.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Pick returns a uniformly chosen index in [0, n).
func (g *Generator) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return g.rnd.Intn(n)
}

// Window selects up to count lines starting at a random non-blank line and
// returns them dedented. A count <= 0 returns the whole text.
func (g *Generator) Window(lines []string, count int) string {
	starts := windowStarts(lines, count)
	if len(starts) == 0 {
		return ""
	}
	return cut(lines, starts[g.rnd.Intn(len(starts))], count)
}

// WindowWeighted selects a window with a bias toward lines containing weak
// characters. Each weak occurrence adds factor to the window's weight.
func (g *Generator) WindowWeighted(lines []string, count int, weakSet map[rune]struct{}, factor float64) string {
	starts := windowStarts(lines, count)
	if len(starts) == 0 {
		return ""
	}
	if len(weakSet) == 0 || factor <= 0 {
		return cut(lines, starts[g.rnd.Intn(len(starts))], count)
	}
	weights := make([]float64, len(starts))
	total := 0.0
	for i, start := range starts {
		weakCount := 0
		for _, r := range cut(lines, start, count) {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	idx := len(starts) - 1
	for i, w := range weights {
		acc += w
		if r <= acc {
			idx = i
			break
		}
	}
	return cut(lines, starts[idx], count)
}

func windowStarts(lines []string, count int) []int {
	if count <= 0 {
		if hasContent(lines) {
			return []int{0}
		}
		return nil
	}
	var starts []int
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			starts = append(starts, i)
		}
	}
	return starts
}

func hasContent(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

func cut(lines []string, start, count int) string {
	end := len(lines)
	if count > 0 && start+count < end {
		end = start + count
	}
	window := append([]string(nil), lines[start:end]...)
	for len(window) > 0 && strings.TrimSpace(window[len(window)-1]) == "" {
		window = window[:len(window)-1]
	}
	return strings.Join(Dedent(window), "\n")
}

// Dedent removes the longest whitespace prefix shared by all non-blank lines.
func Dedent(lines []string) []string {
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimPrefix(line, prefix)
	}
	return out
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
