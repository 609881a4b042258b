// Package stats builds and renders the report for a finished practice session.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/codetype/internal/concept"
	"github.com/verte-zerg/codetype/internal/tokenizer"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		idx = max(0, min(idx, last))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the headline numbers of a session.
func RenderSummary(w io.Writer, r Report) error {
	agg := r.Aggregate
	lines := []string{
		"Summary",
		fmt.Sprintf("Score: %d (+%d mastery) = %d", agg.Score, agg.MasteryBonus, agg.TotalScore()),
		fmt.Sprintf("WPM: %.2f", agg.WPM),
		fmt.Sprintf("Accuracy: %.2f%%", agg.Accuracy),
		fmt.Sprintf("Max combo: %d", agg.MaxCombo),
		fmt.Sprintf("Errors: %d", agg.Errors),
		fmt.Sprintf("Time: %.1fs", float64(agg.ElapsedMs)/1000),
		fmt.Sprintf("Concepts: %d", len(agg.PatternMatches)),
	}
	if weak := WeakChars(r.Chars, 5); len(weak) > 0 {
		lines = append(lines, "Weak keys: "+strings.Join(weak, " "))
	}
	if len(r.WPM) > 1 {
		lines = append(lines, "Pace: "+Sparkline(MovingAverage(r.WPM, 5)))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSyntaxTable prints accuracy and latency per syntax category, weakest first.
func RenderSyntaxTable(w io.Writer, rows []SyntaxStat) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No keystrokes recorded.")
		return err
	}
	sorted := append([]SyntaxStat(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Accuracy() < sorted[j].Accuracy()
	})

	if _, err := fmt.Fprintln(w, "Per-Syntax"); err != nil {
		return err
	}
	headers := []string{"Syntax", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(sorted))
	for _, s := range sorted {
		tableRows = append(tableRows, []string{
			s.Syntax.String(),
			fmt.Sprintf("%.2f%%", s.Accuracy()*100),
			fmt.Sprintf("%.1f", s.AvgLatency()),
			fmt.Sprintf("%d", s.Correct),
			fmt.Sprintf("%d", s.Incorrect),
		})
	}
	return writeTable(w, headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderConcepts prints concept spans in text order.
func RenderConcepts(w io.Writer, spans []concept.Span) error {
	if len(spans) == 0 {
		_, err := fmt.Fprintln(w, "No concepts.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Concepts"); err != nil {
		return err
	}
	headers := []string{"Type", "Name", "Line", "Cols", "Score"}
	rows := make([][]string, 0, len(spans))
	for _, s := range concept.SortByPosition(spans) {
		rows = append(rows, []string{
			s.Type.String(),
			s.Name,
			fmt.Sprintf("%d", s.Line+1),
			fmt.Sprintf("%d-%d", s.StartCol, s.EndCol),
			fmt.Sprintf("%d", s.Score),
		})
	}
	return writeTable(w, headers, rows, map[int]bool{2: true, 4: true})
}

// RenderTokenCounts prints how many runes fall into each syntax category.
func RenderTokenCounts(w io.Writer, tokens []tokenizer.Token) error {
	counts := tokenizer.CountBySyntax(tokens)
	if _, err := fmt.Fprintln(w, "Tokens"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(tokenizer.AllSyntaxTypes))
	for _, syn := range tokenizer.AllSyntaxTypes {
		if counts[syn] == 0 {
			continue
		}
		rows = append(rows, []string{syn.String(), fmt.Sprintf("%d", counts[syn])})
	}
	return writeTable(w, []string{"Syntax", "Count"}, rows, map[int]bool{1: true})
}

// RenderCurves prints the WPM and latency curves of a session.
func RenderCurves(w io.Writer, r Report, window int) error {
	return RenderCurvesWithSize(w, r, window, 0, 10, false)
}

// RenderCurvesWithSize prints session curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, r Report, window, totalWidth, height int, useColor bool) error {
	if len(r.WPM) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Session Curves", []Series{
		{Name: "WPM", Values: MovingAverage(r.WPM, window)},
		{Name: "Latency", Values: MovingAverage(r.Latency, window)},
	}, width, height, useColor)
}

// Render writes the full session report.
func Render(w io.Writer, r Report, window int) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if err := RenderSyntaxTable(w, r.Syntax); err != nil {
		return err
	}
	if err := RenderConcepts(w, r.Aggregate.PatternMatches); err != nil {
		return err
	}
	return RenderCurves(w, r, window)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	return textTable{headers: headers, rows: rows, right: rightAlign}.writeTo(w)
}

func bounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

