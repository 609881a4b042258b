package stats

import (
	"sort"

	"github.com/verte-zerg/codetype/internal/tokenizer"
)

// TopSyntaxByFrequency returns the n syntax categories with the most keystrokes.
func TopSyntaxByFrequency(rows []SyntaxStat, n int) []tokenizer.SyntaxType {
	if n <= 0 || len(rows) == 0 {
		return nil
	}
	sorted := append([]SyntaxStat(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Syntax < sorted[j].Syntax
		}
		return ti > tj
	})
	n = min(n, len(sorted))
	out := make([]tokenizer.SyntaxType, 0, n)
	for _, s := range sorted[:n] {
		out = append(out, s.Syntax)
	}
	return out
}
