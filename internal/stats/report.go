package stats

import (
	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/tokenizer"
)

// SyntaxStat aggregates keystrokes by the syntax category of the expected character.
type SyntaxStat struct {
	Syntax       tokenizer.SyntaxType
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// Accuracy returns the fraction of correct keystrokes, or 1 when none were made.
func (s SyntaxStat) Accuracy() float64 {
	return ratio(s.Correct, s.Incorrect)
}

// AvgLatency returns the mean latency of correct keystrokes in milliseconds.
func (s SyntaxStat) AvgLatency() float64 {
	if s.LatencyCount == 0 {
		return 0
	}
	return float64(s.LatencySumMs) / float64(s.LatencyCount)
}

// CharStat aggregates keystrokes by expected character.
type CharStat struct {
	Char      rune
	Correct   int
	Incorrect int
}

// Report contains precomputed data for rendering a session.
type Report struct {
	SessionID string
	Aggregate engine.Aggregate
	Syntax    []SyntaxStat
	Chars     []CharStat
	// WPM and Latency hold one point per correct keystroke.
	WPM     []float64
	Latency []float64
}

// BuildReport folds the keystroke samples of a session into a Report. Tokens
// must come from the session text so sample indices line up.
func BuildReport(id string, tokens []tokenizer.Token, samples []engine.Sample, agg engine.Aggregate) Report {
	r := Report{SessionID: id, Aggregate: agg}
	bySyntax := map[tokenizer.SyntaxType]*SyntaxStat{}
	byChar := map[rune]*CharStat{}
	var charOrder []rune

	for _, s := range samples {
		syn := tokenizer.Text
		if s.Index >= 0 && s.Index < len(tokens) {
			syn = tokens[s.Index].Syntax
		}
		st, ok := bySyntax[syn]
		if !ok {
			st = &SyntaxStat{Syntax: syn}
			bySyntax[syn] = st
		}
		cs, ok := byChar[s.Expected]
		if !ok {
			cs = &CharStat{Char: s.Expected}
			byChar[s.Expected] = cs
			charOrder = append(charOrder, s.Expected)
		}
		if !s.Correct {
			st.Incorrect++
			cs.Incorrect++
			continue
		}
		st.Correct++
		cs.Correct++
		st.LatencySumMs += s.LatencyMs
		st.LatencyCount++
		r.WPM = append(r.WPM, s.WPM)
		r.Latency = append(r.Latency, float64(s.LatencyMs))
	}

	for _, syn := range tokenizer.AllSyntaxTypes {
		if st, ok := bySyntax[syn]; ok {
			r.Syntax = append(r.Syntax, *st)
		}
	}
	for _, ch := range charOrder {
		r.Chars = append(r.Chars, *byChar[ch])
	}
	return r
}

func ratio(correct, incorrect int) float64 {
	total := correct + incorrect
	if total == 0 {
		return 1.0
	}
	return float64(correct) / float64(total)
}
