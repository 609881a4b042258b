package stats

import (
	"sort"
	"strconv"
)

// WeakChars returns up to top characters that were mistyped at least once,
// lowest accuracy first. Whitespace is shown by name.
func WeakChars(chars []CharStat, top int) []string {
	weak := weakest(chars, top)
	out := make([]string, 0, len(weak))
	for _, c := range weak {
		out = append(out, charLabel(c.Char))
	}
	return out
}

// WeakSet returns the same characters as WeakChars as a set.
func WeakSet(chars []CharStat, top int) map[rune]struct{} {
	set := map[rune]struct{}{}
	for _, c := range weakest(chars, top) {
		set[c.Char] = struct{}{}
	}
	return set
}

func weakest(chars []CharStat, top int) []CharStat {
	candidates := make([]CharStat, 0, len(chars))
	for _, c := range chars {
		if c.Incorrect > 0 {
			candidates = append(candidates, c)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ai := ratio(candidates[i].Correct, candidates[i].Incorrect)
		aj := ratio(candidates[j].Correct, candidates[j].Incorrect)
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}

func charLabel(r rune) string {
	switch r {
	case ' ':
		return "<space>"
	case '\t':
		return "<tab>"
	case '\n':
		return "<enter>"
	}
	if !strconv.IsPrint(r) {
		return strconv.QuoteRune(r)
	}
	return string(r)
}
