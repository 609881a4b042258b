// Package progress validates finished sessions and converts them into
// experience points. It keeps no state between sessions.
package progress

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/codetype/internal/engine"
)

// ErrRejected wraps every validation failure.
var ErrRejected = errors.New("session rejected")

// Summary is the payload handed over when a session completes.
type Summary struct {
	SessionID      string
	WPM            float64
	Accuracy       float64
	ElapsedMs      int64
	MaxCombo       int
	Correct        int
	Errors         int
	PatternMatches int
	Score          int
	MasteryBonus   int
}

// Limits bounds what a plausible session can report.
type Limits struct {
	MaxWPM float64
}

// DefaultLimits returns the standard bounds.
func DefaultLimits() Limits {
	return Limits{MaxWPM: 200}
}

// FromAggregate builds a Summary from a session snapshot.
func FromAggregate(id string, agg engine.Aggregate) Summary {
	return Summary{
		SessionID:      id,
		WPM:            agg.WPM,
		Accuracy:       agg.Accuracy,
		ElapsedMs:      agg.ElapsedMs,
		MaxCombo:       agg.MaxCombo,
		Correct:        agg.Correct,
		Errors:         agg.Errors,
		PatternMatches: len(agg.PatternMatches),
		Score:          agg.Score,
		MasteryBonus:   agg.MasteryBonus,
	}
}

// Validate rejects summaries that no honest session could produce.
func Validate(s Summary, l Limits) error {
	if l.MaxWPM <= 0 {
		l.MaxWPM = DefaultLimits().MaxWPM
	}
	switch {
	case math.IsNaN(s.WPM) || s.WPM < 0:
		return fmt.Errorf("invalid wpm %.2f: %w", s.WPM, ErrRejected)
	case s.WPM > l.MaxWPM:
		return fmt.Errorf("wpm %.2f exceeds %.0f: %w", s.WPM, l.MaxWPM, ErrRejected)
	case math.IsNaN(s.Accuracy) || s.Accuracy < 0 || s.Accuracy > 100:
		return fmt.Errorf("accuracy %.2f outside [0,100]: %w", s.Accuracy, ErrRejected)
	case s.Correct < 0 || s.Errors < 0 || s.MaxCombo < 0:
		return fmt.Errorf("negative counters: %w", ErrRejected)
	case s.Correct > 0 && s.ElapsedMs <= 0:
		return fmt.Errorf("%d characters typed in %dms: %w", s.Correct, s.ElapsedMs, ErrRejected)
	case s.MaxCombo > s.Correct:
		return fmt.Errorf("max combo %d exceeds correct characters %d: %w", s.MaxCombo, s.Correct, ErrRejected)
	case s.PatternMatches > s.Correct:
		return fmt.Errorf("%d pattern matches exceed %d correct characters: %w", s.PatternMatches, s.Correct, ErrRejected)
	}
	return nil
}

// Experience converts a validated summary into experience points. Score is
// scaled by accuracy; long combos and fast typing add flat bonuses.
func Experience(s Summary) int {
	if s.Correct == 0 {
		return 0
	}
	total := float64(s.Score+s.MasteryBonus) / 10
	xp := total * (s.Accuracy / 100)
	xp += float64(s.MaxCombo / 10)
	xp += math.Floor(s.WPM / 10)
	if xp < 0 {
		return 0
	}
	return int(math.Round(xp))
}
