// Package engine implements the per-keystroke typing state machine.
package engine

import (
	"errors"

	"github.com/verte-zerg/codetype/internal/concept"
)

var (
	// ErrOutOfRange is returned for queries outside [0, len(text)).
	ErrOutOfRange = errors.New("index out of range")
	// ErrSessionComplete is returned for keystrokes after the last character.
	ErrSessionComplete = errors.New("session complete")
	// ErrInvalidTransition guards out-of-order status changes.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status is the typing state of one character.
type Status int

const (
	StatusPending Status = iota
	StatusCurrent
	StatusCorrect
	StatusIncorrect
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCurrent:
		return "current"
	case StatusCorrect:
		return "correct"
	case StatusIncorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// SpeedClass buckets the latency of a correct keystroke.
type SpeedClass int

const (
	SpeedSlow SpeedClass = iota
	SpeedGood
	SpeedBest
	SpeedPerfect
)

// String returns the speed class name.
func (s SpeedClass) String() string {
	switch s {
	case SpeedSlow:
		return "slow"
	case SpeedGood:
		return "good"
	case SpeedBest:
		return "best"
	case SpeedPerfect:
		return "perfect"
	default:
		return "unknown"
	}
}

// CharacterState is the per-index state owned by a Session. Speed is only
// meaningful once the character is correct.
type CharacterState struct {
	Status       Status
	Speed        SpeedClass
	UpgradeLevel int
}

// Keystroke is one input event.
type Keystroke struct {
	Char        rune
	TimestampMs int64
}

// Aggregate is a snapshot of the session totals.
type Aggregate struct {
	Combo             int
	MaxCombo          int
	Streak            int
	PerfectStreak     int
	Errors            int
	Correct           int
	Score             int
	MasteryBonus      int
	AnticipationLevel float64
	WPM               float64
	Accuracy          float64
	ElapsedMs         int64
	PatternMatches    []concept.Span
}

// TotalScore is the keystroke score plus the concept mastery bonus.
func (a Aggregate) TotalScore() int {
	return a.Score + a.MasteryBonus
}

// Result describes the outcome of a single keystroke.
type Result struct {
	Index    int
	Correct  bool
	Speed    SpeedClass
	Points   int
	Matches  []concept.Span
	Complete bool
}

// Sample records one processed keystroke for reporting.
type Sample struct {
	Index       int
	Expected    rune
	Typed       rune
	Correct     bool
	LatencyMs   int64
	Speed       SpeedClass
	TimestampMs int64
	WPM         float64
}

// EventKind identifies a session notification.
type EventKind int

const (
	EventConceptCompleted EventKind = iota
	EventSessionComplete
)

// Event is delivered to the listener installed with SetListener.
type Event struct {
	Kind  EventKind
	Index int
	Span  concept.Span
}
