package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/verte-zerg/codetype/internal/concept"
)

// Session is the typing state machine for one text buffer. It is not safe
// for concurrent use; callers deliver keystrokes one at a time.
type Session struct {
	id     string
	cfg    Config
	target []rune
	index  *concept.Index

	states  []CharacterState
	failed  []int
	current int
	agg     Aggregate

	started       bool
	startMs       int64
	lastCorrectMs int64
	hasReference  bool

	recent   *anticipation
	samples  []Sample
	listener func(Event)
}

// NewSession starts a session over text. Spans come from concept.Detect on
// the same text; zero-valued Config fields take their defaults.
func NewSession(text string, spans []concept.Span, cfg Config) *Session {
	s := &Session{
		cfg:    cfg.applyDefaults(),
		target: []rune(text),
		index:  concept.NewIndex(text, spans),
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.id = uuid.New().String()
	s.states = make([]CharacterState, len(s.target))
	s.failed = make([]int, len(s.target))
	s.current = 0
	s.agg = Aggregate{AnticipationLevel: minAnticipation}
	s.started = false
	s.startMs = 0
	s.lastCorrectMs = 0
	s.hasReference = false
	s.recent = newAnticipation(s.cfg.AnticipationWindow)
	s.samples = nil
	if len(s.states) > 0 {
		s.states[0].Status = StatusCurrent
	}
}

// Reset restarts the session over the same text with a new ID.
func (s *Session) Reset() {
	s.reset()
}

// SetListener installs a callback for concept completions and session end.
func (s *Session) SetListener(fn func(Event)) {
	s.listener = fn
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Text returns the target text.
func (s *Session) Text() string {
	return string(s.target)
}

// Len returns the number of characters in the target text.
func (s *Session) Len() int {
	return len(s.target)
}

// Current returns the index of the next expected character, or Len() once complete.
func (s *Session) Current() int {
	return s.current
}

// Complete reports whether every character has been typed correctly.
func (s *Session) Complete() bool {
	return s.current >= len(s.target)
}

// Started reports whether the session clock is running.
func (s *Session) Started() bool {
	return s.started
}

// Start sets the reference time for the first keystroke's latency. Calling it
// after the first keystroke has no effect.
func (s *Session) Start(timestampMs int64) {
	if s.started {
		return
	}
	s.started = true
	s.startMs = timestampMs
	s.lastCorrectMs = timestampMs
	s.hasReference = true
}

// Type processes one keystroke against the current character.
func (s *Session) Type(k Keystroke) (Result, error) {
	if s.Complete() {
		return Result{}, ErrSessionComplete
	}
	if !s.started {
		s.started = true
		s.startMs = k.TimestampMs
	}
	idx := s.current
	expected := s.target[idx]

	if k.Char != expected {
		if err := s.transition(idx, StatusIncorrect); err != nil {
			return Result{}, err
		}
		s.failed[idx]++
		s.agg.Errors++
		s.agg.Combo = 0
		s.agg.Streak = 0
		s.agg.PerfectStreak = 0
		s.updateMetrics(k.TimestampMs)
		s.record(idx, k, false, 0, SpeedSlow)
		return Result{Index: idx, Correct: false}, nil
	}

	speed := SpeedGood
	var latency int64
	if s.hasReference {
		latency = k.TimestampMs - s.lastCorrectMs
		if latency < 0 {
			latency = 0
		}
		speed = s.cfg.Classify(latency)
	}
	if err := s.transition(idx, StatusCorrect); err != nil {
		return Result{}, err
	}
	s.lastCorrectMs = k.TimestampMs
	s.hasReference = true

	state := &s.states[idx]
	state.Speed = speed
	if s.failed[idx] > 0 {
		state.UpgradeLevel = min(s.failed[idx], s.cfg.UpgradeCap)
	}

	s.agg.Correct++
	s.agg.Combo++
	if s.agg.Combo > s.agg.MaxCombo {
		s.agg.MaxCombo = s.agg.Combo
	}
	if speed == SpeedPerfect || speed == SpeedBest {
		s.agg.PerfectStreak++
	} else {
		s.agg.PerfectStreak = 0
	}
	if speed == SpeedPerfect {
		s.agg.Streak++
	} else {
		s.agg.Streak = 0
	}
	s.recent.push(speed)
	s.agg.AnticipationLevel = s.recent.level()

	s.advance()

	res := Result{Index: idx, Correct: true, Speed: speed}
	res.Matches = s.index.EndingAt(idx)
	var points float64
	if len(res.Matches) > 0 {
		factor := 0.0
		if s.BonusEligible() {
			factor = s.cfg.comboBonusFactor(s.agg.Combo)
		}
		for _, span := range res.Matches {
			points += float64(span.Score) * (1 + factor)
		}
		s.agg.PatternMatches = append(s.agg.PatternMatches, res.Matches...)
	} else {
		points = s.cfg.baselinePoints(speed, s.agg.Combo)
	}
	res.Points = int(math.Round(points))
	s.agg.Score += res.Points

	s.updateMetrics(k.TimestampMs)
	s.record(idx, k, true, latency, speed)
	res.Complete = s.Complete()

	for _, span := range res.Matches {
		s.emit(Event{Kind: EventConceptCompleted, Index: idx, Span: span})
	}
	if res.Complete {
		s.emit(Event{Kind: EventSessionComplete, Index: idx})
	}
	return res, nil
}

// transition moves the current character to a typed status. Only the
// current index may change and a correct character is final.
func (s *Session) transition(idx int, to Status) error {
	if idx != s.current || idx >= len(s.states) {
		return fmt.Errorf("index %d is not current (%d): %w", idx, s.current, ErrInvalidTransition)
	}
	from := s.states[idx].Status
	switch from {
	case StatusCurrent, StatusIncorrect:
	case StatusPending, StatusCorrect:
		return fmt.Errorf("index %d: %s -> %s: %w", idx, from, to, ErrInvalidTransition)
	default:
		return fmt.Errorf("index %d: unknown status %d: %w", idx, from, ErrInvalidTransition)
	}
	s.states[idx].Status = to
	return nil
}

func (s *Session) advance() {
	next := s.current + 1
	for next < len(s.states) && s.states[next].Status == StatusCorrect {
		next++
	}
	s.current = next
	if next < len(s.states) {
		s.states[next].Status = StatusCurrent
	}
}

func (s *Session) updateMetrics(nowMs int64) {
	elapsed := nowMs - s.startMs
	if elapsed > s.agg.ElapsedMs {
		s.agg.ElapsedMs = elapsed
	}
	s.agg.WPM, _, s.agg.Accuracy = Metrics(s.agg.Correct, s.agg.Errors, s.agg.ElapsedMs)
}

func (s *Session) record(idx int, k Keystroke, correct bool, latency int64, speed SpeedClass) {
	s.samples = append(s.samples, Sample{
		Index:       idx,
		Expected:    s.target[idx],
		Typed:       k.Char,
		Correct:     correct,
		LatencyMs:   latency,
		Speed:       speed,
		TimestampMs: k.TimestampMs,
		WPM:         s.agg.WPM,
	})
}

func (s *Session) emit(e Event) {
	if s.listener != nil {
		s.listener(e)
	}
}

// BonusEligible reports whether the anticipation level unlocks the combo
// multiplier on concept scores.
func (s *Session) BonusEligible() bool {
	return s.agg.AnticipationLevel >= s.cfg.AnticipationBonusThreshold
}

func (s *Session) checkIndex(i int) error {
	if i < 0 || i >= len(s.states) {
		return fmt.Errorf("index %d: %w", i, ErrOutOfRange)
	}
	return nil
}

// Status returns the status of character i.
func (s *Session) Status(i int) (Status, error) {
	if err := s.checkIndex(i); err != nil {
		return StatusPending, err
	}
	return s.states[i].Status, nil
}

// Speed returns the speed class recorded for character i.
func (s *Session) Speed(i int) (SpeedClass, error) {
	if err := s.checkIndex(i); err != nil {
		return SpeedSlow, err
	}
	return s.states[i].Speed, nil
}

// Upgrade returns the upgrade level of character i.
func (s *Session) Upgrade(i int) (int, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}
	return s.states[i].UpgradeLevel, nil
}

// State returns the full state of character i.
func (s *Session) State(i int) (CharacterState, error) {
	if err := s.checkIndex(i); err != nil {
		return CharacterState{}, err
	}
	return s.states[i], nil
}

// Concept returns the most specific concept covering character i.
func (s *Session) Concept(i int) (concept.Span, bool, error) {
	if err := s.checkIndex(i); err != nil {
		return concept.Span{}, false, err
	}
	return s.index.At(i)
}

// Aggregate returns a copy of the session totals.
func (s *Session) Aggregate() Aggregate {
	agg := s.agg
	agg.PatternMatches = append([]concept.Span(nil), s.agg.PatternMatches...)
	agg.MasteryBonus = concept.MasteryBonus(agg.PatternMatches)
	return agg
}

// Samples returns the processed keystrokes in order.
func (s *Session) Samples() []Sample {
	return append([]Sample(nil), s.samples...)
}
