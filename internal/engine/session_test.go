package engine

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/verte-zerg/codetype/internal/concept"
)

func newTestSession(text string) *Session {
	return NewSession(text, concept.Detect(text), DefaultConfig())
}

// typeAll types text exactly, one keystroke every stepMs after Start(0).
func typeAll(t *testing.T, s *Session, text string, stepMs int64) {
	t.Helper()
	s.Start(0)
	ts := int64(0)
	for _, r := range text {
		ts += stepMs
		if _, err := s.Type(Keystroke{Char: r, TimestampMs: ts}); err != nil {
			t.Fatalf("type %q: %v", r, err)
		}
	}
}

func TestSessionTypesDeclarationExactly(t *testing.T) {
	text := "let x = 1;"
	s := newTestSession(text)
	typeAll(t, s, text, 200)

	if !s.Complete() {
		t.Fatalf("expected session to be complete")
	}
	agg := s.Aggregate()
	if agg.Errors != 0 {
		t.Fatalf("expected no errors, got %d", agg.Errors)
	}
	if agg.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %.2f", agg.Accuracy)
	}
	counts := concept.CountByType(agg.PatternMatches)
	if len(agg.PatternMatches) != 2 || counts[concept.Variable] != 1 || counts[concept.Number] != 1 {
		t.Fatalf("unexpected pattern matches: %+v", agg.PatternMatches)
	}
	if agg.PatternMatches[0].Name != "x" || agg.PatternMatches[1].Name != "1" {
		t.Fatalf("unexpected match order: %+v", agg.PatternMatches)
	}
	for i := 0; i < s.Len(); i++ {
		speed, err := s.Speed(i)
		if err != nil {
			t.Fatalf("speed %d: %v", i, err)
		}
		if speed != SpeedGood {
			t.Fatalf("expected good speed at %d, got %s", i, speed)
		}
	}
	if agg.ElapsedMs != 2000 {
		t.Fatalf("expected 2000ms elapsed, got %d", agg.ElapsedMs)
	}
	if math.Abs(agg.WPM-60) > 1e-9 {
		t.Fatalf("expected 60 wpm, got %.2f", agg.WPM)
	}
}

func TestSessionMismatchKeepsCurrent(t *testing.T) {
	s := newTestSession("let x = 1;")
	typeAll(t, s, "let x", 200)
	res, err := s.Type(Keystroke{Char: 'y', TimestampMs: 1200})
	if err != nil {
		t.Fatalf("type: %v", err)
	}
	if res.Correct || res.Points != 0 {
		t.Fatalf("mismatch should score nothing: %+v", res)
	}
	agg := s.Aggregate()
	if agg.Errors != 1 || agg.Combo != 0 {
		t.Fatalf("expected errors=1 combo=0, got %d %d", agg.Errors, agg.Combo)
	}
	if s.Current() != 5 {
		t.Fatalf("expected current to stay at 5, got %d", s.Current())
	}
	status, _ := s.Status(5)
	if status != StatusIncorrect {
		t.Fatalf("expected incorrect status, got %s", status)
	}
	if agg.MaxCombo != 5 {
		t.Fatalf("expected max combo 5, got %d", agg.MaxCombo)
	}
}

func TestSessionPerfectStreakResetsOnError(t *testing.T) {
	text := "abcdefghijklmn"
	s := NewSession(text, nil, DefaultConfig())
	typeAll(t, s, text[:12], 50)

	agg := s.Aggregate()
	if agg.PerfectStreak != 12 || agg.Combo != 12 || agg.Streak != 12 {
		t.Fatalf("expected streaks of 12, got perfect=%d combo=%d streak=%d", agg.PerfectStreak, agg.Combo, agg.Streak)
	}
	if _, err := s.Type(Keystroke{Char: 'z', TimestampMs: 650}); err != nil {
		t.Fatalf("type: %v", err)
	}
	agg = s.Aggregate()
	if agg.Combo != 0 || agg.PerfectStreak != 0 || agg.Errors != 1 {
		t.Fatalf("expected reset after error, got combo=%d perfect=%d errors=%d", agg.Combo, agg.PerfectStreak, agg.Errors)
	}
}

func TestSessionBestKeepsPerfectStreakButNotStreak(t *testing.T) {
	s := NewSession("abc", nil, DefaultConfig())
	s.Start(0)
	mustType(t, s, 'a', 50)
	mustType(t, s, 'b', 200)
	agg := s.Aggregate()
	if agg.PerfectStreak != 2 || agg.Streak != 0 {
		t.Fatalf("expected perfect=2 streak=0, got %d %d", agg.PerfectStreak, agg.Streak)
	}
	mustType(t, s, 'c', 500)
	agg = s.Aggregate()
	if agg.PerfectStreak != 0 || agg.Streak != 0 || agg.Combo != 3 {
		t.Fatalf("expected slow keystroke to reset streaks, got %+v", agg)
	}
}

func mustType(t *testing.T, s *Session, r rune, ts int64) Result {
	t.Helper()
	res, err := s.Type(Keystroke{Char: r, TimestampMs: ts})
	if err != nil {
		t.Fatalf("type %q: %v", r, err)
	}
	return res
}

func TestSessionBaselineScore(t *testing.T) {
	s := NewSession("ab", nil, DefaultConfig())
	s.Start(0)
	if res := mustType(t, s, 'a', 50); res.Points != 21 {
		t.Fatalf("expected 21 points, got %d", res.Points)
	}
	if res := mustType(t, s, 'b', 100); res.Points != 22 {
		t.Fatalf("expected 22 points, got %d", res.Points)
	}
	if got := s.Aggregate().Score; got != 43 {
		t.Fatalf("expected score 43, got %d", got)
	}
}

func TestSessionConceptScoreUsesComboWhenEligible(t *testing.T) {
	spans := []concept.Span{{Type: concept.Variable, Name: "ab", EndCol: 2, Score: 10}}
	cfg := DefaultConfig()
	cfg.ComboBonusStep = 1

	fast := NewSession("ab", spans, cfg)
	fast.Start(0)
	mustType(t, fast, 'a', 50)
	res := mustType(t, fast, 'b', 100)
	if res.Points != 12 || len(res.Matches) != 1 {
		t.Fatalf("expected 12 concept points, got %+v", res)
	}

	slow := NewSession("ab", spans, cfg)
	slow.Start(0)
	mustType(t, slow, 'a', 1000)
	res = mustType(t, slow, 'b', 2000)
	if slow.BonusEligible() {
		t.Fatalf("slow typing should not be bonus eligible")
	}
	if res.Points != 10 {
		t.Fatalf("expected plain concept score, got %d", res.Points)
	}
	if got := slow.Aggregate().Score; got != 15 {
		t.Fatalf("expected total 15, got %d", got)
	}
}

func TestSessionFirstKeystrokeWithoutStart(t *testing.T) {
	s := NewSession("ab", nil, DefaultConfig())
	res := mustType(t, s, 'a', 5000)
	if res.Speed != SpeedGood {
		t.Fatalf("expected first keystroke to be good, got %s", res.Speed)
	}
	res = mustType(t, s, 'b', 5050)
	if res.Speed != SpeedPerfect {
		t.Fatalf("expected perfect, got %s", res.Speed)
	}
	if got := s.Aggregate().ElapsedMs; got != 50 {
		t.Fatalf("expected elapsed from first keystroke, got %d", got)
	}
}

func TestSessionUpgradeLevel(t *testing.T) {
	s := NewSession("ab", nil, DefaultConfig())
	mustType(t, s, 'x', 10)
	mustType(t, s, 'y', 20)
	mustType(t, s, 'a', 30)
	if lvl, _ := s.Upgrade(0); lvl != 2 {
		t.Fatalf("expected upgrade level 2, got %d", lvl)
	}
	for i := 0; i < 9; i++ {
		mustType(t, s, 'x', int64(40+i))
	}
	mustType(t, s, 'b', 100)
	if lvl, _ := s.Upgrade(1); lvl != 5 {
		t.Fatalf("expected capped upgrade level 5, got %d", lvl)
	}
}

func TestSessionCompleteRejectsKeystrokes(t *testing.T) {
	s := newTestSession("ok")
	typeAll(t, s, "ok", 100)
	before := s.Aggregate()
	if _, err := s.Type(Keystroke{Char: 'x', TimestampMs: 999}); !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("expected ErrSessionComplete, got %v", err)
	}
	if after := s.Aggregate(); !reflect.DeepEqual(before, after) {
		t.Fatalf("aggregate changed after completion")
	}

	empty := NewSession("", nil, DefaultConfig())
	if !empty.Complete() {
		t.Fatalf("empty session should be complete")
	}
	if _, err := empty.Type(Keystroke{Char: 'a'}); !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("expected ErrSessionComplete, got %v", err)
	}
}

func TestSessionQueriesOutOfRange(t *testing.T) {
	s := newTestSession("ab")
	for _, i := range []int{-1, 2} {
		if _, err := s.Status(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("status %d: expected ErrOutOfRange, got %v", i, err)
		}
		if _, err := s.Speed(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("speed %d: expected ErrOutOfRange, got %v", i, err)
		}
		if _, err := s.Upgrade(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("upgrade %d: expected ErrOutOfRange, got %v", i, err)
		}
		if _, _, err := s.Concept(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("concept %d: expected ErrOutOfRange, got %v", i, err)
		}
	}
}

func TestSessionInvalidTransition(t *testing.T) {
	s := newTestSession("ab")
	if err := s.transition(1, StatusCorrect); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for non-current index, got %v", err)
	}
	mustType(t, s, 'a', 10)
	if err := s.transition(0, StatusIncorrect); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for correct index, got %v", err)
	}
	if status, _ := s.Status(0); status != StatusCorrect {
		t.Fatalf("guarded transition must not change status, got %s", status)
	}
}

func TestSessionInitialStatuses(t *testing.T) {
	s := newTestSession("abc")
	want := []Status{StatusCurrent, StatusPending, StatusPending}
	for i, w := range want {
		if got, _ := s.Status(i); got != w {
			t.Fatalf("index %d: expected %s, got %s", i, w, got)
		}
	}
	agg := s.Aggregate()
	if agg.Score != 0 || agg.Combo != 0 || agg.Errors != 0 || agg.WPM != 0 || agg.Accuracy != 0 {
		t.Fatalf("expected zeroed aggregate, got %+v", agg)
	}
}

func TestSessionPropertiesUnderRandomInput(t *testing.T) {
	text := "func add(a, b int) int {\n\treturn a + b\n}"
	target := []rune(text)
	rnd := rand.New(rand.NewSource(7))
	s := newTestSession(text)
	s.Start(0)

	ts := int64(0)
	prevCurrent := 0
	correctSeen := map[int]bool{}
	for !s.Complete() {
		ts += int64(rnd.Intn(400))
		r := target[s.Current()]
		if rnd.Intn(4) == 0 {
			r = 'ʘ'
		}
		res, err := s.Type(Keystroke{Char: r, TimestampMs: ts})
		if err != nil {
			t.Fatalf("type: %v", err)
		}
		agg := s.Aggregate()
		if agg.Accuracy < 0 || agg.Accuracy > 100 {
			t.Fatalf("accuracy out of bounds: %.2f", agg.Accuracy)
		}
		if !res.Correct && agg.Combo != 0 {
			t.Fatalf("combo must reset after an error")
		}
		if s.Current() < prevCurrent {
			t.Fatalf("current moved backwards: %d -> %d", prevCurrent, s.Current())
		}
		prevCurrent = s.Current()
		if res.Correct {
			correctSeen[res.Index] = true
		}
		for i := range correctSeen {
			if st, _ := s.Status(i); st != StatusCorrect {
				t.Fatalf("correct index %d changed to %s", i, st)
			}
		}
	}

	seen := map[concept.Span]int{}
	for _, m := range s.Aggregate().PatternMatches {
		seen[m]++
	}
	for span, n := range seen {
		if n != 1 {
			t.Fatalf("concept %+v fired %d times", span, n)
		}
	}
	if len(seen) != len(concept.Detect(text)) {
		t.Fatalf("expected every concept to fire once, got %d of %d", len(seen), len(concept.Detect(text)))
	}
}

func TestSessionListener(t *testing.T) {
	text := "let x = 1;"
	s := newTestSession(text)
	var concepts, completes int
	s.SetListener(func(e Event) {
		switch e.Kind {
		case EventConceptCompleted:
			concepts++
		case EventSessionComplete:
			completes++
		}
	})
	typeAll(t, s, text, 120)
	if concepts != 2 || completes != 1 {
		t.Fatalf("expected 2 concept events and 1 completion, got %d %d", concepts, completes)
	}
}

func TestSessionReset(t *testing.T) {
	s := newTestSession("ab")
	id := s.ID()
	typeAll(t, s, "ab", 100)
	s.Reset()
	if s.ID() == id {
		t.Fatalf("expected a new session id")
	}
	if s.Complete() || s.Current() != 0 {
		t.Fatalf("expected session to restart")
	}
	if len(s.Samples()) != 0 || s.Aggregate().Score != 0 {
		t.Fatalf("expected cleared history")
	}
}

func TestSessionSamples(t *testing.T) {
	s := NewSession("ab", nil, DefaultConfig())
	s.Start(0)
	mustType(t, s, 'x', 40)
	mustType(t, s, 'a', 90)
	samples := s.Samples()
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Correct || samples[0].Typed != 'x' || samples[0].Expected != 'a' {
		t.Fatalf("unexpected first sample: %+v", samples[0])
	}
	if !samples[1].Correct || samples[1].LatencyMs != 90 {
		t.Fatalf("latency should be measured from the last correct keystroke: %+v", samples[1])
	}
}
