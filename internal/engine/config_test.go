package engine

import (
	"math"
	"testing"
)

func TestClassifyBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		latency int64
		want    SpeedClass
	}{
		{0, SpeedPerfect},
		{99, SpeedPerfect},
		{100, SpeedBest},
		{179, SpeedBest},
		{180, SpeedGood},
		{299, SpeedGood},
		{300, SpeedSlow},
		{5000, SpeedSlow},
	}
	for _, tc := range cases {
		if got := cfg.Classify(tc.latency); got != tc.want {
			t.Fatalf("latency %d: expected %s, got %s", tc.latency, tc.want, got)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("zero config should take defaults: %v", err)
	}
	bad := DefaultConfig()
	bad.PerfectMs = 200
	bad.BestMs = 100
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for decreasing thresholds")
	}
	bad = DefaultConfig()
	bad.AnticipationBonusThreshold = 4
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for unreachable anticipation threshold")
	}
}

func TestBaselinePointsComboCap(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.baselinePoints(SpeedGood, 0); got != 10 {
		t.Fatalf("expected 10, got %.2f", got)
	}
	if got := cfg.baselinePoints(SpeedGood, 1000); got != 30 {
		t.Fatalf("expected capped 30, got %.2f", got)
	}
	if got := cfg.comboBonusFactor(9); got != 0 {
		t.Fatalf("expected no bonus below one step, got %.2f", got)
	}
	if got := cfg.comboBonusFactor(500); got != 1 {
		t.Fatalf("expected capped bonus 1, got %.2f", got)
	}
}

func TestMetrics(t *testing.T) {
	wpm, cpm, acc := Metrics(50, 0, 60000)
	if wpm != 10 || cpm != 50 || acc != 100 {
		t.Fatalf("unexpected metrics: %.2f %.2f %.2f", wpm, cpm, acc)
	}
	wpm, cpm, acc = Metrics(0, 0, 0)
	if wpm != 0 || cpm != 0 || acc != 0 {
		t.Fatalf("expected zero metrics, got %.2f %.2f %.2f", wpm, cpm, acc)
	}
	_, _, acc = Metrics(3, 1, 0)
	if acc != 75 {
		t.Fatalf("expected accuracy 75 before time elapses, got %.2f", acc)
	}
}

func TestAnticipationLevel(t *testing.T) {
	a := newAnticipation(4)
	if a.level() != minAnticipation {
		t.Fatalf("expected initial level %.1f", minAnticipation)
	}
	for i := 0; i < 4; i++ {
		a.push(SpeedSlow)
	}
	if a.level() != 1 {
		t.Fatalf("expected level 1, got %.2f", a.level())
	}
	for i := 0; i < 4; i++ {
		a.push(SpeedPerfect)
	}
	if a.level() != 3 {
		t.Fatalf("expected window to forget slow keystrokes, got %.2f", a.level())
	}
	a.push(SpeedGood)
	want := (3*3 + 5.0/3.0) / 4
	if math.Abs(a.level()-want) > 1e-9 {
		t.Fatalf("expected %.4f, got %.4f", want, a.level())
	}
}
