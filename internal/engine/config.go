package engine

import "fmt"

// Config holds the tunable thresholds and multipliers of a session. None of
// the defaults encode more than "faster, longer combos score more".
type Config struct {
	// PerfectMs, BestMs and GoodMs are exclusive upper latency bounds of the
	// perfect, best and good speed classes. Anything slower is slow.
	PerfectMs int64
	BestMs    int64
	GoodMs    int64

	// BasePoints is the per-character score before multipliers.
	BasePoints float64
	// Speed multipliers applied to BasePoints.
	SlowMultiplier    float64
	GoodMultiplier    float64
	BestMultiplier    float64
	PerfectMultiplier float64

	// Baseline points scale by min(1 + combo/ComboDivisor, ComboCap).
	ComboDivisor float64
	ComboCap     float64

	// Concept scores scale by 1 + min(floor(combo/ComboBonusStep)*ComboBonusPerStep, ComboBonusMax)
	// while the anticipation level is at least AnticipationBonusThreshold.
	ComboBonusStep             int
	ComboBonusPerStep          float64
	ComboBonusMax              float64
	AnticipationBonusThreshold float64

	// AnticipationWindow is the number of recent speed classes averaged.
	AnticipationWindow int

	// UpgradeCap bounds the per-character upgrade level.
	UpgradeCap int
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		PerfectMs:                  100,
		BestMs:                     180,
		GoodMs:                     300,
		BasePoints:                 10,
		SlowMultiplier:             0.5,
		GoodMultiplier:             1,
		BestMultiplier:             1.5,
		PerfectMultiplier:          2,
		ComboDivisor:               20,
		ComboCap:                   3,
		ComboBonusStep:             10,
		ComboBonusPerStep:          0.1,
		ComboBonusMax:              1,
		AnticipationBonusThreshold: 2,
		AnticipationWindow:         8,
		UpgradeCap:                 5,
	}
}

// applyDefaults fills zero-valued fields from DefaultConfig.
func (c Config) applyDefaults() Config {
	d := DefaultConfig()
	if c.PerfectMs <= 0 {
		c.PerfectMs = d.PerfectMs
	}
	if c.BestMs <= 0 {
		c.BestMs = d.BestMs
	}
	if c.GoodMs <= 0 {
		c.GoodMs = d.GoodMs
	}
	if c.BasePoints <= 0 {
		c.BasePoints = d.BasePoints
	}
	if c.SlowMultiplier <= 0 {
		c.SlowMultiplier = d.SlowMultiplier
	}
	if c.GoodMultiplier <= 0 {
		c.GoodMultiplier = d.GoodMultiplier
	}
	if c.BestMultiplier <= 0 {
		c.BestMultiplier = d.BestMultiplier
	}
	if c.PerfectMultiplier <= 0 {
		c.PerfectMultiplier = d.PerfectMultiplier
	}
	if c.ComboDivisor <= 0 {
		c.ComboDivisor = d.ComboDivisor
	}
	if c.ComboCap <= 0 {
		c.ComboCap = d.ComboCap
	}
	if c.ComboBonusStep <= 0 {
		c.ComboBonusStep = d.ComboBonusStep
	}
	if c.ComboBonusPerStep <= 0 {
		c.ComboBonusPerStep = d.ComboBonusPerStep
	}
	if c.ComboBonusMax <= 0 {
		c.ComboBonusMax = d.ComboBonusMax
	}
	if c.AnticipationBonusThreshold <= 0 {
		c.AnticipationBonusThreshold = d.AnticipationBonusThreshold
	}
	if c.AnticipationWindow <= 0 {
		c.AnticipationWindow = d.AnticipationWindow
	}
	if c.UpgradeCap <= 0 {
		c.UpgradeCap = d.UpgradeCap
	}
	return c
}

// Validate checks that speed thresholds are strictly increasing and the
// anticipation threshold is reachable.
func (c Config) Validate() error {
	c = c.applyDefaults()
	if !(c.PerfectMs < c.BestMs && c.BestMs < c.GoodMs) {
		return fmt.Errorf("speed thresholds must increase: perfect %d < best %d < good %d", c.PerfectMs, c.BestMs, c.GoodMs)
	}
	if c.AnticipationBonusThreshold > maxAnticipation {
		return fmt.Errorf("anticipation bonus threshold must be <= %.0f", maxAnticipation)
	}
	return nil
}

// Classify maps an inter-keystroke latency to a speed class.
func (c Config) Classify(latencyMs int64) SpeedClass {
	switch {
	case latencyMs < c.PerfectMs:
		return SpeedPerfect
	case latencyMs < c.BestMs:
		return SpeedBest
	case latencyMs < c.GoodMs:
		return SpeedGood
	default:
		return SpeedSlow
	}
}

func (c Config) speedMultiplier(speed SpeedClass) float64 {
	switch speed {
	case SpeedPerfect:
		return c.PerfectMultiplier
	case SpeedBest:
		return c.BestMultiplier
	case SpeedGood:
		return c.GoodMultiplier
	case SpeedSlow:
		return c.SlowMultiplier
	default:
		return c.SlowMultiplier
	}
}

// baselinePoints scores a correct character that completes no concept.
func (c Config) baselinePoints(speed SpeedClass, combo int) float64 {
	scale := 1 + float64(combo)/c.ComboDivisor
	if scale > c.ComboCap {
		scale = c.ComboCap
	}
	return c.BasePoints * c.speedMultiplier(speed) * scale
}

// comboBonusFactor is the extra concept multiplier earned by the combo.
func (c Config) comboBonusFactor(combo int) float64 {
	f := float64(combo/c.ComboBonusStep) * c.ComboBonusPerStep
	if f > c.ComboBonusMax {
		f = c.ComboBonusMax
	}
	return f
}
