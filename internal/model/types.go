// Package model defines shared data structures.
package model

import "github.com/verte-zerg/codetype/internal/engine"

// Layout modes accepted by the practice screen.
const (
	LayoutTerminal = "terminal"
	LayoutEditor   = "editor"
)

// Config defines practice settings.
type Config struct {
	// File is the source to practice; empty selects a built-in snippet.
	File string
	// Lines is the snippet window height; 0 practices the whole file.
	Lines int
	// Width is the fraction of the terminal used for the code column.
	Width      float64
	Layout     string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	Engine     engine.Config
}

// ReplayEvent is one line of a recorded keystroke log.
type ReplayEvent struct {
	Char        string `json:"char"`
	TimestampMs int64  `json:"timestampMs"`
}
