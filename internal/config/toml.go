// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Engine   EngineConfig   `toml:"engine"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	File       *string  `toml:"file"`
	Lines      *int     `toml:"lines"`
	Width      *float64 `toml:"width"`
	Layout     *string  `toml:"layout"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
}

// EngineConfig maps scoring thresholds.
type EngineConfig struct {
	PerfectMs          *int64   `toml:"perfect-ms"`
	BestMs             *int64   `toml:"best-ms"`
	GoodMs             *int64   `toml:"good-ms"`
	BasePoints         *float64 `toml:"base-points"`
	AnticipationWindow *int     `toml:"anticipation-window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `codetype config` when no file exists yet.
const Template = `# codetype configuration

[practice]
# file = "~/src/project/main.go"
# lines = 12
# width = 0.8
# layout = "terminal"
# focus-weak = true
# weak-top = 5
# weak-factor = 2.0

[engine]
# perfect-ms = 100
# best-ms = 180
# good-ms = 300
# base-points = 10
# anticipation-window = 8
`
