// Package main provides the CLI entrypoint for codetype.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/codetype/internal/config"
	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/generator"
	"github.com/verte-zerg/codetype/internal/layout"
	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/source"
	"github.com/verte-zerg/codetype/internal/tui"
)

const (
	defaultLines      = 12
	defaultWidth      = 0.8
	defaultWeakTop    = 5
	defaultWeakFactor = 2.0
)

var (
	practiceFile       string
	practiceLines      int
	practiceWidth      float64
	practiceLayout     string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
)

// Speed thresholds are shared by practice and replay.
var (
	enginePerfectMs int64
	engineBestMs    int64
	engineGoodMs    int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "codetype",
		Short:         "TUI typing trainer for source code",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	defaults := engine.DefaultConfig()
	rootCmd.Flags().StringVar(&practiceFile, "file", "", "source file to practice (default: built-in snippets)")
	rootCmd.Flags().IntVar(&practiceLines, "lines", defaultLines, "lines per snippet window (0 for whole file)")
	rootCmd.Flags().Float64Var(&practiceWidth, "width", defaultWidth, "fraction of the terminal used for code (0-1]")
	rootCmd.Flags().StringVar(&practiceLayout, "layout", model.LayoutTerminal, "layout metrics: terminal or editor")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias the next snippet toward mistyped characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.PersistentFlags().Int64Var(&enginePerfectMs, "perfect-ms", defaults.PerfectMs, "latency below which a keystroke is perfect")
	rootCmd.PersistentFlags().Int64Var(&engineBestMs, "best-ms", defaults.BestMs, "latency below which a keystroke is best")
	rootCmd.PersistentFlags().Int64Var(&engineGoodMs, "good-ms", defaults.GoodMs, "latency below which a keystroke is good")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newReplayCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := resolvePracticeConfig(cmd, fileCfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	snippets, err := loadSnippets(cfg.File)
	if err != nil {
		return err
	}

	gen := generator.New()
	m := tui.NewModel(cfg, gen, snippets)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolvePracticeConfig merges file values into flags that were not set explicitly.
func resolvePracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.Config {
	applyStringConfig(cmd, "file", &practiceFile, fileCfg.Practice.File)
	applyIntConfig(cmd, "lines", &practiceLines, fileCfg.Practice.Lines)
	applyFloatConfig(cmd, "width", &practiceWidth, fileCfg.Practice.Width)
	applyStringConfig(cmd, "layout", &practiceLayout, fileCfg.Practice.Layout)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)

	return model.Config{
		File:       config.ExpandHome(practiceFile),
		Lines:      practiceLines,
		Width:      practiceWidth,
		Layout:     practiceLayout,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		Engine:     resolveEngineConfig(cmd, fileCfg),
	}
}

// resolveEngineConfig applies the [engine] table under the threshold flags.
func resolveEngineConfig(cmd *cobra.Command, fileCfg config.FileConfig) engine.Config {
	applyInt64Config(cmd, "perfect-ms", &enginePerfectMs, fileCfg.Engine.PerfectMs)
	applyInt64Config(cmd, "best-ms", &engineBestMs, fileCfg.Engine.BestMs)
	applyInt64Config(cmd, "good-ms", &engineGoodMs, fileCfg.Engine.GoodMs)

	eng := engine.DefaultConfig()
	eng.PerfectMs = enginePerfectMs
	eng.BestMs = engineBestMs
	eng.GoodMs = engineGoodMs
	if fileCfg.Engine.BasePoints != nil {
		eng.BasePoints = *fileCfg.Engine.BasePoints
	}
	if fileCfg.Engine.AnticipationWindow != nil {
		eng.AnticipationWindow = *fileCfg.Engine.AnticipationWindow
	}
	return eng
}

func loadSnippets(path string) ([]source.Snippet, error) {
	if path == "" {
		return source.Builtin(), nil
	}
	snip, err := source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load practice file: %w", err)
	}
	return []source.Snippet{snip}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if cfg.Lines < 0 {
		return fmt.Errorf("--lines must be >= 0")
	}
	if cfg.Width <= 0 || cfg.Width > 1 {
		return fmt.Errorf("--width must be in (0, 1]")
	}
	if _, err := layout.MetricsForMode(cfg.Layout); err != nil {
		return fmt.Errorf("--layout: %w", err)
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if err := cfg.Engine.Validate(); err != nil {
		return fmt.Errorf("invalid speed thresholds: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
