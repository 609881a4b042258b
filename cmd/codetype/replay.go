package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/codetype/internal/concept"
	"github.com/verte-zerg/codetype/internal/config"
	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/progress"
	"github.com/verte-zerg/codetype/internal/source"
	"github.com/verte-zerg/codetype/internal/stats"
	"github.com/verte-zerg/codetype/internal/tokenizer"
)

var replayCurveWindow int

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file> <keylog>",
		Short: "Score a recorded keystroke log against a source file",
		Args:  cobra.ExactArgs(2),
		RunE:  runReplayCmd,
	}
	cmd.Flags().IntVar(&replayCurveWindow, "curve-window", 5, "moving average window")
	return cmd
}

func runReplayCmd(cmd *cobra.Command, args []string) error {
	snip, err := source.Load(args[0])
	if err != nil {
		return err
	}
	events, err := readKeylogFile(args[1])
	if err != nil {
		return err
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	eng := resolveEngineConfig(cmd, fileCfg)
	if err := eng.Validate(); err != nil {
		return fmt.Errorf("invalid speed thresholds: %w", err)
	}

	s := engine.NewSession(snip.Text, concept.Detect(snip.Text), eng)
	s.Start(0)
	for i, ev := range events {
		r, _ := utf8.DecodeRuneInString(ev.Char)
		if _, err := s.Type(engine.Keystroke{Char: r, TimestampMs: ev.TimestampMs}); err != nil {
			if errors.Is(err, engine.ErrSessionComplete) {
				logErrf("ignoring %d keystrokes after completion\n", len(events)-i)
				break
			}
			return fmt.Errorf("failed to replay keystroke %d: %w", i+1, err)
		}
	}
	if !s.Complete() {
		logErrf("session incomplete: %d of %d characters typed\n", s.Current(), s.Len())
	}

	agg := s.Aggregate()
	report := stats.BuildReport(s.ID(), tokenizer.Tokenize(snip.Text), s.Samples(), agg)
	w := cmd.OutOrStdout()
	if err := stats.Render(w, report, replayCurveWindow); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	summary := progress.FromAggregate(s.ID(), agg)
	if err := progress.Validate(summary, progress.DefaultLimits()); err != nil {
		if _, werr := fmt.Fprintf(w, "XP: rejected (%v)\n", err); werr != nil {
			return fmt.Errorf("failed to write output: %w", werr)
		}
		return nil
	}
	if _, err := fmt.Fprintf(w, "XP: %d\n", progress.Experience(summary)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func readKeylogFile(path string) ([]model.ReplayEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keylog: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only keylog.
			_ = cerr
		}
	}()
	return readKeylog(file)
}

// readKeylog parses one JSON object per line. Blank lines are skipped.
func readKeylog(r io.Reader) ([]model.ReplayEvent, error) {
	var events []model.ReplayEvent
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var ev model.ReplayEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("keylog line %d: %w", line, err)
		}
		if utf8.RuneCountInString(ev.Char) != 1 {
			return nil, fmt.Errorf("keylog line %d: char must be a single character, got %q", line, ev.Char)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keylog: %w", err)
	}
	return events, nil
}
