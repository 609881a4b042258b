package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/codetype/internal/concept"
	"github.com/verte-zerg/codetype/internal/layout"
	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/source"
	"github.com/verte-zerg/codetype/internal/stats"
	"github.com/verte-zerg/codetype/internal/tokenizer"
)

var (
	inspectColumns int
	inspectLayout  string
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show tokens, concepts, and layout of a source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectCmd,
	}
	cmd.Flags().IntVar(&inspectColumns, "columns", 80, "wrap width in cells")
	cmd.Flags().StringVar(&inspectLayout, "layout", model.LayoutTerminal, "layout metrics: terminal or editor")
	return cmd
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	if inspectColumns <= 0 {
		return fmt.Errorf("--columns must be > 0")
	}
	metrics, err := layout.MetricsForMode(inspectLayout)
	if err != nil {
		return fmt.Errorf("--layout: %w", err)
	}
	snip, err := source.Load(args[0])
	if err != nil {
		return err
	}
	tokens := tokenizer.Tokenize(snip.Text)
	spans := concept.Detect(snip.Text)
	l := layout.Compute(tokens, float64(inspectColumns)*metrics.CharWidth, metrics)

	w := cmd.OutOrStdout()
	header := []string{
		fmt.Sprintf("File: %s", snip.Name),
		fmt.Sprintf("Language: %s", snip.Language),
		fmt.Sprintf("Lines: %d", len(snip.Lines())),
		fmt.Sprintf("Visual lines: %d at %d columns", l.Lines(), l.Columns()),
		fmt.Sprintf("Concept points: %d", conceptPoints(spans)),
		"",
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := stats.RenderTokenCounts(w, tokens); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderConcepts(w, spans); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func conceptPoints(spans []concept.Span) int {
	total := 0
	for _, s := range spans {
		total += s.Score
	}
	return total
}
