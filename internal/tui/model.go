// Package tui provides the Bubble Tea code typing interface.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codetype/internal/concept"
	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/generator"
	"github.com/verte-zerg/codetype/internal/layout"
	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/progress"
	"github.com/verte-zerg/codetype/internal/source"
	"github.com/verte-zerg/codetype/internal/stats"
	"github.com/verte-zerg/codetype/internal/tokenizer"
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	config   model.Config
	gen      *generator.Generator
	snippets []source.Snippet
	weakSet  map[rune]struct{}
	metrics  layout.Metrics
	now      func() time.Time

	width  int
	height int

	snippet source.Snippet
	tokens  []tokenizer.Token
	session *engine.Session
	layout  *layout.Layout
	readyAt time.Time
	flash   string

	results *results
}

// NewModel constructs a practice model over the given snippets.
func NewModel(cfg model.Config, gen *generator.Generator, snippets []source.Snippet) *Model {
	metrics, err := layout.MetricsForMode(cfg.Layout)
	if err != nil {
		logErrf("%v; using terminal layout\n", err)
		metrics = layout.Terminal
	}
	m := &Model{
		config:   cfg,
		gen:      gen,
		snippets: snippets,
		weakSet:  map[rune]struct{}{},
		metrics:  metrics,
		now:      time.Now,
	}
	m.resetSession()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		if m.results != nil {
			m.results.setSize(m.width, m.height)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.results != nil {
			return m.updateResults(msg)
		}
		switch msg.Type {
		case tea.KeyEsc:
			m.resetSession()
		case tea.KeyEnter:
			m.handleRunes([]rune{'\n'})
		case tea.KeyTab:
			m.handleRunes([]rune{'\t'})
		case tea.KeySpace:
			m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			m.handleRunes(msg.Runes)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "n":
		m.results = nil
		m.resetSession()
		return m, tea.ClearScreen
	}
	return m, m.results.update(msg)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.results != nil {
		return m.results.view()
	}
	if m.session == nil || m.session.Len() == 0 {
		return ""
	}
	rows := buildRows(m.session, m.tokens, m.layout)
	if m.width == 0 || m.height == 0 {
		return renderRows(rows, 0, len(rows))
	}
	if m.height < 4 {
		start, end := visibleRange(len(rows), m.focusRow(), m.height)
		return renderRows(rows, start, end)
	}
	bodyHeight := m.height - 2
	start, end := visibleRange(len(rows), m.focusRow(), bodyHeight)
	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(renderRows(rows, start, end))
	header := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderHeader())
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return header + "\n" + body + "\n" + footer
}

func (m *Model) handleRunes(runes []rune) {
	for _, r := range runes {
		if m.session.Complete() {
			return
		}
		ts := m.now().Sub(m.readyAt).Milliseconds()
		res, err := m.session.Type(engine.Keystroke{Char: r, TimestampMs: ts})
		if err != nil {
			if !errors.Is(err, engine.ErrSessionComplete) {
				logErrf("failed to process keystroke: %v\n", err)
			}
			return
		}
		if len(res.Matches) > 0 {
			m.flash = flashText(res)
		}
		if res.Complete {
			m.finishSession()
			return
		}
	}
}

func flashText(res engine.Result) string {
	names := make([]string, 0, len(res.Matches))
	for _, s := range res.Matches {
		if s.Name != "" {
			names = append(names, fmt.Sprintf("%s %s", s.Type, s.Name))
		} else {
			names = append(names, s.Type.String())
		}
	}
	return fmt.Sprintf("+%d %s", res.Points, strings.Join(names, ", "))
}

func (m *Model) finishSession() {
	agg := m.session.Aggregate()
	report := stats.BuildReport(m.session.ID(), m.tokens, m.session.Samples(), agg)
	summary := progress.FromAggregate(m.session.ID(), agg)
	xp := 0
	err := progress.Validate(summary, progress.DefaultLimits())
	if err == nil {
		xp = progress.Experience(summary)
	}
	if m.config.FocusWeak {
		m.weakSet = stats.WeakSet(report.Chars, m.config.WeakTop)
	}
	m.results = newResults(report, summary, xp, err)
	m.results.setSize(m.width, m.height)
}

func (m *Model) resetSession() {
	if len(m.snippets) == 0 {
		m.snippet = source.Snippet{}
	} else {
		m.snippet = m.snippets[m.gen.Pick(len(m.snippets))]
	}
	text := m.windowText()
	m.tokens = tokenizer.Tokenize(text)
	m.session = engine.NewSession(text, concept.Detect(text), m.config.Engine)
	m.readyAt = m.now()
	m.flash = ""
	m.relayout()
}

func (m *Model) windowText() string {
	lines := m.snippet.Lines()
	if m.config.FocusWeak && len(m.weakSet) > 0 {
		return m.gen.WindowWeighted(lines, m.config.Lines, m.weakSet, m.config.WeakFactor)
	}
	return m.gen.Window(lines, m.config.Lines)
}

func (m *Model) relayout() {
	width := float64(m.contentWidth()) * m.metrics.CharWidth
	m.layout = layout.Compute(m.tokens, width, m.metrics)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	frac := m.config.Width
	if frac <= 0 || frac > 1 {
		frac = 0.8
	}
	return max(1, int(float64(m.width)*frac))
}

func (m *Model) focusRow() int {
	idx := min(m.session.Current(), m.session.Len()-1)
	pos, err := m.layout.Position(idx)
	if err != nil {
		return 0
	}
	return pos.Line
}

func (m *Model) renderHeader() string {
	name := m.snippet.Name
	if name == "" {
		name = "snippet"
	}
	lang := m.snippet.Language
	if lang == "" {
		lang = source.PlainText
	}
	return footerStyle.Render(fmt.Sprintf("%s · %s  (esc: new snippet, ctrl+c: quit)", name, lang))
}

func (m *Model) renderFooter() string {
	if m.session == nil || m.session.Len() == 0 {
		return ""
	}
	agg := m.session.Aggregate()
	progressPct := int(float64(m.session.Current()) / float64(m.session.Len()) * 100)
	segments := []string{
		fmt.Sprintf("Progress %d%%", progressPct),
		fmt.Sprintf("Combo %d", agg.Combo),
		fmt.Sprintf("Score %d", agg.Score),
		fmt.Sprintf("%.1f WPM · %.1f%%", agg.WPM, agg.Accuracy),
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.flash != "" {
		footer += "  " + flashStyle.Render(m.flash)
	}
	return footer
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
