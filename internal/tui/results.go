package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codetype/internal/concept"
	"github.com/verte-zerg/codetype/internal/progress"
	"github.com/verte-zerg/codetype/internal/stats"
)

const (
	tabOverview = iota
	tabSyntax
	tabConcepts
)

const plotHeight = 8

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// results is the post-session screen: summary cards and curves, the
// per-syntax table, and the completed concepts.
type results struct {
	report  stats.Report
	summary progress.Summary
	xp      int
	// rejected is set when the progression bounds refused the session.
	rejected error

	tabs      []string
	activeTab int
	overview  viewport.Model
	syntax    table.Model
	concepts  table.Model

	width  int
	height int
}

func newResults(report stats.Report, summary progress.Summary, xp int, rejected error) *results {
	r := &results{
		report:   report,
		summary:  summary,
		xp:       xp,
		rejected: rejected,
		tabs:     []string{"Overview", "Syntax", "Concepts"},
		overview: viewport.New(0, 0),
	}
	cols, rows := syntaxTableData(report.Syntax)
	r.syntax = newTable(cols, rows)
	cols, rows = conceptTableData(report.Aggregate.PatternMatches)
	r.concepts = newTable(cols, rows)
	return r
}

func (r *results) setSize(width, height int) {
	r.width = width
	r.height = height
	_, bodyHeight, _ := r.layoutHeights()
	r.overview.Width = width
	r.overview.Height = bodyHeight
	for _, t := range []*table.Model{&r.syntax, &r.concepts} {
		t.SetWidth(width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	r.overview.SetContent(renderOverview(r.report, r.xp, r.rejected, width))
}

func (r *results) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		r.moveTab(-1)
		return tea.ClearScreen
	case "right", "l":
		r.moveTab(1)
		return tea.ClearScreen
	case "g", "home":
		switch r.activeTab {
		case tabSyntax:
			r.syntax.GotoTop()
		case tabConcepts:
			r.concepts.GotoTop()
		default:
			r.overview.GotoTop()
		}
		return nil
	case "G", "end":
		switch r.activeTab {
		case tabSyntax:
			r.syntax.GotoBottom()
		case tabConcepts:
			r.concepts.GotoBottom()
		default:
			r.overview.GotoBottom()
		}
		return nil
	}
	var cmd tea.Cmd
	switch r.activeTab {
	case tabSyntax:
		r.syntax, cmd = r.syntax.Update(msg)
	case tabConcepts:
		r.concepts, cmd = r.concepts.Update(msg)
	default:
		r.overview, cmd = r.overview.Update(msg)
	}
	return cmd
}

func (r *results) moveTab(delta int) {
	count := len(r.tabs)
	r.activeTab = ((r.activeTab+delta)%count + count) % count
	r.syntax.Blur()
	r.concepts.Blur()
	switch r.activeTab {
	case tabSyntax:
		r.syntax.Focus()
	case tabConcepts:
		r.concepts.Focus()
	}
}

func (r *results) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1
	footerHeight = 1
	bodyHeight = max(1, r.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (r *results) view() string {
	if r.width == 0 || r.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := r.layoutHeights()
	header := fitLines(r.renderHeader(), r.width, headerHeight)
	body := fitLines(r.renderBody(), r.width, bodyHeight)
	footer := fitLines(headerStyle.Render("←/→: tabs  ↑/↓: scroll  enter: next snippet  q: quit"), r.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (r *results) renderHeader() string {
	parts := make([]string, 0, len(r.tabs))
	for i, tab := range r.tabs {
		if i == r.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	info := headerStyle.Render(fmt.Sprintf("session %s", shortID(r.summary.SessionID)))
	return tabs + "\n" + info
}

func (r *results) renderBody() string {
	switch r.activeTab {
	case tabSyntax:
		if len(r.report.Syntax) == 0 {
			return "No keystrokes recorded."
		}
		return tableMutedStyle.Render(r.syntax.View())
	case tabConcepts:
		if len(r.report.Aggregate.PatternMatches) == 0 {
			return "No concepts completed."
		}
		return tableMutedStyle.Render(r.concepts.View())
	default:
		return r.overview.View()
	}
}

func renderOverview(report stats.Report, xp int, rejected error, width int) string {
	agg := report.Aggregate
	cards := []string{
		metricCard("Score", fmt.Sprintf("%d", agg.TotalScore())),
		metricCard("WPM", fmt.Sprintf("%.1f", agg.WPM)),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", agg.Accuracy)),
		metricCard("Max Combo", fmt.Sprintf("%d", agg.MaxCombo)),
		metricCard("XP", fmt.Sprintf("+%d", xp)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	parts := []string{summary}
	if rejected != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("No XP awarded: %v", rejected)))
	}
	if weak := stats.WeakChars(report.Chars, 5); len(weak) > 0 {
		parts = append(parts, headerStyle.Render("Weak keys: "+strings.Join(weak, " ")))
	}
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, report, 5, width, plotHeight, true); err != nil {
		parts = append(parts, fmt.Sprintf("Failed to render curves: %v", err))
	} else if buf.Len() > 0 {
		parts = append(parts, strings.TrimRight(buf.String(), "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newTable(cols []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func syntaxTableData(rows []stats.SyntaxStat) ([]table.Column, []table.Row) {
	cols := []table.Column{
		{Title: "Syntax", Width: 10},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Latency (ms)", Width: 17},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
	}
	out := make([]table.Row, 0, len(rows))
	for _, s := range rows {
		out = append(out, table.Row{
			s.Syntax.String(),
			fmt.Sprintf("%.2f%%", s.Accuracy()*100),
			fmt.Sprintf("%.1f", s.AvgLatency()),
			fmt.Sprintf("%d", s.Correct),
			fmt.Sprintf("%d", s.Incorrect),
		})
	}
	return cols, out
}

func conceptTableData(spans []concept.Span) ([]table.Column, []table.Row) {
	cols := []table.Column{
		{Title: "Type", Width: 16},
		{Title: "Name", Width: 20},
		{Title: "Line", Width: 5},
		{Title: "Score", Width: 6},
	}
	out := make([]table.Row, 0, len(spans))
	for _, s := range concept.SortByPosition(spans) {
		out = append(out, table.Row{
			s.Type.String(),
			truncateLine(s.Name, 20),
			fmt.Sprintf("%d", s.Line+1),
			fmt.Sprintf("%d", s.Score),
		})
	}
	return cols, out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
