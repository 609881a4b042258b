package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/layout"
	"github.com/verte-zerg/codetype/internal/tokenizer"
)

const (
	newlineMarker = "↵"
	wrongSpace    = "•"
)

var (
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Underline(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	flashStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)

	syntaxColors = map[tokenizer.SyntaxType]lipgloss.Color{
		tokenizer.Keyword:  lipgloss.Color("#7A6FA8"),
		tokenizer.String:   lipgloss.Color("#6F8F5F"),
		tokenizer.Number:   lipgloss.Color("#A8835A"),
		tokenizer.Operator: lipgloss.Color("#7F8C8D"),
		tokenizer.Bracket:  lipgloss.Color("#8C8C8C"),
		tokenizer.Comment:  lipgloss.Color("#5A5A5A"),
	}

	speedStyles = map[engine.SpeedClass]lipgloss.Style{
		engine.SpeedSlow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#D4B46A")),
		engine.SpeedGood:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")),
		engine.SpeedBest:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6EC6D9")),
		engine.SpeedPerfect: lipgloss.NewStyle().Foreground(lipgloss.Color("#73D17A")),
	}
)

// glyph is one drawn token. Tabs expand to their layout width.
type glyph struct {
	text  string
	style lipgloss.Style
}

type row []glyph

func (r row) plain() string {
	var b strings.Builder
	for _, g := range r {
		b.WriteString(g.text)
	}
	return b.String()
}

func (r row) render() string {
	var b strings.Builder
	for _, g := range r {
		if g.text == "" {
			continue
		}
		b.WriteString(g.style.Render(g.text))
	}
	return b.String()
}

// buildRows draws every token of the session at its layout position.
func buildRows(s *engine.Session, tokens []tokenizer.Token, l *layout.Layout) []row {
	rows := make([]row, l.Lines())
	widths := make([]int, l.Lines())
	for i, tok := range tokens {
		pos, err := l.Position(i)
		if err != nil {
			break
		}
		state, err := s.State(i)
		if err != nil {
			break
		}
		if pad := pos.Col - widths[pos.Line]; pad > 0 {
			rows[pos.Line] = append(rows[pos.Line], glyph{text: strings.Repeat(" ", pad), style: pendingStyle})
			widths[pos.Line] += pad
		}
		g := glyph{text: glyphText(tok, pos, state), style: styleFor(tok, state)}
		rows[pos.Line] = append(rows[pos.Line], g)
		widths[pos.Line] += pos.Width
	}
	return rows
}

func glyphText(tok tokenizer.Token, pos layout.Position, state engine.CharacterState) string {
	typing := state.Status == engine.StatusCurrent || state.Status == engine.StatusIncorrect
	switch tok.Char {
	case '\n':
		if typing {
			return newlineMarker
		}
		return ""
	case '\t':
		return strings.Repeat(" ", pos.Width)
	case ' ':
		if state.Status == engine.StatusIncorrect {
			return wrongSpace
		}
	}
	return string(tok.Char)
}

func styleFor(tok tokenizer.Token, state engine.CharacterState) lipgloss.Style {
	switch state.Status {
	case engine.StatusCorrect:
		style := speedStyles[state.Speed]
		if state.UpgradeLevel > 0 {
			style = style.Bold(true)
		}
		return style
	case engine.StatusIncorrect:
		return incorrectStyle
	case engine.StatusCurrent:
		return syntaxStyle(tok).Underline(true)
	default:
		return syntaxStyle(tok)
	}
}

func syntaxStyle(tok tokenizer.Token) lipgloss.Style {
	if c, ok := syntaxColors[tok.Syntax]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return pendingStyle
}

// visibleRange returns the rows to draw so that focus stays in the upper third.
func visibleRange(total, focus, height int) (start, end int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start = focus - height/3
	start = max(0, min(start, total-height))
	return start, start + height
}

func renderRows(rows []row, start, end int) string {
	lines := make([]string, 0, end-start)
	for _, r := range rows[start:end] {
		lines = append(lines, r.render())
	}
	return strings.Join(lines, "\n")
}
