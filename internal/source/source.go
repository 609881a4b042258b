// Package source loads code snippets for practice.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// PlainText is reported when no lexer recognizes a snippet.
const PlainText = "plaintext"

// Snippet is a named block of practice code.
type Snippet struct {
	Name     string
	Language string
	Text     string
}

// Lines splits the snippet text into lines.
func (s Snippet) Lines() []string {
	if s.Text == "" {
		return nil
	}
	return strings.Split(s.Text, "\n")
}

// Load reads path, normalizes its text, and detects its language.
func Load(path string) (Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snippet{}, fmt.Errorf("failed to read source %s: %w", path, err)
	}
	text := Normalize(string(data))
	if strings.TrimSpace(text) == "" {
		return Snippet{}, fmt.Errorf("source %s is empty", path)
	}
	return Snippet{
		Name:     filepath.Base(path),
		Language: DetectLanguage(path, text),
		Text:     text,
	}, nil
}

// Normalize converts line endings to \n, strips trailing whitespace from
// every line, drops trailing blank lines, and replaces invalid UTF-8.
func Normalize(text string) string {
	text = strings.ToValidUTF8(text, "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f\v")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// DetectLanguage names the language of text, preferring the file name and
// falling back to content analysis.
func DetectLanguage(path, text string) string {
	if path != "" {
		if l := lexers.Match(filepath.Base(path)); l != nil {
			return l.Config().Name
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l.Config().Name
	}
	return PlainText
}
