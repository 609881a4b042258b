// Package tokenizer turns source text into a per-rune, syntax-aware token stream.
package tokenizer

import "strings"

// SyntaxType classifies a single token.
type SyntaxType int

const (
	Text SyntaxType = iota
	Keyword
	String
	Number
	Operator
	Bracket
	Whitespace
	Comment
	Newline
)

// String returns the lowercase name of the syntax type.
func (s SyntaxType) String() string {
	switch s {
	case Text:
		return "text"
	case Keyword:
		return "keyword"
	case String:
		return "string"
	case Number:
		return "number"
	case Operator:
		return "operator"
	case Bracket:
		return "bracket"
	case Whitespace:
		return "whitespace"
	case Comment:
		return "comment"
	case Newline:
		return "newline"
	default:
		return "unknown"
	}
}

// AllSyntaxTypes lists every syntax type in declaration order.
var AllSyntaxTypes = []SyntaxType{Text, Keyword, String, Number, Operator, Bracket, Whitespace, Comment, Newline}

// Token is one classified rune of the source text.
type Token struct {
	Char      rune
	Syntax    SyntaxType
	Line      int
	Col       int
	Indent    int
	InString  bool
	InComment bool
}

const (
	brackets  = "(){}[]"
	operators = "+-*/%=<>!&|^~?:;.,@#"
)

var keywords = func() map[string]struct{} {
	words := []string{
		// JavaScript / TypeScript
		"async", "await", "break", "case", "catch", "class", "const", "continue",
		"debugger", "default", "delete", "do", "else", "export", "extends", "false",
		"finally", "for", "function", "if", "import", "in", "instanceof", "let",
		"new", "null", "of", "return", "static", "super", "switch", "this", "throw",
		"true", "try", "typeof", "undefined", "var", "void", "while", "yield",
		"interface", "type", "enum", "implements", "public", "private", "protected",
		// Go
		"chan", "defer", "func", "go", "goto", "map", "package", "range", "select",
		"struct", "fallthrough", "nil",
		// Python
		"and", "as", "def", "del", "elif", "except", "from", "global", "is",
		"lambda", "nonlocal", "not", "or", "pass", "raise", "with", "None", "True",
		"False", "self",
		// Rust
		"fn", "impl", "mut", "pub", "use", "mod", "trait", "match", "loop", "where",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsKeyword reports whether word belongs to the keyword set.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// Tokenize converts text into one token per rune. For valid UTF-8 input,
// concatenating the Char of every token reproduces text exactly; each
// invalid byte becomes one U+FFFD token.
func Tokenize(text string) []Token {
	lines := strings.Split(text, "\n")
	out := make([]Token, 0, len(text))
	for lineIdx, line := range lines {
		runes := []rune(line)
		indent := IndentLevel(runes)
		out = appendLine(out, runes, lineIdx, indent)
		if lineIdx < len(lines)-1 {
			out = append(out, Token{
				Char:   '\n',
				Syntax: Newline,
				Line:   lineIdx,
				Col:    len(runes),
				Indent: indent,
			})
		}
	}
	return out
}

// IndentLevel is (leading spaces + 4*leading tabs) / 2.
func IndentLevel(line []rune) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width / 2
		}
	}
	return width / 2
}

func appendLine(out []Token, runes []rune, lineIdx, indent int) []Token {
	var (
		inString  bool
		inComment bool
		escaped   bool
		delim     rune
		wordStart = -1
	)
	base := len(out)

	flushWord := func(end int) {
		if wordStart < 0 {
			return
		}
		if IsKeyword(string(runes[wordStart:end])) {
			for i := wordStart; i < end; i++ {
				if out[base+i].Syntax == Text {
					out[base+i].Syntax = Keyword
				}
			}
		}
		wordStart = -1
	}

	for col, r := range runes {
		wasString := inString
		switch {
		case inComment:
		case inString:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == delim:
				inString = false
			}
		case r == '/' && col+1 < len(runes) && runes[col+1] == '/':
			inComment = true
		case isQuote(r):
			inString = true
			delim = r
		}
		stringTok := inString || wasString

		if isIdentRune(r) && !stringTok && !inComment {
			if wordStart < 0 {
				wordStart = col
			}
		} else {
			flushWord(col)
		}

		out = append(out, Token{
			Char:      r,
			Syntax:    classify(r, inComment, stringTok),
			Line:      lineIdx,
			Col:       col,
			Indent:    indent,
			InString:  stringTok,
			InComment: inComment,
		})
	}
	flushWord(len(runes))
	return out
}

func classify(r rune, inComment, inString bool) SyntaxType {
	switch {
	case inComment:
		return Comment
	case inString:
		return String
	case strings.ContainsRune(brackets, r):
		return Bracket
	case strings.ContainsRune(operators, r):
		return Operator
	case r >= '0' && r <= '9':
		return Number
	case r == ' ' || r == '\t' || r == '\r':
		return Whitespace
	default:
		return Text
	}
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '`'
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Join reassembles the source text from tokens.
func Join(tokens []Token) string {
	var b strings.Builder
	b.Grow(len(tokens))
	for _, t := range tokens {
		b.WriteRune(t.Char)
	}
	return b.String()
}

// Lines groups tokens by source line. Newline tokens stay with the line they end.
func Lines(tokens []Token) [][]Token {
	if len(tokens) == 0 {
		return nil
	}
	lines := [][]Token{}
	start := 0
	for i, t := range tokens {
		if t.Syntax == Newline {
			lines = append(lines, tokens[start:i+1])
			start = i + 1
		}
	}
	lines = append(lines, tokens[start:])
	return lines
}

// CountBySyntax tallies tokens per syntax type.
func CountBySyntax(tokens []Token) map[SyntaxType]int {
	counts := make(map[SyntaxType]int, len(AllSyntaxTypes))
	for _, t := range tokens {
		counts[t.Syntax]++
	}
	return counts
}
