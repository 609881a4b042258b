// Package concept detects programming constructs in source text for bonus scoring.
package concept

import (
	"regexp"
	"sort"
	"strings"

	"github.com/verte-zerg/codetype/internal/tokenizer"
)

// Type is the category of a detected construct.
type Type int

const (
	Variable Type = iota
	Function
	Class
	Method
	Property
	String
	Number
	Comment
	ControlStructure
	ImportExport
	DesignPattern
)

// String returns the camelCase name of the concept type.
func (t Type) String() string {
	switch t {
	case Variable:
		return "variable"
	case Function:
		return "function"
	case Class:
		return "class"
	case Method:
		return "method"
	case Property:
		return "property"
	case String:
		return "string"
	case Number:
		return "number"
	case Comment:
		return "comment"
	case ControlStructure:
		return "controlStructure"
	case ImportExport:
		return "importExport"
	case DesignPattern:
		return "designPattern"
	default:
		return "unknown"
	}
}

// Points returns the fixed score awarded for completing a span of this type.
func (t Type) Points() int {
	switch t {
	case Variable:
		return 10
	case Function:
		return 25
	case Class:
		return 50
	case Method:
		return 20
	case Property:
		return 10
	case String:
		return 5
	case Number:
		return 5
	case Comment:
		return 2
	case ControlStructure:
		return 30
	case ImportExport:
		return 20
	case DesignPattern:
		return 100
	default:
		return 0
	}
}

// Span is a contiguous range of one source line recognized as a construct.
// Columns count runes; EndCol is exclusive.
type Span struct {
	Type     Type
	Name     string
	Line     int
	StartCol int
	EndCol   int
	Score    int
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.EndCol - s.StartCol
}

// matcher recognizes one category on a single line. Matches return rune
// columns so spans stay aligned with the tokenizer index space.
type matcher struct {
	typ   Type
	match func(line string) []lineMatch
}

type lineMatch struct {
	name     string
	startCol int
	endCol   int
	typ      Type
}

const ident = `[A-Za-z_$][\w$]*`

var (
	classRe     = regexp.MustCompile(`\bclass\s+(` + ident + `)`)
	jsFuncRe    = regexp.MustCompile(`\bfunction\s*\*?\s*(` + ident + `)\s*\(`)
	goFuncRe    = regexp.MustCompile(`\bfunc\s+(?:\([^)]*\)\s*)?(` + ident + `)\s*[\[(]`)
	pyFuncRe    = regexp.MustCompile(`\bdef\s+(` + ident + `)\s*\(`)
	arrowRe     = regexp.MustCompile(`\b(?:const|let|var)\s+(` + ident + `)\s*=\s*(?:async\s*)?(?:\([^)]*\)|` + ident + `)\s*=>`)
	varDeclRe   = regexp.MustCompile(`\b(?:let|const|var)\s+(` + ident + `)`)
	shortVarRe  = regexp.MustCompile(`(` + ident + `)\s*:=`)
	importRe    = regexp.MustCompile(`\b(import|export|require)\b`)
	controlRe   = regexp.MustCompile(`\b(if|else|for|while|switch|case|try|catch|finally|do|return|break|continue)\b`)
	memberRe    = regexp.MustCompile(`\.(` + ident + `)(\s*\()?`)
	methodDefRe = regexp.MustCompile(`^\s*(?:(?:static|async|public|private|protected)\s+)*(` + ident + `)\s*\([^)]*\)\s*\{`)
	stringRe    = regexp.MustCompile("\"(?:[^\"\\\\]|\\\\.)*\"|'(?:[^'\\\\]|\\\\.)*'|`(?:[^`\\\\]|\\\\.)*`")
	numberRe    = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// matchers run in this order; earlier matchers win ties in the concept index.
var matchers = []matcher{
	{typ: Class, match: nameMatches(Class, classRe)},
	{typ: Function, match: nameMatches(Function, jsFuncRe, goFuncRe, pyFuncRe)},
	{typ: Function, match: nameMatches(Function, arrowRe)},
	{typ: Variable, match: declMatches(varDeclRe, shortVarRe)},
	{typ: ImportExport, match: wholeMatches(ImportExport, importRe, 1)},
	{typ: ControlStructure, match: wholeMatches(ControlStructure, controlRe, 1)},
	{typ: Method, match: memberMatches},
	{typ: Method, match: methodDefMatches},
	{typ: Comment, match: commentMatches},
	{typ: String, match: stringMatches},
	{typ: Number, match: wholeMatches(Number, numberRe, 0)},
}

// nameMatches spans from the start of the match to the end of the captured name.
func nameMatches(typ Type, res ...*regexp.Regexp) func(string) []lineMatch {
	return func(line string) []lineMatch {
		var out []lineMatch
		for _, re := range res {
			for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
				out = append(out, lineMatch{
					name:     line[loc[2]:loc[3]],
					startCol: runeCol(line, loc[0]),
					endCol:   runeCol(line, loc[3]),
					typ:      typ,
				})
			}
		}
		return out
	}
}

// declMatches covers `let x` style declarations and `x :=` short declarations.
func declMatches(keywordRe, shortRe *regexp.Regexp) func(string) []lineMatch {
	named := nameMatches(Variable, keywordRe)
	return func(line string) []lineMatch {
		out := named(line)
		for _, loc := range shortRe.FindAllStringSubmatchIndex(line, -1) {
			out = append(out, lineMatch{
				name:     line[loc[2]:loc[3]],
				startCol: runeCol(line, loc[2]),
				endCol:   runeCol(line, loc[3]),
				typ:      Variable,
			})
		}
		return out
	}
}

func wholeMatches(typ Type, re *regexp.Regexp, group int) func(string) []lineMatch {
	return func(line string) []lineMatch {
		var out []lineMatch
		for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
			out = append(out, lineMatch{
				name:     line[loc[2*group]:loc[2*group+1]],
				startCol: runeCol(line, loc[0]),
				endCol:   runeCol(line, loc[1]),
				typ:      typ,
			})
		}
		return out
	}
}

// memberMatches emits a method for `.name(` and a property for `.name`.
func memberMatches(line string) []lineMatch {
	var out []lineMatch
	for _, loc := range memberRe.FindAllStringSubmatchIndex(line, -1) {
		typ := Property
		if loc[4] >= 0 {
			typ = Method
		}
		out = append(out, lineMatch{
			name:     line[loc[2]:loc[3]],
			startCol: runeCol(line, loc[2]),
			endCol:   runeCol(line, loc[3]),
			typ:      typ,
		})
	}
	return out
}

// methodDefMatches recognizes class-body method definitions such as
// `static getInstance() {`.
func methodDefMatches(line string) []lineMatch {
	loc := methodDefRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil
	}
	name := line[loc[2]:loc[3]]
	if tokenizer.IsKeyword(name) {
		return nil
	}
	return []lineMatch{{
		name:     name,
		startCol: runeCol(line, loc[2]),
		endCol:   runeCol(line, loc[3]),
		typ:      Method,
	}}
}

func commentMatches(line string) []lineMatch {
	start := commentStart(line)
	if start < 0 {
		return nil
	}
	return []lineMatch{{
		name:     strings.TrimSpace(strings.TrimPrefix(line[start:], "//")),
		startCol: runeCol(line, start),
		endCol:   runeCol(line, len(line)),
		typ:      Comment,
	}}
}

func stringMatches(line string) []lineMatch {
	var out []lineMatch
	for _, loc := range stringRe.FindAllStringIndex(line, -1) {
		lit := line[loc[0]:loc[1]]
		out = append(out, lineMatch{
			name:     lit[1 : len(lit)-1],
			startCol: runeCol(line, loc[0]),
			endCol:   runeCol(line, loc[1]),
			typ:      String,
		})
	}
	return out
}

// commentStart returns the byte offset of the first `//` outside a string, or -1.
func commentStart(line string) int {
	var delim byte
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if delim != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == delim:
				delim = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			delim = c
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return i
			}
		}
	}
	return -1
}

func runeCol(line string, byteOffset int) int {
	return len([]rune(line[:byteOffset]))
}

// Detect scans text line by line and returns all concept spans, followed by
// any design-pattern spans inferred from them. It never fails.
func Detect(text string) []Span {
	var spans []Span
	for lineIdx, line := range strings.Split(text, "\n") {
		spans = append(spans, detectLine(line, lineIdx)...)
	}
	return append(spans, DetectPatterns(spans)...)
}

func detectLine(line string, lineIdx int) []Span {
	commentCol := -1
	if start := commentStart(line); start >= 0 {
		commentCol = runeCol(line, start)
	}
	var stringRanges [][2]int
	for _, lm := range stringMatches(line) {
		stringRanges = append(stringRanges, [2]int{lm.startCol, lm.endCol})
	}
	var out []Span
	for _, m := range matchers {
		for _, lm := range m.match(line) {
			if commentCol >= 0 && lm.typ != Comment && lm.startCol >= commentCol {
				continue
			}
			// Only the literal itself scores inside quotes.
			if lm.typ != String && lm.typ != Comment && insideAny(lm.startCol, stringRanges) {
				continue
			}
			if overlapsSameType(out, lm) {
				continue
			}
			out = append(out, Span{
				Type:     lm.typ,
				Name:     lm.name,
				Line:     lineIdx,
				StartCol: lm.startCol,
				EndCol:   lm.endCol,
				Score:    lm.typ.Points(),
			})
		}
	}
	return out
}

func insideAny(col int, ranges [][2]int) bool {
	for _, r := range ranges {
		if col >= r[0] && col < r[1] {
			return true
		}
	}
	return false
}

func overlapsSameType(spans []Span, lm lineMatch) bool {
	for _, s := range spans {
		if s.Type != lm.typ {
			continue
		}
		if lm.startCol < s.EndCol && s.StartCol < lm.endCol {
			return true
		}
	}
	return false
}

// DetectPatterns infers coarse design patterns from naming conventions.
// Each pattern span is placed on the span that triggered it.
func DetectPatterns(spans []Span) []Span {
	var (
		hasClass     bool
		getInstance  *Span
		factory      *Span
		observers    []*Span
		patternSpans []Span
	)
	for i := range spans {
		s := &spans[i]
		switch s.Type {
		case Class:
			hasClass = true
		case Method:
			if s.Name == "getInstance" && getInstance == nil {
				getInstance = s
			}
			if containsAny(strings.ToLower(s.Name), "subscribe", "notify", "observe") {
				observers = append(observers, s)
			}
		case Function:
			if factory == nil && containsAny(strings.ToLower(s.Name), "create", "make", "build") {
				factory = s
			}
		}
	}
	if hasClass && getInstance != nil {
		patternSpans = append(patternSpans, patternSpan("Singleton", *getInstance))
	}
	if factory != nil {
		patternSpans = append(patternSpans, patternSpan("Factory", *factory))
	}
	if len(observers) >= 2 {
		patternSpans = append(patternSpans, patternSpan("Observer", *observers[1]))
	}
	return patternSpans
}

func patternSpan(name string, at Span) Span {
	return Span{
		Type:     DesignPattern,
		Name:     name,
		Line:     at.Line,
		StartCol: at.StartCol,
		EndCol:   at.EndCol,
		Score:    DesignPattern.Points(),
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CountByType tallies spans per concept type.
func CountByType(spans []Span) map[Type]int {
	counts := map[Type]int{}
	for _, s := range spans {
		counts[s.Type]++
	}
	return counts
}

// SortByPosition orders spans by line, start column, then detection order.
func SortByPosition(spans []Span) []Span {
	out := make([]Span, len(spans))
	copy(out, spans)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].StartCol < out[j].StartCol
	})
	return out
}
