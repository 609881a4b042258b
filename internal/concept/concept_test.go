package concept

import (
	"errors"
	"testing"
)

func findSpan(spans []Span, typ Type, name string) (Span, bool) {
	for _, s := range spans {
		if s.Type == typ && s.Name == name {
			return s, true
		}
	}
	return Span{}, false
}

func TestDetectVariableAndNumber(t *testing.T) {
	spans := Detect("let x = 1;")
	counts := CountByType(spans)
	if counts[Variable] != 1 || counts[Number] != 1 || len(spans) != 2 {
		t.Fatalf("unexpected spans: %+v", spans)
	}
	v, _ := findSpan(spans, Variable, "x")
	if v.StartCol != 0 || v.EndCol != 5 || v.Score != 10 {
		t.Fatalf("unexpected variable span: %+v", v)
	}
	n, _ := findSpan(spans, Number, "1")
	if n.StartCol != 8 || n.EndCol != 9 || n.Score != 5 {
		t.Fatalf("unexpected number span: %+v", n)
	}
}

func TestDetectFactory(t *testing.T) {
	spans := Detect("function createWidget() {}")
	fn, ok := findSpan(spans, Function, "createWidget")
	if !ok {
		t.Fatalf("expected function span, got %+v", spans)
	}
	p, ok := findSpan(spans, DesignPattern, "Factory")
	if !ok {
		t.Fatalf("expected Factory pattern, got %+v", spans)
	}
	if p.Score != 100 || p.Line != fn.Line || p.EndCol != fn.EndCol {
		t.Fatalf("pattern should sit on its function span: %+v vs %+v", p, fn)
	}
}

func TestDetectSingleton(t *testing.T) {
	text := "class Config {\n  static getInstance() {\n    return Config.instance;\n  }\n}"
	spans := Detect(text)
	if _, ok := findSpan(spans, Class, "Config"); !ok {
		t.Fatalf("expected class span")
	}
	if _, ok := findSpan(spans, Method, "getInstance"); !ok {
		t.Fatalf("expected getInstance method span")
	}
	if _, ok := findSpan(spans, Property, "instance"); !ok {
		t.Fatalf("expected instance property span")
	}
	if _, ok := findSpan(spans, DesignPattern, "Singleton"); !ok {
		t.Fatalf("expected Singleton pattern")
	}
}

func TestDetectObserverNeedsTwoMethods(t *testing.T) {
	if _, ok := findSpan(Detect("bus.subscribe(fn);"), DesignPattern, "Observer"); ok {
		t.Fatalf("one observer method should not be enough")
	}
	spans := Detect("bus.subscribe(fn);\nbus.notify(evt);")
	p, ok := findSpan(spans, DesignPattern, "Observer")
	if !ok {
		t.Fatalf("expected Observer pattern")
	}
	if p.Line != 1 {
		t.Fatalf("expected pattern on second observer method, got line %d", p.Line)
	}
}

func TestDetectObserverCamelCase(t *testing.T) {
	spans := Detect("bus.addObserver(a);\nbus.removeObserver(b);")
	p, ok := findSpan(spans, DesignPattern, "Observer")
	if !ok {
		t.Fatalf("expected Observer pattern from camelCase methods, got %+v", spans)
	}
	if p.Line != 1 || p.StartCol != 4 || p.EndCol != 18 {
		t.Fatalf("expected pattern on removeObserver, got %+v", p)
	}
}

func TestDetectKeywordsInsideStringsDropped(t *testing.T) {
	spans := Detect(`const msg = "if you return, break for it"; import x from 'a.b()'`)
	counts := CountByType(spans)
	if counts[ControlStructure] != 0 || counts[Method] != 0 || counts[Property] != 0 {
		t.Fatalf("expected nothing scored inside string literals, got %v (%+v)", counts, spans)
	}
	if counts[String] != 2 || counts[Variable] != 1 || counts[ImportExport] != 1 {
		t.Fatalf("unexpected counts: %v (%+v)", counts, spans)
	}
}

func TestDetectIgnoresCommentedCode(t *testing.T) {
	spans := Detect("x := 2 // let y = 3")
	counts := CountByType(spans)
	if counts[Variable] != 1 || counts[Number] != 1 || counts[Comment] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	c, _ := findSpan(spans, Comment, "let y = 3")
	if c.StartCol != 7 || c.EndCol != 19 {
		t.Fatalf("unexpected comment span: %+v", c)
	}
}

func TestDetectNumbersInsideStringsDropped(t *testing.T) {
	spans := Detect(`s = "v2 1.5" + 3`)
	counts := CountByType(spans)
	if counts[String] != 1 || counts[Number] != 1 {
		t.Fatalf("unexpected counts: %v (%+v)", counts, spans)
	}
}

func TestDetectControlAndImports(t *testing.T) {
	spans := Detect("import fs from 'fs';\nif (ok) { return; }")
	counts := CountByType(spans)
	if counts[ImportExport] != 1 {
		t.Fatalf("expected import span, got %v", counts)
	}
	if counts[ControlStructure] != 2 {
		t.Fatalf("expected if and return, got %v", counts)
	}
}

func TestDetectGoFunctions(t *testing.T) {
	spans := Detect("func (s *Store) Close() error {")
	fn, ok := findSpan(spans, Function, "Close")
	if !ok {
		t.Fatalf("expected Close function span, got %+v", spans)
	}
	if fn.StartCol != 0 || fn.EndCol != 21 {
		t.Fatalf("unexpected function columns: %+v", fn)
	}
}

func TestDetectRuneColumns(t *testing.T) {
	spans := Detect(`s := "héllo"; n := 42`)
	n, ok := findSpan(spans, Number, "42")
	if !ok {
		t.Fatalf("expected number span")
	}
	if n.StartCol != 19 || n.EndCol != 21 {
		t.Fatalf("columns must count runes, got %+v", n)
	}
}

func TestDetectEmpty(t *testing.T) {
	if spans := Detect(""); len(spans) != 0 {
		t.Fatalf("expected no spans, got %+v", spans)
	}
}

func TestIndexPrefersShortestSpan(t *testing.T) {
	text := "const f = () => 1"
	spans := Detect(text)
	idx := NewIndex(text, spans)
	s, ok, err := idx.At(0)
	if err != nil || !ok {
		t.Fatalf("expected span at 0: %v", err)
	}
	if s.Type != Function {
		t.Fatalf("equal-length tie should go to the earlier detector, got %s", s.Type)
	}
	s, ok, _ = idx.At(16)
	if !ok || s.Type != Number {
		t.Fatalf("expected number at 16, got %+v", s)
	}
	if _, ok, _ := idx.At(9); ok {
		t.Fatalf("expected no concept at 9")
	}
}

func TestDetectArrowFunctionAlsoDeclaresVariable(t *testing.T) {
	spans := Detect("const f = () => 1")
	fn, okFn := findSpan(spans, Function, "f")
	v, okVar := findSpan(spans, Variable, "f")
	if !okFn || !okVar {
		t.Fatalf("expected function and variable spans, got %+v", spans)
	}
	if fn.StartCol != v.StartCol || fn.EndCol != v.EndCol {
		t.Fatalf("expected matching ranges, got %+v and %+v", fn, v)
	}
	if fn.Score+v.Score != 35 {
		t.Fatalf("expected 25+10 points, got %d", fn.Score+v.Score)
	}
}

func TestIndexEndingAt(t *testing.T) {
	text := "let x = 1;\nlet y = 2;"
	idx := NewIndex(text, Detect(text))
	if got := idx.EndingAt(4); len(got) != 1 || got[0].Name != "x" {
		t.Fatalf("expected x to end at 4, got %+v", got)
	}
	if got := idx.EndingAt(15); len(got) != 1 || got[0].Name != "y" {
		t.Fatalf("expected y to end at 15, got %+v", got)
	}
	if got := idx.EndingAt(3); got != nil {
		t.Fatalf("expected nothing at 3, got %+v", got)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	idx := NewIndex("ab", nil)
	for _, i := range []int{-1, 2} {
		if _, _, err := idx.At(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange for %d, got %v", i, err)
		}
	}
}

func TestMasteryBonus(t *testing.T) {
	repeat := func(typ Type, n int) []Span {
		out := make([]Span, n)
		for i := range out {
			out[i] = Span{Type: typ}
		}
		return out
	}
	cases := []struct {
		name  string
		spans []Span
		want  int
	}{
		{name: "none", spans: nil, want: 0},
		{name: "below", spans: repeat(Variable, 4), want: 0},
		{name: "five", spans: repeat(Variable, 5), want: 50},
		{name: "ten", spans: repeat(Variable, 12), want: 100},
		{name: "twenty", spans: repeat(Variable, 20), want: 200},
		{name: "mixed", spans: append(repeat(Variable, 10), repeat(Number, 5)...), want: 150},
	}
	for _, tc := range cases {
		if got := MasteryBonus(tc.spans); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}
