package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	in := "a := 1  \r\nb := 2\t\rc\xff\n\n\n"
	got := Normalize(in)
	want := "a := 1\nb := 2\nc�"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if Normalize("\tindent\n") != "\tindent" {
		t.Fatalf("expected leading tabs to survive")
	}
}

func TestLoadDetectsLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\r\n\r\nfunc main() {}\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	snip, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snip.Language != "Go" {
		t.Fatalf("expected Go, got %q", snip.Language)
	}
	if snip.Name != "main.go" || strings.Contains(snip.Text, "\r") {
		t.Fatalf("unexpected snippet: %+v", snip)
	}
	if len(snip.Lines()) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(snip.Lines()))
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.js")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	blank := filepath.Join(dir, "blank.js")
	if err := os.WriteFile(blank, []byte("  \n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(blank); err == nil {
		t.Fatalf("expected error for blank file")
	}
}

func TestDetectLanguageFallsBack(t *testing.T) {
	if got := DetectLanguage("notes.py", ""); got != "Python" {
		t.Fatalf("expected Python from file name, got %q", got)
	}
	if got := DetectLanguage("", "zzz"); got == "" {
		t.Fatalf("expected a language name")
	}
}

func TestBuiltin(t *testing.T) {
	snippets := Builtin()
	if len(snippets) < 4 {
		t.Fatalf("expected bundled snippets")
	}
	for _, s := range snippets {
		if s.Text != Normalize(s.Text) {
			t.Fatalf("%s is not normalized", s.Name)
		}
	}
	snippets[0].Name = "changed"
	if Builtin()[0].Name == "changed" {
		t.Fatalf("Builtin must return a copy")
	}
}
