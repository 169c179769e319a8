package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	r := NewRenderer()
	source := []byte("# Hello World\n\nThis is a *test*.")

	result, err := r.Render(source)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(result.HTML, "<h1") || !strings.Contains(result.HTML, "Hello World</h1>") {
		t.Error("expected H1 tag containing 'Hello World' in HTML")
	}
	if !strings.Contains(result.HTML, "<em>test</em>") {
		t.Error("expected italicized test in HTML")
	}
	if result.Title != "Hello World" {
		t.Errorf("expected title Hello World, got %s", result.Title)
	}
}

func TestRenderNoHeading(t *testing.T) {
	r := NewRenderer()
	result, err := r.Render([]byte("just a paragraph"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Title != "" {
		t.Errorf("expected empty title, got %s", result.Title)
	}
}

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"README.md", true},
		{"notes.markdown", true},
		{"NOTES.MD", true},
		{"main.go", false},
		{"md", false},
	}
	for _, tt := range tests {
		if got := IsMarkdown(tt.name); got != tt.want {
			t.Errorf("IsMarkdown(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHighlight(t *testing.T) {
	out, err := Highlight("main.go", []byte("package main\n\nfunc main() {}\n"))
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if !strings.Contains(out, "<span") {
		t.Error("expected highlighted span elements in output")
	}
	if !strings.Contains(out, "main") {
		t.Error("expected source text to survive highlighting")
	}
}

func TestHighlightUnknownExtension(t *testing.T) {
	out, err := Highlight("file.xyzunknown", []byte("plain content"))
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if !strings.Contains(out, "plain content") {
		t.Error("expected fallback lexer to pass content through")
	}
}
