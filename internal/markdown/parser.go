// Package markdown renders file previews: Goldmark-based Markdown with GFM
// extensions and syntax highlighting, plus Chroma highlighting for plain
// source files.
package markdown

import (
	"bytes"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// RenderResult contains a rendered preview.
type RenderResult struct {
	HTML  string `json:"html"`
	Title string `json:"title"`
}

// Renderer converts markdown source to preview HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a markdown renderer with GFM extensions and
// highlighted code fences.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	return &Renderer{md: md}
}

// Render converts markdown source to HTML and extracts the document title
// from its first heading.
func (r *Renderer) Render(source []byte) (*RenderResult, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, err
	}

	return &RenderResult{
		HTML:  buf.String(),
		Title: r.firstHeading(source),
	}, nil
}

// IsMarkdown reports whether a file name has a markdown extension.
func IsMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// firstHeading walks the AST and returns the text of the first heading, or
// an empty string when the document has none.
func (r *Renderer) firstHeading(source []byte) string {
	reader := text.NewReader(source)
	doc := r.md.Parser().Parse(reader)

	title := ""
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = headingText(heading, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// headingText extracts the text content of a heading node.
func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}
