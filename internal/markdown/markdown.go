// Package markdown converts Markdown page bodies to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter renders Markdown to HTML.
type Converter interface {
	Convert(src string) (string, error)
}

// Goldmark is the default Converter: GitHub flavored Markdown, automatic
// heading IDs and raw HTML passthrough so template tags and inline markup in
// page bodies survive conversion.
type Goldmark struct {
	md goldmark.Markdown
}

// New returns a goldmark-backed Converter.
func New() *Goldmark {
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.DefinitionList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

func (g *Goldmark) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// MustConvert is Convert for callers that cannot return an error, such as
// template filters. Failures yield the source unchanged.
func (g *Goldmark) MustConvert(src string) string {
	out, err := g.Convert(src)
	if err != nil {
		return src
	}
	return out
}
