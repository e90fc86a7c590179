// Package markdown converts Markdown page bodies to HTML.
package markdown

import (
	"bytes"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Extensions lists the file extensions treated as Markdown.
var Extensions = []string{".md", ".markdown", ".mdown", ".mkd", ".mkdn"}

// IsMarkdown reports whether name carries a Markdown extension.
func IsMarkdown(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(path.Ext(name)))
}

// Converter turns Markdown into HTML.
type Converter interface {
	Convert(src []byte) ([]byte, error)
}

// Goldmark is the default Converter: CommonMark plus GitHub Flavored
// Markdown, with raw HTML passed through untouched.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark creates a Converter backed by goldmark.
func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Convert renders src as HTML. CRLF line endings are normalised first.
func (g *Goldmark) Convert(src []byte) ([]byte, error) {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
