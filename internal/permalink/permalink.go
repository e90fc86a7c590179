// Package permalink computes where a page lands in the output tree.
package permalink

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// MetaKey is the front-matter key overriding a page's output path.
const MetaKey = "permalink"

const indexFile = "index.html"

// InvalidError reports a permalink that is not a usable output path.
type InvalidError struct {
	Source    string
	Permalink string
	Reason    string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid permalink %q for %s: %s", e.Permalink, e.Source, e.Reason)
}

// Resolve returns the slash-separated output path, relative to the output
// root, for the page at source (relative to the source root).
func Resolve(source string, meta *frontmatter.FrontMatter) (string, error) {
	if meta.Has(MetaKey) {
		raw, err := meta.String(MetaKey)
		if err != nil {
			return "", err
		}
		return fromPermalink(source, raw)
	}
	return Mirror(source), nil
}

// Mirror maps a source path onto the output tree: markdown files get an
// .html extension and everything else keeps its name byte for byte.
func Mirror(source string) string {
	rel := strings.TrimPrefix(path.Clean(toSlash(source)), "/")
	if markdown.IsMarkdown(rel) {
		rel = strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
	}
	return rel
}

func fromPermalink(source, raw string) (string, error) {
	link := strings.TrimSpace(toSlash(raw))
	if link == "" {
		return "", &InvalidError{Source: source, Permalink: raw, Reason: "empty"}
	}
	dir := strings.HasSuffix(link, "/")

	cleaned := path.Clean(strings.TrimLeft(link, "/"))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", &InvalidError{Source: source, Permalink: raw, Reason: "escapes the output root"}
	}
	switch {
	case cleaned == ".":
		cleaned = indexFile
	case dir:
		cleaned = path.Join(cleaned, indexFile)
	}
	return norm.NFC.String(cleaned), nil
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
