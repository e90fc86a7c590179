package site

import (
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/layout"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

const (
	// OutputDir is the output directory created under the source root.
	OutputDir = "_site"
	// LayoutsDir holds layout templates. Only the one at the source root counts.
	LayoutsDir = "_layouts"
)

// MarkupExtensions are rendered as pages without Markdown conversion.
var MarkupExtensions = []string{".html", ".htm"}

// IsPage reports whether name is rendered (markup or Markdown) rather than copied.
func IsPage(name string) bool {
	return markdown.IsMarkdown(name) || slices.Contains(MarkupExtensions, strings.ToLower(path.Ext(name)))
}

// Context holds the site-wide variables bound as `site` in every template.
// It is read, never modified, during a run.
type Context map[string]any

// Title returns the site title, if one is set.
func (c Context) Title() string {
	if s, ok := c["title"].(string); ok {
		return s
	}
	return ""
}

// Page is a renderable source file. It lives for one run only.
type Page struct {
	// Source is the slash-separated path relative to the source root.
	Source string
	Meta   *frontmatter.FrontMatter
	Body   []byte
	// Layout is the resolved layout name, "" for none.
	Layout string
	// Output is the slash-separated path relative to OutputDir.
	Output      string
	Content     string
	Fingerprint string
}

// URL is the site-absolute URL of the page.
func (p *Page) URL() string {
	return "/" + p.Output
}

// IsMarkdown reports whether the page body is converted from Markdown.
func (p *Page) IsMarkdown() bool {
	return markdown.IsMarkdown(p.Source)
}

// FailPolicy decides what a page failure does to the rest of the run.
type FailPolicy string

const (
	// FailFast aborts the run on the first page error.
	FailFast FailPolicy = "fail-fast"
	// Collect renders every page it can and returns all errors joined.
	Collect FailPolicy = "collect"
)

var failPolicies = foundation.NewNormalizer("fail policy", map[string]FailPolicy{
	"fail-fast": FailFast,
	"failfast":  FailFast,
	"collect":   Collect,
}, FailFast)

// ParseFailPolicy normalises a configured policy; empty selects FailFast.
func ParseFailPolicy(raw string) (FailPolicy, error) {
	return failPolicies.Normalize(raw)
}

// Options configures a run. The zero value is usable.
type Options struct {
	StrictFrontMatter bool
	// DefaultLayout applies to pages without a `layout` key.
	DefaultLayout  string
	MaxLayoutDepth int
	// Workers is the number of pages rendered concurrently (minimum 1).
	Workers    int
	FailPolicy FailPolicy
	// Exclude holds path.Match patterns tested against the relative path and
	// the base name of every entry.
	Exclude   []string
	Renderer  render.Renderer
	Converter markdown.Converter
	Logger    *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithStrictFrontMatter rejects malformed front matter instead of skipping bad lines.
func WithStrictFrontMatter(strict bool) Option {
	return func(o *Options) { o.StrictFrontMatter = strict }
}

// WithDefaultLayout sets the layout for pages without a `layout` key.
func WithDefaultLayout(name string) Option {
	return func(o *Options) { o.DefaultLayout = name }
}

// WithMaxLayoutDepth caps the length of a layout chain.
func WithMaxLayoutDepth(depth int) Option {
	return func(o *Options) { o.MaxLayoutDepth = depth }
}

// WithWorkers sets how many pages render concurrently.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithFailPolicy chooses between stopping at the first failure and collecting all of them.
func WithFailPolicy(policy FailPolicy) Option {
	return func(o *Options) { o.FailPolicy = policy }
}

// WithExclude adds path.Match patterns for entries to leave out of the build.
func WithExclude(patterns ...string) Option {
	return func(o *Options) { o.Exclude = append(o.Exclude, patterns...) }
}

// WithRenderer replaces the Liquid template engine.
func WithRenderer(r render.Renderer) Option {
	return func(o *Options) { o.Renderer = r }
}

// WithConverter replaces the goldmark markdown converter.
func WithConverter(c markdown.Converter) Option {
	return func(o *Options) { o.Converter = c }
}

// WithLogger sets the logger used for page progress and failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.MaxLayoutDepth <= 0 {
		o.MaxLayoutDepth = layout.DefaultMaxDepth
	}
	if o.FailPolicy == "" {
		o.FailPolicy = FailFast
	}
	if o.Renderer == nil {
		o.Renderer = render.NewLiquid()
	}
	if o.Converter == nil {
		o.Converter = markdown.NewGoldmark()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (o Options) excluded(rel string) bool {
	return Excluded(rel, o.Exclude)
}

// Excluded reports whether the slash-separated relative path rel, or its
// base name, matches one of patterns.
func Excluded(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
