package site

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/layout"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/permalink"
	"git.home.luguber.info/inful/sitebuilder/internal/sitefs"
)

// Process renders the site below root into root/_site.
func Process(ctx context.Context, fsys sitefs.FS, root string, siteCtx Context, opts ...Option) error {
	_, err := Build(ctx, fsys, root, siteCtx, opts...)
	return err
}

// Build is Process returning a report of what was written. On failure the
// report covers the work completed before the run stopped.
func Build(ctx context.Context, fsys sitefs.FS, root string, siteCtx Context, opts ...Option) (*Report, error) {
	b := &builder{
		fs:      fsys,
		root:    root,
		outRoot: filepath.Join(root, OutputDir),
		opts:    buildOptions(opts),
		claims:  map[string]string{},
		report:  &Report{},
	}
	start := time.Now()
	err := b.run(ctx, siteCtx)
	b.report.Duration = time.Since(start)
	slices.SortFunc(b.report.Pages, func(a, c PageResult) int { return strings.Compare(a.Source, c.Source) })
	slices.Sort(b.report.Assets)

	log := b.opts.Logger
	if err != nil {
		log.Error("Site build failed",
			logfields.Source(root),
			logfields.Count(b.report.Failed),
			logfields.Error(err))
		return b.report, err
	}
	log.Info("Site build complete",
		logfields.Source(root),
		logfields.Count(len(b.report.Pages)),
		logfields.DurationMS(float64(b.report.Duration.Milliseconds())))
	return b.report, nil
}

type asset struct {
	rel string
	abs string
}

type builder struct {
	fs      sitefs.FS
	root    string
	outRoot string
	opts    Options

	resolver *layout.Resolver
	site     map[string]any
	pages    []*Page
	assets   []asset
	// claims maps output paths to the source that claimed them first.
	claims map[string]string

	mu     sync.Mutex
	errs   []error
	report *Report
}

func (b *builder) run(ctx context.Context, siteCtx Context) error {
	if err := b.fs.MkdirAll(b.outRoot); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot create output directory").
			WithContext("path", b.outRoot).
			Build()
	}

	store, err := layout.LoadStore(b.fs, filepath.Join(b.root, LayoutsDir), b.frontMatterOptions())
	if err != nil {
		return pageError(LayoutsDir, StageLayout, err)
	}
	b.report.Layouts = store.Len()
	b.resolver = layout.NewResolver(store, b.opts.Renderer, b.opts.MaxLayoutDepth)

	if err := b.collect(ctx); err != nil {
		return err
	}
	b.site = siteBindings(siteCtx, b.pages)

	if err := b.render(ctx); err != nil {
		return err
	}
	return errors.Join(b.errs...)
}

func (b *builder) frontMatterOptions() frontmatter.Options {
	return frontmatter.Options{Strict: b.opts.StrictFrontMatter}
}

// fail applies the failure policy: under FailFast the error is returned,
// under Collect it is recorded and the run continues.
func (b *builder) fail(err *PageError) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.Failed++
	if b.opts.FailPolicy == FailFast {
		return err
	}
	b.errs = append(b.errs, err)
	b.opts.Logger.Warn("Page failed",
		logfields.Path(err.Path),
		logfields.Stage(string(err.Stage)),
		logfields.Error(err.Err))
	return nil
}

// collect is phase one: classify entries, load pages and claim outputs.
func (b *builder) collect(ctx context.Context) error {
	err := b.fs.Walk(b.root, func(abs string, isDir bool) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(b.root, abs)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if isDir {
			if b.skipDir(rel) {
				return sitefs.SkipDir
			}
			return nil
		}
		if b.opts.excluded(rel) {
			return nil
		}

		if !IsPage(rel) {
			if b.claim(rel, rel) {
				b.assets = append(b.assets, asset{rel: rel, abs: abs})
				return nil
			}
			return b.fail(pageError(rel, StageCopy, b.collision(rel, rel)))
		}

		page, perr := b.load(rel, abs)
		if perr != nil {
			return b.fail(perr)
		}
		if !b.claim(page.Output, rel) {
			return b.fail(pageError(rel, StagePermalink, b.collision(page.Output, rel)))
		}
		b.pages = append(b.pages, page)
		return nil
	})
	if err == nil {
		return nil
	}
	var pe *PageError
	if errors.As(err, &pe) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot walk source tree").
		WithContext("path", b.root).
		Build()
}

func (b *builder) skipDir(rel string) bool {
	if rel == OutputDir || rel == LayoutsDir {
		return true
	}
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return true
	}
	return b.opts.excluded(rel)
}

func (b *builder) claim(output, source string) bool {
	if _, taken := b.claims[output]; taken {
		return false
	}
	b.claims[output] = source
	return true
}

func (b *builder) collision(output, source string) *CollisionError {
	return &CollisionError{Output: output, Sources: []string{b.claims[output], source}}
}

// load reads a page and resolves everything that does not need rendering.
func (b *builder) load(rel, abs string) (*Page, *PageError) {
	raw, err := b.fs.ReadFile(abs)
	if err != nil {
		return nil, pageError(rel, StageRead, err)
	}
	meta, body, err := frontmatter.Parse(raw, b.frontMatterOptions())
	if err != nil {
		return nil, pageError(rel, StageFrontMatter, err)
	}
	name, err := layout.NameFor(meta, b.opts.DefaultLayout)
	if err != nil {
		return nil, pageError(rel, StageLayout, err)
	}
	output, err := permalink.Resolve(rel, meta)
	if err != nil {
		return nil, pageError(rel, StagePermalink, err)
	}
	return &Page{
		Source:      rel,
		Meta:        meta,
		Body:        body,
		Layout:      name,
		Output:      output,
		Fingerprint: frontmatter.Fingerprint(meta, body),
	}, nil
}

// render is phase two. Outputs are disjoint, so workers never write the
// same file.
func (b *builder) render(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for _, page := range b.pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if perr := b.renderPage(page); perr != nil {
				return b.fail(perr)
			}
			b.mu.Lock()
			b.report.Pages = append(b.report.Pages, PageResult{
				Source:      page.Source,
				Output:      page.Output,
				Layout:      page.Layout,
				Fingerprint: page.Fingerprint,
				Duration:    time.Since(start),
			})
			b.mu.Unlock()
			return nil
		})
	}
	for _, a := range b.assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if perr := b.copyAsset(a); perr != nil {
				return b.fail(perr)
			}
			b.mu.Lock()
			b.report.Assets = append(b.report.Assets, a.rel)
			b.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (b *builder) renderPage(page *Page) *PageError {
	log := b.opts.Logger
	pageVars := pageBindings(page, b.site)

	content, err := b.opts.Renderer.Render(page.Source, string(page.Body), bindings(b.site, pageVars))
	if err != nil {
		return pageError(page.Source, StageTemplate, err)
	}
	if page.IsMarkdown() {
		html, cerr := b.opts.Converter.Convert([]byte(content))
		if cerr != nil {
			return pageError(page.Source, StageMarkdown, cerr)
		}
		content = string(html)
	}

	layoutVars := withExcerpt(pageVars, content)
	out, err := b.resolver.Resolve(page.Layout, bindings(b.site, layoutVars), content)
	if err != nil {
		return pageError(page.Source, StageLayout, err)
	}
	page.Content = out

	target := filepath.Join(b.outRoot, filepath.FromSlash(page.Output))
	if err := b.fs.WriteFile(target, []byte(out)); err != nil {
		return pageError(page.Source, StageWrite, err)
	}
	log.Debug("Rendered page",
		logfields.Path(page.Source),
		logfields.Output(page.Output),
		logfields.Layout(page.Layout))
	return nil
}

func (b *builder) copyAsset(a asset) *PageError {
	data, err := b.fs.ReadFile(a.abs)
	if err != nil {
		return pageError(a.rel, StageCopy, err)
	}
	if err := b.fs.WriteFile(filepath.Join(b.outRoot, filepath.FromSlash(a.rel)), data); err != nil {
		return pageError(a.rel, StageCopy, err)
	}
	b.opts.Logger.Debug("Copied asset", logfields.Path(a.rel))
	return nil
}
