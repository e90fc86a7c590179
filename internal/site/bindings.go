package site

import (
	"maps"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// siteBindings copies the site context and adds `pages` (url, title and path
// of every page, ordered by url) unless the caller supplied one.
func siteBindings(siteCtx Context, pages []*Page) map[string]any {
	out := make(map[string]any, len(siteCtx)+1)
	maps.Copy(out, siteCtx)
	if _, ok := out["pages"]; ok {
		return out
	}

	sorted := slices.Clone(pages)
	slices.SortFunc(sorted, func(a, b *Page) int { return strings.Compare(a.URL(), b.URL()) })
	list := make([]any, 0, len(sorted))
	for _, p := range sorted {
		list = append(list, map[string]any{
			"url":   p.URL(),
			"title": pageTitle(p, siteCtx),
			"path":  p.Source,
		})
	}
	out["pages"] = list
	return out
}

// pageBindings is the page's metadata plus computed url, path and
// fingerprint. A page without a title inherits the site title.
func pageBindings(p *Page, site map[string]any) map[string]any {
	vars := p.Meta.Map()
	vars["url"] = p.URL()
	vars["path"] = p.Source
	vars["fingerprint"] = p.Fingerprint
	if _, ok := vars["title"]; !ok {
		vars["title"] = Context(site).Title()
	}
	return vars
}

func pageTitle(p *Page, siteCtx Context) string {
	if v, ok := p.Meta.Get("title"); ok {
		return v.String()
	}
	return siteCtx.Title()
}

func withExcerpt(pageVars map[string]any, content string) map[string]any {
	if _, ok := pageVars["excerpt"]; ok {
		return pageVars
	}
	out := maps.Clone(pageVars)
	out["excerpt"] = markdown.Excerpt([]byte(content))
	return out
}

func bindings(site, page map[string]any) render.Bindings {
	return render.Bindings{"site": site, "page": page}
}
