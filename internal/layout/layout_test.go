package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/sitefs"
)

func writeLayouts(t *testing.T, files map[string]string) *sitefs.Afero {
	t.Helper()
	fsys := sitefs.NewMemory()
	for path, content := range files {
		require.NoError(t, fsys.WriteFile(path, []byte(content)))
	}
	return fsys
}

func TestLoadStore_NamesByBaseFilename(t *testing.T) {
	fsys := writeLayouts(t, map[string]string{
		"/site/_layouts/default.html":  "<body>{{ content }}</body>",
		"/site/_layouts/post.html":     "---\nlayout: default\nauthor: ann\n---\n<article>{{ content }}</article>",
		"/site/_layouts/feeds/rss.xml": "<rss>{{ content }}</rss>",
	})

	store, err := LoadStore(fsys, "/site/_layouts", frontmatter.Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"default", "post", "rss"}, store.Names())

	post, ok := store.Get("post")
	require.True(t, ok)
	require.Equal(t, "default", post.Parent)
	require.Equal(t, "_layouts/post.html", post.Source)
	require.Equal(t, "<article>{{ content }}</article>", post.Body)

	def, _ := store.Get("default")
	require.Empty(t, def.Parent)
}

func TestLoadStore_MissingDirIsEmpty(t *testing.T) {
	store, err := LoadStore(sitefs.NewMemory(), "/site/_layouts", frontmatter.Options{})
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())
}

func TestLoadStore_Duplicate(t *testing.T) {
	fsys := writeLayouts(t, map[string]string{
		"/site/_layouts/default.html":     "a",
		"/site/_layouts/alt/default.html": "b",
	})
	_, err := LoadStore(fsys, "/site/_layouts", frontmatter.Options{})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "default", dup.Name)
}

func TestNameFor(t *testing.T) {
	parse := func(s string) *frontmatter.FrontMatter {
		fm, _, err := frontmatter.Parse([]byte(s), frontmatter.Options{})
		require.NoError(t, err)
		return fm
	}

	name, err := NameFor(parse("---\nlayout: post\n---\n"), "default")
	require.NoError(t, err)
	require.Equal(t, "post", name)

	name, err = NameFor(parse("no front matter"), "default")
	require.NoError(t, err)
	require.Equal(t, "default", name)

	name, err = NameFor(parse("---\nlayout: none\n---\n"), "default")
	require.NoError(t, err)
	require.Empty(t, name)

	name, err = NameFor(parse("---\nlayout:\n---\n"), "default")
	require.NoError(t, err)
	require.Empty(t, name)

	_, err = NameFor(parse("---\nlayout: 3\n---\n"), "")
	var mismatch *frontmatter.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func newResolver(t *testing.T, files map[string]string, maxDepth int) *Resolver {
	t.Helper()
	store, err := LoadStore(writeLayouts(t, files), "/site/_layouts", frontmatter.Options{})
	require.NoError(t, err)
	return NewResolver(store, render.NewLiquid(), maxDepth)
}

func TestResolve_SingleLayout(t *testing.T) {
	r := newResolver(t, map[string]string{
		"/site/_layouts/default.html": "<html><head><title>{{ page.title }}</title></head><body>{{ content }}</body></html>",
	}, 0)

	out, err := r.Resolve("default", render.Bindings{"page": map[string]any{"title": "My Web Site"}}, "<h1>Hello World!</h1>")
	require.NoError(t, err)
	require.Equal(t, "<html><head><title>My Web Site</title></head><body><h1>Hello World!</h1></body></html>", out)
}

func TestResolve_ChainExposesLayoutMeta(t *testing.T) {
	r := newResolver(t, map[string]string{
		"/site/_layouts/default.html": "<main>{{ content }}</main>",
		"/site/_layouts/post.html":    "---\nlayout: default\nkind: post\n---\n<article class=\"{{ layout.kind }}\">{{ content }}</article>",
	}, 0)

	out, err := r.Resolve("post", nil, "hi")
	require.NoError(t, err)
	require.Equal(t, `<main><article class="post">hi</article></main>`, out)
}

func TestResolve_EmptyNameReturnsContent(t *testing.T) {
	r := newResolver(t, nil, 0)
	out, err := r.Resolve("", nil, "raw")
	require.NoError(t, err)
	require.Equal(t, "raw", out)
}

func TestResolve_NotFound(t *testing.T) {
	r := newResolver(t, map[string]string{
		"/site/_layouts/post.html": "---\nlayout: base\n---\n{{ content }}",
	}, 0)

	_, err := r.Resolve("post", nil, "x")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "base", notFound.Name)
	require.Equal(t, []string{"post"}, notFound.Chain)
}

func TestResolve_Cycle(t *testing.T) {
	r := newResolver(t, map[string]string{
		"/site/_layouts/a.html": "---\nlayout: b\n---\n{{ content }}",
		"/site/_layouts/b.html": "---\nlayout: a\n---\n{{ content }}",
	}, 0)

	_, err := r.Resolve("a", nil, "x")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	require.Equal(t, []string{"a", "b", "a"}, cycle.Chain)
}

func TestResolve_MaxDepth(t *testing.T) {
	files := map[string]string{}
	names := []string{"l1", "l2", "l3", "l4"}
	for i, name := range names {
		body := "{{ content }}"
		if i+1 < len(names) {
			body = "---\nlayout: " + names[i+1] + "\n---\n" + body
		}
		files["/site/_layouts/"+name+".html"] = body
	}

	_, err := newResolver(t, files, 3).Resolve("l1", nil, "x")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	require.Equal(t, 3, cycle.MaxDepth)
	require.True(t, strings.Contains(err.Error(), "l1 -> l2 -> l3 -> l4"))

	out, err := newResolver(t, files, 4).Resolve("l1", nil, "x")
	require.NoError(t, err)
	require.Equal(t, "x", out)
}

func TestResolve_TemplateErrorPropagates(t *testing.T) {
	r := newResolver(t, map[string]string{
		"/site/_layouts/broken.html": "{% if page.title %}",
	}, 0)
	_, err := r.Resolve("broken", nil, "x")
	var tplErr *render.TemplateError
	require.ErrorAs(t, err, &tplErr)
	require.Equal(t, "_layouts/broken.html", tplErr.Name)
}
