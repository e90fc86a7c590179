package permalink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

func meta(t *testing.T, block string) *frontmatter.FrontMatter {
	t.Helper()
	fm, _, err := frontmatter.Parse([]byte("---\n"+block+"\n---\n"), frontmatter.Options{})
	require.NoError(t, err)
	return fm
}

func TestResolve_MirrorsSourcePath(t *testing.T) {
	cases := map[string]string{
		"index.md":            "index.html",
		"index.html":          "index.html",
		"blog/post.markdown":  "blog/post.html",
		"blog/2024/entry.mkd": "blog/2024/entry.html",
		"docs/page.htm":       "docs/page.htm",
		"about.mdown":         "about.html",
	}
	for source, want := range cases {
		got, err := Resolve(source, nil)
		require.NoError(t, err, source)
		require.Equal(t, want, got, source)
	}
}

func TestResolve_PermalinkOverridesSource(t *testing.T) {
	got, err := Resolve("index.md", meta(t, "permalink: /somepage.html"))
	require.NoError(t, err)
	require.Equal(t, "somepage.html", got)

	got, err = Resolve("blog/deep/post.md", meta(t, "permalink: /archive/post.html"))
	require.NoError(t, err)
	require.Equal(t, "archive/post.html", got)
}

func TestResolve_TrailingSlashIsIndex(t *testing.T) {
	got, err := Resolve("about.md", meta(t, "permalink: /about/"))
	require.NoError(t, err)
	require.Equal(t, "about/index.html", got)

	got, err = Resolve("home.md", meta(t, "permalink: /"))
	require.NoError(t, err)
	require.Equal(t, "index.html", got)
}

func TestResolve_PermalinkIsCleaned(t *testing.T) {
	got, err := Resolve("x.md", meta(t, "permalink: /a/./b//c.html"))
	require.NoError(t, err)
	require.Equal(t, "a/b/c.html", got)
}

func TestResolve_NormalizesPermalinkToNFC(t *testing.T) {
	got, err := Resolve("x.md", meta(t, "permalink: /cafe\u0301.html"))
	require.NoError(t, err)
	require.Equal(t, "caf\u00e9.html", got)
}

func TestMirror_KeepsSourceBytes(t *testing.T) {
	require.Equal(t, "cafe\u0301/index.html", Mirror("cafe\u0301/index.md"))
	require.Equal(t, "cafe\u0301.html", Mirror("cafe\u0301.html"))
	require.Equal(t, "caf\u00e9.html", Mirror("caf\u00e9.html"))

	got, err := Resolve("cafe\u0301.html", frontmatter.New())
	require.NoError(t, err)
	require.Equal(t, "cafe\u0301.html", got)
}

func TestResolve_RejectsEscapingPermalink(t *testing.T) {
	for _, link := range []string{"../outside.html", "/../outside.html", "/a/../../b.html"} {
		_, err := Resolve("x.md", meta(t, "permalink: "+link))
		var invalid *InvalidError
		require.ErrorAs(t, err, &invalid, link)
		require.Equal(t, "x.md", invalid.Source)
	}

	got, err := Resolve("x.md", meta(t, "permalink: /a/../b.html"))
	require.NoError(t, err)
	require.Equal(t, "b.html", got)
}

func TestResolve_NonStringPermalink(t *testing.T) {
	_, err := Resolve("x.md", meta(t, "permalink: 42"))
	var mismatch *frontmatter.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestResolve_Pure(t *testing.T) {
	m := meta(t, "permalink: /a.html")
	first, err := Resolve("x.md", m)
	require.NoError(t, err)
	second, err := Resolve("x.md", m)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
