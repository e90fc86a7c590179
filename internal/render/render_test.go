package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pageBindings() Bindings {
	return Bindings{
		"site":    map[string]any{"title": "My Web Site"},
		"page":    map[string]any{"title": "Hello", "tags": []any{"a", "b"}},
		"content": "<h1>Hi</h1>",
	}
}

func TestLiquid_RendersBindings(t *testing.T) {
	r := NewLiquid()
	out, err := r.Render("index.html", "<title>{{ page.title }}</title><body>{{ content }}</body>", pageBindings())
	require.NoError(t, err)
	require.Equal(t, "<title>Hello</title><body><h1>Hi</h1></body>", out)
}

func TestLiquid_ControlTags(t *testing.T) {
	out, err := NewLiquid().Render("list", "{% for t in page.tags %}[{{ t }}]{% endfor %}", pageBindings())
	require.NoError(t, err)
	require.Equal(t, "[a][b]", out)
}

func TestLiquid_MissingVariableRendersEmpty(t *testing.T) {
	out, err := NewLiquid().Render("x", "a{{ page.nope }}b", pageBindings())
	require.NoError(t, err)
	require.Equal(t, "ab", out)
}

func TestLiquid_SyntaxError(t *testing.T) {
	_, err := NewLiquid().Render("broken.html", "{% if page.title %}never closed", pageBindings())
	var tplErr *TemplateError
	require.ErrorAs(t, err, &tplErr)
	require.Equal(t, "broken.html", tplErr.Name)
}

func TestLiquid_CacheInvalidatesOnChangedText(t *testing.T) {
	r := NewLiquid()
	out, err := r.Render("same", "one", nil)
	require.NoError(t, err)
	require.Equal(t, "one", out)

	out, err = r.Render("same", "two", nil)
	require.NoError(t, err)
	require.Equal(t, "two", out)
}

func TestGoTemplate_RendersBindings(t *testing.T) {
	out, err := NewGoTemplate().Render("index.html", "<title>{{ .page.title | upper }}</title>{{ .content }}", pageBindings())
	require.NoError(t, err)
	require.Equal(t, "<title>HELLO</title><h1>Hi</h1>", out)
}

func TestGoTemplate_MissingKeyIsError(t *testing.T) {
	_, err := NewGoTemplate().Render("x", "{{ .page.nope }}", pageBindings())
	var tplErr *TemplateError
	require.ErrorAs(t, err, &tplErr)
}

func TestNewAndParseEngine(t *testing.T) {
	e, err := ParseEngine("")
	require.NoError(t, err)
	require.Equal(t, EngineLiquid, e)

	e, err = ParseEngine("Go-Template")
	require.NoError(t, err)
	require.Equal(t, EngineGoTemplate, e)

	_, err = ParseEngine("mustache")
	require.Error(t, err)

	r, err := New(EngineGoTemplate)
	require.NoError(t, err)
	require.IsType(t, &GoTemplate{}, r)

	_, err = New("mustache")
	require.Error(t, err)
}
