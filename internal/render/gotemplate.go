package render

import (
	"bytes"
	"strings"
	"text/template"
)

// GoTemplate renders Go text/template templates; bindings are reached as
// `{{ .page.title }}`. Missing map keys are errors.
type GoTemplate struct {
	funcs template.FuncMap
}

// NewGoTemplate creates a text/template renderer with a small helper set.
func NewGoTemplate() *GoTemplate {
	return &GoTemplate{
		funcs: template.FuncMap{
			"upper":     strings.ToUpper,
			"lower":     strings.ToLower,
			"trimSpace": strings.TrimSpace,
		},
	}
}

// Render implements Renderer.
func (g *GoTemplate) Render(name, text string, bindings Bindings) (string, error) {
	tpl, err := template.New(name).Funcs(g.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, map[string]any(bindings)); err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}
	return buf.String(), nil
}
