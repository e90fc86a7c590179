// Package render provides the template rendering capability consumed by the
// page pipeline. Two engines are available: Liquid, whose `{{ page.title }}`
// syntax is the one site sources are written in, and Go's text/template.
package render

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation"
)

// Bindings are the named values visible to a template (site, page, content, layout).
type Bindings map[string]any

// Renderer renders template text against bindings. name identifies the
// template in error messages and may be used as a cache key.
type Renderer interface {
	Render(name, text string, bindings Bindings) (string, error)
}

// TemplateError reports malformed template syntax or a failed binding lookup.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Engine names a template engine.
type Engine string

const (
	EngineLiquid     Engine = "liquid"
	EngineGoTemplate Engine = "gotemplate"
)

var engines = foundation.NewNormalizer("template engine", map[string]Engine{
	"liquid":      EngineLiquid,
	"gotemplate":  EngineGoTemplate,
	"go-template": EngineGoTemplate,
	"go":          EngineGoTemplate,
}, EngineLiquid)

// ParseEngine normalises a configured engine name; empty selects Liquid.
func ParseEngine(raw string) (Engine, error) {
	return engines.Normalize(raw)
}

// New returns the Renderer for engine.
func New(engine Engine) (Renderer, error) {
	switch engine {
	case EngineLiquid, "":
		return NewLiquid(), nil
	case EngineGoTemplate:
		return NewGoTemplate(), nil
	default:
		return nil, fmt.Errorf("unknown template engine %q", engine)
	}
}
