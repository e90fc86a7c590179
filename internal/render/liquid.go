package render

import (
	"sync"

	"github.com/osteele/liquid"
)

// Liquid renders Liquid templates. Parsed templates are cached by name and
// reused while the source text is unchanged.
type Liquid struct {
	engine *liquid.Engine

	mu    sync.RWMutex
	cache map[string]parsedLiquid
}

type parsedLiquid struct {
	text string
	tpl  *liquid.Template
}

// NewLiquid creates a Liquid renderer.
func NewLiquid() *Liquid {
	return &Liquid{
		engine: liquid.NewEngine(),
		cache:  map[string]parsedLiquid{},
	}
}

func (l *Liquid) parse(name, text string) (*liquid.Template, error) {
	l.mu.RLock()
	cached, ok := l.cache[name]
	l.mu.RUnlock()
	if ok && cached.text == text {
		return cached.tpl, nil
	}

	tpl, err := l.engine.ParseString(text)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cache[name] = parsedLiquid{text: text, tpl: tpl}
	l.mu.Unlock()
	return tpl, nil
}

// Render implements Renderer.
func (l *Liquid) Render(name, text string, bindings Bindings) (string, error) {
	tpl, err := l.parse(name, text)
	if err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}
	out, serr := tpl.RenderString(liquid.Bindings(bindings))
	if serr != nil {
		return "", &TemplateError{Name: name, Err: serr}
	}
	return out, nil
}
