package layout

import (
	"maps"
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// Resolver wraps content in a layout and that layout's ancestors.
type Resolver struct {
	store    *Store
	renderer render.Renderer
	maxDepth int
}

// NewResolver creates a Resolver; maxDepth <= 0 selects DefaultMaxDepth.
func NewResolver(store *Store, renderer render.Renderer, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{store: store, renderer: renderer, maxDepth: maxDepth}
}

// Resolve renders content through the chain starting at name. Each step sees
// the caller's bindings plus `content` (the output of the previous step) and
// `layout` (the current layout's metadata). An empty name returns content
// unchanged.
func (r *Resolver) Resolve(name string, bindings render.Bindings, content string) (string, error) {
	var chain []string
	for current := name; current != ""; {
		if slices.Contains(chain, current) || len(chain) >= r.maxDepth {
			return "", &CycleError{Chain: append(chain, current), MaxDepth: r.maxDepth}
		}
		l, ok := r.store.Get(current)
		if !ok {
			return "", &NotFoundError{Name: current, Chain: chain}
		}
		chain = append(chain, current)

		step := maps.Clone(bindings)
		if step == nil {
			step = render.Bindings{}
		}
		step["content"] = content
		step["layout"] = l.Meta.Map()

		out, err := r.renderer.Render(l.Source, l.Body, step)
		if err != nil {
			return "", err
		}
		content = out
		current = l.Parent
	}
	return content, nil
}
