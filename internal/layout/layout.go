// Package layout loads named layout templates and wraps page content in a
// layout chain.
package layout

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/sitefs"
)

const (
	// None in a `layout` key opts a page (or layout) out of any layout.
	None = "none"
	// MetaKey is the front-matter key naming a layout.
	MetaKey = "layout"
	// DefaultMaxDepth bounds layout chains.
	DefaultMaxDepth = 10
)

// Layout is a named template. It is immutable once loaded.
type Layout struct {
	Name   string
	Source string
	Body   string
	Meta   *frontmatter.FrontMatter
	// Parent is the layout this one is itself wrapped in, or "".
	Parent string
}

// NotFoundError names a layout that has no matching file.
type NotFoundError struct {
	Name  string
	Chain []string
}

func (e *NotFoundError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("layout %q not found (referenced from %s)", e.Name, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("layout %q not found", e.Name)
}

// CycleError reports a layout chain that loops or exceeds the maximum depth.
type CycleError struct {
	Chain    []string
	MaxDepth int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("layout chain %s exceeds depth %d or loops", strings.Join(e.Chain, " -> "), e.MaxDepth)
}

// DuplicateError reports two layout files with the same name.
type DuplicateError struct {
	Name  string
	Paths []string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("layout %q defined more than once: %s", e.Name, strings.Join(e.Paths, ", "))
}

// NameFor returns the layout a document asks for. An absent key selects
// defaultName; an empty value or None selects no layout ("").
func NameFor(meta *frontmatter.FrontMatter, defaultName string) (string, error) {
	if !meta.Has(MetaKey) {
		return normalize(defaultName), nil
	}
	name, err := meta.String(MetaKey)
	if err != nil {
		return "", err
	}
	return normalize(name), nil
}

func normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == None {
		return ""
	}
	return name
}

// Store holds every layout of a site keyed by name. It is populated once and
// only read afterwards, so concurrent lookups are safe.
type Store struct {
	layouts map[string]*Layout
}

// NewStore builds a store from already parsed layouts.
func NewStore(layouts ...*Layout) (*Store, error) {
	s := &Store{layouts: make(map[string]*Layout, len(layouts))}
	for _, l := range layouts {
		if existing, ok := s.layouts[l.Name]; ok {
			return nil, &DuplicateError{Name: l.Name, Paths: []string{existing.Source, l.Source}}
		}
		s.layouts[l.Name] = l
	}
	return s, nil
}

// LoadStore reads every file below dir as a layout named after its base
// filename without extension. A missing dir yields an empty store.
func LoadStore(fsys sitefs.FS, dir string, opts frontmatter.Options) (*Store, error) {
	isDir, err := fsys.IsDir(dir)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return NewStore()
	}

	var layouts []*Layout
	err = fsys.Walk(dir, func(path string, isDir bool) error {
		if isDir {
			return nil
		}
		l, err := load(fsys, dir, path, opts)
		if err != nil {
			return err
		}
		layouts = append(layouts, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewStore(layouts...)
}

func load(fsys sitefs.FS, dir, path string, opts frontmatter.Options) (*Layout, error) {
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	source := filepath.ToSlash(filepath.Join(filepath.Base(dir), mustRel(dir, path)))

	meta, body, err := frontmatter.Parse(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", source, err)
	}
	parent, err := NameFor(meta, "")
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", source, err)
	}

	base := filepath.Base(path)
	return &Layout{
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Source: source,
		Body:   string(body),
		Meta:   meta,
		Parent: parent,
	}, nil
}

func mustRel(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}

// Get returns the named layout.
func (s *Store) Get(name string) (*Layout, bool) {
	l, ok := s.layouts[name]
	return l, ok
}

// Len returns the number of layouts.
func (s *Store) Len() int { return len(s.layouts) }

// Names returns the layout names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.layouts))
	for name := range s.layouts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
