package render

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/routes"
)

// Loader builds the page module for a discovered source file.
type Loader func(r routes.Route) (Page, error)

// Loaders maps a source extension (".md", ".tmpl", ...) to its Loader.
type Loaders map[string]Loader

// Table is the explicit route table. It is built once and read-only afterwards.
type Table struct {
	pages map[string]Page
}

// NewTable loads a page module for every route. A route whose extension has no
// loader, or whose loader fails, is a configuration error.
func NewTable(rs []routes.Route, loaders Loaders) (*Table, error) {
	t := &Table{pages: make(map[string]Page, len(rs))}
	for _, r := range rs {
		if err := validRoute(r.Path); err != nil {
			return nil, err
		}
		load, ok := loaders[r.Ext]
		if !ok {
			return nil, ferrors.ConfigError(fmt.Sprintf("no page module for extension %q", r.Ext)).
				WithContext("route", r.Path).
				WithContext("path", r.RelPath).
				Build()
		}
		page, err := load(r)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to load page module").
				Fatal().
				WithContext("route", r.Path).
				WithContext("path", r.RelPath).
				Build()
		}
		t.Register(r.Path, page)
	}
	return t, nil
}

// Register adds or replaces the page for route.
func (t *Table) Register(route string, p Page) {
	if t.pages == nil {
		t.pages = make(map[string]Page)
	}
	t.pages[NormalizePath(route)] = p
}

// Lookup returns the page for route.
func (t *Table) Lookup(route string) (Page, bool) {
	p, ok := t.pages[NormalizePath(route)]
	return p, ok
}

// Len reports the number of registered routes.
func (t *Table) Len() int { return len(t.pages) }
