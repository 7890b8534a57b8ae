package render

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/prerender/internal/logfields"
)

const (
	notFoundBody = template.HTML("<h1>404 Not Found</h1>")
	emptyBody    = template.HTML("<h1>Page has no content</h1>")
)

// Result is a rendered document. HTML is never empty; Warning is non-nil when a
// fallback document was produced.
type Result struct {
	Route   string
	Status  int
	HTML    string
	Warning error
}

// Renderer turns a request into a complete HTML document. Build and serve share one.
type Renderer interface {
	Render(r *http.Request) Result
}

// PageRenderer renders pages from a route table inside a document shell.
type PageRenderer struct {
	table *Table
	shell *Shell
}

// New returns a PageRenderer over table.
func New(table *Table, shell *Shell) *PageRenderer {
	if table == nil {
		table = &Table{}
	}
	if shell == nil {
		shell = NewShell(ShellOptions{})
	}
	return &PageRenderer{table: table, shell: shell}
}

// Render implements Renderer. It does not panic and does not fail: missing routes and
// failing page modules produce the fallback document with a warning.
func (p *PageRenderer) Render(r *http.Request) Result {
	req := pageRequest(r)

	page, ok := p.table.Lookup(req.Route)
	if !ok {
		return p.fallback(req.Route, http.StatusNotFound, Content{Body: notFoundBody},
			fmt.Errorf("%w: %s", ErrPageNotFound, req.Route))
	}

	content, err := renderSafely(r.Context(), page, req)
	if err != nil {
		return p.fallback(req.Route, http.StatusInternalServerError, Content{Body: notFoundBody},
			fmt.Errorf("%w: %s: %w", ErrPageFailed, req.Route, err))
	}
	if strings.TrimSpace(string(content.Body)) == "" {
		content.Body = emptyBody
		return p.fallback(req.Route, http.StatusOK, content, fmt.Errorf("%w: %s", ErrPageEmpty, req.Route))
	}

	html, err := p.shell.Wrap(req.Route, content, hasClientScript(page))
	if err != nil {
		return p.fallback(req.Route, http.StatusInternalServerError, Content{Body: notFoundBody},
			fmt.Errorf("%w: %s: %w", ErrPageFailed, req.Route, err))
	}
	return Result{Route: req.Route, Status: http.StatusOK, HTML: html}
}

// fallback documents never link a client module; the route may have none.
func (p *PageRenderer) fallback(route string, status int, c Content, warning error) Result {
	slog.Warn("Rendering fallback document", logfields.Route(route), logfields.Error(warning))
	html, err := p.shell.Wrap(route, c, false)
	if err != nil {
		// Only reachable with a broken shell; emit a bare document.
		html = "<!DOCTYPE html><html><head></head><body>" + string(c.Body) + "</body></html>"
	}
	return Result{Route: route, Status: status, HTML: html, Warning: warning}
}

func renderSafely(ctx context.Context, page Page, req *Request) (c Content, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return page.Render(ctx, req)
}
