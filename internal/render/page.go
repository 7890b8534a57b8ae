package render

import (
	"context"
	"html/template"
)

// Content is the output of a page module: the body markup plus optional
// document metadata.
type Content struct {
	Body        template.HTML
	Title       string
	Description string
	Lang        string
}

// Page is a page module. Implementations may return an error; the renderer
// turns it into the fallback document.
type Page interface {
	Render(ctx context.Context, req *Request) (Content, error)
}

// ClientScripted is implemented by page modules that ship a compiled client module for
// their route (route "/blog/post" -> "/blog/post.js").
type ClientScripted interface {
	HasClientScript() bool
}

func hasClientScript(p Page) bool {
	cs, ok := p.(ClientScripted)
	return ok && cs.HasClientScript()
}

// PageFunc adapts a function to Page.
type PageFunc func(ctx context.Context, req *Request) (Content, error)

// Render implements Page.
func (f PageFunc) Render(ctx context.Context, req *Request) (Content, error) { return f(ctx, req) }
