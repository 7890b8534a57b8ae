package render

import (
	"context"
	"net/http"
	"net/url"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/routes"
)

// Request is what a page module sees of the incoming request.
type Request struct {
	Route string
	Path  string
	Query url.Values
}

// NormalizePath maps a URL path onto the route namespace: leading slash, no trailing
// slash except for the root.
func NormalizePath(p string) string {
	if p == "" {
		return routes.Root
	}
	return routes.Normalize(p)
}

// NewRequest builds the synthetic request used to pre-render route. The path is set
// verbatim so route segments are never re-parsed as escapes. A malformed route is a
// validation error.
func NewRequest(ctx context.Context, route string) (*http.Request, error) {
	route = NormalizePath(route)
	if err := validRoute(route); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://localhost/", nil)
	if err != nil {
		return nil, err
	}
	req.URL.Path = route
	return req, nil
}

func validRoute(route string) error {
	if err := routes.Validate(route); err != nil {
		return ferrors.ValidationError("invalid route").
			WithCause(err).
			WithContext("route", route).
			Build()
	}
	return nil
}

func pageRequest(r *http.Request) *Request {
	return &Request{
		Route: NormalizePath(r.URL.Path),
		Path:  r.URL.Path,
		Query: r.URL.Query(),
	}
}
