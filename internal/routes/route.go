package routes

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Root is the route of the site's top-level index page.
const Root = "/"

// Route is a logical page path derived from the location of a page-source file.
type Route struct {
	Path    string // "/", "/about", "/blog/post"
	Source  string // absolute path of the page-source file
	RelPath string // slash-separated path relative to the page root, e.g. "blog/post.ts"
	Ext     string // lower-cased source extension including the dot
}

func (r Route) String() string { return r.Path }

// Normalize returns p with a leading slash and without a trailing slash (except for the root).
// Query strings and fragments are not stripped; use it on URL paths only.
func Normalize(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != Root {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return Root
		}
	}
	return p
}

// Validate reports whether p is a well-formed route.
func Validate(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("%w: empty path", ErrInvalidRoute)
	case !strings.HasPrefix(p, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidRoute, p)
	case strings.ContainsAny(p, "?#*"):
		return fmt.Errorf("%w: %q contains a query, fragment or wildcard", ErrInvalidRoute, p)
	case path.Clean(p) != p:
		return fmt.Errorf("%w: %q is not clean", ErrInvalidRoute, p)
	}
	return nil
}

// OutputPath maps a route to its HTML artifact under root:
// "/" -> root/index.html, "/blog/post" -> root/blog/post.html.
func OutputPath(root, route string) string {
	if route == Root {
		return filepath.Join(root, "index.html")
	}
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(route, "/"))+".html")
}

// ScriptPath is the URL of the client module compiled for a route: "/" -> "/index.js".
func ScriptPath(route string) string {
	if route == Root {
		return "/index.js"
	}
	return route + ".js"
}
