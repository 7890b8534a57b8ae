// Package htmlpass holds the post-render passes applied to each document before
// it is written: inline SVG optimization and optional asset inlining.
package htmlpass

// Document is a rendered page in flight. Passes rewrite HTML in place.
type Document struct {
	Route string
	HTML  string
}
