// Package errors provides the classified error primitives used across prerender.
//
// A ClassifiedError carries a category (what failed), a severity (whether the
// build can continue) and a small context map (route, path, command...). The
// CLI adapter turns the category into a process exit code, the HTTP adapter
// into a status code for the live server.
//
// Example usage:
//
//	err := errors.AssetError("referenced asset missing from output tree").
//		WithContext("route", "/about").
//		WithContext("path", "/style.css").
//		WithCause(fsErr).
//		Build()
package errors
