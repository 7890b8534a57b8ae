package routes

import "errors"

// Sentinel errors for route discovery. Callers match them with errors.Is.
var (
	// ErrDiscoveryFailed indicates the page-source tree could not be read.
	ErrDiscoveryFailed = errors.New("route discovery failed")

	// ErrRouteCollision indicates two source files map to the same route.
	ErrRouteCollision = errors.New("route collision")

	// ErrInvalidRoute indicates a path that is not a usable route.
	ErrInvalidRoute = errors.New("invalid route")
)
