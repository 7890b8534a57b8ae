// Package output writes build artifacts into the output tree.
package output

import (
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/routes"
)

// Emitter writes one HTML file per route.
type Emitter struct {
	root    string
	written []string
	bytes   int
}

// NewEmitter returns an emitter writing under root.
func NewEmitter(root string) *Emitter {
	return &Emitter{root: root}
}

// Emit writes html to the output path of route, creating parent directories and
// overwriting an existing file. It returns the path written.
func (e *Emitter) Emit(route, html string) (string, error) {
	path := routes.OutputPath(e.root, route)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", e.fail(route, path, err)
	}
	// Public site asset; readable by others is intended.
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil { //nolint:gosec // public HTML output
		return "", e.fail(route, path, err)
	}
	e.written = append(e.written, path)
	e.bytes += len(html)
	slog.Debug("Page written", logfields.Route(route), logfields.Path(path), logfields.Bytes(len(html)))
	return path, nil
}

// Written lists every file written so far, in emit order.
func (e *Emitter) Written() []string {
	return append([]string(nil), e.written...)
}

// BytesWritten is the total size of all emitted pages.
func (e *Emitter) BytesWritten() int { return e.bytes }

func (e *Emitter) fail(route, path string, err error) error {
	return ferrors.FileSystemError("failed to write page").
		WithCause(err).
		WithContext("route", route).
		WithContext("path", path).
		Build()
}
