package routes

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/logfields"
)

// Options controls which files under the page root become routes.
type Options struct {
	// Extensions lists recognized page-source extensions (with the leading dot).
	// Matching ignores case: ".md" also picks up "About.MD".
	Extensions []string
	// Index is the base name that maps to its directory's own path. Defaults to "index".
	Index string
}

// Discovery walks a page-source tree and produces routes.
type Discovery struct {
	root  string
	exts  map[string]struct{}
	index string
}

// NewDiscovery creates a discovery rooted at the page-source directory.
func NewDiscovery(root string, opts Options) *Discovery {
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	index := opts.Index
	if index == "" {
		index = "index"
	}
	return &Discovery{root: root, exts: exts, index: index}
}

// Discover returns every route under the page root in deterministic order: entries of a
// directory are visited lexically and subdirectories are recursed into depth-first.
// Any unreadable directory aborts discovery; a build cannot silently omit pages.
func (d *Discovery) Discover() ([]Route, error) {
	absRoot, err := filepath.Abs(d.root)
	if err != nil {
		return nil, d.fail(d.root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, d.fail(absRoot, err)
	}
	if !info.IsDir() {
		return nil, d.fail(absRoot, fmt.Errorf("%s is not a directory", absRoot))
	}

	var found []Route
	if err := d.walk(absRoot, "", &found); err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(found))
	for _, r := range found {
		if prev, dup := seen[r.Path]; dup {
			return nil, ferrors.DiscoveryError("two page sources map to the same route").
				WithCause(fmt.Errorf("%w: %s and %s -> %s", ErrRouteCollision, prev, r.RelPath, r.Path)).
				WithContext("route", r.Path).
				Build()
		}
		seen[r.Path] = r.RelPath
	}

	slog.Info("Routes discovered", logfields.Path(absRoot), logfields.Count(len(found)))
	return found, nil
}

// walk appends routes for dir, whose route prefix is prefix ("" for the root).
func (d *Discovery) walk(dir, prefix string, out *[]Route) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return d.fail(dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		segment := norm.NFC.String(name)

		if entry.IsDir() {
			if err := d.walk(full, prefix+"/"+segment, out); err != nil {
				return err
			}
			continue
		}

		ext := filepath.Ext(name)
		kind := strings.ToLower(ext)
		if _, ok := d.exts[kind]; !ok {
			continue
		}
		base := strings.TrimSuffix(segment, ext)
		if base == "" {
			continue
		}

		routePath := prefix + "/" + base
		if base == d.index {
			routePath = prefix
		}
		if routePath == "" {
			routePath = Root
		}

		rel := strings.TrimPrefix(path.Join(prefix, segment), "/")
		slog.Debug("Page source discovered", logfields.Route(routePath), logfields.File(rel))
		*out = append(*out, Route{Path: routePath, Source: full, RelPath: rel, Ext: kind})
	}
	return nil
}

func (d *Discovery) fail(dir string, cause error) error {
	return ferrors.DiscoveryError("page-source directory unreadable").
		WithCause(fmt.Errorf("%w: %w", ErrDiscoveryFailed, cause)).
		WithContext("path", dir).
		Build()
}
