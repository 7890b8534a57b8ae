package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/render"
)

const defaultDebounce = 300 * time.Millisecond

// ReloadingRenderer serves pages from a route table that is rebuilt whenever the
// page-source tree changes. A failed reload keeps the previous table.
type ReloadingRenderer struct {
	cfg      *config.Config
	pagesDir string
	debounce time.Duration
	logger   *slog.Logger
	current  atomic.Pointer[render.PageRenderer]
}

// NewReloadingRenderer discovers the page tree once. Discovery errors are returned as is.
func NewReloadingRenderer(cfg *config.Config, pagesDir string) (*ReloadingRenderer, error) {
	r := &ReloadingRenderer{
		cfg:      cfg,
		pagesDir: pagesDir,
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Render implements render.Renderer.
func (r *ReloadingRenderer) Render(req *http.Request) render.Result {
	return r.current.Load().Render(req)
}

// Reload rediscovers routes and reloads every page module.
func (r *ReloadingRenderer) Reload() error {
	discovered, renderer, err := render.Discover(r.cfg, r.pagesDir, nil)
	if err != nil {
		return err
	}
	r.current.Store(renderer)
	r.logger.Debug("Route table loaded", logfields.Count(len(discovered)))
	return nil
}

// Watch reloads after changes under the page root settle, until ctx is canceled.
func (r *ReloadingRenderer) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	addDirsRecursive(watcher, r.pagesDir)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirsRecursive(watcher, ev.Name)
				}
			}
			r.logger.Debug("Page source changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := r.Reload(); err != nil {
				r.logger.Warn("Reload failed, keeping previous routes", logfields.Error(err))
				continue
			}
			r.logger.Info("Routes reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent skips hidden files and editor swap files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")
}
