// Package server is the live development server. It answers page requests with the
// same renderer the static build uses and serves built scripts, stylesheets and
// static files from disk.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/prerender/internal/config"
	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/render"
	smw "git.home.luguber.info/inful/prerender/internal/server/middleware"
)

const shutdownTimeout = 5 * time.Second

// buildArtifacts are extensions served from the output root: the client bundle and compiled CSS.
var buildArtifacts = map[string]struct{}{
	".js":  {},
	".mjs": {},
	".css": {},
}

// Options adjusts the server on top of the configuration.
type Options struct {
	Addr      string // overrides serve.addr
	OutputDir string // overrides output.directory
	// StaticDir serves every other path with an extension. Defaults to the parent of
	// assets.dir, so /assets/logo.svg resolves to src/assets/logo.svg.
	StaticDir string

	Recorder metrics.Recorder
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server is the live HTTP listener.
type Server struct {
	addr     string
	renderer render.Renderer
	output   http.Handler
	static   http.Handler
	metrics  http.Handler
	logger   *slog.Logger
	mchain   func(http.Handler) http.Handler
}

// New wires a server for cfg around renderer.
func New(cfg *config.Config, renderer render.Renderer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = cfg.Resolve(cfg.Output.Directory)
	}
	staticDir := opts.StaticDir
	if staticDir == "" {
		staticDir = cfg.ProjectDir()
		if cfg.Assets.Dir != "" {
			staticDir = filepath.Dir(cfg.Resolve(cfg.Assets.Dir))
		}
	}

	return &Server{
		addr:     addr,
		renderer: renderer,
		output:   http.FileServer(http.Dir(outputDir)),
		static:   http.FileServer(http.Dir(staticDir)),
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		mchain:   smw.Chain(opts.Logger, ferrors.NewHTTPErrorAdapter(opts.Logger), opts.Recorder),
	}
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.HandleFunc("/", s.handle)
	return s.mchain(mux)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if p == "/favicon.ico" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if ext := path.Ext(p); ext != "" {
		if _, ok := buildArtifacts[ext]; ok {
			s.output.ServeHTTP(w, r)
			return
		}
		s.static.ServeHTTP(w, r)
		return
	}

	res := s.renderer.Render(r)
	if res.Warning != nil {
		s.logger.Warn("Page served with fallback", logfields.Route(res.Route), logfields.Error(res.Warning))
	}
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.WriteHeader(res.Status)
	_, _ = w.Write([]byte(res.HTML))
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "cannot listen").
			WithContext("addr", s.addr).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Server running", slog.String("url", "http://"+ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
