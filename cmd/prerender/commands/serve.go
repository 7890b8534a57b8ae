package commands

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/server"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `help:"Listen address (overrides serve.addr)"`
	Pages   string `help:"Page-source directory (overrides pages.dir)" type:"path"`
	Metrics bool   `help:"Expose Prometheus metrics at /metrics"`
	Watch   bool   `help:"Reload routes when page sources change" default:"true" negatable:""`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	pagesDir := s.Pages
	if pagesDir == "" {
		pagesDir = cfg.Resolve(cfg.Pages.Dir)
	}

	renderer, err := server.NewReloadingRenderer(cfg, pagesDir)
	if err != nil {
		return err
	}
	if s.Watch {
		go func() {
			if err := renderer.Watch(g.Context); err != nil {
				slog.Warn("Page watcher stopped", logfields.Error(err))
			}
		}()
	}

	opts := server.Options{Addr: s.Addr}
	if s.Metrics || cfg.Serve.Metrics {
		reg := prometheus.NewRegistry()
		opts.Recorder = metrics.NewPrometheusRecorder(reg)
		opts.Metrics = metrics.HTTPHandler(reg)
	}
	return server.New(cfg, renderer, opts).Run(g.Context)
}
