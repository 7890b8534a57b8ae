package pipeline

import (
	"log/slog"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/output"
	"git.home.luguber.info/inful/prerender/internal/render"
	"git.home.luguber.info/inful/prerender/internal/routes"
)

// BuildState is the mutable state threaded through the stages of one build.
type BuildState struct {
	Config    *config.Config
	Options   Options
	PagesDir  string
	OutputDir string
	AssetsDir string

	Routes   []routes.Route
	Renderer render.Renderer
	Emitter  *output.Emitter

	Report   *BuildReport
	Recorder metrics.Recorder
	Logger   *slog.Logger
}
