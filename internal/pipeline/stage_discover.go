package pipeline

import (
	"context"

	"git.home.luguber.info/inful/prerender/internal/render"
)

// stageDiscoverRoutes walks the page tree and builds the route table and renderer.
func stageDiscoverRoutes(_ context.Context, bs *BuildState) error {
	discovered, renderer, err := render.Discover(bs.Config, bs.PagesDir, bs.Options.Loaders)
	if err != nil {
		return NewFatalStageError(StageDiscoverRoutes, err)
	}
	bs.Routes = discovered
	bs.Report.RoutesDiscovered = len(discovered)
	bs.Renderer = renderer
	return nil
}
