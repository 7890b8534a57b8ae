package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"git.home.luguber.info/inful/prerender/internal/render"
	"git.home.luguber.info/inful/prerender/internal/routes"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	Pages string `help:"Page-source directory (overrides pages.dir)" type:"path"`
}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	pagesDir := r.Pages
	if pagesDir == "" {
		pagesDir = cfg.Resolve(cfg.Pages.Dir)
	}

	discovered, err := routes.NewDiscovery(pagesDir, routes.Options{
		Extensions: render.Extensions(cfg),
		Index:      cfg.Pages.Index,
	}).Discover()
	if err != nil {
		return err
	}

	outputDir := cfg.Resolve(cfg.Output.Directory)
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROUTE\tSOURCE\tOUTPUT")
	for _, rt := range discovered {
		out := filepath.ToSlash(routes.OutputPath(outputDir, rt.Path))
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", rt.Path, rt.RelPath, out)
	}
	return tw.Flush()
}
