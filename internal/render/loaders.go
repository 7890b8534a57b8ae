package render

import (
	"log/slog"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/routes"
)

// LoadersFromConfig builds the extension -> loader mapping from the pages section.
func LoadersFromConfig(cfg *config.Config) Loaders {
	loaders := make(Loaders, len(cfg.Pages.Extensions))
	dir := cfg.ProjectDir()
	for ext, kind := range cfg.Pages.Extensions {
		switch kind {
		case config.ModuleTemplate:
			loaders[ext] = func(r routes.Route) (Page, error) { return NewTemplatePage(r.Source) }
		case config.ModuleMarkdown:
			loaders[ext] = func(r routes.Route) (Page, error) { return NewMarkdownPage(r.Source), nil }
		case config.ModuleProcess:
			command := cfg.Pages.SSRCommand
			loaders[ext] = func(r routes.Route) (Page, error) { return NewProcessPage(command, r.Source, dir) }
		}
	}
	return loaders
}

// ShellFromConfig builds the document shell from the document section.
func ShellFromConfig(cfg *config.Config) *Shell {
	return NewShell(ShellOptions{
		Lang:        cfg.Document.Lang,
		Title:       cfg.Document.Title,
		Icon:        cfg.Document.Icon,
		Stylesheets: cfg.Document.Stylesheets,
	})
}

// Extensions lists the configured page-source extensions.
func Extensions(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.Pages.Extensions))
	for ext := range cfg.Pages.Extensions {
		out = append(out, ext)
	}
	return out
}

// Discover finds the routes under pagesDir and builds the renderer serving them.
// A nil loaders uses LoadersFromConfig.
func Discover(cfg *config.Config, pagesDir string, loaders Loaders) ([]routes.Route, *PageRenderer, error) {
	discovered, err := routes.NewDiscovery(pagesDir, routes.Options{
		Extensions: Extensions(cfg),
		Index:      cfg.Pages.Index,
	}).Discover()
	if err != nil {
		return nil, nil, err
	}
	if loaders == nil {
		loaders = LoadersFromConfig(cfg)
	}
	table, err := NewTable(discovered, loaders)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("Route table built", logfields.Count(table.Len()))
	return discovered, New(table, ShellFromConfig(cfg)), nil
}
