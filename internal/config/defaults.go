package config

import "runtime"

// DefaultSVGPrecision is the number of significant digits kept in inline SVG numbers.
const DefaultSVGPrecision = 3

// Page module kinds understood by the renderer.
const (
	ModuleTemplate = "template"
	ModuleMarkdown = "markdown"
	ModuleProcess  = "process"
)

// DefaultExtensions maps recognized page-source extensions to their module kind.
func DefaultExtensions() map[string]string {
	return map[string]string{
		".ts":     ModuleProcess,
		".js":     ModuleProcess,
		".tmpl":   ModuleTemplate,
		".gohtml": ModuleTemplate,
		".md":     ModuleMarkdown,
	}
}

// ApplyDefaults fills unset fields in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Pages.Dir == "" {
		cfg.Pages.Dir = "src/routes"
	}
	if cfg.Pages.Index == "" {
		cfg.Pages.Index = "index"
	}
	if len(cfg.Pages.Extensions) == 0 {
		cfg.Pages.Extensions = DefaultExtensions()
	}
	if len(cfg.Pages.SSRCommand) == 0 {
		cfg.Pages.SSRCommand = []string{"bun", "run"}
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "dist"
	}
	if cfg.Assets.Dir == "" {
		cfg.Assets.Dir = "src/assets"
	}
	if cfg.Document.Lang == "" {
		cfg.Document.Lang = "en"
	}
	if cfg.Document.Stylesheets == nil {
		cfg.Document.Stylesheets = []string{"/style.css"}
	}
	if cfg.SVG.Precision == nil {
		precision := DefaultSVGPrecision
		cfg.SVG.Precision = &precision
	}
	if len(cfg.Minify.Extensions) == 0 {
		cfg.Minify.Extensions = []string{".js", ".mjs"}
	}
	if cfg.Minify.Concurrency <= 0 {
		cfg.Minify.Concurrency = runtime.NumCPU()
	}
	if cfg.Minify.Target == "" {
		cfg.Minify.Target = "es2020"
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":5173"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = string(LogLevelInfo)
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = string(LogFormatText)
	}
}
