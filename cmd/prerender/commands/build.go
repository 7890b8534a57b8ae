package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Inline        bool   `help:"Inline stylesheets, scripts and SVG images into every page"`
	Output        string `short:"o" help:"Output directory (overrides output.directory)" type:"path"`
	Pages         string `help:"Page-source directory (overrides pages.dir)" type:"path"`
	AllowWarnings bool   `name:"allow-warnings" help:"Exit 0 even when pages fell back or scripts were left unminified"`
	Report        string `help:"Write the build report as JSON to this file" type:"path"`
	MetricsFile   string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if b.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	builder := pipeline.NewBuilder(cfg, pipeline.Options{
		Inline:    b.Inline,
		OutputDir: b.Output,
		PagesDir:  b.Pages,
		Recorder:  recorder,
	})
	report, buildErr := builder.Build(g.Context)

	if b.Report != "" {
		if err := report.Persist(b.Report); err != nil {
			slog.Warn("Failed to write build report", logfields.Path(b.Report), logfields.Error(err))
		}
	}
	if reg != nil {
		if err := prometheus.WriteToTextfile(b.MetricsFile, reg); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	printSummary(g.Out, builder.OutputDir(), report)
	warnings := report.WarningIssues()
	if len(warnings) == 0 || b.AllowWarnings {
		return nil
	}
	return ferrors.BuildError("build completed with warnings").
		Warning().
		WithContext("warnings", len(warnings)).
		Build()
}

// printSummary writes the result line and one line per affected route or file.
func printSummary(w io.Writer, outputDir string, r *pipeline.BuildReport) {
	_, _ = fmt.Fprintf(w, "Built %d pages into %s in %s\n",
		r.PagesWritten, outputDir, r.End.Sub(r.Start).Truncate(time.Millisecond))
	if r.ScriptsMinified > 0 || r.ScriptsFailed > 0 {
		_, _ = fmt.Fprintf(w, "Minified %d scripts\n", r.ScriptsMinified)
	}
	if r.Inline {
		_, _ = fmt.Fprintf(w, "Inlined %d assets\n", r.AssetsInlined)
	}

	warnings := r.WarningIssues()
	if len(warnings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%d warnings:\n", len(warnings))
	for _, is := range warnings {
		_, _ = fmt.Fprintf(w, "  %s %s: %s\n", is.Code, is.Subject, is.Message)
	}
}
