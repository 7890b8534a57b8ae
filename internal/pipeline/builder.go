package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/prerender/internal/config"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/output"
	"git.home.luguber.info/inful/prerender/internal/render"
)

// Options adjusts a single build on top of the configuration.
type Options struct {
	Inline    bool   // inline assets (also enabled by build.inline)
	OutputDir string // overrides output.directory
	PagesDir  string // overrides pages.dir

	Recorder metrics.Recorder
	// Loaders replaces the page modules derived from pages.extensions.
	Loaders render.Loaders
	// CommandOutput receives stdout and stderr of build.commands. Defaults to os.Stderr.
	CommandOutput io.Writer
}

// Builder runs the static build pipeline.
type Builder struct {
	cfg  *config.Config
	opts Options
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg *config.Config, opts Options) *Builder {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.CommandOutput == nil {
		opts.CommandOutput = os.Stderr
	}
	opts.Inline = opts.Inline || cfg.Build.Inline
	return &Builder{cfg: cfg, opts: opts}
}

// OutputDir is the resolved output root.
func (b *Builder) OutputDir() string {
	if b.opts.OutputDir != "" {
		return b.opts.OutputDir
	}
	return b.cfg.Resolve(b.cfg.Output.Directory)
}

// PagesDir is the resolved page-source root.
func (b *Builder) PagesDir() string {
	if b.opts.PagesDir != "" {
		return b.opts.PagesDir
	}
	return b.cfg.Resolve(b.cfg.Pages.Dir)
}

// Stages returns the stage list for this configuration.
func (b *Builder) Stages() []StageDef {
	return NewPipeline().
		AddIf(b.cfg.Output.ShouldClean() || b.cfg.Assets.Dir != "", StagePrepareOutput, stagePrepareOutput).
		AddIf(len(b.cfg.Build.Commands) > 0, StageRunCommands, stageRunCommands).
		Add(StageDiscoverRoutes, stageDiscoverRoutes).
		Add(StageRenderPages, stageRenderPages).
		AddIf(b.cfg.Minify.IsEnabled(), StageMinifyScripts, stageMinifyScripts).
		Build()
}

// Build runs every stage. The report is always returned; err is the fatal or
// cancellation error that stopped the build, if any. Warnings never produce err.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	id := uuid.NewString()
	logger := slog.Default().With(logfields.BuildID(id))
	report := NewBuildReport(id)
	report.Inline = b.opts.Inline
	report.SourceRevision = sourceRevision(b.cfg.ProjectDir())

	bs := &BuildState{
		Config:    b.cfg,
		Options:   b.opts,
		PagesDir:  b.PagesDir(),
		OutputDir: b.OutputDir(),
		Report:    report,
		Recorder:  b.opts.Recorder,
		Logger:    logger,
	}
	if b.cfg.Assets.Dir != "" {
		bs.AssetsDir = b.cfg.Resolve(b.cfg.Assets.Dir)
	}
	bs.Emitter = output.NewEmitter(bs.OutputDir)

	logger.Info("Build started",
		slog.String("pages", bs.PagesDir),
		slog.String("output", bs.OutputDir),
		slog.Bool("inline", report.Inline))

	err := RunStages(ctx, bs, b.Stages())
	if err == nil {
		hash, herr := output.HashTree(bs.OutputDir)
		if herr != nil {
			logger.Warn("Failed to hash output tree", logfields.Error(herr))
		}
		report.OutputHash = hash
	}

	report.Finish()
	report.DeriveOutcome()
	bs.Recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	bs.Recorder.IncBuildOutcome(string(report.Outcome))

	level := slog.LevelInfo
	if report.Outcome != OutcomeSuccess {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "Build finished", slog.String("outcome", string(report.Outcome)), slog.String("summary", report.Summary()))
	return report, err
}

// relToOutput shortens p for issue subjects.
func relToOutput(bs *BuildState, p string) string {
	if rel, err := filepath.Rel(bs.OutputDir, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
