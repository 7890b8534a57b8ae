package pipeline

import (
	"context"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/minify"
)

// stageMinifyScripts minifies every script file in the output tree once all pages
// are written. Files the minifier cannot handle are kept and reported as warnings.
func stageMinifyScripts(ctx context.Context, bs *BuildState) error {
	m, err := minify.New(minify.Options{
		Extensions:  bs.Config.Minify.Extensions,
		Concurrency: bs.Config.Minify.Concurrency,
		Target:      bs.Config.Minify.Target,
	})
	if err != nil {
		return NewFatalStageError(StageMinifyScripts, ferrors.ConfigError("invalid minify configuration").WithCause(err).Build())
	}

	rep, err := m.Run(ctx, bs.OutputDir)
	if err != nil {
		return NewFatalStageError(StageMinifyScripts, ferrors.FileSystemError("cannot walk output tree").
			WithCause(err).WithContext("path", bs.OutputDir).Build())
	}
	if err := ctx.Err(); err != nil {
		return NewCanceledStageError(StageMinifyScripts, canceled(err))
	}

	for _, f := range rep.Files {
		bs.Recorder.IncScriptMinify(f.Warning == nil)
	}
	for _, f := range rep.Warnings() {
		subject := relToOutput(bs, f.Path)
		bs.Report.AddIssue(IssueMinifyFailed, StageMinifyScripts, SeverityWarning, subject, f.Warning.Error(),
			ferrors.MinifyError("script left unminified").WithCause(f.Warning).WithContext("path", subject).Build())
	}
	bs.Report.ScriptsMinified = rep.Minified
	bs.Report.ScriptsFailed = rep.Failed
	return nil
}
