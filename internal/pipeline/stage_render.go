package pipeline

import (
	"context"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/htmlpass"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/render"
)

// stageRenderPages renders, post-processes and writes every route, one at a time.
// A route whose page module fails still gets its fallback document written and
// adds exactly one warning.
func stageRenderPages(ctx context.Context, bs *BuildState) error {
	svg := htmlpass.NewSVGOptimizer(bs.Config.SVG.Digits())
	var inliner *htmlpass.Inliner
	if bs.Options.Inline {
		inliner = htmlpass.NewInliner(bs.OutputDir, 0)
	}

	defer func() {
		bs.Report.PagesWritten = len(bs.Emitter.Written())
		bs.Report.BytesWritten = bs.Emitter.BytesWritten()
	}()

	for _, r := range bs.Routes {
		if err := ctx.Err(); err != nil {
			return NewCanceledStageError(StageRenderPages, canceled(err))
		}
		t0 := time.Now()

		req, err := render.NewRequest(ctx, r.Path)
		if err != nil {
			return NewFatalStageError(StageRenderPages, err)
		}
		res := bs.Renderer.Render(req)

		result := metrics.PageRendered
		if res.Warning != nil {
			result = metrics.PageFallback
			bs.Report.PagesFallback++
			bs.Report.AddIssue(IssueRenderFallback, StageRenderPages, SeverityWarning, r.Path, res.Warning.Error(),
				ferrors.RenderError("page rendered as fallback").
					WithCause(res.Warning).
					WithContext("route", r.Path).
					WithContext("status", res.Status).
					Build())
		}

		doc := &htmlpass.Document{Route: r.Path, HTML: res.HTML}
		stats := svg.Optimize(doc)
		bs.Report.SVGBytesSaved += stats.Saved
		bs.Recorder.AddSVGBytesSaved(stats.Saved)

		if inliner != nil {
			istats, err := inliner.Inline(ctx, doc)
			if err != nil {
				if ctx.Err() != nil {
					return NewCanceledStageError(StageRenderPages, canceled(ctx.Err()))
				}
				return NewFatalStageError(StageRenderPages, err)
			}
			bs.Report.AssetsInlined += istats.Inlined
			bs.Recorder.AddInlinedAssets(istats.Inlined)
		}

		if _, err := bs.Emitter.Emit(r.Path, doc.HTML); err != nil {
			return NewFatalStageError(StageRenderPages, err)
		}
		bs.Recorder.ObservePageRender(result, time.Since(t0))
		bs.Logger.Debug("Page rendered", logfields.Route(r.Path), logfields.Bytes(len(doc.HTML)))
	}
	bs.Logger.Info("Pages written",
		logfields.Count(len(bs.Emitter.Written())),
		logfields.Bytes(bs.Emitter.BytesWritten()),
		slog.Int("fallbacks", bs.Report.PagesFallback))
	return nil
}
