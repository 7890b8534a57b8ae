package pipeline

import (
	"context"
	"fmt"
	"time"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on first fatal error.
// A stage that returns nil but recorded warnings is reported with a warning result.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := NewCanceledStageError(st.Name, canceled(err))
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, "", se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, bs.Recorder)
			return se
		}

		bs.Logger.Debug("Stage started", logfields.Stage(string(st.Name)))
		warningsBefore := len(bs.Report.Warnings)

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.Report.StageDurations[string(st.Name)] = dur
		bs.Recorder.ObserveStageDuration(string(st.Name), dur)

		out := ClassifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, out.Subject, out.Error.Error(), out.Error)
		}
		if out.Result == StageResultSuccess && len(bs.Report.Warnings) > warningsBefore {
			out.Result = StageResultWarning
		}
		bs.Report.RecordStageResult(st.Name, out.Result, bs.Recorder)
		bs.Logger.Info("Stage finished", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Microseconds())/1000), "result", string(out.Result))

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}
	}
	return nil
}

func canceled(cause error) error {
	return ferrors.NewError(ferrors.CategoryCanceled, "build canceled").WithCause(cause).Build()
}
