package pipeline

import (
	"errors"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/htmlpass"
)

// StageOutcome normalized result of stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Subject   string
	Abort     bool
}

// resultFromStageErrorKind maps a StageErrorKind to a StageResult.
func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	default:
		return StageResultFatal
	}
}

// severityFromStageErrorKind maps StageErrorKind to IssueSeverity.
func severityFromStageErrorKind(k StageErrorKind) IssueSeverity {
	if k == StageErrorWarning {
		return SeverityWarning
	}
	return SeverityError
}

// ClassifyStageResult converts a raw error from a stage into a StageOutcome.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		se = NewFatalStageError(stage, err)
	}
	if se.Kind == StageErrorCanceled || ferrors.HasCategory(se.Err, ferrors.CategoryCanceled) {
		se.Kind = StageErrorCanceled
		return StageOutcome{
			Stage:     stage,
			Error:     se,
			Result:    StageResultCanceled,
			IssueCode: IssueCanceled,
			Severity:  SeverityError,
			Abort:     true,
		}
	}

	return StageOutcome{
		Stage:     stage,
		Error:     se,
		Result:    resultFromStageErrorKind(se.Kind),
		IssueCode: classifyIssueCode(se),
		Severity:  severityFromStageErrorKind(se.Kind),
		Subject:   subjectOf(se.Err),
		Abort:     se.Kind != StageErrorWarning,
	}
}

// classifyIssueCode determines the issue code based on stage type and error.
func classifyIssueCode(se *StageError) ReportIssueCode {
	switch {
	case errors.Is(se.Err, htmlpass.ErrAssetMissing), errors.Is(se.Err, htmlpass.ErrAssetOutsideRoot):
		return IssueMissingAsset
	case ferrors.HasCategory(se.Err, ferrors.CategoryFileSystem):
		return IssueWriteFailure
	}
	switch se.Stage {
	case StageDiscoverRoutes:
		return IssueDiscoveryFailure
	case StageRunCommands:
		return IssueCommandFailed
	case StagePrepareOutput:
		return IssueWriteFailure
	case StageRenderPages, StageMinifyScripts:
		return IssueGenericStageError
	default:
		return IssueGenericStageError
	}
}

// subjectOf extracts the route or path a classified error is about.
func subjectOf(err error) string {
	ce, ok := ferrors.AsClassified(err)
	if !ok {
		return ""
	}
	if r, ok := ce.Context().GetString("route"); ok {
		return r
	}
	if p, ok := ce.Context().GetString("path"); ok {
		return p
	}
	return ""
}
