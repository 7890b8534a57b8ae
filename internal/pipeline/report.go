package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/prerender/internal/metrics"
	"git.home.luguber.info/inful/prerender/internal/version"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are stable contract and should only be appended (no reuse on removal).
type ReportIssueCode string

const (
	IssueRenderFallback    ReportIssueCode = "RENDER_FALLBACK"
	IssueMinifyFailed      ReportIssueCode = "MINIFY_FAILED"
	IssueMissingAsset      ReportIssueCode = "MISSING_ASSET"
	IssueDiscoveryFailure  ReportIssueCode = "DISCOVERY_FAILURE"
	IssueCommandFailed     ReportIssueCode = "COMMAND_FAILED"
	IssueWriteFailure      ReportIssueCode = "WRITE_FAILURE"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is one problem encountered during a build. Subject names the route or
// file it concerns, when there is one.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Subject  string          `json:"subject,omitempty"`
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// BuildReport captures what a build did and how it ended.
type BuildReport struct {
	SchemaVersion    int
	BuildID          string
	Start            time.Time
	End              time.Time
	Errors           []error // fatal errors causing build abortion (at most one today)
	Warnings         []error // recoverable per-route and per-file problems
	StageDurations   map[string]time.Duration
	StageErrorKinds  map[StageName]StageErrorKind
	StageCounts      map[StageName]StageCount
	RoutesDiscovered int
	PagesWritten     int
	BytesWritten     int
	PagesFallback    int
	ScriptsMinified  int
	ScriptsFailed    int
	AssetsInlined    int
	SVGBytesSaved    int
	Inline           bool
	OutputHash       string
	SourceRevision   string
	Outcome          BuildOutcome
	Issues           []ReportIssue
	Version          string
}

// NewBuildReport constructs a new BuildReport.
func NewBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		Version:         version.Version,
	}
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings slices.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, subject, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Subject: subject, Message: msg})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// WarningIssues returns the issues with warning severity, in the order they occurred.
func (r *BuildReport) WarningIssues() []ReportIssue {
	var out []ReportIssue
	for _, is := range r.Issues {
		if is.Severity == SeverityWarning {
			out = append(out, is)
		}
	}
	return out
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// RecordStageResult updates BuildReport counters and emits metrics (if recorder non-nil).
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("routes=%d pages=%d fallbacks=%d scripts=%d script_failures=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.RoutesDiscovered, r.PagesWritten, r.PagesFallback, r.ScriptsMinified, r.ScriptsFailed,
		dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), string(r.Outcome))
}

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Persist writes the report as JSON to path, atomically.
func (r *BuildReport) Persist(path string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure directory for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, jb, 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	return nil
}

// SanitizedCopy returns a copy with error fields converted to strings for JSON friendliness.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: durations,
		StageErrorKinds:  sek,
		StageCounts:      stageCounts,
		RoutesDiscovered: r.RoutesDiscovered,
		PagesWritten:     r.PagesWritten,
		BytesWritten:     r.BytesWritten,
		PagesFallback:    r.PagesFallback,
		ScriptsMinified:  r.ScriptsMinified,
		ScriptsFailed:    r.ScriptsFailed,
		AssetsInlined:    r.AssetsInlined,
		SVGBytesSaved:    r.SVGBytesSaved,
		Inline:           r.Inline,
		OutputHash:       r.OutputHash,
		SourceRevision:   r.SourceRevision,
		Outcome:          string(r.Outcome),
		Issues:           issues,
		Version:          r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport but with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion    int                   `json:"schema_version"`
	BuildID          string                `json:"build_id"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	StageDurationsMS map[string]int64      `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string     `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount `json:"stage_counts"`
	RoutesDiscovered int                   `json:"routes_discovered"`
	PagesWritten     int                   `json:"pages_written"`
	BytesWritten     int                   `json:"bytes_written"`
	PagesFallback    int                   `json:"pages_fallback"`
	ScriptsMinified  int                   `json:"scripts_minified"`
	ScriptsFailed    int                   `json:"scripts_failed"`
	AssetsInlined    int                   `json:"assets_inlined"`
	SVGBytesSaved    int                   `json:"svg_bytes_saved"`
	Inline           bool                  `json:"inline"`
	OutputHash       string                `json:"output_hash,omitempty"`
	SourceRevision   string                `json:"source_revision,omitempty"`
	Outcome          string                `json:"outcome"`
	Issues           []ReportIssue         `json:"issues"`
	Version          string                `json:"version,omitempty"`
}
