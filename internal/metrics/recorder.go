package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PageResult labels how a page was rendered.
type PageResult string

const (
	PageRendered PageResult = "rendered"
	PageFallback PageResult = "fallback"
)

// Recorder defines observability hooks for build, stage and page metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	ObservePageRender(result PageResult, d time.Duration)
	AddSVGBytesSaved(n int)
	AddInlinedAssets(n int)
	IncScriptMinify(success bool)
	ObserveHTTPRequest(status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)  {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) IncStageResult(string, ResultLabel)          {}
func (NoopRecorder) IncBuildOutcome(string)                      {}
func (NoopRecorder) ObservePageRender(PageResult, time.Duration) {}
func (NoopRecorder) AddSVGBytesSaved(int)                        {}
func (NoopRecorder) AddInlinedAssets(int)                        {}
func (NoopRecorder) IncScriptMinify(bool)                        {}
func (NoopRecorder) ObserveHTTPRequest(int, time.Duration)       {}
