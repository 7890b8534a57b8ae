package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "prerender"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	pageDuration  *prom.HistogramVec
	svgSaved      prom.Counter
	inlined       prom.Counter
	minifyResults *prom.CounterVec
	httpDuration  *prom.HistogramVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg uses a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Duration of rendering one page",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		svgSaved: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "svg_bytes_saved_total",
			Help:      "Bytes removed from documents by inline SVG optimization",
		}),
		inlined: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "inlined_assets_total",
			Help:      "Assets inlined into documents",
		}),
		minifyResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "script_minify_total",
			Help:      "Script minification results",
		}, []string{"result"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Live server request duration by status code",
			Buckets:   prom.DefBuckets,
		}, []string{"code"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.pageDuration, pr.svgSaved, pr.inlined, pr.minifyResults, pr.httpDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObservePageRender(result PageResult, d time.Duration) {
	if p == nil {
		return
	}
	p.pageDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddSVGBytesSaved(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.svgSaved.Add(float64(n))
}

func (p *PrometheusRecorder) AddInlinedAssets(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.inlined.Add(float64(n))
}

func (p *PrometheusRecorder) IncScriptMinify(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.minifyResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(strconv.Itoa(status)).Observe(d.Seconds())
}
