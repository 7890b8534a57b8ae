// Package metrics records build and live-server metrics.
//
// Components receive a Recorder. NoopRecorder is the default so callers never
// check for nil; PrometheusRecorder is used when the live server exposes /metrics
// or a build wants its numbers scraped.
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
