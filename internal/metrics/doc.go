// Package metrics provides observability hooks for draftmd operations.
//
// Components receive a Recorder and call it unconditionally. NoopRecorder is
// the default and does nothing; PrometheusRecorder registers collectors on a
// registry that the HTTP server exposes at /metrics:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	handler := metrics.HTTPHandler(reg)
package metrics
