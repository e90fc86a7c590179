// Package metrics records build metrics.
//
// Components receive a Recorder and never check whether metrics are enabled:
// NoopRecorder is injected when no metrics endpoint is configured, and
// PrometheusRecorder when one is.
//
//	recorder := metrics.NewPrometheusRecorder(reg)
//	svc := build.NewService(cfg, build.WithRecorder(recorder))
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
