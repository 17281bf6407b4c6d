// Package metrics provides build metrics for the asset builder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so the pipeline never needs nil checks:
//
//	svc := build.NewBuildService() // NoopRecorder
//	svc = svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// A build is a one-shot process, so Prometheus metrics are not served over HTTP.
// WriteTextfile dumps the registry in text exposition format instead, which
// node_exporter's textfile collector (or a CI artifact) can pick up.
package metrics
