// Package metrics records build and stage metrics.
//
// Components take a Recorder and default to NoopRecorder, so metrics cost
// nothing unless a PrometheusRecorder is injected. The preview server wires a
// PrometheusRecorder and exposes it through HTTPHandler on /metrics.
package metrics
