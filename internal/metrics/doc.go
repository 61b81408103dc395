// Package metrics records run statistics for crater.
//
// Components take a Recorder and default to NoopRecorder, so nothing needs a
// nil check. The CLI swaps in a PrometheusRecorder when --metrics-file is
// given and writes the registry in the node-exporter textfile format once the
// run finishes:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	patcher := patch.New(root, children, patch.WithRecorder(rec))
//	...
//	metrics.WriteTextfile(path, reg)
package metrics
