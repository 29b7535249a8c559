// Package metric records session lifecycle metrics with Prometheus.
//
//   - prometheus.go: Recorder, the counters and histograms fed by the
//     session services and the HTTP transport
//   - collector.go: ExpiryCollector, the remaining validity of the active
//     token computed at scrape time
//
// A CLI run is too short to be scraped, so metrics are written once in
// text exposition format at exit (--metrics-file), ready for the node
// exporter textfile collector.
package metric
