// Package metrics records build observability counters. Components receive a
// Recorder by injection; the default NoopRecorder keeps the hot path free of
// nil checks and costs nothing when metrics are disabled.
package metrics

import "time"

// Recorder defines the metrics operations the pipeline emits.
type Recorder interface {
	// RecordDocument counts one validated document and whether it was valid.
	RecordDocument(collection string, valid bool)
	// RecordIssue counts one reported issue by code.
	RecordIssue(code string)
	// RecordAsset counts one asset resolution; written is false on dedup reuse.
	RecordAsset(written bool)
	// RecordBuild records a finished build run.
	RecordBuild(duration time.Duration, outcome string)
}

// NoopRecorder is the default Recorder; all methods inline to nothing.
type NoopRecorder struct{}

func (NoopRecorder) RecordDocument(string, bool)       {}
func (NoopRecorder) RecordIssue(string)                {}
func (NoopRecorder) RecordAsset(bool)                  {}
func (NoopRecorder) RecordBuild(time.Duration, string) {}
