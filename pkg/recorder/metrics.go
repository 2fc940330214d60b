// ABOUTME: Instrumentation hooks for recordings
// ABOUTME: Metrics interface consumed by the recorder and session
package recorder

import "time"

// Metrics receives recorder events for instrumentation
type Metrics interface {
	RecordingStarted()
	RecordingStopped(elapsed time.Duration)
	FrameWritten(bytes int)
	FrameDropped()
	TransientRead()
	Failure(kind string)
}

type nopMetrics struct{}

func (nopMetrics) RecordingStarted()              {}
func (nopMetrics) RecordingStopped(time.Duration) {}
func (nopMetrics) FrameWritten(int)               {}
func (nopMetrics) FrameDropped()                  {}
func (nopMetrics) TransientRead()                 {}
func (nopMetrics) Failure(string)                 {}
