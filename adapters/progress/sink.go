// Package progress provides ProgressSink implementations. Sinks are
// fire-and-forget: they must never block and never panic, so the analysis
// behaves identically whether anyone is listening.
package progress

import "neurowave/internal"

// LogSink reports progress through the application logger.
type LogSink struct {
	logger *internal.Logger
}

// NewLogSink wraps a logger as a progress sink.
func NewLogSink(logger *internal.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report logs the message at INFO level. A nil logger is tolerated.
func (s *LogSink) Report(msg string) {
	defer func() {
		// A sink failure must never take down the analysis.
		_ = recover()
	}()
	if s.logger != nil {
		s.logger.Info("%s", msg)
	}
}

// NopSink discards all progress messages.
type NopSink struct{}

// Report does nothing.
func (NopSink) Report(string) {}
