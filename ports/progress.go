package ports

// ProgressSink receives fire-and-forget progress notifications before each
// major pipeline stage. Implementations must never block and never panic;
// the analysis proceeds identically whether anyone is listening.
type ProgressSink interface {
	Report(msg string)
}
