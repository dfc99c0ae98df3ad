// Package logging provides a minimal logging interface and adapters for s3agent.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the pipeline, runner and server use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - PipelineLogger with stage / model call / run helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	p, err := pipeline.New("s3-summarize", stages, pipeline.WithLogger(logger))
package logging
