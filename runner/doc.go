// Package runner is the orchestration layer around a compiled pipeline.
//
// The Runner gives every invocation an ID, bounds how many invocations run
// at once, keeps a registry of active runs so they can be cancelled, and
// logs each outcome. InvokeBatch fans a list of jobs out over the same
// limit and reports a Result per job.
//
// # Responsibilities (abridged)
//   - Invocation IDs and structured logging
//   - Concurrency limit shared by Invoke and InvokeBatch callers
//   - Optional per-invocation timeout
//   - Cancellation of active runs by ID
//
// The runner never retries. A failed invocation is reported once and left
// for the caller to handle.
package runner
