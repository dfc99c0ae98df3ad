// Package core provides the foundational types shared by every other package
// in s3agent:
//
//   - State (the record threaded through a pipeline run) and Patch (a stage result)
//   - Stage (one named unit of work) and StageFunc
//   - Error sentinels for missing fields and undecodable payloads
//
// The package intentionally keeps implementation concerns (object storage,
// model providers, pipeline orchestration) out of scope so adapters and
// executors can evolve without touching these contracts.
package core
