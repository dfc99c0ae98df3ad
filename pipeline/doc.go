// Package pipeline runs a fixed, ordered chain of core.Stage values.
//
// A pipeline is declared either as a plain ordered list (New) or node by
// node with explicit edges (Builder), then compiled once into an immutable
// Pipeline. Invoke threads a private copy of the state through every stage,
// merging each stage's patch before the next one starts.
//
// Failure policy is fail-fast: the first stage error aborts the run, no
// later stage executes, nothing is retried or rolled back, and the error is
// returned wrapped in a *StageError that unwraps to the original.
package pipeline
