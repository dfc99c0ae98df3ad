// Package model defines the provider‑agnostic abstraction used to turn a
// prompt into generated text, plus helpers shared by the concrete providers.
//
// Core goals:
//   - A single synchronous Complete call: prompt in, first choice text out
//   - Per request model id, output token bound and identification headers
//   - Uniform error classes (ErrAuth, ErrRateLimited, ErrTransport) joined
//     with the vendor error so callers can branch without importing SDKs
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI compatible endpoints such as OpenRouter, Anthropic)
// implement the Model interface in sub packages so stages remain decoupled
// from vendor SDKs.
package model
