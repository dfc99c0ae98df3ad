// Package config loads service configuration from an optional config.yml,
// an optional .env file and the process environment.
//
// Environment variables follow the SECTION_FIELD convention (LLM_MODEL,
// STORAGE_BACKEND, LOG_LEVEL) and a few well-known names are accepted as
// aliases, most notably OPENROUTER_API_KEY and the standard AWS variables.
package config
