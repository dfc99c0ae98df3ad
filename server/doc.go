// Package server exposes a pipeline over HTTP using gin.
//
// Request and response bodies are the flat state mapping (bucket,
// input_key, output_key, text, processed_text, status). Errors are reported
// as an ErrorResponse whose status code follows the error class:
// 400 missing field or malformed body, 403 access or auth, 404 not found,
// 422 undecodable object, 429 rate limited, 502 any other adapter failure.
package server
