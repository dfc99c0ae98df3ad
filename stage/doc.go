// Package stage provides the three stages of the summarization pipeline:
//
//   - SourceReader (read_from_s3) fetches the input object and decodes it as UTF-8
//   - Transformer (call_llm) asks a completion model to summarize the text
//   - SinkWriter (write_to_s3) stores the summary and marks the run SUCCESS
//
// Each stage checks its required fields on entry and returns a
// *core.FieldError when one is absent. Adapter errors are passed through
// untouched so callers can match them with errors.Is.
package stage
