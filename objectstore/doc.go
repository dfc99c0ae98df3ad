// Package objectstore contains the object storage contract consumed by the
// pipeline stages and its in-memory implementation.
//
// Store is deliberately tiny: fetch bytes by bucket+key and put bytes at
// bucket+key. Backends live in sub packages (s3, local) so that callers
// depend on the interface and can substitute the in-memory store in tests.
//
// Backends classify failures by joining ErrNotFound or ErrAccessDenied with
// the original error, so both errors.Is(err, ErrNotFound) and errors.As on the
// vendor error type keep working.
package objectstore
