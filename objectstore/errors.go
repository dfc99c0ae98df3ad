package objectstore

import "errors"

var (
	// ErrNotFound is returned when the requested bucket or key does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrAccessDenied is returned when credentials lack permission for the
	// requested bucket or key.
	ErrAccessDenied = errors.New("object access denied")
)
