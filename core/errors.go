package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is matched by every *FieldError.
	ErrMissingField = errors.New("missing required field")

	// ErrDecode is returned when fetched bytes are not valid UTF-8 text.
	ErrDecode = errors.New("payload is not valid utf-8")
)

// FieldError reports a required field that was absent when a stage started.
type FieldError struct {
	Stage string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("stage %s: %s: %s", e.Stage, ErrMissingField, e.Field)
}

// Is lets errors.Is(err, ErrMissingField) match.
func (e *FieldError) Is(target error) bool { return target == ErrMissingField }
