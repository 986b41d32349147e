package model

import (
	"errors"
	"fmt"
)

// Fatal errors abort a whole run.
var (
	ErrSourceUnreadable  = errors.New("source unreadable")
	ErrUnsupportedFormat = errors.New("unsupported log format")
)

// Line-scoped errors cause a single line to be skipped.
var (
	ErrFieldCountMismatch = errors.New("invalid number of fields")
	ErrInvalidField       = errors.New("invalid field")
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// FieldError reports a single field that failed validation.
// It matches ErrInvalidField as well as its underlying cause.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrInvalidField, e.Err}
}

// LineError wraps a parse failure together with the offending source line.
type LineError struct {
	Line string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("error parsing log line %q: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
