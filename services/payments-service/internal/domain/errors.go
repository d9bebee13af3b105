package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrConflict            = errors.New("conflict")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
)

// Error pairs a sentinel kind with the machine-readable code returned to
// callers. errors.Is matches the kind.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

func Invalid(code, message string) error {
	return &Error{Kind: ErrInvalidInput, Code: code, Message: message}
}

func NotFound(code, message string) error {
	return &Error{Kind: ErrNotFound, Code: code, Message: message}
}

func Transition(code, message string) error {
	return &Error{Kind: ErrInvalidTransition, Code: code, Message: message}
}

func Conflict(code, message string) error {
	return &Error{Kind: ErrConflict, Code: code, Message: message}
}

// CodeOf returns the code carried by err, or fallback.
func CodeOf(err error, fallback string) string {
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return fallback
}
