package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
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

func Forbidden(code, message string) error {
	return &Error{Kind: ErrForbidden, Code: code, Message: message}
}

// CodeOf returns the code carried by err, or fallback.
func CodeOf(err error, fallback string) string {
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return fallback
}
