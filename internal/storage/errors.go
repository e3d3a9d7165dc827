package storage

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by this package wraps exactly one of
// these sentinels together with the underlying cause, so callers can use
// errors.Is for both.
var (
	// ErrIO means the filesystem could not be read or written.
	ErrIO = errors.New("io error")
	// ErrParse means a file held malformed JSON or did not match the schema.
	ErrParse = errors.New("parse error")
	// ErrNotFound means a referenced cycle id or content file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means a caller-supplied argument failed a precondition.
	ErrInvalidInput = errors.New("invalid input")
)

func ioError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}

func parseError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrParse, err)
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
