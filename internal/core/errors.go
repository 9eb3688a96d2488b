package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Load. Match with errors.Is.
var (
	ErrFileNotFound = errors.New("file not found")
	ErrEmptyFile    = errors.New("empty file")
)

// LoadError wraps a failure while loading a dataset.
type LoadError struct {
	Op   string // "open", "read", "decode", "parse", "header"
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// HeaderError reports a header that cannot be standardized.
type HeaderError struct {
	Column string
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header column %q: %s", e.Column, e.Reason)
}

// ErrorTypeName returns a short type label for an error, used in issue details.
func ErrorTypeName(err error) string {
	var (
		loadErr   *LoadError
		headerErr *HeaderError
		castErr   *CastError
	)
	switch {
	case errors.As(err, &headerErr):
		return "HeaderError"
	case errors.As(err, &castErr):
		return "CastError"
	case errors.As(err, &loadErr):
		inner := errors.Unwrap(loadErr)
		if inner != nil {
			return fmt.Sprintf("%T", inner)
		}
		return "LoadError"
	case err == nil:
		return ""
	default:
		return fmt.Sprintf("%T", err)
	}
}
