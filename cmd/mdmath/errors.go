package main

import (
	"context"
	"errors"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/hints"
)

// CLI errors.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrReadDocument   = errors.New("failed to read document")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrInvalidWorkers = errors.New("invalid workers")
	ErrBadRequest     = errors.New("invalid request")
)

// hintedError carries an actionable hint appended to its message.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() + e.hint }
func (e *hintedError) Unwrap() error { return e.err }

// withHint appends the hint matching err, if any.
func withHint(err error, source string) error {
	if err == nil {
		return nil
	}
	if hint := hintFor(err, source); hint != "" {
		return &hintedError{err: err, hint: hint}
	}
	return err
}

// reportedError marks an error the host already showed to the user.
type reportedError struct {
	err  error
	hint string
}

func (e *reportedError) Error() string { return e.err.Error() + e.hint }
func (e *reportedError) Unwrap() error { return e.err }

// hintFor returns the hint for err, or "". source is the MathJax source in use.
func hintFor(err error, source string) string {
	switch {
	case errors.Is(err, mdmath.ErrInvalidEquation):
		return hints.ForInvalidEquation()
	case errors.Is(err, mdmath.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mdmath.ErrEngineInit):
		return hints.ForEngineInit(source)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mdmath.ErrCreateDir), errors.Is(err, mdmath.ErrWriteFile):
		return hints.ForOutputDirectory()
	}
	return ""
}
