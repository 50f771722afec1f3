package main

import (
	"errors"
	"os"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/assets"
	"github.com/alnah/go-mdmath/internal/config"
)

// Exit codes for the mdmath CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful render
	ExitGeneral = 1 // General/unexpected error, including MathJax rejecting the TeX
	ExitUsage   = 2 // Invalid flags, config, selection or equation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome or MathJax startup errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdmath.ErrBrowserConnect) ||
		errors.Is(err, mdmath.ErrPageCreate) ||
		errors.Is(err, mdmath.ErrEngineInit) ||
		errors.Is(err, mdmath.ErrEngineClosed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDocument) ||
		errors.Is(err, mdmath.ErrCreateDir) ||
		errors.Is(err, mdmath.ErrWriteFile) ||
		errors.Is(err, mdmath.ErrRemoveFile) ||
		errors.Is(err, mdmath.ErrApplyEdit) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, assets.ErrInvalidSource) ||
		errors.Is(err, mdmath.ErrNothingSelected) ||
		errors.Is(err, mdmath.ErrInvalidSelection) ||
		errors.Is(err, mdmath.ErrInvalidEquation) ||
		errors.Is(err, mdmath.ErrEditOutOfRange) ||
		errors.Is(err, mdmath.ErrInvalidJoiner) ||
		errors.Is(err, mdmath.ErrInvalidTokenBytes) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidWorkers) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
