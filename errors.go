package mdmath

import (
	"errors"
	"fmt"

	"github.com/alnah/go-mdmath/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Selection errors, reported to the host and terminal for the invocation.
	ErrNothingSelected  = errors.New("nothing selected")
	ErrInvalidSelection = errors.New("invalid selection range")
	ErrInvalidEquation  = errors.New("selection is not a math expression")

	// Render errors. A *RenderError matches ErrRender.
	ErrRender         = errors.New("rendering failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrEngineInit     = errors.New("failed to start MathJax")
	ErrEngineClosed   = errors.New("engine is closed")

	// Persistence errors.
	ErrCreateDir  = errors.New("failed to create output directory")
	ErrWriteFile  = errors.New("failed to write image")
	ErrRemoveFile = errors.New("failed to remove image")

	// Edit errors.
	ErrApplyEdit      = errors.New("failed to apply edit")
	ErrEditOutOfRange = pipeline.ErrOffsetOutOfRange

	// Option validation errors.
	ErrInvalidJoiner     = errors.New("invalid joiner")
	ErrInvalidTokenBytes = errors.New("invalid token length")
)

// Messages shown to the user through Host.ShowError.
const (
	MsgNothingSelected  = "Nothing selected"
	MsgInvalidEquation  = "Selection must be a math expression wrapped in $...$ (inline) or $$...$$ (display)"
	MsgInvalidSelection = "Selection range is invalid"
)

// RenderError reports a failed conversion with the context needed to find it again.
type RenderError struct {
	Equation string
	Path     string
	Style    RenderStyle
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("Error: %v; Equation: %s; Path: %s; Style: %s", e.Err, e.Equation, e.Path, e.Style)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRender) match any render failure.
func (e *RenderError) Is(target error) bool { return target == ErrRender }
