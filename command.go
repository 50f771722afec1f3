package mdmath

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alnah/go-mdmath/internal/logging"
	"github.com/alnah/go-mdmath/internal/pipeline"
)

// Host is the editor the command runs in.
// Implementations must accept ShowError calls from other goroutines.
type Host interface {
	// ApplyEdit applies edit to the open document as one change.
	ApplyEdit(ctx context.Context, edit Edit) error
	// ShowError notifies the user.
	ShowError(msg string)
}

// Command renders a selected equation to an SVG file and replaces the selection
// with a hidden copy of the source followed by an image reference.
// A Command is safe for concurrent use; invocations share nothing but the renderer.
type Command struct {
	renderer   Renderer
	persister  Persister
	naming     pipeline.OutputNaming
	alt        string
	background string
	logger     *slog.Logger
	engineOpts []EngineOption

	ownedMu sync.Mutex
	owned   *EnginePool // started by the command, closed by Close
}

// NewCommand creates a Command with default naming (svg/<doc>-<hex>.svg),
// a white background and the "math" alt text.
func NewCommand(opts ...Option) (*Command, error) {
	c := &Command{
		persister:  FilePersister{},
		alt:        pipeline.DefaultImageAlt,
		background: pipeline.DefaultBackground,
		logger:     logging.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := validateNaming(c.naming); err != nil {
		return nil, err
	}

	if c.renderer == nil {
		c.owned = NewEnginePool(1, append([]EngineOption{WithEngineLogger(c.logger)}, c.engineOpts...)...)
		c.renderer = c.owned
	}

	return c, nil
}

// validateNaming rejects joiners that would reintroduce separators or dots
// into image names, and unusable token lengths.
func validateNaming(n pipeline.OutputNaming) error {
	if n.Joiner != "" {
		if len([]rune(n.Joiner)) != 1 || strings.ContainsAny(n.Joiner, `/\. `) {
			return fmt.Errorf("%w: %q (must be one character other than a separator, dot or space)", ErrInvalidJoiner, n.Joiner)
		}
	}
	if n.TokenBytes < 0 || n.TokenBytes > maxTokenBytes {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidTokenBytes, n.TokenBytes, maxTokenBytes)
	}
	return nil
}

// maxTokenBytes keeps image names well under file-name limits.
const maxTokenBytes = 32

// Run performs one invocation.
//
// An empty or non-math selection is reported to the host and returned; nothing
// is rendered or edited. Otherwise rendering starts in the background and the
// edit is applied without waiting for it: the returned Job tracks the render,
// and a render failure never undoes the edit. Run returns the Job even when
// the edit fails.
func (c *Command) Run(ctx context.Context, host Host, inv Invocation) (*Job, error) {
	sel := inv.Selection
	if sel.Text == "" {
		host.ShowError(MsgNothingSelected)
		return nil, ErrNothingSelected
	}
	if err := sel.Validate(); err != nil {
		host.ShowError(MsgInvalidSelection)
		return nil, err
	}

	style := pipeline.Classify(sel.Text)
	if style == StyleInvalid {
		host.ShowError(MsgInvalidEquation)
		return nil, fmt.Errorf("%w: %q", ErrInvalidEquation, sel.Text)
	}
	equation := pipeline.ExtractEquation(sel.Text, style)

	loc, err := pipeline.BuildOutputPath(inv.WorkspaceRoot, inv.DocumentPath, c.naming)
	if err != nil {
		host.ShowError(err.Error())
		return nil, err
	}

	c.logger.Debug("rendering selection",
		"document", inv.DocumentPath,
		"style", style.String(),
		"equation", equation,
		"output", loc.AbsolutePath)

	job := c.dispatch(ctx, host, equation, style, loc)

	edit := Edit{
		DocumentPath: inv.DocumentPath,
		Insertions:   pipeline.CommentOut(sel.Start, sel.End, loc.RelativePath, c.alt),
	}
	if err := host.ApplyEdit(ctx, edit); err != nil {
		err = fmt.Errorf("%w: %v", ErrApplyEdit, err)
		host.ShowError(err.Error())
		return job, err
	}
	c.logger.Debug("edit applied", "document", inv.DocumentPath, "image", loc.RelativePath)

	return job, nil
}

// dispatch starts the render and persist branch.
func (c *Command) dispatch(ctx context.Context, host Host, equation string, style RenderStyle, loc OutputLocation) *Job {
	job := newJob(equation, style, loc)
	go func() {
		err := c.renderAndPersist(ctx, equation, style, loc)
		if err != nil {
			host.ShowError(err.Error())
			c.logger.Debug("render failed", "output", loc.AbsolutePath, "error", err)
		} else {
			c.logger.Debug("image written", "output", loc.AbsolutePath)
		}
		job.finish(err)
	}()
	return job
}

// renderAndPersist converts the equation and writes the image.
// Recovers from internal panics so a faulty renderer cannot take the host down.
func (c *Command) renderAndPersist(ctx context.Context, equation string, style RenderStyle, loc OutputLocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Equation: equation, Path: loc.AbsolutePath, Style: style, Err: fmt.Errorf("internal error: %v", r)}
		}
	}()

	svg, err := c.renderer.Render(ctx, equation, style)
	if err != nil {
		return &RenderError{Equation: equation, Path: loc.AbsolutePath, Style: style, Err: err}
	}

	svg = pipeline.InjectBackground(svg, c.background)
	return c.persister.Persist(ctx, loc.AbsolutePath, svg)
}

// Close stops the engine the Command started, if any.
// Renderers passed with WithRenderer are left to their owner.
func (c *Command) Close() error {
	c.ownedMu.Lock()
	defer c.ownedMu.Unlock()
	if c.owned == nil {
		return nil
	}
	err := c.owned.Close()
	c.owned = nil
	return err
}
