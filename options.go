package mdmath

import (
	"io"
	"log/slog"
	"time"
)

// Option configures a Command.
type Option func(*Command)

// WithRenderer sets the typesetting engine. The Command does not close it.
// Without this option the Command starts its own MathJax engine on first use.
func WithRenderer(r Renderer) Option {
	return func(c *Command) {
		c.renderer = r
	}
}

// WithPersister replaces the file writer.
func WithPersister(p Persister) Option {
	return func(c *Command) {
		c.persister = p
	}
}

// WithOutputDir sets the image directory, relative to the workspace root.
func WithOutputDir(dir string) Option {
	return func(c *Command) {
		c.naming.Dir = dir
	}
}

// WithJoiner sets the character that replaces separators in image names.
func WithJoiner(joiner string) Option {
	return func(c *Command) {
		c.naming.Joiner = joiner
	}
}

// WithTokenBytes sets how many random bytes make up the name suffix.
func WithTokenBytes(n int) Option {
	return func(c *Command) {
		c.naming.TokenBytes = n
	}
}

// WithRandom sets the source of name tokens. Tests use it for stable names.
func WithRandom(r io.Reader) Option {
	return func(c *Command) {
		c.naming.Random = r
	}
}

// WithImageAlt sets the alt text of inserted image references.
func WithImageAlt(alt string) Option {
	return func(c *Command) {
		c.alt = alt
	}
}

// WithBackground sets the background color painted behind each image.
// An empty color leaves the image transparent.
func WithBackground(color string) Option {
	return func(c *Command) {
		c.background = color
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Command) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEngineOptions configures the engine the Command starts when no
// renderer is given.
func WithEngineOptions(opts ...EngineOption) Option {
	return func(c *Command) {
		c.engineOpts = append(c.engineOpts, opts...)
	}
}

// EngineOption configures a MathJax engine.
type EngineOption func(*engineConfig)

// engineConfig holds the settings shared by all engines of a pool.
type engineConfig struct {
	source  string
	timeout time.Duration
	logger  *slog.Logger
}

// defaultTimeout bounds engine startup and each conversion.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the startup and conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) EngineOption {
	if d <= 0 {
		panic("mdmath: WithTimeout duration must be positive")
	}
	return func(c *engineConfig) {
		c.timeout = d
	}
}

// WithMathJaxSource loads MathJax from a URL or a local startup.js path.
func WithMathJaxSource(src string) EngineOption {
	return func(c *engineConfig) {
		c.source = src
	}
}

// WithEngineLogger sets the logger used by engines.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
