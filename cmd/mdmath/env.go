package main

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	mdmath "github.com/alnah/go-mdmath"
)

// engine is a renderer the CLI must close.
type engine interface {
	mdmath.Renderer
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, terminal detection and the engine factory.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StderrIsTerminal enables colored equations when --color is not given.
	StderrIsTerminal func() bool

	// NewEngine starts the typesetting engine for render and serve.
	NewEngine func(workers int, opts ...mdmath.EngineOption) engine
}

// DefaultEnv returns the production environment: real streams and MathJax in Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		StderrIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stderr.Fd())) // #nosec G115 -- file descriptors fit in int
		},
		NewEngine: func(workers int, opts ...mdmath.EngineOption) engine {
			return mdmath.NewEnginePool(workers, opts...)
		},
	}
}
