package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	flag "github.com/spf13/pflag"

	mdmath "github.com/alnah/go-mdmath"
)

// maxRequestSize bounds one JSON line, inline document text included.
const maxRequestSize = 8 << 20

// Event names written by serve.
const (
	eventEdit     = "edit"
	eventRendered = "rendered"
	eventError    = "error"
)

// serveRequest is one invocation from an editor plugin.
// Text is the selected text; when absent it is read from the document on disk.
type serveRequest struct {
	ID        string  `json:"id"`
	Document  string  `json:"document"`
	Workspace string  `json:"workspace,omitempty"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Text      *string `json:"text,omitempty"`
}

// serveEvent is one line of output. The plugin applies edit events itself.
type serveEvent struct {
	ID       string       `json:"id"`
	Event    string       `json:"event"`
	Edit     *mdmath.Edit `json:"edit,omitempty"`
	Path     string       `json:"path,omitempty"`
	Relative string       `json:"relative,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// eventWriter serializes events from concurrent jobs onto one stream.
type eventWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newEventWriter(w io.Writer) *eventWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &eventWriter{enc: enc}
}

func (w *eventWriter) emit(ev serveEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.enc.Encode(ev)
}

// serveHost forwards one invocation's edit and errors as events.
type serveHost struct {
	id     string
	events *eventWriter
}

func (h *serveHost) ApplyEdit(ctx context.Context, edit mdmath.Edit) error {
	h.events.emit(serveEvent{ID: h.id, Event: eventEdit, Edit: &edit})
	return nil
}

func (h *serveHost) ShowError(msg string) {
	h.events.emit(serveEvent{ID: h.id, Event: eventError, Message: msg})
}

// runServe reads JSON-lines requests from stdin until EOF or a signal, sharing
// one engine pool between them. It returns once every started render ends.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) != 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}
	if flags.workers < 0 || flags.workers > mdmath.MaxPoolSize*4 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, flags.workers)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	s, err := resolveSettings(flags.common, cwd, env)
	if err != nil {
		return err
	}

	workers := flags.workers
	if workers == 0 {
		workers = s.cfg.Engine.Workers
	}
	workers = mdmath.ResolvePoolSize(workers)

	eng := env.NewEngine(workers, engineOptions(s)...)
	defer func() {
		if err := eng.Close(); err != nil {
			s.logger.Debug("closing engines", "error", err)
		}
	}()

	cmd, err := mdmath.NewCommand(append(commandOptions(s), mdmath.WithRenderer(eng))...)
	if err != nil {
		return err
	}

	s.logger.Info("serving", "workers", workers)

	srv := &server{cmd: cmd, settings: s, events: newEventWriter(env.Stdout)}
	lines, scanErr := readLines(ctx, env.Stdin)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			srv.handle(ctx, line)
		}
	}

	srv.jobs.Wait()
	if ctx.Err() != nil {
		// The reader may still be blocked on stdin; a signal is a normal stop.
		return nil
	}
	if err := <-scanErr; err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}

// readLines scans r in the background so the serve loop can stop on a signal
// while a read is pending.
func readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxRequestSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// server runs requests for runServe.
type server struct {
	cmd      *mdmath.Command
	settings *settings
	events   *eventWriter
	jobs     sync.WaitGroup
}

// handle runs one request line. Failures become error events.
func (s *server) handle(ctx context.Context, line []byte) {
	if len(line) == 0 {
		return
	}

	var req serveRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.events.emit(serveEvent{Event: eventError, Message: fmt.Sprintf("%v: %v", ErrBadRequest, err)})
		return
	}

	inv, err := s.invocation(req)
	if err != nil {
		s.events.emit(serveEvent{ID: req.ID, Event: eventError, Message: err.Error()})
		return
	}

	host := &serveHost{id: req.ID, events: s.events}
	job, _ := s.cmd.Run(ctx, host, inv) // errors were emitted by the host
	if job == nil {
		return
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		if err := job.Wait(ctx); err == nil {
			s.events.emit(serveEvent{
				ID:       req.ID,
				Event:    eventRendered,
				Path:     job.Location.AbsolutePath,
				Relative: filepath.ToSlash(job.Location.RelativePath),
			})
		}
	}()
}

// invocation builds the invocation for req, reading the document when the
// request carries no text.
func (s *server) invocation(req serveRequest) (mdmath.Invocation, error) {
	if req.Document == "" {
		return mdmath.Invocation{}, fmt.Errorf("%w: document is required", ErrBadRequest)
	}
	docPath, err := filepath.Abs(req.Document)
	if err != nil {
		return mdmath.Invocation{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	var sel mdmath.Selection
	if req.Text != nil {
		if n := len(*req.Text); req.End-req.Start != n {
			return mdmath.Invocation{}, fmt.Errorf("%w: text is %d bytes but [%d, %d) spans %d",
				ErrBadRequest, n, req.Start, req.End, req.End-req.Start)
		}
		sel = mdmath.Selection{Text: *req.Text, Start: req.Start, End: req.End}
	} else {
		content, err := os.ReadFile(docPath) // #nosec G304 -- document path comes from the editor
		if err != nil {
			return mdmath.Invocation{}, fmt.Errorf("%w: %w", ErrReadDocument, err)
		}
		sel, err = mdmath.SelectionFrom(string(content), req.Start, req.End)
		if err != nil {
			return mdmath.Invocation{}, err
		}
	}

	return mdmath.Invocation{
		DocumentPath:  docPath,
		WorkspaceRoot: resolveWorkspace(req.Workspace, s.settings.cfg, filepath.Dir(docPath)),
		Selection:     sel,
	}, nil
}
