package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/fileutil"
)

var _ mdmath.Host = (*fileHost)(nil)

// fileHost applies edits to a document on disk and prints errors.
// The edit is computed against the text read when the command started.
type fileHost struct {
	original string
	dryRun   bool
	stderr   io.Writer

	mu     sync.Mutex
	result string
}

func newFileHost(original string, dryRun bool, stderr io.Writer) *fileHost {
	return &fileHost{original: original, dryRun: dryRun, stderr: stderr}
}

// ApplyEdit writes the edited document atomically, or only keeps it in dry-run.
func (h *fileHost) ApplyEdit(ctx context.Context, edit mdmath.Edit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	updated, err := edit.Apply(h.original)
	if err != nil {
		return err
	}

	if !h.dryRun {
		if err := fileutil.WriteFileAtomic(edit.DocumentPath, updated); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.result = updated
	h.mu.Unlock()
	return nil
}

// ShowError prints msg to stderr.
func (h *fileHost) ShowError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.stderr, "error: %s\n", msg)
}

// Result returns the edited document, or "" if no edit was applied.
func (h *fileHost) Result() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}
