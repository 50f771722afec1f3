package mdmath

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alnah/go-mdmath/internal/fileutil"
)

// Persister stores a rendered image.
type Persister interface {
	Persist(ctx context.Context, path, content string) error
}

var _ Persister = FilePersister{}

// FilePersister writes images to the local filesystem, creating missing
// directories first. Existing files are overwritten.
type FilePersister struct{}

// Persist writes content to path. A directory that cannot be created fails
// the write with ErrCreateDir; nothing is written in that case.
func (FilePersister) Persist(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateDir, err)
	}
	if err := fileutil.WriteFile(path, content); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFile, err)
	}
	return nil
}
