package mdmath

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFilePersister_CreatesDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "svg", "nested", "a-00.svg")
	if err := (FilePersister{}).Persist(context.Background(), path, testSVG); err != nil {
		t.Fatalf("Persist() unexpected error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(got) != testSVG {
		t.Errorf("content = %q, want %q", got, testSVG)
	}
}

func TestFilePersister_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.svg")
	if err := os.WriteFile(path, []byte("old content that is longer"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := (FilePersister{}).Persist(context.Background(), path, "<svg/>"); err != nil {
		t.Fatalf("Persist() unexpected error: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "<svg/>" {
		t.Errorf("content = %q, want full overwrite", got)
	}
}

func TestFilePersister_DirectoryBlockedByFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "svg")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	path := filepath.Join(blocker, "a.svg")
	err := (FilePersister{}).Persist(context.Background(), path, testSVG)
	if !errors.Is(err, ErrCreateDir) {
		t.Fatalf("Persist() error = %v, want ErrCreateDir", err)
	}
}

func TestFilePersister_WriteError(t *testing.T) {
	t.Parallel()

	// The target exists as a directory, so the write itself fails.
	path := filepath.Join(t.TempDir(), "a.svg")
	if err := os.Mkdir(path, 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}

	err := (FilePersister{}).Persist(context.Background(), path, testSVG)
	if !errors.Is(err, ErrWriteFile) {
		t.Fatalf("Persist() error = %v, want ErrWriteFile", err)
	}
}

func TestFilePersister_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "a.svg")
	if err := (FilePersister{}).Persist(ctx, path, testSVG); !errors.Is(err, context.Canceled) {
		t.Errorf("Persist() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("canceled persist wrote a file")
	}
}
