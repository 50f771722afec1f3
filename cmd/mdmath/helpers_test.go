package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	mdmath "github.com/alnah/go-mdmath"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake engine and environment
// ---------------------------------------------------------------------------

// fakeSVG mimics the root element MathJax produces.
const fakeSVG = `<svg style="vertical-align: -0.05ex;" xmlns="http://www.w3.org/2000/svg"></svg>`

type fakeEngine struct {
	mu      sync.Mutex
	workers int
	calls   []string
	err     error
	closed  bool
}

func (f *fakeEngine) Render(ctx context.Context, equation string, style mdmath.RenderStyle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, equation)
	if f.err != nil {
		return "", f.err
	}
	return fakeSVG, nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// syncBuffer is a bytes.Buffer safe for the concurrent writers of serve.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	*Environment
	stdout *syncBuffer
	stderr *syncBuffer
	engine *fakeEngine
}

// newTestEnv returns an Environment with captured output and a fake engine.
func newTestEnv(stdin string) *testEnv {
	te := &testEnv{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		engine: &fakeEngine{},
	}
	te.Environment = &Environment{
		Now:              func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdin:            strings.NewReader(stdin),
		Stdout:           te.stdout,
		Stderr:           te.stderr,
		StderrIsTerminal: func() bool { return false },
		NewEngine: func(workers int, opts ...mdmath.EngineOption) engine {
			te.engine.mu.Lock()
			te.engine.workers = workers
			te.engine.mu.Unlock()
			return te.engine
		},
	}
	return te
}

// newWorkspace creates a workspace (marked by .git) holding notes.md.
func newWorkspace(t *testing.T, content string) (root, doc string) {
	t.Helper()
	root = t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o750); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	doc = filepath.Join(root, "notes.md")
	writeTestFile(t, doc, content)
	return root, doc
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// listSVGs returns the images under root/svg.
func listSVGs(t *testing.T, root string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(root, "svg", "*.svg"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}
