package main

// Notes:
// - runMain: we test exit codes and output for every command. Rendering uses
//   fakeEngine; the real MathJax engine is covered by the integration tests
//   of the root package.
// - Render tests work in t.TempDir workspaces marked by a .git directory.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	mdmath "github.com/alnah/go-mdmath"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout string
		wantInStderr string
	}{
		{"no command", []string{"mdmath"}, ExitUsage, "", "Usage: mdmath"},
		{"unknown command", []string{"mdmath", "convert"}, ExitUsage, "", "unknown command: convert"},
		{"version", []string{"mdmath", "version"}, ExitSuccess, "mdmath dev", ""},
		{"help", []string{"mdmath", "help"}, ExitSuccess, "Commands:", ""},
		{"help flag", []string{"mdmath", "--help"}, ExitSuccess, "Commands:", ""},
		{"help render", []string{"mdmath", "help", "render"}, ExitSuccess, "--start <n>", ""},
		{"help serve", []string{"mdmath", "help", "serve"}, ExitSuccess, "JSON", ""},
		{"help prune", []string{"mdmath", "help", "prune"}, ExitSuccess, "--dry-run", ""},
		{"help unknown", []string{"mdmath", "help", "nope"}, ExitSuccess, "", "Unknown command: nope"},
		{"completion usage", []string{"mdmath", "completion"}, ExitSuccess, "Supported shells", ""},
		{"completion bash", []string{"mdmath", "completion", "bash"}, ExitSuccess, "complete -o filenames -F _mdmath mdmath", ""},
		{"completion unsupported", []string{"mdmath", "completion", "powershell"}, ExitUsage, "", "unsupported shell"},
		{"render without document", []string{"mdmath", "render"}, ExitUsage, "", "exactly one document"},
		{"render without offsets", []string{"mdmath", "render", "notes.md"}, ExitUsage, "", "--start and --end are required"},
		{"render unknown flag", []string{"mdmath", "render", "--bogus"}, ExitUsage, "", "invalid usage"},
		{"render missing document", []string{"mdmath", "render", "/nonexistent/notes.md", "--start", "0", "--end", "3"}, ExitIO, "", "failed to read document"},
		{"serve with argument", []string{"mdmath", "serve", "extra"}, ExitUsage, "", "serve takes no arguments"},
		{"serve negative workers", []string{"mdmath", "serve", "--workers", "-1"}, ExitUsage, "", "invalid workers"},
		{"prune two workspaces", []string{"mdmath", "prune", "a", "b"}, ExitUsage, "", "at most one workspace"},
		{"prune missing workspace", []string{"mdmath", "prune", "/nonexistent/ws"}, ExitIO, "", "not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv("")
			code := runMain(tt.args, env.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr.String())
			}
			if tt.wantInStdout != "" && !strings.Contains(env.stdout.String(), tt.wantInStdout) {
				t.Errorf("stdout = %q, want to contain %q", env.stdout.String(), tt.wantInStdout)
			}
			if tt.wantInStderr != "" && !strings.Contains(env.stderr.String(), tt.wantInStderr) {
				t.Errorf("stderr = %q, want to contain %q", env.stderr.String(), tt.wantInStderr)
			}
		})
	}
}

// renderArgs builds render arguments selecting [start, end) of doc.
func renderArgs(doc string, start, end int, extra ...string) []string {
	args := []string{"mdmath", "render", doc, "--start", strconv.Itoa(start), "--end", strconv.Itoa(end)}
	return append(args, extra...)
}

// ---------------------------------------------------------------------------
// TestRunMain_Render - End-to-end render with a fake engine
// ---------------------------------------------------------------------------

func TestRunMain_Render(t *testing.T) {
	t.Parallel()

	root, doc := newWorkspace(t, "Area: $\\pi r^2$ here.\n")
	start := strings.Index(readTestFile(t, doc), "$")
	end := start + len("$\\pi r^2$")

	env := newTestEnv("")
	code := runMain(renderArgs(doc, start, end), env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, env.stderr.String())
	}

	images := listSVGs(t, root)
	if len(images) != 1 {
		t.Fatalf("images = %v, want exactly one", images)
	}
	if !strings.HasPrefix(filepath.Base(images[0]), "notes-") {
		t.Errorf("image name = %q, want notes-<token>.svg", filepath.Base(images[0]))
	}
	if svg := readTestFile(t, images[0]); !strings.Contains(svg, "background-color: white;") {
		t.Errorf("image = %q, want white background", svg)
	}

	want := "Area: <!--$\\pi r^2$-->\n![math](svg/" + filepath.Base(images[0]) + ") here.\n"
	if got := readTestFile(t, doc); got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
	if !strings.Contains(env.stdout.String(), images[0]) {
		t.Errorf("stdout = %q, want image path %q", env.stdout.String(), images[0])
	}
	if calls := env.engine.Calls(); len(calls) != 1 || calls[0] != "\\pi r^2" {
		t.Errorf("engine calls = %q, want [\\pi r^2]", calls)
	}
	if !env.engine.closed {
		t.Error("engine not closed")
	}
}

func TestRunMain_Render_DisplayInSubdirectory(t *testing.T) {
	t.Parallel()

	root, _ := newWorkspace(t, "")
	doc := filepath.Join(root, "docs", "guide", "intro.md")
	writeTestFile(t, doc, "$$E=mc^2$$")

	env := newTestEnv("")
	code := runMain(renderArgs(doc, 0, len("$$E=mc^2$$")), env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, env.stderr.String())
	}

	images := listSVGs(t, root)
	if len(images) != 1 {
		t.Fatalf("images = %v, want exactly one", images)
	}
	if !strings.HasPrefix(filepath.Base(images[0]), "docs-guide-intro-") {
		t.Errorf("image name = %q, want docs-guide-intro-<token>.svg", filepath.Base(images[0]))
	}
	if got := readTestFile(t, doc); !strings.Contains(got, "![math](../../svg/docs-guide-intro-") {
		t.Errorf("document = %q, want reference relative to the document", got)
	}
}

func TestRunMain_Render_DryRun(t *testing.T) {
	t.Parallel()

	const content = "x $a+b$ y"
	_, doc := newWorkspace(t, content)

	env := newTestEnv("")
	code := runMain(renderArgs(doc, 2, 7, "--dry-run"), env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, env.stderr.String())
	}
	if got := readTestFile(t, doc); got != content {
		t.Errorf("document changed in dry-run: %q", got)
	}
	if !strings.Contains(env.stdout.String(), "x <!--$a+b$-->\n![math](svg/notes-") {
		t.Errorf("stdout = %q, want rewritten document", env.stdout.String())
	}
}

func TestRunMain_Render_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		start, end   int
		wantCode     int
		wantInStderr string
	}{
		{"not math", "plain text", 0, 5, ExitUsage, mdmath.MsgInvalidEquation},
		{"empty selection", "$x$", 1, 1, ExitUsage, mdmath.MsgNothingSelected},
		{"end beyond document", "$x$", 0, 10, ExitUsage, "beyond document length"},
		{"end before start", "$x$", 3, 0, ExitUsage, "invalid selection range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root, doc := newWorkspace(t, tt.content)
			env := newTestEnv("")
			code := runMain(renderArgs(doc, tt.start, tt.end), env.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr.String())
			}
			if !strings.Contains(env.stderr.String(), tt.wantInStderr) {
				t.Errorf("stderr = %q, want to contain %q", env.stderr.String(), tt.wantInStderr)
			}
			if got := readTestFile(t, doc); got != tt.content {
				t.Errorf("document changed: %q", got)
			}
			if images := listSVGs(t, root); len(images) != 0 {
				t.Errorf("images = %v, want none", images)
			}
			if len(env.engine.Calls()) != 0 {
				t.Error("engine called for a rejected selection")
			}
		})
	}
}

func TestRunMain_Render_EngineFailureKeepsEdit(t *testing.T) {
	t.Parallel()

	root, doc := newWorkspace(t, "$\\frac{1}{$")
	env := newTestEnv("")
	env.engine.err = errors.New("Missing close brace")

	code := runMain(renderArgs(doc, 0, len("$\\frac{1}{$")), env.Environment)
	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}

	stderr := env.stderr.String()
	for _, want := range []string{"Missing close brace", "equation: \\frac{1}{"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr = %q, want to contain %q", stderr, want)
		}
	}
	if got := readTestFile(t, doc); !strings.HasPrefix(got, "<!--$\\frac{1}{$-->\n![math](svg/notes-") {
		t.Errorf("document = %q, want the edit applied despite the render failure", got)
	}
	if images := listSVGs(t, root); len(images) != 0 {
		t.Errorf("images = %v, want none", images)
	}
}

func TestRunMain_Render_QuietPrintsNothing(t *testing.T) {
	t.Parallel()

	_, doc := newWorkspace(t, "$x$")
	env := newTestEnv("")
	code := runMain(renderArgs(doc, 0, 3, "--quiet"), env.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, env.stderr.String())
	}
	if env.stdout.String() != "" {
		t.Errorf("stdout = %q, want empty", env.stdout.String())
	}
}

func TestRunMain_Render_ConfigOutputDir(t *testing.T) {
	t.Parallel()

	root, doc := newWorkspace(t, "$y$")
	writeTestFile(t, filepath.Join(root, ".mdmath.yaml"), "output:\n  dir: assets/math\n  joiner: _\nimage:\n  alt: eq\n  background: none\n")

	env := newTestEnv("")
	code := runMain(renderArgs(doc, 0, 3), env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, env.stderr.String())
	}

	images, err := filepath.Glob(filepath.Join(root, "assets", "math", "notes_*.svg"))
	if err != nil || len(images) != 1 {
		t.Fatalf("images = %v (err %v), want one under assets/math", images, err)
	}
	if svg := readTestFile(t, images[0]); svg != fakeSVG {
		t.Errorf("image = %q, want no background with background: none", svg)
	}
	if got := readTestFile(t, doc); !strings.Contains(got, "![eq](assets/math/notes_") {
		t.Errorf("document = %q, want configured alt and directory", got)
	}
}

func TestRunMain_Render_BadConfig(t *testing.T) {
	t.Parallel()

	root, doc := newWorkspace(t, "$y$")
	writeTestFile(t, filepath.Join(root, ".mdmath.yaml"), "output:\n  joiner: ab\n")

	env := newTestEnv("")
	code := runMain(renderArgs(doc, 0, 3), env.Environment)
	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d (stderr: %s)", code, ExitUsage, env.stderr.String())
	}
	if _, err := os.Stat(filepath.Join(root, "svg")); !os.IsNotExist(err) {
		t.Error("output directory created despite invalid config")
	}
}
