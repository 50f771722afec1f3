package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	mdmath "github.com/alnah/go-mdmath"
)

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint bool
	}{
		{"invalid equation", mdmath.ErrInvalidEquation, true},
		{"browser connect", fmt.Errorf("%w: no chrome", mdmath.ErrBrowserConnect), true},
		{"engine init", mdmath.ErrEngineInit, true},
		{"timeout", fmt.Errorf("render: %w", context.DeadlineExceeded), true},
		{"write file", mdmath.ErrWriteFile, true},
		{"create dir", mdmath.ErrCreateDir, true},
		{"unrelated", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := hintFor(tt.err, "https://cdn.example/startup.js"); (got != "") != tt.wantHint {
				t.Errorf("hintFor() = %q, want hint: %v", got, tt.wantHint)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	t.Parallel()

	if withHint(nil, "") != nil {
		t.Error("withHint(nil) should be nil")
	}

	plain := errors.New("boom")
	if withHint(plain, "") != plain {
		t.Error("error without hint should be returned as is")
	}

	err := withHint(mdmath.ErrEngineInit, "/opt/mathjax/es5/startup.js")
	if !errors.Is(err, mdmath.ErrEngineInit) {
		t.Errorf("hinted error lost its cause: %v", err)
	}
	if !strings.Contains(err.Error(), "hint:") {
		t.Errorf("error = %q, want a hint", err.Error())
	}
}

func TestPrintError_Reported(t *testing.T) {
	t.Parallel()

	env := newTestEnv("")
	printError(env.Environment, &reportedError{err: mdmath.ErrInvalidEquation, hint: "\n  hint: select the delimiters"})

	if got := env.stderr.String(); got != "  hint: select the delimiters\n" {
		t.Errorf("stderr = %q, want only the hint", got)
	}
}
