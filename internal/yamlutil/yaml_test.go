package yamlutil

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Workers int `yaml:"workers"`
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantDir   string
		wantErr   error
		wantInMsg string
	}{
		{name: "valid", input: "output:\n  dir: svg\nworkers: 2\n", wantDir: "svg"},
		{name: "blank", input: "  \n\n", wantDir: ""},
		{name: "unknown key", input: "output:\n  dri: svg\n", wantInMsg: "dri"},
		{name: "wrong type", input: "workers: many\n", wantInMsg: "Workers"},
		{name: "too large", input: strings.Repeat("#", 65), wantErr: ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got sample
			err := DecodeStrict([]byte(tt.input), &got, 64)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantInMsg != "":
				if err == nil || !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.wantInMsg)) {
					t.Fatalf("error = %v, want mention of %q", err, tt.wantInMsg)
				}
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) || errors.Unwrap(err) == nil {
					t.Errorf("error = %v, want a DecodeError wrapping the YAML error", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Output.Dir != tt.wantDir {
					t.Errorf("dir = %q, want %q", got.Output.Dir, tt.wantDir)
				}
			}
		})
	}
}

func TestDecodeStrict_NilDestination(t *testing.T) {
	t.Parallel()

	if err := DecodeStrict([]byte("a: 1"), nil, 64); !errors.Is(err, ErrNilDestination) {
		t.Errorf("error = %v, want ErrNilDestination", err)
	}
}
