package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Output.Dir != "" || cfg.Output.Joiner != "" || cfg.Output.TokenBytes != 0 {
		t.Errorf("Output = %+v, want zero value", cfg.Output)
	}
	if cfg.Engine.MathJax != "" {
		t.Errorf("Engine.MathJax = %q, want empty", cfg.Engine.MathJax)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{name: "empty", value: "", max: 3},
		{name: "at limit", value: "abc", max: 3},
		{name: "over limit", value: "abcd", max: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateFieldLength("field", tt.value, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "full valid config",
			cfg: Config{
				Output:    OutputConfig{Dir: "assets/svg", Joiner: "_", TokenBytes: 8},
				Image:     ImageConfig{Alt: "equation", Background: "#ffffff"},
				Engine:    EngineConfig{MathJax: "/opt/mathjax/es5/startup.js", Timeout: "45s", Workers: 4},
				Workspace: WorkspaceConfig{Root: "/home/u/notes"},
			},
		},
		{name: "absolute output dir", cfg: Config{Output: OutputConfig{Dir: "/tmp/svg"}}, wantErr: ErrInvalidField},
		{name: "escaping output dir", cfg: Config{Output: OutputConfig{Dir: "../svg"}}, wantErr: ErrInvalidField},
		{name: "joiner slash", cfg: Config{Output: OutputConfig{Joiner: "/"}}, wantErr: ErrInvalidField},
		{name: "joiner dot", cfg: Config{Output: OutputConfig{Joiner: "."}}, wantErr: ErrInvalidField},
		{name: "joiner two chars", cfg: Config{Output: OutputConfig{Joiner: "--"}}, wantErr: ErrInvalidField},
		{name: "joiner space", cfg: Config{Output: OutputConfig{Joiner: " "}}, wantErr: ErrInvalidField},
		{name: "joiner unicode", cfg: Config{Output: OutputConfig{Joiner: "·"}}},
		{name: "negative token", cfg: Config{Output: OutputConfig{TokenBytes: -1}}, wantErr: ErrInvalidField},
		{name: "huge token", cfg: Config{Output: OutputConfig{TokenBytes: 33}}, wantErr: ErrInvalidField},
		{name: "alt with bracket", cfg: Config{Image: ImageConfig{Alt: "a]b"}}, wantErr: ErrInvalidField},
		{name: "alt too long", cfg: Config{Image: ImageConfig{Alt: strings.Repeat("a", MaxAltLength+1)}}, wantErr: ErrFieldTooLong},
		{name: "background injection", cfg: Config{Image: ImageConfig{Background: `red" onload="x`}}, wantErr: ErrInvalidField},
		{name: "background semicolon", cfg: Config{Image: ImageConfig{Background: "red; color: blue"}}, wantErr: ErrInvalidField},
		{name: "bad timeout", cfg: Config{Engine: EngineConfig{Timeout: "soon"}}, wantErr: ErrInvalidField},
		{name: "zero timeout", cfg: Config{Engine: EngineConfig{Timeout: "0s"}}, wantErr: ErrInvalidField},
		{name: "too many workers", cfg: Config{Engine: EngineConfig{Workers: MaxWorkers + 1}}, wantErr: ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineConfig_ParseTimeout(t *testing.T) {
	t.Parallel()

	d, err := EngineConfig{Timeout: "1m30s"}.ParseTimeout()
	if err != nil {
		t.Fatalf("ParseTimeout() error = %v", err)
	}
	if d != 90*time.Second {
		t.Errorf("ParseTimeout() = %v, want 1m30s", d)
	}

	d, err = EngineConfig{}.ParseTimeout()
	if err != nil || d != 0 {
		t.Errorf("ParseTimeout() on empty = %v, %v; want 0, nil", d, err)
	}
}

func TestImageConfig_BackgroundColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		background string
		want       string
	}{
		{background: "", want: "white"},
		{background: "none", want: ""},
		{background: " None ", want: ""},
		{background: "#eee", want: "#eee"},
	}
	for _, tt := range tests {
		if got := (ImageConfig{Background: tt.background}).BackgroundColor("white"); got != tt.want {
			t.Errorf("BackgroundColor(%q) = %q, want %q", tt.background, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`
output:
  dir: docs/svg
  joiner: "_"
  tokenBytes: 6
image:
  alt: formula
  background: none
engine:
  mathjax: https://cdn.example.com/mathjax/es5/startup.js
  timeout: 1m
  workers: 2
workspace:
  root: /srv/notes
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Output.Dir != "docs/svg" || cfg.Output.Joiner != "_" || cfg.Output.TokenBytes != 6 {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Image.Alt != "formula" || cfg.Image.Background != "none" {
		t.Errorf("Image = %+v", cfg.Image)
	}
	if cfg.Engine.MathJax != "https://cdn.example.com/mathjax/es5/startup.js" || cfg.Engine.Timeout != "1m" || cfg.Engine.Workers != 2 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Workspace.Root != "/srv/notes" {
		t.Errorf("Workspace.Root = %q", cfg.Workspace.Root)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "unknown key", data: "output:\n  folder: svg\n", wantErr: ErrConfigParse},
		{name: "wrong type", data: "output:\n  tokenBytes: many\n", wantErr: ErrConfigParse},
		{name: "invalid value", data: "output:\n  joiner: /\n", wantErr: ErrInvalidField},
		{name: "too large", data: "# " + strings.Repeat("x", MaxInputSize), wantErr: ErrConfigParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Output.Dir != "" {
		t.Errorf("Output.Dir = %q, want empty", cfg.Output.Dir)
	}
}

func TestLoadConfig_Path(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mdmath.yaml")
	if err := os.WriteFile(path, []byte("image:\n  alt: eq\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Image.Alt != "eq" {
		t.Errorf("Image.Alt = %q, want %q", cfg.Image.Alt, "eq")
	}
}

func TestLoadConfig_RelativeWorkspaceRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		root string
		want string
	}{
		{"relative", "..", filepath.Dir(dir)},
		{"nested", "site/docs", filepath.Join(dir, "site", "docs")},
		{"absolute", filepath.Join(dir, "abs"), filepath.Join(dir, "abs")},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, fmt.Sprintf("workspace-%d.yaml", i))
			if err := os.WriteFile(path, []byte(fmt.Sprintf("workspace:\n  root: %q\n", tt.root)), 0o644); err != nil {
				t.Fatalf("setup: %v", err)
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Workspace.Root != tt.want {
				t.Errorf("Workspace.Root = %q, want %q", cfg.Workspace.Root, tt.want)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
		t.Errorf("LoadConfig(\"\") error = %v, want ErrEmptyConfigName", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := LoadConfig(missing); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig(missing path) error = %v, want ErrConfigNotFound", err)
	}

	if _, err := LoadConfig("mdmath-config-that-does-not-exist"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig(missing name) error = %v, want ErrConfigNotFound", err)
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("work")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least the local candidates", paths)
	}
	if paths[0] != "work.yaml" || paths[1] != "work.yml" {
		t.Errorf("local candidates = %v, want work.yaml, work.yml first", paths[:2])
	}
}
