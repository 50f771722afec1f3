// Package config loads and validates the YAML configuration of mdmath.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/alnah/go-mdmath/internal/fileutil"
	"github.com/alnah/go-mdmath/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// MaxInputSize limits config files to prevent memory exhaustion.
const MaxInputSize = 1 << 20

// Field limits.
const (
	MaxPathLength       = 4096
	MaxURLLength        = 2048 // Browser limit
	MaxAltLength        = 100
	MaxBackgroundLength = 50 // "white", "#ffffff", "rgb(255, 255, 255)"
	MaxTokenBytes       = 32
	MaxWorkers          = 32
)

// BackgroundNone disables the background fill.
const BackgroundNone = "none"

// Config holds all settings that shape a render.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Image     ImageConfig     `yaml:"image"`
	Engine    EngineConfig    `yaml:"engine"`
	Workspace WorkspaceConfig `yaml:"workspace"`
}

// OutputConfig defines where images are written and how they are named.
type OutputConfig struct {
	Dir        string `yaml:"dir"`        // Relative to the workspace root (default: "svg")
	Joiner     string `yaml:"joiner"`     // Single character (default: "-")
	TokenBytes int    `yaml:"tokenBytes"` // Random bytes in file names (default: 5)
}

// ImageConfig defines the inserted reference and the image itself.
type ImageConfig struct {
	Alt        string `yaml:"alt"`        // Markdown alt text (default: "math")
	Background string `yaml:"background"` // CSS color, "none" to disable (default: "white")
}

// EngineConfig defines the MathJax engine.
type EngineConfig struct {
	MathJax string `yaml:"mathjax"` // URL or local path of es5/startup.js
	Timeout string `yaml:"timeout"` // Go duration (default: 30s)
	Workers int    `yaml:"workers"` // Browser instances for serve (0 = auto)
}

// WorkspaceConfig pins the workspace root instead of detecting it.
type WorkspaceConfig struct {
	Root string `yaml:"root"`
}

// DefaultConfig returns an empty configuration; the library supplies defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// Validate checks lengths, ranges and characters that would corrupt file names
// or the injected SVG style attribute.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	if c.Output.Dir != "" {
		if filepath.IsAbs(c.Output.Dir) {
			return fmt.Errorf("%w: output.dir must be relative to the workspace, got %q", ErrInvalidField, c.Output.Dir)
		}
		for _, part := range strings.FieldsFunc(c.Output.Dir, func(r rune) bool { return r == '/' || r == '\\' }) {
			if part == ".." {
				return fmt.Errorf("%w: output.dir must stay inside the workspace, got %q", ErrInvalidField, c.Output.Dir)
			}
		}
	}

	if c.Output.Joiner != "" {
		r, size := utf8.DecodeRuneInString(c.Output.Joiner)
		if size != len(c.Output.Joiner) || r == '/' || r == '\\' || r == '.' || unicode.IsSpace(r) {
			return fmt.Errorf("%w: output.joiner must be one character other than a separator, dot or space, got %q", ErrInvalidField, c.Output.Joiner)
		}
	}

	if c.Output.TokenBytes < 0 || c.Output.TokenBytes > MaxTokenBytes {
		return fmt.Errorf("%w: output.tokenBytes must be between 1 and %d, got %d", ErrInvalidField, MaxTokenBytes, c.Output.TokenBytes)
	}

	if err := validateFieldLength("image.alt", c.Image.Alt, MaxAltLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Image.Alt, "[]\n\r") {
		return fmt.Errorf("%w: image.alt cannot contain brackets or newlines", ErrInvalidField)
	}

	if err := validateFieldLength("image.background", c.Image.Background, MaxBackgroundLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Image.Background, "\";<>") {
		return fmt.Errorf("%w: image.background must be a plain CSS color, got %q", ErrInvalidField, c.Image.Background)
	}

	if err := validateFieldLength("engine.mathjax", c.Engine.MathJax, MaxURLLength); err != nil {
		return err
	}
	if _, err := c.Engine.ParseTimeout(); err != nil {
		return err
	}
	if c.Engine.Workers < 0 || c.Engine.Workers > MaxWorkers {
		return fmt.Errorf("%w: engine.workers must be between 0 and %d, got %d", ErrInvalidField, MaxWorkers, c.Engine.Workers)
	}

	return validateFieldLength("workspace.root", c.Workspace.Root, MaxPathLength)
}

// ParseTimeout returns the configured timeout, or zero when unset.
func (e EngineConfig) ParseTimeout() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: engine.timeout: %v", ErrInvalidField, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: engine.timeout must be positive, got %s", ErrInvalidField, e.Timeout)
	}
	return d, nil
}

// BackgroundColor resolves the configured background: empty means the default,
// "none" disables the fill.
func (i ImageConfig) BackgroundColor(fallback string) string {
	switch strings.ToLower(strings.TrimSpace(i.Background)) {
	case "":
		return fallback
	case BackgroundNone:
		return ""
	default:
		return i.Background
	}
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as name.yaml / name.yml in the working directory,
// then in the user config directory under go-mdmath/.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// A relative workspace root is relative to the file that names it.
	if root := cfg.Workspace.Root; root != "" && !filepath.IsAbs(root) {
		dir, err := filepath.Abs(filepath.Dir(configPath))
		if err != nil {
			return nil, fmt.Errorf("resolving workspace.root: %w", err)
		}
		cfg.Workspace.Root = filepath.Join(dir, root)
	}
	return cfg, nil
}

// Parse decodes YAML strictly (unknown keys are errors) and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(data, cfg, MaxInputSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the files LoadConfig tries for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-mdmath", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
