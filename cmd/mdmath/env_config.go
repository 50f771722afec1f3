package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdmath/internal/config"
)

// envConfig holds configuration from environment variables.
// Lets editor plugins and CI set defaults without a YAML file.
type envConfig struct {
	ConfigPath string        // MDMATH_CONFIG: config file path
	Workspace  string        // MDMATH_WORKSPACE: workspace root
	MathJax    string        // MDMATH_MATHJAX: MathJax source
	Timeout    time.Duration // MDMATH_TIMEOUT: engine timeout
	Workers    int           // MDMATH_WORKERS: browser instances for serve
}

// knownEnvVars lists valid MDMATH_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDMATH_CONFIG":    true,
	"MDMATH_WORKSPACE": true,
	"MDMATH_MATHJAX":   true,
	"MDMATH_TIMEOUT":   true,
	"MDMATH_WORKERS":   true,
	"MDMATH_CONTAINER": true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDMATH_CONFIG"),
		Workspace:  os.Getenv("MDMATH_WORKSPACE"),
		MathJax:    os.Getenv("MDMATH_MATHJAX"),
	}

	if timeout := os.Getenv("MDMATH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MDMATH_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDMATH_* variables.
// Helps catch typos like MDMATH_WORKSPCE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDMATH_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with the environment.
// Flags are applied afterwards, giving: flags > env > config file > defaults.
// The timeout stays separate; see resolveTimeoutWithEnv.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Workspace != "" {
		cfg.Workspace.Root = env.Workspace
	}
	if env.MathJax != "" {
		cfg.Engine.MathJax = env.MathJax
	}
	if env.Workers > 0 {
		cfg.Engine.Workers = env.Workers
	}
}
