package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/assets"
	"github.com/alnah/go-mdmath/internal/config"
	"github.com/alnah/go-mdmath/internal/fileutil"
	"github.com/alnah/go-mdmath/internal/hints"
	"github.com/alnah/go-mdmath/internal/logging"
	"github.com/alnah/go-mdmath/internal/pipeline"
)

// defaultTimeout is used when neither flag, env nor config set one.
const defaultTimeout = 30 * time.Second

// Workspace markers, nearest first wins.
const (
	workspaceConfigFile = ".mdmath.yaml"
	workspaceGitDir     = ".git"
)

// settings is the resolved configuration of one CLI run.
type settings struct {
	cfg     *config.Config
	timeout time.Duration
	source  string // MathJax source, "" for the default
	color   bool
	quiet   bool
	logger  *slog.Logger
}

// resolveSettings merges flags, environment and config file.
// startDir is where an implicit .mdmath.yaml is searched from.
func resolveSettings(flags commonFlags, startDir string, env *Environment) (*settings, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.config, envCfg.ConfigPath, startDir)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	if flags.mathjax != "" {
		cfg.Engine.MathJax = flags.mathjax
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout, err := resolveTimeoutWithEnv(flags.timeout, envCfg.Timeout, cfg.Engine.Timeout)
	if err != nil {
		return nil, err
	}

	color := flags.color
	if !color && env.StderrIsTerminal != nil {
		color = env.StderrIsTerminal()
	}

	return &settings{
		cfg:     cfg,
		timeout: timeout,
		source:  cfg.Engine.MathJax,
		color:   color,
		quiet:   flags.quiet,
		logger:  logging.New(env.Stderr, logging.LevelFor(flags.verbose, flags.quiet)),
	}, nil
}

// loadConfig loads the config named by the flag, else by MDMATH_CONFIG, else
// the nearest .mdmath.yaml above startDir. No config at all is not an error.
func loadConfig(flagName, envName, startDir string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}

	if name == "" {
		dir, ok := fileutil.FindUp(startDir, workspaceConfigFile)
		if !ok {
			return config.DefaultConfig(), nil
		}
		name = filepath.Join(dir, workspaceConfigFile)
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, &hintedError{err: err, hint: hints.ForConfigNotFound(config.SearchPaths(name))}
		}
		return nil, err
	}
	return cfg, nil
}

// resolveTimeoutWithEnv determines the engine timeout.
// Priority: flag > env > config > default.
func resolveTimeoutWithEnv(flagValue string, envValue time.Duration, configValue string) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %q (use format like 30s, 2m, 1m30s)", ErrInvalidTimeout, flagValue)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, flagValue)
		}
		return d, nil
	}

	if envValue > 0 {
		return envValue, nil
	}

	d, err := config.EngineConfig{Timeout: configValue}.ParseTimeout()
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return d, nil
	}
	return defaultTimeout, nil
}

// resolveWorkspace finds the workspace root for documents in startDir.
// Priority: explicit value > config/env > nearest .mdmath.yaml or .git > "".
// An empty root makes output paths resolve against the working directory.
func resolveWorkspace(explicit string, cfg *config.Config, startDir string) string {
	if explicit != "" {
		return explicit
	}
	if cfg.Workspace.Root != "" {
		return cfg.Workspace.Root
	}
	if dir, ok := fileutil.FindUp(startDir, workspaceConfigFile, workspaceGitDir); ok {
		return dir
	}
	return ""
}

// commandOptions translates the config into Command options.
func commandOptions(s *settings) []mdmath.Option {
	cfg := s.cfg
	opts := []mdmath.Option{
		mdmath.WithLogger(s.logger),
		mdmath.WithBackground(cfg.Image.BackgroundColor(pipeline.DefaultBackground)),
	}
	if cfg.Output.Dir != "" {
		opts = append(opts, mdmath.WithOutputDir(cfg.Output.Dir))
	}
	if cfg.Output.Joiner != "" {
		opts = append(opts, mdmath.WithJoiner(cfg.Output.Joiner))
	}
	if cfg.Output.TokenBytes > 0 {
		opts = append(opts, mdmath.WithTokenBytes(cfg.Output.TokenBytes))
	}
	if cfg.Image.Alt != "" {
		opts = append(opts, mdmath.WithImageAlt(cfg.Image.Alt))
	}
	return opts
}

// engineOptions translates the settings into engine options.
func engineOptions(s *settings) []mdmath.EngineOption {
	opts := []mdmath.EngineOption{
		mdmath.WithTimeout(s.timeout),
		mdmath.WithEngineLogger(s.logger),
	}
	if s.source != "" {
		opts = append(opts, mdmath.WithMathJaxSource(s.source))
	}
	return opts
}

// hintSource is the MathJax source named in hints.
func (s *settings) hintSource() string {
	if s.source == "" {
		return assets.DefaultMathJaxSource
	}
	return s.source
}
