package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/fileutil"
)

// runPrune deletes images no document of the workspace references.
func runPrune(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePruneFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: prune takes at most one workspace, got %d", ErrUsage, len(positional))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	start := cwd
	if len(positional) == 1 {
		start = positional[0]
	}
	if !fileutil.DirExists(start) {
		return fmt.Errorf("%w: %s is not a directory", os.ErrNotExist, start)
	}

	s, err := resolveSettings(flags.common, start, env)
	if err != nil {
		return err
	}

	root := start
	if len(positional) == 0 {
		root = resolveWorkspace("", s.cfg, cwd)
		if root == "" {
			root = cwd
		}
	}

	result, err := mdmath.Prune(ctx, root, mdmath.PruneOptions{
		OutputDir: s.cfg.Output.Dir,
		DryRun:    flags.dryRun,
		Logger:    s.logger,
	})
	if result != nil && !s.quiet {
		printPruneResult(env, root, result, flags.dryRun)
	}
	return err
}

// printPruneResult lists orphans relative to root, then a summary line.
func printPruneResult(env *Environment, root string, r *mdmath.PruneResult, dryRun bool) {
	verb := "removed"
	paths := r.Removed
	if dryRun {
		verb = "would remove"
		paths = r.Orphans
	}

	for _, p := range paths {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
		fmt.Fprintf(env.Stdout, "%s %s\n", verb, filepath.ToSlash(p))
	}

	fmt.Fprintf(env.Stdout, "%d documents scanned, %d images referenced, %d orphaned\n",
		r.Scanned, r.Referenced, len(r.Orphans))
}
