package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	mdmath "github.com/alnah/go-mdmath"
)

// runRender handles one invocation on a document file: the selection is
// [--start, --end) of its bytes. It waits for the image before returning.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: render takes exactly one document, got %d", ErrUsage, len(positional))
	}
	if flags.start < 0 || flags.end < 0 {
		return fmt.Errorf("%w: --start and --end are required", ErrUsage)
	}

	docPath, err := filepath.Abs(positional[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadDocument, err)
	}
	content, err := os.ReadFile(docPath) // #nosec G304 -- document path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadDocument, err)
	}

	s, err := resolveSettings(flags.common, filepath.Dir(docPath), env)
	if err != nil {
		return err
	}

	sel, err := mdmath.SelectionFrom(string(content), flags.start, flags.end)
	if err != nil {
		return err
	}

	eng := env.NewEngine(1, engineOptions(s)...)
	defer func() {
		if err := eng.Close(); err != nil {
			s.logger.Debug("closing engine", "error", err)
		}
	}()

	cmd, err := mdmath.NewCommand(append(commandOptions(s), mdmath.WithRenderer(eng))...)
	if err != nil {
		return err
	}

	inv := mdmath.Invocation{
		DocumentPath:  docPath,
		WorkspaceRoot: resolveWorkspace(flags.workspace, s.cfg, filepath.Dir(docPath)),
		Selection:     sel,
	}
	s.logger.Debug("invocation", "document", inv.DocumentPath, "workspace", inv.WorkspaceRoot, "start", sel.Start, "end", sel.End)

	host := newFileHost(string(content), flags.dryRun, env.Stderr)
	started := env.Now()
	job, runErr := cmd.Run(ctx, host, inv)

	var jobErr error
	if job != nil {
		jobErr = job.Wait(ctx)
		s.logger.Debug("render finished", "path", job.Location.AbsolutePath, "elapsed", env.Now().Sub(started), "error", jobErr)
		var renderErr *mdmath.RenderError
		if errors.As(jobErr, &renderErr) {
			printEquation(env.Stderr, renderErr.Equation, s.color)
		}
	}

	if flags.dryRun {
		fmt.Fprint(env.Stdout, host.Result())
	} else if job != nil && jobErr == nil && !s.quiet {
		fmt.Fprintln(env.Stdout, job.Location.AbsolutePath)
	}

	err = runErr
	if err == nil {
		err = jobErr
	}
	if err == nil {
		return nil
	}

	// Run and the job report through ShowError; a canceled wait does not.
	if runErr != nil || job.Err() != nil {
		return &reportedError{err: err, hint: hintFor(err, s.hintSource())}
	}
	return withHint(err, s.hintSource())
}
