package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	timeout string
	mathjax string
	color   bool
	quiet   bool
	verbose bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common    commonFlags
	start     int
	end       int
	workspace string
	dryRun    bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	workers int
}

// pruneFlags holds flags for the prune command.
type pruneFlags struct {
	common commonFlags
	dryRun bool
}

// addCommonFlags registers the flags every command understands.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addEngineFlags registers the flags of commands that start MathJax.
func addEngineFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "engine startup and render timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.mathjax, "mathjax", "", "MathJax es5/startup.js URL or local path")
	fs.BoolVar(&f.color, "color", false, "highlight failing equations")
}

// buildRenderFlagSet creates the FlagSet of the render command.
func buildRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.IntVar(&f.start, "start", -1, "byte offset where the selection starts")
	fs.IntVar(&f.end, "end", -1, "byte offset where the selection ends")
	fs.StringVar(&f.workspace, "workspace", "", "workspace root (default: nearest .git or .mdmath.yaml)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "print the rewritten document instead of saving it")
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.common)
	fs.Usage = func() { printRenderUsage(os.Stderr) }
	return fs
}

// parseRenderFlags parses render flags and returns positional arguments.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := buildRenderFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// buildServeFlagSet creates the FlagSet of the serve command.
func buildServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser instances (0 = auto)")
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.common)
	fs.Usage = func() { printServeUsage(os.Stderr) }
	return fs
}

// parseServeFlags parses serve flags and returns positional arguments.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := buildServeFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// buildPruneFlagSet creates the FlagSet of the prune command.
func buildPruneFlagSet(f *pruneFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	fs.BoolVar(&f.dryRun, "dry-run", false, "list orphaned images without deleting them")
	addCommonFlags(fs, &f.common)
	fs.Usage = func() { printPruneUsage(os.Stderr) }
	return fs
}

// parsePruneFlags parses prune flags and returns positional arguments.
func parsePruneFlags(args []string) (*pruneFlags, []string, error) {
	f := &pruneFlags{}
	fs := buildPruneFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
