package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Render a selected equation to SVG and link it")
	fmt.Fprintln(w, "  serve       Render selections sent as JSON lines on stdin")
	fmt.Fprintln(w, "  prune       Delete images no document references")
	fmt.Fprintln(w, "  doctor      Check the rendering environment")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdmath help <command>' for details on a specific command.")
}

// printEngineFlags prints the flags shared by commands that start MathJax.
func printEngineFlags(w io.Writer) {
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Startup and render timeout (default: 30s)")
	fmt.Fprintln(w, "      --mathjax <src>       MathJax es5/startup.js URL or local path")
	fmt.Fprintln(w, "      --color               Highlight failing equations")
	fmt.Fprintln(w)
}

// printCommonFlags prints the flags every command understands.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w, "  -h, --help                Show this help")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath render <document> --start <n> --end <n> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the selected TeX to an SVG image, save it under the workspace")
	fmt.Fprintln(w, "output directory and insert a Markdown image link after the selection.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The selection must be a whole $...$ (inline) or $$...$$ (display) equation.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  document    Markdown file holding the selection")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Selection:")
	fmt.Fprintln(w, "      --start <n>           Byte offset where the selection starts")
	fmt.Fprintln(w, "      --end <n>             Byte offset where the selection ends")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --workspace <dir>     Workspace root (default: nearest .mdmath.yaml or .git)")
	fmt.Fprintln(w, "      --dry-run             Print the rewritten document instead of saving it")
	fmt.Fprintln(w)
	printEngineFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mdmath render notes/week1.md --start 120 --end 131")
	fmt.Fprintln(w, "  mdmath render notes/week1.md --start 120 --end 131 --dry-run")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read one JSON request per line from stdin and answer with JSON events")
	fmt.Fprintln(w, "on stdout. Browsers stay warm between requests.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Request:")
	fmt.Fprintln(w, `  {"id":"1","document":"/abs/notes.md","start":10,"end":21,"text":"$x^2$"}`)
	fmt.Fprintln(w, "  text is optional; without it the document is read from disk.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Events:")
	fmt.Fprintln(w, "  edit       Insertions to apply to the document (sent before rendering)")
	fmt.Fprintln(w, "  rendered   The image was written")
	fmt.Fprintln(w, "  error      The request failed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Workers:")
	fmt.Fprintln(w, "  -w, --workers <n>         Browser instances (0 = auto)")
	fmt.Fprintln(w)
	printEngineFlags(w)
	printCommonFlags(w)
}

// printPruneUsage prints usage for the prune command.
func printPruneUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath prune [workspace] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Delete images in the output directory that no Markdown document")
	fmt.Fprintln(w, "in the workspace references.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  workspace   Workspace root (default: detected from the working directory)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --dry-run             List orphaned images without deleting them")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, MathJax, container settings and writable directories.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output machine-readable JSON")
}

// runHelp prints help for a command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "prune":
		printPruneUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdmath version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdmath help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
