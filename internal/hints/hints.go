// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdmath/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a common CI provider variable is set.
func inCI() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for Chrome launch or connection errors.
func ForBrowserConnect() string {
	var hints []string

	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForEngineInit returns hints when MathJax could not be loaded from src.
func ForEngineInit(src string) string {
	if fileutil.IsURL(src) {
		return format("check network access to " + src + " or point --mathjax at a local es5/startup.js")
	}
	return format("check that " + src + " is MathJax's es5/startup.js")
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("first renders download MathJax; use --timeout or MDMATH_TIMEOUT")
}

// ForInvalidEquation explains the delimiter syntax the selection must follow.
func ForInvalidEquation() string {
	return format("select the delimiters too: $x^2$ for inline, $$x^2$$ for display")
}

// ForConfigNotFound suggests --config or creating a config in a searched location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mdmath") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for image directory creation errors.
func ForOutputDirectory() string {
	return format("check the workspace root is writable or set output.dir in the config")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
