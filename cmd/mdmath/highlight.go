package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// Chroma settings for equations printed to a terminal.
const (
	texLexer       = "tex"
	terminalFormat = "terminal256"
	terminalStyle  = "monokai"
)

// printEquation prints the failing equation, highlighted as TeX when color is on.
func printEquation(w io.Writer, equation string, color bool) {
	fmt.Fprintf(w, "  equation: %s\n", highlightTeX(equation, color))
}

// highlightTeX returns equation with ANSI colors, or unchanged if color is off
// or highlighting fails.
func highlightTeX(equation string, color bool) string {
	if !color {
		return equation
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, equation, texLexer, terminalFormat, terminalStyle); err != nil {
		return equation
	}
	return strings.TrimRight(buf.String(), "\n")
}
