package pipeline

import (
	"strings"
	"unicode"
)

// Style is the layout a math span is rendered with.
type Style int

// Render styles. Invalid is the zero value so an unclassified span is never rendered.
const (
	StyleInvalid Style = iota
	StyleInline
	StyleDisplay
)

// Delimiter is the character that fences TeX math in Markdown.
const Delimiter = "$"

// String returns the lowercase style name used in messages and events.
func (s Style) String() string {
	switch s {
	case StyleInline:
		return "inline"
	case StyleDisplay:
		return "display"
	default:
		return "invalid"
	}
}

// Classify decides whether text is display math ($$...$$), inline math ($...$) or neither.
// Display is tested first so a doubled-delimiter span is never taken as inline.
// Both styles require at least one non-whitespace character between the delimiters.
func Classify(text string) Style {
	if isDisplay(text) {
		return StyleDisplay
	}
	if isInline(text) {
		return StyleInline
	}
	return StyleInvalid
}

func isDisplay(text string) bool {
	open := Delimiter + Delimiter
	if len(text) < 2*len(open)+1 {
		return false
	}
	if !strings.HasPrefix(text, open) || !strings.HasSuffix(text, open) {
		return false
	}
	return hasContent(text[len(open) : len(text)-len(open)])
}

func isInline(text string) bool {
	if len(text) < 3 {
		return false
	}
	if !strings.HasPrefix(text, Delimiter) || !strings.HasSuffix(text, Delimiter) {
		return false
	}
	inner := text[1 : len(text)-1]

	// A second delimiter glued to either fence means mismatched counts ($$x$, $x$$, $$$$).
	// An escaped \$ at the end of the body is content, not a fence.
	if strings.HasPrefix(inner, Delimiter) {
		return false
	}
	if strings.HasSuffix(inner, Delimiter) && !strings.HasSuffix(inner, `\`+Delimiter) {
		return false
	}
	return hasContent(inner)
}

// hasContent reports whether s contains a non-whitespace rune.
func hasContent(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

// ExtractEquation strips the delimiters for style and trims surrounding whitespace.
// Callers must classify first; StyleInvalid returns the trimmed text unchanged.
func ExtractEquation(text string, style Style) string {
	var n int
	switch style {
	case StyleDisplay:
		n = 2 * len(Delimiter)
	case StyleInline:
		n = len(Delimiter)
	default:
		return strings.TrimSpace(text)
	}
	if len(text) < 2*n {
		return ""
	}
	return strings.TrimSpace(text[n : len(text)-n])
}
