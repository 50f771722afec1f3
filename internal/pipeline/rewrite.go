package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Markers wrapped around the original selection. The expression stays in the
// document and can be recovered by removing them.
const (
	CommentOpen     = "<!--"
	CommentClose    = "-->"
	DefaultImageAlt = "math"
)

// ErrOffsetOutOfRange indicates an insertion outside the document text.
var ErrOffsetOutOfRange = errors.New("insertion offset out of range")

// Insertion adds Text before the byte at Offset.
type Insertion struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// CommentOut builds the two insertions that hide [start, end) in an HTML comment
// and reference the rendered image right after it:
//
//	<!--$x^2$-->
//	![math](svg/notes-0a1b2c3d4e.svg)
func CommentOut(start, end int, imagePath, alt string) []Insertion {
	return []Insertion{
		{Offset: start, Text: CommentOpen},
		{Offset: end, Text: CommentClose + "\n" + ImageRef(alt, imagePath)},
	}
}

// ImageRef formats a Markdown image. Destinations with spaces, parentheses or
// a leading '<' use the <...> form, with '<' and '>' backslash-escaped, so they
// still parse as a single link destination.
func ImageRef(alt, path string) string {
	if alt == "" {
		alt = DefaultImageAlt
	}
	if strings.ContainsAny(path, " ()") || strings.HasPrefix(path, "<") {
		path = "<" + angleEscaper.Replace(path) + ">"
	}
	return "![" + alt + "](" + path + ")"
}

var angleEscaper = strings.NewReplacer("<", `\<`, ">", `\>`)

// ApplyInsertions returns text with every insertion applied, or the error for the
// first invalid offset and no change at all. Offsets refer to the original text;
// insertions at the same offset keep their relative order.
func ApplyInsertions(text string, insertions []Insertion) (string, error) {
	for _, ins := range insertions {
		if ins.Offset < 0 || ins.Offset > len(text) {
			return text, fmt.Errorf("%w: %d (document has %d bytes)", ErrOffsetOutOfRange, ins.Offset, len(text))
		}
	}

	sorted := slices.Clone(insertions)
	slices.SortStableFunc(sorted, func(a, b Insertion) int { return a.Offset - b.Offset })

	var b strings.Builder
	size := len(text)
	for _, ins := range sorted {
		size += len(ins.Text)
	}
	b.Grow(size)

	prev := 0
	for _, ins := range sorted {
		b.WriteString(text[prev:ins.Offset])
		b.WriteString(ins.Text)
		prev = ins.Offset
	}
	b.WriteString(text[prev:])
	return b.String(), nil
}
