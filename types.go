package mdmath

import (
	"fmt"

	"github.com/alnah/go-mdmath/internal/pipeline"
)

// RenderStyle is the layout an equation is typeset with.
type RenderStyle = pipeline.Style

// Render styles.
const (
	StyleInvalid = pipeline.StyleInvalid
	StyleInline  = pipeline.StyleInline
	StyleDisplay = pipeline.StyleDisplay
)

// Classify reports whether text is inline math ($...$), display math ($$...$$) or neither.
func Classify(text string) RenderStyle {
	return pipeline.Classify(text)
}

// ExtractEquation strips the delimiters of a classified selection and trims whitespace.
func ExtractEquation(text string, style RenderStyle) string {
	return pipeline.ExtractEquation(text, style)
}

// Selection is the span highlighted in the document when the command was invoked.
// Start and End are byte offsets into the document text.
type Selection struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Validate checks that the offsets are well ordered.
func (s Selection) Validate() error {
	if s.Start < 0 || s.End < s.Start {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidSelection, s.Start, s.End)
	}
	return nil
}

// SelectionFrom cuts the [start, end) span out of a document.
func SelectionFrom(document string, start, end int) (Selection, error) {
	sel := Selection{Start: start, End: end}
	if err := sel.Validate(); err != nil {
		return Selection{}, err
	}
	if end > len(document) {
		return Selection{}, fmt.Errorf("%w: end %d beyond document length %d", ErrInvalidSelection, end, len(document))
	}
	sel.Text = document[start:end]
	return sel, nil
}

// Invocation is everything the command reads from the host, captured once.
type Invocation struct {
	DocumentPath  string
	WorkspaceRoot string // Empty resolves against the working directory
	Selection     Selection
}

// Insertion adds text at a byte offset of the original document.
type Insertion = pipeline.Insertion

// Edit is a single atomic change to one document.
type Edit struct {
	DocumentPath string      `json:"document"`
	Insertions   []Insertion `json:"insertions"`
}

// Apply returns text with every insertion applied, or an error and no change.
func (e Edit) Apply(text string) (string, error) {
	return pipeline.ApplyInsertions(text, e.Insertions)
}

// OutputLocation is where an image is written and how the document refers to it.
type OutputLocation = pipeline.OutputLocation
