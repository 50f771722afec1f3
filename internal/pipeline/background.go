package pipeline

import "strings"

// svgStylePrefix is how MathJax opens its SVG output: <svg style="vertical-align: ...".
const svgStylePrefix = `<svg style="`

// DefaultBackground keeps equations readable in viewers with dark themes.
const DefaultBackground = "white"

// InjectBackground adds a background-color declaration at the start of the root
// style attribute. Markup without the expected prefix, or an empty color, is returned as is.
func InjectBackground(svg, color string) string {
	if color == "" || !strings.HasPrefix(svg, svgStylePrefix) {
		return svg
	}
	return svg[:len(svgStylePrefix)] + "background-color: " + color + "; " + svg[len(svgStylePrefix):]
}
