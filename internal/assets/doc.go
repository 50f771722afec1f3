// Package assets provides the HTML page that hosts MathJax inside headless Chrome.
//
// The page configures MathJax to load only the TeX input and SVG output
// components and to reject TeX errors. The MathJax script itself is not
// embedded: it is loaded from a URL or a local copy at render time.
package assets
