// Package pipeline holds the pure steps of turning a selection into an image
// reference:
//   - classifying a selection as inline or display math and stripping delimiters
//   - deriving the output path of the image from the document path
//   - adding a background to the SVG produced by MathJax
//   - building the edit that hides the TeX in a comment and links the image
//   - finding the image references of Markdown documents, for prune
//
// Nothing here starts a browser or touches the document; the root mdmath
// package does both.
package pipeline
