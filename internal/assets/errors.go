package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrPageNotFound indicates the requested page does not exist.
	ErrPageNotFound = errors.New("page not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidSource indicates the MathJax source is neither a URL nor a usable path.
	ErrInvalidSource = errors.New("invalid MathJax source")

	// ErrPageRender indicates the page template could not be executed.
	ErrPageRender = errors.New("page template rendering failed")
)
