package assets

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strings"
)

//go:embed pages/*.html
var pages embed.FS

// DefaultMathJaxSource is MathJax 3's startup component on jsDelivr.
const DefaultMathJaxSource = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/startup.js"

// HostPageName is the embedded page the engine navigates to.
const HostPageName = "mathjax"

// LoadPage returns the raw template of an embedded page by name, without extension.
func LoadPage(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := pages.ReadFile("pages/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, name)
	}
	return string(content), nil
}

// RenderHostPage builds the MathJax host page loading MathJax from source.
func RenderHostPage(source string) (string, error) {
	src, err := SourceURL(source)
	if err != nil {
		return "", err
	}

	raw, err := LoadPage(HostPageName)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(HostPageName).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}

	var buf bytes.Buffer
	// template.URL: the source comes from trusted configuration and may be file://.
	if err := tmpl.Execute(&buf, struct{ Source template.URL }{template.URL(src)}); err != nil { // #nosec G203
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// SourceURL normalizes a MathJax source: http(s) and file URLs pass through,
// local paths become absolute file:// URLs. Empty means DefaultMathJaxSource.
func SourceURL(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return DefaultMathJaxSource, nil
	}

	if u, err := url.Parse(source); err == nil && len(u.Scheme) > 1 {
		switch u.Scheme {
		case "http", "https", "file":
			return source, nil
		default:
			return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSource, u.Scheme)
		}
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return FileURL(abs), nil
}

// FileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func FileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x -> /C:/x
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
