package pipeline

import (
	"bytes"
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ReferenceScanner finds image references in Markdown documents.
type ReferenceScanner struct {
	md goldmark.Markdown
}

// NewReferenceScanner creates a scanner that understands GFM syntax.
func NewReferenceScanner() *ReferenceScanner {
	return &ReferenceScanner{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// ImageReferences returns the destinations of Markdown images and of <img src>
// attributes found in raw HTML, in document order. Markdown destinations have
// their backslash escapes removed.
// HTML comments (including the hidden math source) never contribute references.
func (s *ReferenceScanner) ImageReferences(ctx context.Context, source []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := s.md.Parser().Parse(text.NewReader(source))

	var refs []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			refs = append(refs, string(util.UnescapePunctuations(node.Destination)))
		case *ast.RawHTML:
			var buf bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				buf.Write(seg.Value(source))
			}
			refs = append(refs, htmlImageSources(buf.Bytes())...)
		case *ast.HTMLBlock:
			var buf bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(source))
			}
			if node.HasClosure() {
				buf.Write(node.ClosureLine.Value(source))
			}
			refs = append(refs, htmlImageSources(buf.Bytes())...)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// htmlImageSources extracts src attributes of img elements from an HTML fragment.
func htmlImageSources(fragment []byte) []string {
	var srcs []string
	z := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed fragment; either way nothing more to read.
			return srcs
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Img {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "src" && attr.Val != "" {
					srcs = append(srcs, attr.Val)
				}
			}
		}
	}
}

// ResolveReference turns an image destination into an absolute local path.
// It reports false for remote URLs, data URIs and fragment-only links.
func ResolveReference(docDir, dest string) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return "", false
	}

	if u, err := url.Parse(dest); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		// len > 1 keeps Windows drive letters (C:\...) out of this branch.
		if u.Scheme != "file" {
			return "", false
		}
		return filepath.Clean(filepath.FromSlash(u.Path)), true
	}

	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		dest = dest[:i]
	}
	if strings.Contains(dest, "%") {
		if unescaped, err := url.PathUnescape(dest); err == nil {
			dest = unescaped
		}
	}

	if filepath.IsAbs(dest) {
		return filepath.Clean(dest), true
	}
	return filepath.Join(docDir, filepath.FromSlash(dest)), true
}
