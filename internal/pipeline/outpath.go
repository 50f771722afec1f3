package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Output naming defaults.
const (
	DefaultOutputDir  = "svg"
	DefaultJoiner     = "-"
	DefaultTokenBytes = 5 // 10 hex characters
	DefaultExtension  = ".svg"
)

// OutputNaming controls where rendered images go and how they are named.
// Zero fields fall back to the defaults above.
type OutputNaming struct {
	Dir        string    // Directory under the workspace root
	Joiner     string    // Replaces separators and dots in the base name
	TokenBytes int       // Random bytes in the uniqueness suffix
	Extension  string    // Image extension including the dot
	Random     io.Reader // Token source; crypto/rand when nil
}

// OutputLocation is where a rendered image is written and how the document refers to it.
type OutputLocation struct {
	AbsolutePath string
	RelativePath string // Relative to the directory containing the document
}

func (n OutputNaming) withDefaults() OutputNaming {
	if n.Dir == "" {
		n.Dir = DefaultOutputDir
	}
	if n.Joiner == "" {
		n.Joiner = DefaultJoiner
	}
	if n.TokenBytes <= 0 {
		n.TokenBytes = DefaultTokenBytes
	}
	if n.Extension == "" {
		n.Extension = DefaultExtension
	}
	if n.Random == nil {
		n.Random = rand.Reader
	}
	return n
}

// BuildOutputPath derives a unique output location for one render of documentPath.
//
// The file name is the workspace-relative document path flattened with the joiner,
// followed by a random hex token: docs/guide/intro.md -> svg/docs-guide-intro-1f2e3d4c5b.svg.
// An empty workspaceRoot resolves against the working directory.
// There is no collision retry; with the default 40-bit token a clash is negligible.
func BuildOutputPath(workspaceRoot, documentPath string, naming OutputNaming) (OutputLocation, error) {
	n := naming.withDefaults()

	absDoc, err := filepath.Abs(documentPath)
	if err != nil {
		return OutputLocation{}, fmt.Errorf("resolving document path: %w", err)
	}
	absRoot, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return OutputLocation{}, fmt.Errorf("resolving workspace root: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absDoc)
	if err != nil {
		// Different volumes on Windows: keep the file name only.
		rel = filepath.Base(absDoc)
	}

	token, err := RandomToken(n.Random, n.TokenBytes)
	if err != nil {
		return OutputLocation{}, err
	}

	name := token + n.Extension
	if base := BaseName(rel, n.Joiner); base != "" {
		name = base + n.Joiner + name
	}

	absOut := filepath.Join(absRoot, n.Dir, name)
	relOut, err := filepath.Rel(filepath.Dir(absDoc), absOut)
	if err != nil {
		relOut = absOut
	}

	return OutputLocation{AbsolutePath: absOut, RelativePath: relOut}, nil
}

// BaseName flattens a relative document path into a single file-name segment.
// The extension is dropped, then separators and dots become the joiner.
func BaseName(relPath, joiner string) string {
	base := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	base = strings.NewReplacer("/", joiner, `\`, joiner, ".", joiner).Replace(base)
	return strings.Trim(base, joiner)
}

// RandomToken returns n random bytes from r, hex encoded.
func RandomToken(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generating file token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
