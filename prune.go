package mdmath

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-mdmath/internal/logging"
	"github.com/alnah/go-mdmath/internal/pipeline"
)

// defaultPruneWorkers bounds concurrent document parsing.
const defaultPruneWorkers = 8

// markdownExtensions are the documents parsed for image links. Other text
// files keep an image when they mention its file name.
var markdownExtensions = []string{".md", ".markdown"}

// skippedDirs never hold documents.
var skippedDirs = []string{".git", ".hg", ".svn"}

// binarySniffLen is how much of a file is checked for NUL bytes before it is
// treated as binary and skipped.
const binarySniffLen = 8000

// PruneOptions configures Prune.
type PruneOptions struct {
	OutputDir string // Image directory under the root; "svg" when empty
	DryRun    bool   // Report orphans without deleting them
	Workers   int    // Documents parsed in parallel; 8 when zero
	Logger    *slog.Logger
}

// PruneResult summarizes a prune run. Paths are absolute.
type PruneResult struct {
	Scanned    int      // Text documents read
	Referenced int      // Images in the output directory still referenced
	Orphans    []string // Images no document references
	Removed    []string // Orphans deleted (empty in dry-run)
}

// Prune deletes images in the output directory that no document in root
// references any more. Re-rendering an equation never reuses a name, so such
// images pile up. Markdown documents are parsed and references inside HTML
// comments do not count. Any other text file keeps an image by naming it.
func Prune(ctx context.Context, root string, opts PruneOptions) (*PruneResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = pipeline.DefaultOutputDir
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultPruneWorkers
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	outDir := filepath.Join(absRoot, opts.OutputDir)

	images, err := listImages(outDir)
	if err != nil {
		return nil, err
	}
	result := &PruneResult{}
	if len(images) == 0 {
		return result, nil
	}

	docs, err := findDocuments(absRoot, outDir)
	if err != nil {
		return nil, err
	}
	refs, scanned, err := collectReferences(ctx, docs, images, opts.Workers)
	if err != nil {
		return nil, err
	}
	result.Scanned = scanned

	for _, img := range images {
		if _, ok := refs[img]; ok {
			result.Referenced++
			continue
		}
		result.Orphans = append(result.Orphans, img)
	}

	if opts.DryRun {
		return result, nil
	}

	var errs []error
	for _, img := range result.Orphans {
		if err := os.Remove(img); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrRemoveFile, err))
			continue
		}
		opts.Logger.Debug("removed orphan image", "path", img)
		result.Removed = append(result.Removed, img)
	}
	return result, errors.Join(errs...)
}

// listImages returns the absolute paths of .svg files directly in dir.
// A missing directory holds no images.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.EqualFold(filepath.Ext(entry.Name()), pipeline.DefaultExtension) {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	return images, nil
}

// findDocuments walks root for regular files, skipping the output directory
// and version control metadata.
func findDocuments(root, outDir string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (path == outDir || slices.Contains(skippedDirs, d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workspace: %w", err)
	}
	return docs, nil
}

// collectReferences reads docs concurrently and returns every local image
// path they reference, with the number of text documents read.
func collectReferences(ctx context.Context, docs, images []string, workers int) (map[string]struct{}, int, error) {
	var mu sync.Mutex
	refs := make(map[string]struct{})
	scanned := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(doc) // #nosec G304 -- walking the user's workspace
			if err != nil {
				return fmt.Errorf("reading %s: %w", doc, err)
			}

			if isBinary(source) {
				return nil
			}

			if !slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(doc))) {
				mu.Lock()
				defer mu.Unlock()
				scanned++
				for _, img := range images {
					if bytes.Contains(source, []byte(filepath.Base(img))) {
						refs[img] = struct{}{}
					}
				}
				return nil
			}

			dests, err := pipeline.NewReferenceScanner().ImageReferences(ctx, source)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", doc, err)
			}

			dir := filepath.Dir(doc)
			mu.Lock()
			defer mu.Unlock()
			scanned++
			for _, dest := range dests {
				if path, ok := pipeline.ResolveReference(dir, dest); ok {
					refs[path] = struct{}{}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return refs, scanned, nil
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), binarySniffLen)], 0) >= 0
}
