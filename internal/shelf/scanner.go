// Package shelf finds chapter text files on disk and derives book ids from their paths.
package shelf

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file types treated as chapter text.
var DefaultExtensions = []string{".txt", ".md"}

// ScannedFile is a chapter text file found under a shelf root.
type ScannedFile struct {
	BookID  string // derived from RelPath, e.g. "dune-chapter-01"
	RelPath string // relative to the root, forward slashes
	AbsPath string
}

// Scan walks root and returns every file with one of exts, sorted by RelPath.
// Hidden directories and files are skipped. An empty exts uses DefaultExtensions.
func Scan(ctx context.Context, root string, exts []string) ([]ScannedFile, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	var files []ScannedFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		hidden := strings.HasPrefix(d.Name(), ".") && path != root
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		files = append(files, ScannedFile{
			BookID:  BookID(relPath),
			RelPath: relPath,
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// BookID turns a relative path into a book id usable as a URL path segment:
// extension dropped, lower case, separators replaced by dashes. Record ids use
// "_" as a separator, so it never appears in a derived id.
func BookID(relPath string) string {
	id := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	id = strings.ToLower(id)
	return strings.NewReplacer("/", "-", " ", "-", "_", "-").Replace(id)
}
