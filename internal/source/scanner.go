package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// noteFile reports whether name looks like a note file.
func noteFile(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".txt")
}

// Scan walks root and returns the relative paths of every note file in
// lexical order. The agent relies on that order for deterministic batching.
func Scan(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !noteFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return out, nil
}
