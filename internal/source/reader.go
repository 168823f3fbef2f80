// Package source turns note files on disk into domain notes. A note file's
// first non-blank line is its header and the rest is its body. An optional
// YAML frontmatter block may override the namespace.
package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bft-labs/noteship/internal/domain"
)

// File couples a parsed note with its on-disk identity.
type File struct {
	// Path is the file path relative to the notes root
	Path string

	// Note is the parsed note
	Note domain.Note

	// Checksum is the hex SHA-256 of the raw file contents
	Checksum string
}

// frontmatter holds the recognized keys of a note file's YAML header.
type frontmatter struct {
	Namespace string `yaml:"namespace"`
}

// ReadFile reads and parses one note file. defaultNamespace applies unless
// the file's frontmatter sets its own.
func ReadFile(path, rel, defaultNamespace string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read note %s: %w", rel, err)
	}

	namespace := defaultNamespace
	text := string(data)

	if fm, rest, ok := splitFrontmatter(text); ok {
		if fm.Namespace != "" {
			namespace = fm.Namespace
		}
		text = rest
	}

	header, body := splitHeader(text)

	return File{
		Path:     rel,
		Note:     domain.NewNote(header, body, namespace),
		Checksum: checksum(data),
	}, nil
}

// checksum returns the hex-encoded SHA-256 digest of data.
func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// splitFrontmatter separates a YAML frontmatter block (between leading ---
// delimiters) from the note text. Invalid YAML falls back to treating the
// whole file as note text.
func splitFrontmatter(text string) (frontmatter, string, bool) {
	const delim = "---"
	trimmed := strings.TrimLeft(text, "\n\r")

	if !strings.HasPrefix(trimmed, delim) {
		return frontmatter{}, text, false
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		// No closing delimiter, treat everything as note text.
		return frontmatter{}, text, false
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return frontmatter{}, text, false
	}

	body := strings.TrimLeft(rest[idx+1+len(delim):], "\n\r")
	return fm, body, true
}

// splitHeader returns the first non-blank line and the remaining text.
func splitHeader(text string) (string, string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		body := strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n\r")
		return strings.TrimRight(line, "\r"), strings.TrimRight(body, "\n\r ")
	}
	return "", ""
}
