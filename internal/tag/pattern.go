// Package tag compiles tag-matching patterns and extracts tags from note text.
package tag

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bft-labs/noteship/internal/domain"
)

// Defaults used when the configuration leaves the marker or template empty.
const (
	// DefaultChar is the marker character that begins a tag.
	DefaultChar = "#"

	// DefaultTemplate anchors the marker to start-of-text or a whitespace
	// boundary, so mid-word occurrences never match.
	DefaultTemplate = `(?:^|\s)%s([a-zA-Z0-9]+)`
)

// ErrBadPattern indicates a tag pattern that cannot be compiled. It is a
// configuration error: surfaced at construction, never during extraction.
var ErrBadPattern = errors.New("invalid tag pattern")

// Pattern is a compiled tag-matching rule. A single Pattern is reused across
// the whole note stream; compilation happens once.
type Pattern struct {
	char string
	re   *regexp.Regexp
}

// Compile builds a Pattern from a marker character and a template. The
// template must contain exactly one %s slot for the marker. An empty char or
// template falls back to the defaults.
func Compile(char, template string) (*Pattern, error) {
	if char == "" {
		char = DefaultChar
	}
	if template == "" {
		template = DefaultTemplate
	}

	if utf8.RuneCountInString(char) != 1 {
		return nil, fmt.Errorf("tag char %q must be a single character: %w", char, ErrBadPattern)
	}
	if strings.Count(template, "%s") != 1 {
		return nil, fmt.Errorf("template %q needs exactly one %%s slot: %w", template, ErrBadPattern)
	}

	re, err := regexp.Compile(fmt.Sprintf(template, regexp.QuoteMeta(char)))
	if err != nil {
		return nil, fmt.Errorf("compile template %q: %w", template, ErrBadPattern)
	}

	return &Pattern{char: char, re: re}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package defaults where the pattern is a constant.
func MustCompile(char, template string) *Pattern {
	p, err := Compile(char, template)
	if err != nil {
		panic(err)
	}
	return p
}

// Char returns the marker character the pattern was compiled with.
func (p *Pattern) Char() string {
	return p.char
}

// Extract returns every non-overlapping tag in text, left to right, with the
// marker stripped. Duplicates are preserved. No match yields an empty slice,
// never an error.
func (p *Pattern) Extract(text string) []string {
	matches := p.re.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// NoteIsTagged reports whether extraction over the note's header or body
// yields at least one tag.
func (p *Pattern) NoteIsTagged(n domain.Note) bool {
	return len(p.Extract(n.Header)) > 0 || len(p.Extract(n.Body)) > 0
}

// FromNote derives a TaggedNote by running extraction independently over the
// header and the body. Zero matches is a valid outcome; the namespace passes
// through unchanged.
func FromNote(n domain.Note, p *Pattern) domain.TaggedNote {
	return domain.TaggedNote{
		Note:       n,
		HeaderTags: p.Extract(n.Header),
		BodyTags:   p.Extract(n.Body),
	}
}
