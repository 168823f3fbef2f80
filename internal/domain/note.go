package domain

import "strings"

// Note is an immutable text record: a header line, a body, and an opaque
// namespace label. Namespace defaults to the empty string, never to a nil
// sentinel. Notes are passed by value and never mutated after construction.
type Note struct {
	// Header is the first line of the note
	Header string

	// Body is the remaining text of the note
	Body string

	// Namespace is an opaque grouping label, untouched by tag logic
	Namespace string
}

// NewNote constructs a Note. An empty namespace is preserved as "".
func NewNote(header, body, namespace string) Note {
	return Note{
		Header:    header,
		Body:      body,
		Namespace: namespace,
	}
}

// EncodedSize returns the serialized byte length of the note's base record:
// the three field values plus one separator between fields and a terminator.
// The size is deterministic across runs and platforms; capacity decisions in
// the batch layer depend on that stability.
func (n Note) EncodedSize() int {
	return len(n.Header) + len(n.Body) + len(n.Namespace) + 3
}

// TaggedNote is a Note augmented with the tags extracted from its header and
// body. Both tag lists may be empty; order follows the left-to-right order of
// appearance in the source text. Derived once, immutable thereafter.
type TaggedNote struct {
	Note

	// HeaderTags are the tags found in the header, in order of appearance
	HeaderTags []string

	// BodyTags are the tags found in the body, in order of appearance
	BodyTags []string
}

// AllTags returns header tags followed by body tags.
func (t TaggedNote) AllTags() []string {
	all := make([]string, 0, len(t.HeaderTags)+len(t.BodyTags))
	all = append(all, t.HeaderTags...)
	all = append(all, t.BodyTags...)
	return all
}

// EncodedSize extends the base record size with the two joined tag columns
// and their separators.
func (t TaggedNote) EncodedSize() int {
	return t.Note.EncodedSize() +
		len(strings.Join(t.HeaderTags, " ")) +
		len(strings.Join(t.BodyTags, " ")) + 2
}

// Record is the unit accepted by the batch accumulator. Both Note and
// TaggedNote satisfy it.
type Record interface {
	EncodedSize() int
}
