// Package export renders notes into flat, ordered records for CSV or dict
// style output. The schema is uniform across a batch: either every record is
// annotated with tag columns or none is.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bft-labs/noteship/internal/domain"
)

// ErrUntaggedRecord indicates that annotated output was requested for a
// record that carries no tag information. The exporter fails rather than
// silently omitting columns, so the output schema stays uniform.
var ErrUntaggedRecord = errors.New("record carries no tags to annotate")

// Field is one named column of an exported record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered list of fields. Order is fixed: header, body,
// namespace, then the two tag columns when annotation is on.
type Record []Field

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Values returns the field values in order.
func (r Record) Values() []string {
	values := make([]string, len(r))
	for i, f := range r {
		values[i] = f.Value
	}
	return values
}

// Exporter renders notes into records. Annotate selects the 5-column
// annotated schema with capitalized field names.
type Exporter struct {
	Annotate bool
}

// Record renders a single note. With Annotate off the record is exactly
// (header, body, namespace). With Annotate on the note must be a
// domain.TaggedNote; the record gains joined headertags and bodytags columns
// and every field name is capitalized.
func (e Exporter) Record(rec domain.Record) (Record, error) {
	switch n := rec.(type) {
	case domain.TaggedNote:
		if !e.Annotate {
			return e.base(n.Note), nil
		}
		return Record{
			{Name: "Header", Value: n.Header},
			{Name: "Body", Value: n.Body},
			{Name: "Namespace", Value: n.Namespace},
			{Name: "Headertags", Value: strings.Join(n.HeaderTags, " ")},
			{Name: "Bodytags", Value: strings.Join(n.BodyTags, " ")},
		}, nil
	case domain.Note:
		if e.Annotate {
			return nil, fmt.Errorf("annotate %q: %w", n.Header, ErrUntaggedRecord)
		}
		return e.base(n), nil
	default:
		return nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

func (e Exporter) base(n domain.Note) Record {
	return Record{
		{Name: "header", Value: n.Header},
		{Name: "body", Value: n.Body},
		{Name: "namespace", Value: n.Namespace},
	}
}

// Records renders every member of a flushed batch, preserving insertion
// order and count. The export never reorders or drops notes.
func (e Exporter) Records(members []domain.Record) ([]Record, error) {
	records := make([]Record, 0, len(members))
	for i, m := range members {
		rec, err := e.Record(m)
		if err != nil {
			return nil, fmt.Errorf("export record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
