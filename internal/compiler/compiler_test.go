package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bft-labs/noteship/internal/domain"
	"github.com/bft-labs/noteship/internal/export"
	"github.com/bft-labs/noteship/internal/tag"
	"github.com/bft-labs/noteship/pkg/sender"
)

// fakeSink records delivered batches in order.
type fakeSink struct {
	batches []sender.Batch
	failErr error
}

func (f *fakeSink) Deliver(_ context.Context, b sender.Batch, _ sender.Metadata) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.batches = append(f.batches, b)
	return nil
}

// deliveries counts OnDeliver callbacks.
type deliveries struct {
	count   int
	records int
}

func (d *deliveries) OnDeliver(_ string, records int) {
	d.count++
	d.records += records
}

func newCompiler(t *testing.T, sink sender.Sink, events Events, capacity int) *Compiler {
	t.Helper()
	c, err := New(
		Config{Namespace: "test", CapacityBytes: capacity},
		tag.MustCompile("#", ""),
		export.Exporter{},
		sink,
		events,
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// noteOfTaggedSize returns an untagged note whose derived TaggedNote encodes
// to exactly n bytes.
func noteOfTaggedSize(t *testing.T, id string, n int) domain.Note {
	t.Helper()
	pad := n - 5 - len(id)
	if pad < 0 {
		t.Fatalf("size %d too small for id %q", n, id)
	}
	note := domain.NewNote(id+strings.Repeat("x", pad), "", "")
	tagged := tag.FromNote(note, tag.MustCompile("#", ""))
	if tagged.EncodedSize() != n {
		t.Fatalf("helper produced size %d, want %d", tagged.EncodedSize(), n)
	}
	return note
}

func TestIngestFlushesOnOverflow(t *testing.T) {
	sink := &fakeSink{}
	c := newCompiler(t, sink, nil, 100)
	ctx := context.Background()

	if err := c.Ingest(ctx, noteOfTaggedSize(t, "first", 60)); err != nil {
		t.Fatalf("ingest first: %v", err)
	}
	if len(sink.batches) != 0 {
		t.Fatalf("delivered %d batches before overflow", len(sink.batches))
	}

	// Does not fit next to the first note: previous batch is delivered and
	// the note lands in a fresh one.
	if err := c.Ingest(ctx, noteOfTaggedSize(t, "second", 50)); err != nil {
		t.Fatalf("ingest second: %v", err)
	}
	if len(sink.batches) != 1 {
		t.Fatalf("delivered %d batches, want 1", len(sink.batches))
	}
	if len(sink.batches[0].Rows) != 1 {
		t.Fatalf("first batch has %d rows, want 1", len(sink.batches[0].Rows))
	}
	if !strings.HasPrefix(sink.batches[0].Rows[0][0], "first") {
		t.Fatalf("first batch carries %q, want the first note", sink.batches[0].Rows[0][0])
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", c.Pending())
	}
}

func TestIngestNoteTooLarge(t *testing.T) {
	sink := &fakeSink{}
	c := newCompiler(t, sink, nil, 100)
	ctx := context.Background()

	err := c.Ingest(ctx, noteOfTaggedSize(t, "huge", 150))
	if !errors.Is(err, ErrNoteTooLarge) {
		t.Fatalf("Ingest = %v, want ErrNoteTooLarge", err)
	}

	// The stream continues: a normal-size note still ingests into the
	// fresh batch.
	if err := c.Ingest(ctx, noteOfTaggedSize(t, "normal", 50)); err != nil {
		t.Fatalf("ingest after oversized note: %v", err)
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", c.Pending())
	}
}

func TestFinalizeDeliversPartialBatch(t *testing.T) {
	sink := &fakeSink{}
	events := &deliveries{}
	c := newCompiler(t, sink, events, 1000)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.Ingest(ctx, noteOfTaggedSize(t, fmt.Sprintf("n%d", i), 50)); err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}

	if err := c.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if len(sink.batches) != 1 {
		t.Fatalf("delivered %d batches, want 1", len(sink.batches))
	}
	b := sink.batches[0]
	if len(b.Rows) != 3 {
		t.Fatalf("batch has %d rows, want 3", len(b.Rows))
	}
	if b.ID == "" {
		t.Fatal("batch has no id")
	}
	if b.Namespace != "test" {
		t.Fatalf("batch namespace = %q, want test", b.Namespace)
	}
	for i, want := range []string{"n0", "n1", "n2"} {
		if !strings.HasPrefix(b.Rows[i][0], want) {
			t.Fatalf("row %d = %q, insertion order not preserved", i, b.Rows[i][0])
		}
	}
	if events.count != 1 || events.records != 3 {
		t.Fatalf("events = %d deliveries / %d records, want 1 / 3", events.count, events.records)
	}

	// Finalize on the rotated empty batch delivers nothing.
	if err := c.Finalize(ctx); err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if len(sink.batches) != 1 {
		t.Fatalf("empty finalize delivered a batch")
	}
}

func TestIngestPropagatesDeliveryFailure(t *testing.T) {
	sink := &fakeSink{failErr: errors.New("store unreachable")}
	c := newCompiler(t, sink, nil, 100)
	ctx := context.Background()

	if err := c.Ingest(ctx, noteOfTaggedSize(t, "first", 60)); err != nil {
		t.Fatalf("ingest first: %v", err)
	}
	if err := c.Ingest(ctx, noteOfTaggedSize(t, "second", 60)); err == nil {
		t.Fatal("expected delivery failure to propagate")
	}
}

func TestAnnotatedDelivery(t *testing.T) {
	sink := &fakeSink{}
	c, err := New(
		Config{CapacityBytes: 1000},
		tag.MustCompile("#", ""),
		export.Exporter{Annotate: true},
		sink,
		nil,
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := c.Ingest(ctx, domain.NewNote("Meeting #work #urgent", "notes #todo", "p")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := c.Finalize(ctx); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	b := sink.batches[0]
	wantCols := []string{"Header", "Body", "Namespace", "Headertags", "Bodytags"}
	if len(b.Columns) != 5 {
		t.Fatalf("columns = %v, want %v", b.Columns, wantCols)
	}
	for i, want := range wantCols {
		if b.Columns[i] != want {
			t.Fatalf("column %d = %q, want %q", i, b.Columns[i], want)
		}
	}
	if b.Rows[0][3] != "work urgent" || b.Rows[0][4] != "todo" {
		t.Fatalf("tag columns = %q / %q", b.Rows[0][3], b.Rows[0][4])
	}
}
