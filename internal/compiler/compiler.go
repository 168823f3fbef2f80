// Package compiler orchestrates tag extraction, batch assembly, and batch
// delivery for a stream of incoming notes.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bft-labs/noteship/internal/batch"
	"github.com/bft-labs/noteship/internal/domain"
	"github.com/bft-labs/noteship/internal/export"
	"github.com/bft-labs/noteship/internal/tag"
	"github.com/bft-labs/noteship/pkg/sender"
)

// ErrNoteTooLarge indicates a single note whose encoded size exceeds the
// batch capacity. Fatal for that note only: the stream continues and the
// next normal-size note ingests into the already-fresh batch.
var ErrNoteTooLarge = errors.New("note exceeds batch capacity")

// Config contains configuration for the compiler.
type Config struct {
	// Namespace labels every delivered batch
	Namespace string

	// CapacityBytes is the byte budget per batch
	CapacityBytes int

	// Metadata accompanies every delivery
	Metadata sender.Metadata
}

// Events is notified after each successful batch delivery. Records is the
// number of records the delivered batch carried. Called synchronously from
// the ingesting goroutine.
type Events interface {
	OnDeliver(batchID string, records int)
}

// Compiler derives tagged notes from incoming notes, packs them into
// size-bounded batches, and hands each flushed batch to the sink exactly
// once, in flush order. Single producer; not safe for concurrent use.
type Compiler struct {
	config   Config
	pattern  *tag.Pattern
	exporter export.Exporter
	sink     sender.Sink
	events   Events
	logger   zerolog.Logger
	active   *batch.Batch
}

// New creates a Compiler with an empty active batch. events may be nil.
func New(config Config, pattern *tag.Pattern, exporter export.Exporter, sink sender.Sink, events Events, logger zerolog.Logger) (*Compiler, error) {
	if config.CapacityBytes == 0 {
		config.CapacityBytes = batch.DefaultCapacityBytes
	}
	b, err := batch.New(config.CapacityBytes)
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return &Compiler{
		config:   config,
		pattern:  pattern,
		exporter: exporter,
		sink:     sink,
		events:   events,
		logger:   logger,
		active:   b,
	}, nil
}

// Ingest derives a TaggedNote from n and adds it to the active batch. When
// the batch is out of budget it is flushed and delivered, a fresh batch is
// started, and the add is retried exactly once. A second rejection means the
// note alone is larger than the capacity: ErrNoteTooLarge is returned and
// the fresh batch stays active for subsequent notes.
func (c *Compiler) Ingest(ctx context.Context, n domain.Note) error {
	tagged := tag.FromNote(n, c.pattern)

	err := c.active.Add(tagged)
	if err == nil {
		return nil
	}
	if !errors.Is(err, batch.ErrCapacityExceeded) {
		return err
	}

	if err := c.Finalize(ctx); err != nil {
		return fmt.Errorf("flush full batch: %w", err)
	}

	if err := c.active.Add(tagged); err != nil {
		if errors.Is(err, batch.ErrCapacityExceeded) {
			return fmt.Errorf("note %q encodes to %d bytes against capacity %d: %w",
				n.Header, tagged.EncodedSize(), c.config.CapacityBytes, ErrNoteTooLarge)
		}
		return err
	}
	return nil
}

// Finalize flushes the active batch, delivers it to the sink when non-empty,
// and starts a fresh batch. Call at end of stream; on an empty batch only
// the rotation happens.
func (c *Compiler) Finalize(ctx context.Context) error {
	members, err := c.active.Flush()
	if err != nil {
		return err
	}

	fresh, err := batch.New(c.config.CapacityBytes)
	if err != nil {
		return err
	}
	c.active = fresh

	if len(members) == 0 {
		return nil
	}
	return c.deliver(ctx, members)
}

// Pending returns the record count of the active batch.
func (c *Compiler) Pending() int {
	return c.active.Len()
}

// PendingBytes returns the byte total of the active batch.
func (c *Compiler) PendingBytes() int {
	return c.active.Size()
}

func (c *Compiler) deliver(ctx context.Context, members []domain.Record) error {
	records, err := c.exporter.Records(members)
	if err != nil {
		return err
	}

	b := sender.Batch{
		ID:        uuid.NewString(),
		Namespace: c.config.Namespace,
		Columns:   records[0].Names(),
		Rows:      make([][]string, len(records)),
	}
	for i, rec := range records {
		b.Rows[i] = rec.Values()
	}

	if err := c.sink.Deliver(ctx, b, c.config.Metadata); err != nil {
		return fmt.Errorf("deliver batch %s: %w", b.ID, err)
	}

	c.logger.Info().
		Str("batch_id", b.ID).
		Int("records", len(b.Rows)).
		Msg("batch delivered")

	if c.events != nil {
		c.events.OnDeliver(b.ID, len(b.Rows))
	}
	return nil
}
