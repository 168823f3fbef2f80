// Package app contains the agent loop that turns a directory of note files
// into delivered note batches.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/noteship/internal/compiler"
	"github.com/bft-labs/noteship/internal/export"
	"github.com/bft-labs/noteship/internal/source"
	"github.com/bft-labs/noteship/internal/state"
	"github.com/bft-labs/noteship/internal/tag"
	"github.com/bft-labs/noteship/pkg/sender"
)

// AgentConfig contains configuration for the agent loop.
type AgentConfig struct {
	NotesDir      string
	StateDir      string
	Namespace     string
	Annotate      bool
	CapacityBytes int
	PollInterval  time.Duration
	Once          bool

	// Metadata for delivery operations
	Metadata sender.Metadata
}

// Agent orchestrates the scan → ingest → deliver loop. Notes are ingested
// strictly sequentially; there is exactly one producer feeding the compiler.
type Agent struct {
	config  AgentConfig
	comp    *compiler.Compiler
	logger  zerolog.Logger
	state   state.State
	pending []pendingFile
}

// pendingFile is a note that was ingested but whose batch has not been
// delivered yet. Promotion to the shipped journal happens on delivery.
type pendingFile struct {
	path     string
	checksum string
}

// NewAgent creates an agent and its compiler for the given sink.
func NewAgent(config AgentConfig, pattern *tag.Pattern, sink sender.Sink, logger zerolog.Logger) (*Agent, error) {
	a := &Agent{
		config: config,
		logger: logger,
	}

	comp, err := compiler.New(
		compiler.Config{
			Namespace:     config.Namespace,
			CapacityBytes: config.CapacityBytes,
			Metadata:      config.Metadata,
		},
		pattern,
		export.Exporter{Annotate: config.Annotate},
		sink,
		a,
		logger,
	)
	if err != nil {
		return nil, err
	}
	a.comp = comp
	return a, nil
}

// OnDeliver promotes the files whose notes made up the delivered batch to
// the shipped journal. The compiler delivers batches in ingestion order, so
// the first records entries of the pending queue are exactly the delivered
// ones.
func (a *Agent) OnDeliver(batchID string, records int) {
	n := records
	if n > len(a.pending) {
		n = len(a.pending)
	}
	now := time.Now().UTC()
	for _, pf := range a.pending[:n] {
		a.state.MarkShipped(pf.path, pf.checksum, now)
	}
	a.pending = a.pending[n:]

	if err := state.Save(a.config.StateDir, a.state); err != nil {
		a.logger.Warn().Err(err).Msg("save state failed")
	}
}

// Run executes the main loop. It scans the notes directory, ingests unshipped
// files, and finalizes the pending batch at the end of each pass. Returns
// when the context is cancelled, or after one pass in once mode.
func (a *Agent) Run(ctx context.Context) error {
	st, err := state.Load(a.config.StateDir)
	if err != nil && !os.IsNotExist(err) {
		a.logger.Warn().Err(err).Msg("load state failed, starting empty")
	}
	a.state = st

	events := make(chan string, 128)
	if !a.config.Once {
		go func() {
			if err := source.Watch(ctx, a.config.NotesDir, a.logger, events); err != nil {
				a.logger.Warn().Err(err).Msg("watcher failed, polling only")
			}
		}()
	}

	bo := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)

	for {
		if err := a.pass(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error().Err(err).Msg("pass failed")
			if a.config.Once {
				return err
			}
			bo.Sleep()
		} else {
			bo.Reset()
			if a.config.Once {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.config.PollInterval):
		case <-events:
			drain(events)
		}
	}
}

// pass performs one scan over the notes directory. Files already in the
// shipped journal with an unchanged checksum are skipped. An oversized note
// is reported, journaled so it is not retried until the file changes, and
// the pass continues with the next file.
func (a *Agent) pass(ctx context.Context) error {
	files, err := source.Scan(a.config.NotesDir)
	if err != nil {
		return err
	}

	for _, rel := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f, err := source.ReadFile(filepath.Join(a.config.NotesDir, rel), rel, a.config.Namespace)
		if err != nil {
			a.logger.Warn().Str("path", rel).Err(err).Msg("read note failed")
			continue
		}
		if !a.state.NeedsShip(f.Path, f.Checksum) {
			continue
		}

		if err := a.comp.Ingest(ctx, f.Note); err != nil {
			if errors.Is(err, compiler.ErrNoteTooLarge) {
				a.logger.Error().Str("path", rel).Err(err).Msg("note skipped")
				a.state.MarkShipped(f.Path, f.Checksum, time.Now().UTC())
				continue
			}
			// Delivery failed. Undelivered notes stay out of the journal
			// and are re-ingested on the next pass.
			a.pending = a.pending[:0]
			return err
		}
		a.pending = append(a.pending, pendingFile{path: f.Path, checksum: f.Checksum})
	}

	if err := a.comp.Finalize(ctx); err != nil {
		a.pending = a.pending[:0]
		return err
	}

	return state.Save(a.config.StateDir, a.state)
}

func drain(events <-chan string) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}
