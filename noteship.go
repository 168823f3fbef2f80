// Package noteship provides a lightweight agent for shipping tagged notes
// to a remote store in size-bounded batches.
//
// Example usage:
//
//	cfg := noteship.DefaultConfig()
//	cfg.NotesDir = "/path/to/notes"
//	cfg.Metadata.ServiceURL = "https://api.example.com"
//	cfg.Metadata.AuthKey = "your-api-key"
//	if err := noteship.Run(context.Background(), cfg, sink); err != nil {
//	    log.Fatal(err)
//	}
package noteship

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/noteship/internal/app"
	"github.com/bft-labs/noteship/internal/batch"
	"github.com/bft-labs/noteship/internal/cliconfig"
	"github.com/bft-labs/noteship/internal/tag"
	"github.com/bft-labs/noteship/pkg/sender"
)

// Config holds the configuration for the note shipping agent.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = app.AgentConfig

// Sink transmits flushed note batches. See pkg/sender for the HTTP
// implementation.
type Sink = sender.Sink

// DefaultCapacityBytes is the default byte budget per batch.
const DefaultCapacityBytes = batch.DefaultCapacityBytes

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set NotesDir before calling Run.
func DefaultConfig() Config {
	return Config{
		CapacityBytes: DefaultCapacityBytes,
		PollInterval:  2 * time.Second,
	}
}

// Run starts the note shipping agent with the given configuration and sink.
// It blocks until the context is cancelled or an unrecoverable error occurs.
// Use cfg.Once = true to process available notes and exit immediately.
func Run(ctx context.Context, cfg Config, sink Sink) error {
	pattern, err := tag.Compile(tag.DefaultChar, tag.DefaultTemplate)
	if err != nil {
		return err
	}
	agent, err := app.NewAgent(cfg, pattern, sink, Logger())
	if err != nil {
		return err
	}
	return agent.Run(ctx)
}

// Logger returns the package-level zerolog logger used by the agent.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}
