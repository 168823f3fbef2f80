package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/noteship/internal/app"
	"github.com/bft-labs/noteship/internal/cliconfig"
	"github.com/bft-labs/noteship/internal/spool"
	"github.com/bft-labs/noteship/internal/tag"
	"github.com/bft-labs/noteship/pkg/sender"
)

const longHelp = `Ship tagged notes from a directory to a remote store in size-bounded batches.

noteship scans a directory of note files, extracts #tags from each note's
header and body, packs the notes into batches under a byte budget, and
delivers every batch to an ingestion service. Without a service URL, batches
spool into a local SQLite database instead.

Highlights:
  - Word-boundary tag extraction with a configurable marker and pattern.
  - Hard byte budget per batch; oversized notes are reported and skipped.
  - Tracks shipped files by checksum; edited notes ship again.`

const exampleUsage = `  noteship --notes-dir ~/notes --service-url https://api.example.com --auth-key <api-key>
  noteship --notes-dir ~/notes --annotate --once`

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "noteship",
		Short:   "Ship tagged notes to a remote store in size-bounded batches",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.noteship/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			pattern, err := tag.Compile(cfg.TagChar, cfg.TagTemplate)
			if err != nil {
				return fmt.Errorf("compile tag pattern: %w", err)
			}

			hostname, _ := os.Hostname()

			var sink sender.Sink
			if cfg.ServiceURL != "" {
				client := &http.Client{Timeout: cfg.HTTPTimeout}
				sink = sender.NewHTTPSender(client, log)
			} else {
				db, err := spool.Open(cfg.SpoolPath)
				if err != nil {
					return err
				}
				defer db.Close()
				log.Info().Str("path", cfg.SpoolPath).Msg("no service url, spooling locally")
				sink = db
			}

			agent, err := app.NewAgent(app.AgentConfig{
				NotesDir:      cfg.NotesDir,
				StateDir:      cfg.StateDir,
				Namespace:     cfg.Namespace,
				Annotate:      cfg.Annotate,
				CapacityBytes: cfg.CapacityBytes,
				PollInterval:  cfg.PollInterval,
				Once:          cfg.Once,
				Metadata: sender.Metadata{
					Hostname:   hostname,
					OSArch:     runtime.GOOS + "/" + runtime.GOARCH,
					AuthKey:    cfg.AuthKey,
					ServiceURL: cfg.ServiceURL,
				},
			}, pattern, sink, log)
			if err != nil {
				return fmt.Errorf("create agent: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("received signal, stopping...")
				cancel()
			}()

			if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.noteship/config.toml)")
	root.Flags().StringVar(&cfg.NotesDir, "notes-dir", cfg.NotesDir, "directory containing note files (.md, .txt)")
	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for the shipped-file journal (defaults to notes-dir)")
	root.Flags().StringVar(&cfg.Namespace, "namespace", cfg.Namespace, "namespace label attached to shipped notes")
	root.Flags().StringVar(&cfg.TagChar, "tag-char", cfg.TagChar, "marker character that begins a tag")
	root.Flags().StringVar(&cfg.TagTemplate, "tag-template", cfg.TagTemplate, "tag pattern template with one %s slot for the marker")
	root.Flags().BoolVar(&cfg.Annotate, "annotate", cfg.Annotate, "include capitalized tag columns in exported records")
	root.Flags().IntVar(&cfg.CapacityBytes, "capacity-bytes", cfg.CapacityBytes, "byte budget per batch")
	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL of the ingestion service (empty: spool locally)")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for the ingestion service")
	root.Flags().StringVar(&cfg.SpoolPath, "spool-path", cfg.SpoolPath, "path of the local spool database (defaults to state-dir/noteship.db)")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP request timeout")
	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "interval between directory scans")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "process the directory once and exit")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("noteship failed")
		os.Exit(1)
	}
}
