package cliconfig

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TagChar != "#" {
		t.Fatalf("TagChar = %q, want #", cfg.TagChar)
	}
	if cfg.TagTemplate == "" {
		t.Fatal("TagTemplate is empty")
	}
	if cfg.CapacityBytes != 30<<10 {
		t.Fatalf("CapacityBytes = %d, want 30720", cfg.CapacityBytes)
	}
	if cfg.Annotate {
		t.Fatal("Annotate must default to false")
	}
}

func TestValidate(t *testing.T) {
	t.Run("requires notes dir", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error without notes-dir")
		}
	})

	t.Run("derives state dir and spool path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NotesDir = "/notes"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cfg.StateDir != "/notes" {
			t.Fatalf("StateDir = %q, want /notes", cfg.StateDir)
		}
		if cfg.SpoolPath != filepath.Join("/notes", "noteship.db") {
			t.Fatalf("SpoolPath = %q", cfg.SpoolPath)
		}
	})

	t.Run("service url suppresses spool default", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NotesDir = "/notes"
		cfg.ServiceURL = "https://api.example.com/"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cfg.SpoolPath != "" {
			t.Fatalf("SpoolPath = %q, want empty", cfg.SpoolPath)
		}
		if cfg.ServiceURL != "https://api.example.com" {
			t.Fatalf("trailing slash not trimmed: %q", cfg.ServiceURL)
		}
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NotesDir = "/notes"
		cfg.CapacityBytes = 0
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for zero capacity")
		}
	})

	t.Run("rejects non-positive poll interval", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NotesDir = "/notes"
		cfg.PollInterval = 0
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for zero poll interval")
		}
	})
}
