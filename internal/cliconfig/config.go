// Package cliconfig loads and validates the noteship configuration from
// file, environment, and flags, with flag > env > file > default precedence.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bft-labs/noteship/internal/batch"
	"github.com/bft-labs/noteship/internal/tag"
)

// Config holds CLI configuration for noteship.
type Config struct {
	NotesDir  string
	StateDir  string
	Namespace string

	TagChar     string
	TagTemplate string
	Annotate    bool

	CapacityBytes int

	ServiceURL  string
	AuthKey     string
	SpoolPath   string
	HTTPTimeout time.Duration

	PollInterval time.Duration
	Once         bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		TagChar:       tag.DefaultChar,
		TagTemplate:   tag.DefaultTemplate,
		CapacityBytes: batch.DefaultCapacityBytes,
		HTTPTimeout:   30 * time.Second,
		PollInterval:  2 * time.Second,
		AuthKey:       os.Getenv("NOTESHIP_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.NotesDir == "" {
		return fmt.Errorf("notes-dir is required")
	}

	if c.StateDir == "" {
		c.StateDir = c.NotesDir
	}

	// Without a service URL, batches spool to a local SQLite database.
	if c.ServiceURL == "" && c.SpoolPath == "" {
		c.SpoolPath = filepath.Join(c.StateDir, "noteship.db")
	}

	// Ensure no trailing slash
	if len(c.ServiceURL) > 0 && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}

	if c.CapacityBytes <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses "1"/"true"/"false" style values from the
// environment.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return
	}
	*dst = b
}
