package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	NotesDir      string `toml:"notes_dir"`
	StateDir      string `toml:"state_dir"`
	Namespace     string `toml:"namespace"`
	TagChar       string `toml:"tag_char"`
	TagTemplate   string `toml:"tag_template"`
	Annotate      *bool  `toml:"annotate"`
	CapacityBytes int    `toml:"capacity_bytes"`
	ServiceURL    string `toml:"service_url"`
	AuthKey       string `toml:"auth_key"`
	SpoolPath     string `toml:"spool_path"`
	HTTPTimeout   string `toml:"http_timeout"`
	PollInterval  string `toml:"poll_interval"`
	Once          *bool  `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.noteship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".noteship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("notes-dir", fc.NotesDir, &cfg.NotesDir)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("namespace", fc.Namespace, &cfg.Namespace)
	s.setString("tag-char", fc.TagChar, &cfg.TagChar)
	s.setString("tag-template", fc.TagTemplate, &cfg.TagTemplate)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("spool-path", fc.SpoolPath, &cfg.SpoolPath)

	s.setInt("capacity-bytes", fc.CapacityBytes, &cfg.CapacityBytes)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}

	s.setBool("annotate", fc.Annotate, &cfg.Annotate)
	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}
