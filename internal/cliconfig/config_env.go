package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (NOTESHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("notes-dir", os.Getenv("NOTESHIP_NOTES_DIR"), &cfg.NotesDir)
	s.setString("state-dir", os.Getenv("NOTESHIP_STATE_DIR"), &cfg.StateDir)
	s.setString("namespace", os.Getenv("NOTESHIP_NAMESPACE"), &cfg.Namespace)
	s.setString("tag-char", os.Getenv("NOTESHIP_TAG_CHAR"), &cfg.TagChar)
	s.setString("tag-template", os.Getenv("NOTESHIP_TAG_TEMPLATE"), &cfg.TagTemplate)
	s.setString("service-url", os.Getenv("NOTESHIP_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("NOTESHIP_AUTH_KEY"), &cfg.AuthKey)
	s.setString("spool-path", os.Getenv("NOTESHIP_SPOOL_PATH"), &cfg.SpoolPath)

	if err := s.setIntFromString("capacity-bytes", os.Getenv("NOTESHIP_CAPACITY_BYTES"), &cfg.CapacityBytes); err != nil {
		return err
	}

	if err := s.setDuration("timeout", os.Getenv("NOTESHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("NOTESHIP_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}

	s.setBoolFromString("annotate", os.Getenv("NOTESHIP_ANNOTATE"), &cfg.Annotate)
	s.setBoolFromString("once", os.Getenv("NOTESHIP_ONCE"), &cfg.Once)

	return nil
}
