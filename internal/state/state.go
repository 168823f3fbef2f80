// Package state persists which note files have already been shipped, so
// restarts and rescans do not re-deliver unchanged notes.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry records one shipped note file.
type Entry struct {
	Checksum  string    `json:"checksum"`
	ShippedAt time.Time `json:"shipped_at"`
}

// State is the on-disk journal. A file whose checksum differs from its
// entry is considered changed and gets shipped again.
type State struct {
	Shipped    map[string]Entry `json:"shipped"`
	LastSendAt time.Time        `json:"last_send_at"`
}

// NeedsShip reports whether the file at path with the given checksum has not
// been shipped yet, or has changed since it was.
func (s *State) NeedsShip(path, checksum string) bool {
	e, ok := s.Shipped[path]
	return !ok || e.Checksum != checksum
}

// MarkShipped records path as shipped with the given checksum.
func (s *State) MarkShipped(path, checksum string, at time.Time) {
	if s.Shipped == nil {
		s.Shipped = make(map[string]Entry)
	}
	s.Shipped[path] = Entry{Checksum: checksum, ShippedAt: at}
	s.LastSendAt = at
}

func stateFile(dir string) string { return filepath.Join(dir, "ship-status.json") }

// Load reads the journal from dir.
func Load(dir string) (State, error) {
	b, err := os.ReadFile(stateFile(dir))
	if err != nil {
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, err
	}
	return st, nil
}

// Save writes the journal atomically via a temp file and rename.
func Save(dir string, st State) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp := stateFile(dir) + ".tmp"
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, stateFile(dir))
}
