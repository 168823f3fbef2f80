package state

import (
	"os"
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	var st State
	st.MarkShipped("notes/a.md", "abc123", time.Now().UTC())

	if err := Save(dir, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e, ok := loaded.Shipped["notes/a.md"]
	if !ok {
		t.Fatal("entry missing after round trip")
	}
	if e.Checksum != "abc123" {
		t.Fatalf("checksum = %q, want abc123", e.Checksum)
	}
	if loaded.LastSendAt.IsZero() {
		t.Fatal("last send time not persisted")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !os.IsNotExist(err) {
		t.Fatalf("Load on empty dir = %v, want not-exist", err)
	}
}

func TestNeedsShip(t *testing.T) {
	var st State

	if !st.NeedsShip("a.md", "sum1") {
		t.Fatal("unknown file must need shipping")
	}

	st.MarkShipped("a.md", "sum1", time.Now())
	if st.NeedsShip("a.md", "sum1") {
		t.Fatal("unchanged file must not need shipping")
	}
	if !st.NeedsShip("a.md", "sum2") {
		t.Fatal("changed file must need shipping again")
	}
}
