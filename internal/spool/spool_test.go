package spool

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bft-labs/noteship/pkg/sender"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "spool.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDeliverRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	b := sender.Batch{
		ID:        "batch-1",
		Namespace: "work",
		Columns:   []string{"Header", "Body", "Namespace", "Headertags", "Bodytags"},
		Rows: [][]string{
			{"h1", "b1", "work", "t1 t2", ""},
			{"h2", "b2", "work", "", "t3"},
		},
	}
	if err := db.Deliver(ctx, b, sender.Metadata{}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	batches, err := db.Batches(ctx)
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("stored %d batches, want 1", len(batches))
	}
	if batches[0].ID != "batch-1" || batches[0].Namespace != "work" || batches[0].RecordCount != 2 {
		t.Fatalf("unexpected batch row %+v", batches[0])
	}

	rows, err := db.Records(ctx, "batch-1")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	want := [][]string{
		{"h1", "b1", "work", "t1 t2", ""},
		{"h2", "b2", "work", "", "t3"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
}

func TestDeliverBaseRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	b := sender.Batch{
		ID:      "batch-2",
		Columns: []string{"header", "body", "namespace"},
		Rows:    [][]string{{"h", "b", ""}},
	}
	if err := db.Deliver(ctx, b, sender.Metadata{}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	rows, err := db.Records(ctx, "batch-2")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"h", "b", "", "", ""}}) {
		t.Fatalf("rows = %v", rows)
	}
}

func TestDeliverEmptyBatch(t *testing.T) {
	db := openTestDB(t)

	if err := db.Deliver(context.Background(), sender.Batch{ID: "empty"}, sender.Metadata{}); err != nil {
		t.Fatalf("Deliver empty: %v", err)
	}
	batches, err := db.Batches(context.Background())
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("empty delivery stored %d batches", len(batches))
	}
}

func TestDeliverRejectsMalformedRow(t *testing.T) {
	db := openTestDB(t)

	b := sender.Batch{
		ID:   "bad",
		Rows: [][]string{{"only", "two"}},
	}
	if err := db.Deliver(context.Background(), b, sender.Metadata{}); err == nil {
		t.Fatal("expected error for malformed row")
	}
}

func TestDeliverDuplicateBatchID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	b := sender.Batch{ID: "dup", Rows: [][]string{{"h", "b", ""}}}
	if err := db.Deliver(ctx, b, sender.Metadata{}); err != nil {
		t.Fatalf("first Deliver: %v", err)
	}
	if err := db.Deliver(ctx, b, sender.Metadata{}); err == nil {
		t.Fatal("expected primary key violation for duplicate batch id")
	}
}
