// Package spool provides a SQLite-backed local sink. Delivered batches are
// recorded durably with their rows, preserving insertion order. It serves as
// the offline destination when no ingestion service is configured, and as an
// audit trail in tests.
package spool

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bft-labs/noteship/pkg/sender"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS note_batches (
	id           TEXT PRIMARY KEY,
	namespace    TEXT NOT NULL DEFAULT '',
	record_count INTEGER NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS note_records (
	batch_id    TEXT NOT NULL REFERENCES note_batches(id),
	seq         INTEGER NOT NULL,
	header      TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	namespace   TEXT NOT NULL DEFAULT '',
	header_tags TEXT NOT NULL DEFAULT '',
	body_tags   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (batch_id, seq)
);
`

// DB wraps a sql.DB with spool-specific operations. It implements
// sender.Sink.
type DB struct {
	conn *sql.DB
}

// Verify *DB satisfies Sink at compile time.
var _ sender.Sink = (*DB)(nil)

// Open opens (or creates) the SQLite spool at dsn and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("spool: open %s: %w", dsn, err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("spool: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Deliver stores one batch and its rows in a single transaction. Rows with 3
// columns are base records; rows with 5 carry the annotated tag columns.
func (d *DB) Deliver(ctx context.Context, b sender.Batch, _ sender.Metadata) error {
	if len(b.Rows) == 0 {
		return nil
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("spool: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO note_batches (id, namespace, record_count, created_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Namespace, len(b.Rows), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("spool: insert batch %s: %w", b.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO note_records (batch_id, seq, header, body, namespace, header_tags, body_tags) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("spool: prepare: %w", err)
	}
	defer stmt.Close()

	for seq, row := range b.Rows {
		if len(row) != 3 && len(row) != 5 {
			return fmt.Errorf("spool: row %d has %d columns, want 3 or 5", seq, len(row))
		}
		var headerTags, bodyTags string
		if len(row) == 5 {
			headerTags, bodyTags = row[3], row[4]
		}
		if _, err := stmt.ExecContext(ctx, b.ID, seq, row[0], row[1], row[2], headerTags, bodyTags); err != nil {
			return fmt.Errorf("spool: insert record %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("spool: commit batch %s: %w", b.ID, err)
	}
	return nil
}

// BatchRow is one stored batch summary.
type BatchRow struct {
	ID          string
	Namespace   string
	RecordCount int
	CreatedAt   time.Time
}

// Batches lists stored batches in creation order.
func (d *DB) Batches(ctx context.Context) ([]BatchRow, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, namespace, record_count, created_at FROM note_batches ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("spool: list batches: %w", err)
	}
	defer rows.Close()

	var out []BatchRow
	for rows.Next() {
		var b BatchRow
		if err := rows.Scan(&b.ID, &b.Namespace, &b.RecordCount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("spool: scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Records returns the rows of one batch in insertion order. Each row is
// (header, body, namespace, header_tags, body_tags).
func (d *DB) Records(ctx context.Context, batchID string) ([][]string, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT header, body, namespace, header_tags, body_tags FROM note_records WHERE batch_id = ? ORDER BY seq`,
		batchID)
	if err != nil {
		return nil, fmt.Errorf("spool: list records: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		row := make([]string, 5)
		if err := rows.Scan(&row[0], &row[1], &row[2], &row[3], &row[4]); err != nil {
			return nil, fmt.Errorf("spool: scan record: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
