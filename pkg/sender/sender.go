package sender

import "context"

// Batch is one delivery unit: an identified, ordered sequence of exported
// note records. Rows are positional and share the Columns schema.
type Batch struct {
	// ID uniquely identifies the batch for server-side idempotency
	ID string

	// Namespace is the grouping label the batch was assembled under
	Namespace string

	// Columns are the field names shared by every row
	Columns []string

	// Rows are the exported records in batch insertion order
	Rows [][]string
}

// Sink transmits flushed note batches to a remote store.
// Implementations handle serialization, communication, and authentication.
type Sink interface {
	// Deliver transmits one batch. Returns nil on success, error on
	// failure. Delivery is not retried here; the caller owns retry policy.
	Deliver(ctx context.Context, b Batch, md Metadata) error
}
