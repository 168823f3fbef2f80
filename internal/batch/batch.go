// Package batch accumulates note records under a hard byte budget.
//
// A Batch moves through three states: empty, filling, flushed. Adds are
// all-or-nothing against the budget; a rejected record leaves the batch
// untouched. Flush hands the members to the caller in insertion order and
// the batch becomes unusable. Ownership transfers wholly at flush: the
// producer never touches a flushed batch again, which is what makes the
// single-producer discipline lock-free.
package batch

import (
	"errors"
	"fmt"

	"github.com/bft-labs/noteship/internal/domain"
)

// DefaultCapacityBytes is the byte budget used when the configuration leaves
// the capacity unset. Matches the downstream ingestion payload ceiling.
const DefaultCapacityBytes = 30 << 10 // 30 KiB

var (
	// ErrCapacityExceeded signals that a record does not fit in the
	// remaining budget. Recoverable: the caller starts a new batch and
	// retries the same record there.
	ErrCapacityExceeded = errors.New("batch capacity exceeded")

	// ErrFlushed is returned by operations on a batch that has already
	// been flushed.
	ErrFlushed = errors.New("batch already flushed")
)

type state int

const (
	stateEmpty state = iota
	stateFilling
	stateFlushed
)

// Batch is a size-bounded, ordered accumulator of note records.
type Batch struct {
	capacity int
	members  []domain.Record
	size     int
	state    state
}

// New creates an empty batch with the given byte budget. A non-positive
// capacity is a configuration error.
func New(capacityBytes int) (*Batch, error) {
	if capacityBytes <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacityBytes)
	}
	return &Batch{capacity: capacityBytes}, nil
}

// Add appends rec if its encoded size fits in the remaining budget.
// On ErrCapacityExceeded the batch is unchanged; the record was rejected,
// not partially added.
func (b *Batch) Add(rec domain.Record) error {
	if b.state == stateFlushed {
		return ErrFlushed
	}
	n := rec.EncodedSize()
	if b.size+n > b.capacity {
		return fmt.Errorf("%d bytes over budget of %d: %w", b.size+n-b.capacity, b.capacity, ErrCapacityExceeded)
	}
	b.members = append(b.members, rec)
	b.size += n
	b.state = stateFilling
	return nil
}

// AddMany applies Add to each record in order and stops at the first
// failure, returning its index. The records from that index on remain the
// caller's responsibility; none are silently dropped.
func (b *Batch) AddMany(recs []domain.Record) (int, error) {
	for i, rec := range recs {
		if err := b.Add(rec); err != nil {
			return i, fmt.Errorf("add record %d: %w", i, err)
		}
	}
	return len(recs), nil
}

// Flush seals the batch and returns its members in insertion order. The
// batch is unusable for further adds. Flushing twice is an error.
func (b *Batch) Flush() ([]domain.Record, error) {
	if b.state == stateFlushed {
		return nil, ErrFlushed
	}
	b.state = stateFlushed
	members := b.members
	b.members = nil
	return members, nil
}

// Size returns the running byte total. It always equals the sum of the
// members' encoded sizes and never exceeds Capacity.
func (b *Batch) Size() int {
	return b.size
}

// Len returns the number of accumulated records.
func (b *Batch) Len() int {
	return len(b.members)
}

// Capacity returns the byte budget.
func (b *Batch) Capacity() int {
	return b.capacity
}

// Empty reports whether no record has been accepted yet.
func (b *Batch) Empty() bool {
	return len(b.members) == 0 && b.state != stateFlushed
}

// Flushed reports whether the batch has been sealed.
func (b *Batch) Flushed() bool {
	return b.state == stateFlushed
}
