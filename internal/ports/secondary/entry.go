// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/todoledger/internal/core/entry"
)

// Store is the single storage handle behind the record table and the sequence.
// Every unit of work runs inside Update or View.
type Store interface {
	// Update runs fn in a read-write unit of work. Writes made by fn become
	// visible only if fn returns nil; otherwise none of them do.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn in a read-only unit of work.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Info returns the contract tag recorded at setup.
	Info(ctx context.Context) (*ContractInfo, error)

	// Close releases the underlying storage.
	Close() error
}

// Tx exposes the components of a store within one unit of work.
type Tx interface {
	Entries() EntryRepository
	Sequence() SequenceGenerator
}

// EntryRepository is the record table: an ordered mapping from id to entry.
type EntryRepository interface {
	// Get retrieves an entry by id. Returns an error wrapping entry.ErrNotFound if absent.
	Get(ctx context.Context, id uint64) (*entry.Entry, error)

	// Put writes e at e.ID, overwriting any existing entry.
	Put(ctx context.Context, e *entry.Entry) error

	// Delete removes the entry at id. Deleting an absent id is not an error.
	Delete(ctx context.Context, id uint64) error

	// Scan opens an ascending iterator over entries with id strictly greater
	// than *startAfter, or over all entries when startAfter is nil.
	// Callers must Close the iterator.
	Scan(ctx context.Context, startAfter *uint64) (EntryIterator, error)
}

// EntryIterator is a lazy, ascending sequence of entries.
// The consumer decides how many entries to pull.
type EntryIterator interface {
	// Next advances to the next entry. It returns false when the sequence
	// is exhausted or an error occurred.
	Next() bool

	// Entry returns the current entry. Valid only after Next returned true.
	Entry() *entry.Entry

	// Err returns the first error encountered while iterating.
	Err() error

	// Close releases resources held by the iterator.
	Close() error
}

// SequenceGenerator produces strictly increasing entry ids.
type SequenceGenerator interface {
	// Next persists and returns the incremented counter. The first call after setup returns 1.
	Next(ctx context.Context) (uint64, error)

	// Current returns the last value handed out (0 before the first create).
	Current(ctx context.Context) (uint64, error)
}

// ContractInfo is the name/version tag recorded when a store is set up.
type ContractInfo struct {
	Name    string
	Version string
}
