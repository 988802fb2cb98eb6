// Package primary defines the primary ports (driving adapters) for the application.
package primary

import (
	"context"

	"github.com/example/todoledger/internal/core/entry"
)

// EntryService defines the primary port for entry operations.
type EntryService interface {
	// CreateEntry creates a new entry owned by the declared owner.
	CreateEntry(ctx context.Context, req CreateEntryRequest) (*CreateEntryResponse, error)

	// UpdateEntry overrides the supplied fields of an entry the caller owns.
	UpdateEntry(ctx context.Context, req UpdateEntryRequest) (*UpdateEntryResponse, error)

	// DeleteEntry deletes an entry the caller owns.
	DeleteEntry(ctx context.Context, req DeleteEntryRequest) (*DeleteEntryResponse, error)

	// GetEntry retrieves an entry by id.
	GetEntry(ctx context.Context, id uint64) (*Entry, error)

	// ListEntriesByOwner returns one page of an owner's entries in ascending id order.
	ListEntriesByOwner(ctx context.Context, req ListEntriesRequest) (*ListEntriesResponse, error)
}

// CreateEntryRequest contains parameters for creating an entry.
type CreateEntryRequest struct {
	Description string
	Priority    *entry.Priority // Optional, defaults to none
	Owner       string
}

// CreateEntryResponse contains the result of creating an entry.
type CreateEntryResponse struct {
	NewEntryID uint64
	Attributes []Attribute
}

// UpdateEntryRequest contains parameters for updating an entry.
// Nil fields keep their stored value.
type UpdateEntryRequest struct {
	ID          uint64
	Description *string
	Status      *entry.Status
	Priority    *entry.Priority
	Owner       string
}

// UpdateEntryResponse contains the result of updating an entry.
type UpdateEntryResponse struct {
	UpdatedEntryID uint64
	Attributes     []Attribute
}

// DeleteEntryRequest contains parameters for deleting an entry.
type DeleteEntryRequest struct {
	ID    uint64
	Owner string
}

// DeleteEntryResponse contains the result of deleting an entry.
type DeleteEntryResponse struct {
	DeletedEntryID uint64
	Attributes     []Attribute
}

// ListEntriesRequest contains parameters for listing an owner's entries.
type ListEntriesRequest struct {
	Owner      string
	StartAfter *uint64 // Cursor: id of the last entry already seen
	Limit      *uint32 // Optional, defaults to 10, capped at 30
}

// ListEntriesResponse contains one page of entries.
type ListEntriesResponse struct {
	Entries []*Entry
}

// Entry represents an entry at the port boundary.
type Entry struct {
	ID          uint64         `json:"id"`
	Description string         `json:"description"`
	Status      entry.Status   `json:"status"`
	Priority    entry.Priority `json:"priority"`
	Owner       string         `json:"owner"`
}

// Attribute is a key/value pair describing what an operation did.
type Attribute struct {
	Key   string
	Value string
}
