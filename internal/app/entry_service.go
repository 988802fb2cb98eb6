package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/primary"
	"github.com/example/todoledger/internal/ports/secondary"
)

const entityTypeEntry = "entry"

// EntryServiceImpl implements the EntryService interface.
// Operations are serialised: each one runs to completion before the next starts.
type EntryServiceImpl struct {
	mu        sync.Mutex
	store     secondary.Store
	logWriter secondary.LogWriter
}

// NewEntryService creates a new EntryService with injected dependencies.
// logWriter may be nil.
func NewEntryService(store secondary.Store, logWriter secondary.LogWriter) *EntryServiceImpl {
	return &EntryServiceImpl{
		store:     store,
		logWriter: logWriter,
	}
}

// CreateEntry allocates the next id and stores a new to_do entry.
func (s *EntryServiceImpl) CreateEntry(ctx context.Context, req primary.CreateEntryRequest) (*primary.CreateEntryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created *entry.Entry
	err := s.store.Update(ctx, func(tx secondary.Tx) error {
		id, err := tx.Sequence().Next(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate entry ID: %w", err)
		}
		created = entry.New(id, req.Description, req.Priority, req.Owner)
		if err := tx.Entries().Put(ctx, created); err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("create", err)
	}

	slog.Info("entry created", "id", created.ID, "owner", created.Owner, "priority", created.Priority.String())
	s.audit(ctx, func(w secondary.LogWriter) error {
		return w.LogCreate(ctx, entityTypeEntry, formatID(created.ID))
	})

	return &primary.CreateEntryResponse{
		NewEntryID: created.ID,
		Attributes: []primary.Attribute{
			{Key: "method", Value: "execute_create_new_entry"},
			{Key: "new_entry_id", Value: formatID(created.ID)},
		},
	}, nil
}

// UpdateEntry overrides the supplied fields of an entry after checking ownership.
func (s *EntryServiceImpl) UpdateEntry(ctx context.Context, req primary.UpdateEntryRequest) (*primary.UpdateEntryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before, after *entry.Entry
	err := s.store.Update(ctx, func(tx secondary.Tx) error {
		existing, err := tx.Entries().Get(ctx, req.ID)
		if err != nil {
			return err
		}

		// Guard: declared owner must match stored owner
		if err := entry.CanUpdateEntry(entry.OwnershipContext{
			EntryID:       req.ID,
			StoredOwner:   existing.Owner,
			DeclaredOwner: req.Owner,
		}).Error(); err != nil {
			return err
		}

		patch := entry.Patch{
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
		}
		before = existing
		after = patch.Apply(existing)
		if patch.Empty() {
			return nil
		}
		if err := tx.Entries().Put(ctx, after); err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("update", err)
	}

	changes := entry.Diff(before, after)
	slog.Info("entry updated", "id", req.ID, "owner", req.Owner, "changed_fields", len(changes))
	s.audit(ctx, func(w secondary.LogWriter) error {
		for _, c := range changes {
			if err := w.LogUpdate(ctx, entityTypeEntry, formatID(req.ID), c.Field, c.OldValue, c.NewValue); err != nil {
				return err
			}
		}
		return nil
	})

	return &primary.UpdateEntryResponse{
		UpdatedEntryID: req.ID,
		Attributes: []primary.Attribute{
			{Key: "method", Value: "execute_update_entry"},
			{Key: "updated_entry_id", Value: formatID(req.ID)},
		},
	}, nil
}

// DeleteEntry removes an entry after checking existence and ownership.
func (s *EntryServiceImpl) DeleteEntry(ctx context.Context, req primary.DeleteEntryRequest) (*primary.DeleteEntryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Update(ctx, func(tx secondary.Tx) error {
		existing, err := tx.Entries().Get(ctx, req.ID)
		if err != nil {
			return err
		}

		// Guard: declared owner must match stored owner
		if err := entry.CanDeleteEntry(entry.OwnershipContext{
			EntryID:       req.ID,
			StoredOwner:   existing.Owner,
			DeclaredOwner: req.Owner,
		}).Error(); err != nil {
			return err
		}

		if err := tx.Entries().Delete(ctx, req.ID); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("delete", err)
	}

	slog.Info("entry deleted", "id", req.ID, "owner", req.Owner)
	s.audit(ctx, func(w secondary.LogWriter) error {
		return w.LogDelete(ctx, entityTypeEntry, formatID(req.ID))
	})

	return &primary.DeleteEntryResponse{
		DeletedEntryID: req.ID,
		Attributes: []primary.Attribute{
			{Key: "method", Value: "execute_delete_entry"},
			{Key: "deleted_entry_id", Value: formatID(req.ID)},
		},
	}, nil
}

// GetEntry retrieves an entry by id.
func (s *EntryServiceImpl) GetEntry(ctx context.Context, id uint64) (*primary.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *entry.Entry
	err := s.store.View(ctx, func(tx secondary.Tx) error {
		e, err := tx.Entries().Get(ctx, id)
		if err != nil {
			return err
		}
		found = e
		return nil
	})
	if err != nil {
		return nil, classify("get", err)
	}
	return entryToPort(found), nil
}

// ListEntriesByOwner scans the record table in ascending id order starting
// after the cursor, keeps the owner's entries and stops at the effective limit.
// The cursor is a raw table key, so a page may hold fewer entries than the limit.
func (s *EntryServiceImpl) ListEntriesByOwner(ctx context.Context, req primary.ListEntriesRequest) (*primary.ListEntriesResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := entry.EffectiveLimit(req.Limit)
	entries := make([]*primary.Entry, 0, limit)

	err := s.store.View(ctx, func(tx secondary.Tx) error {
		if limit == 0 {
			return nil
		}
		it, err := tx.Entries().Scan(ctx, req.StartAfter)
		if err != nil {
			return fmt.Errorf("failed to scan entries: %w", err)
		}
		defer it.Close()

		for it.Next() {
			e := it.Entry()
			if e.Owner != req.Owner {
				continue
			}
			entries = append(entries, entryToPort(e))
			if len(entries) == limit {
				break
			}
		}
		if err := it.Err(); err != nil {
			return fmt.Errorf("failed to scan entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("list", err)
	}

	slog.Debug("entries listed", "owner", req.Owner, "limit", limit, "returned", len(entries))
	return &primary.ListEntriesResponse{Entries: entries}, nil
}

// audit writes to the audit log after a successful commit.
// Failures are logged and never fail the operation.
func (s *EntryServiceImpl) audit(ctx context.Context, write func(w secondary.LogWriter) error) {
	if s.logWriter == nil {
		return
	}
	if err := write(s.logWriter); err != nil {
		slog.Warn("failed to write audit log", "error", err)
	}
}

// classify passes domain errors through and wraps everything else as a storage failure.
func classify(op string, err error) error {
	if errors.Is(err, entry.ErrNotFound) || errors.Is(err, entry.ErrUnauthorized) {
		return err
	}
	if entry.IsStorageError(err) {
		return err
	}
	return &entry.StorageError{Op: op, Err: err}
}

func entryToPort(e *entry.Entry) *primary.Entry {
	return &primary.Entry{
		ID:          e.ID,
		Description: e.Description,
		Status:      e.Status,
		Priority:    e.Priority,
		Owner:       e.Owner,
	}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Ensure EntryServiceImpl implements the interface
var _ primary.EntryService = (*EntryServiceImpl)(nil)
