package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/secondary"
)

// EntryRepository implements secondary.EntryRepository with SQLite.
type EntryRepository struct {
	q        querier
	readOnly bool
}

// NewEntryRepository creates a new SQLite entry repository.
func NewEntryRepository(q querier) *EntryRepository {
	return &EntryRepository{q: q}
}

const entrySelectCols = "id, description, status, priority, owner"

// scanEntry scans an entry row into an entry.Entry.
func scanEntry(scanner interface {
	Scan(dest ...any) error
}) (*entry.Entry, error) {
	var (
		id       int64
		status   string
		priority string
	)

	e := &entry.Entry{}
	if err := scanner.Scan(&id, &e.Description, &status, &priority, &e.Owner); err != nil {
		return nil, err
	}

	var err error
	e.ID = uint64(id)
	if e.Status, err = entry.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("entry %d: %w", id, err)
	}
	if e.Priority, err = entry.ParsePriority(priority); err != nil {
		return nil, fmt.Errorf("entry %d: %w", id, err)
	}
	return e, nil
}

// Get retrieves an entry by its ID.
func (r *EntryRepository) Get(ctx context.Context, id uint64) (*entry.Entry, error) {
	if id > math.MaxInt64 {
		return nil, entry.NotFoundError(id)
	}

	row := r.q.QueryRowContext(ctx,
		"SELECT "+entrySelectCols+" FROM entries WHERE id = ?",
		int64(id),
	)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entry.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

// Put inserts or replaces the entry at e.ID.
func (r *EntryRepository) Put(ctx context.Context, e *entry.Entry) error {
	if r.readOnly {
		return errReadOnly
	}
	if e.ID == 0 || e.ID > math.MaxInt64 {
		return fmt.Errorf("entry id %d out of range", e.ID)
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO entries (id, description, status, priority, owner)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			status = excluded.status,
			priority = excluded.priority,
			owner = excluded.owner
	`,
		int64(e.ID),
		e.Description,
		e.Status.String(),
		e.Priority.String(),
		e.Owner,
	)
	if err != nil {
		return fmt.Errorf("failed to put entry: %w", err)
	}
	return nil
}

// Delete removes an entry. Absent ids are ignored.
func (r *EntryRepository) Delete(ctx context.Context, id uint64) error {
	if r.readOnly {
		return errReadOnly
	}
	if id > math.MaxInt64 {
		return nil
	}
	if _, err := r.q.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", int64(id)); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// Scan streams entries in ascending id order after startAfter.
// Rows are read from the cursor one at a time as the caller advances.
func (r *EntryRepository) Scan(ctx context.Context, startAfter *uint64) (secondary.EntryIterator, error) {
	var after int64 // ids start at 1
	if startAfter != nil {
		if *startAfter >= math.MaxInt64 {
			return &rowsIterator{}, nil
		}
		after = int64(*startAfter)
	}

	rows, err := r.q.QueryContext(ctx,
		"SELECT "+entrySelectCols+" FROM entries WHERE id > ? ORDER BY id ASC",
		after,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}
	return &rowsIterator{rows: rows}, nil
}

// rowsIterator adapts *sql.Rows to secondary.EntryIterator.
// A nil rows field is an empty iterator.
type rowsIterator struct {
	rows    *sql.Rows
	current *entry.Entry
	err     error
}

func (it *rowsIterator) Next() bool {
	if it.rows == nil || it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		return false
	}
	e, err := scanEntry(it.rows)
	if err != nil {
		it.err = fmt.Errorf("failed to scan entry: %w", err)
		return false
	}
	it.current = e
	return true
}

func (it *rowsIterator) Entry() *entry.Entry {
	return it.current
}

func (it *rowsIterator) Err() error {
	return it.err
}

func (it *rowsIterator) Close() error {
	if it.rows == nil {
		return nil
	}
	return it.rows.Close()
}

// Ensure EntryRepository implements the interface
var _ secondary.EntryRepository = (*EntryRepository)(nil)
