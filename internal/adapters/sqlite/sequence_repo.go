package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/example/todoledger/internal/ports/secondary"
)

const entrySequenceName = "entry"

// SequenceRepository implements secondary.SequenceGenerator with SQLite.
type SequenceRepository struct {
	q        querier
	name     string
	readOnly bool
}

// NewSequenceRepository creates a sequence over the entry counter row.
func NewSequenceRepository(q querier) *SequenceRepository {
	return &SequenceRepository{q: q, name: entrySequenceName}
}

// Next increments the counter and returns the new value.
// Values are stored as INTEGER, so the counter stops at math.MaxInt64.
func (r *SequenceRepository) Next(ctx context.Context) (uint64, error) {
	if r.readOnly {
		return 0, errReadOnly
	}
	current, err := r.Current(ctx)
	if err != nil {
		return 0, err
	}
	if current >= math.MaxInt64 {
		return 0, fmt.Errorf("sequence %s is exhausted at %d", r.name, current)
	}

	var value int64
	err = r.q.QueryRowContext(ctx,
		"UPDATE sequences SET value = value + 1 WHERE name = ? RETURNING value",
		r.name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sequence %s has not been initialized", r.name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", r.name, err)
	}
	return uint64(value), nil
}

// Current returns the last value handed out.
func (r *SequenceRepository) Current(ctx context.Context) (uint64, error) {
	var value int64
	err := r.q.QueryRowContext(ctx, "SELECT value FROM sequences WHERE name = ?", r.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sequence %s has not been initialized", r.name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", r.name, err)
	}
	return uint64(value), nil
}

// Ensure SequenceRepository implements the interface
var _ secondary.SequenceGenerator = (*SequenceRepository)(nil)
