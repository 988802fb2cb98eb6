// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/todoledger/internal/ports/secondary"
)

var errReadOnly = errors.New("write in read-only unit of work")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements secondary.Store on a SQLite database.
// Each unit of work is one SQL transaction.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database and runs setup: the entry sequence is
// initialised to 0 and the contract tag recorded, both only if absent.
func NewStore(ctx context.Context, db *sql.DB, info secondary.ContractInfo) (*Store, error) {
	s := &Store{db: db}
	if err := s.setup(ctx, info); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) setup(ctx context.Context, info secondary.ContractInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin setup: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO contract_info (id, name, version) VALUES (1, ?, ?) ON CONFLICT(id) DO NOTHING",
		info.Name, info.Version,
	); err != nil {
		return fmt.Errorf("failed to record contract info: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO sequences (name, value) VALUES (?, 0) ON CONFLICT(name) DO NOTHING",
		entrySequenceName,
	); err != nil {
		return fmt.Errorf("failed to initialize entry sequence: %w", err)
	}
	return tx.Commit()
}

// Update runs fn inside a transaction and commits only if fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx secondary.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(newTx(tx, false)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// View runs fn inside a read-only transaction that is always rolled back.
// Writes through the Tx fail with an error.
func (s *Store) View(ctx context.Context, fn func(tx secondary.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	return fn(newTx(tx, true))
}

// Info returns the contract tag recorded at setup.
func (s *Store) Info(ctx context.Context) (*secondary.ContractInfo, error) {
	info := &secondary.ContractInfo{}
	err := s.db.QueryRowContext(ctx, "SELECT name, version FROM contract_info WHERE id = 1").Scan(&info.Name, &info.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store has not been set up")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract info: %w", err)
	}
	return info, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type sqliteTx struct {
	entries  *EntryRepository
	sequence *SequenceRepository
}

func newTx(q querier, readOnly bool) *sqliteTx {
	entries := NewEntryRepository(q)
	entries.readOnly = readOnly
	sequence := NewSequenceRepository(q)
	sequence.readOnly = readOnly
	return &sqliteTx{entries: entries, sequence: sequence}
}

func (t *sqliteTx) Entries() secondary.EntryRepository    { return t.entries }
func (t *sqliteTx) Sequence() secondary.SequenceGenerator { return t.sequence }

// Ensure Store implements the interface
var _ secondary.Store = (*Store)(nil)
