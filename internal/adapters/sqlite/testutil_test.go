// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/todoledger/internal/adapters/sqlite"
	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/db"
	"github.com/example/todoledger/internal/ports/secondary"
)

var testInfo = secondary.ContractInfo{Name: "todo-ledger", Version: "test"}

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// One connection: every query sees the same in-memory database
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupTestStore creates a Store over a fresh database, with setup applied.
func setupTestStore(t *testing.T) (*sqlite.Store, *sql.DB) {
	t.Helper()
	testDB := setupTestDB(t)
	store, err := sqlite.NewStore(context.Background(), testDB, testInfo)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store, testDB
}

// seedEntry inserts an entry row directly.
func seedEntry(t *testing.T, db *sql.DB, id uint64, owner, description string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO entries (id, description, status, priority, owner) VALUES (?, ?, 'to_do', 'none', ?)",
		int64(id), description, owner,
	)
	if err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}
}

// collect drains an iterator, pulling at most max entries (0 = all).
func collect(t *testing.T, it secondary.EntryIterator, max int) []*entry.Entry {
	t.Helper()
	defer it.Close()

	var out []*entry.Entry
	for it.Next() {
		out = append(out, it.Entry())
		if max > 0 && len(out) == max {
			break
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	return out
}

func ids(entries []*entry.Entry) []uint64 {
	out := make([]uint64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func equalIDs(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
