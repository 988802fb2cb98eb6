package sqlite_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/example/todoledger/internal/adapters/sqlite"
	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/secondary"
)

func TestStore_SetupInitializesSequenceAndInfo(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	info, err := store.Info(ctx)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Name != "todo-ledger" || info.Version != "test" {
		t.Errorf("unexpected info %+v", info)
	}

	err = store.View(ctx, func(tx secondary.Tx) error {
		current, err := tx.Sequence().Current(ctx)
		if err != nil {
			return err
		}
		if current != 0 {
			t.Errorf("expected sequence 0 after setup, got %d", current)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestStore_SetupIsIdempotent(t *testing.T) {
	store, testDB := setupTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(tx secondary.Tx) error {
		_, err := tx.Sequence().Next(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Re-running setup must neither reset the counter nor replace the tag
	again, err := sqlite.NewStore(ctx, testDB, secondary.ContractInfo{Name: "other", Version: "v2"})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	info, _ := again.Info(ctx)
	if info.Name != "todo-ledger" {
		t.Errorf("expected original tag, got %+v", info)
	}
	again.View(ctx, func(tx secondary.Tx) error {
		current, _ := tx.Sequence().Current(ctx)
		if current != 1 {
			t.Errorf("expected sequence 1, got %d", current)
		}
		return nil
	})
}

func TestStore_SequenceStrictlyIncreasing(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	for want := uint64(1); want <= 20; want++ {
		var got uint64
		err := store.Update(ctx, func(tx secondary.Tx) error {
			var err error
			got, err = tx.Sequence().Next(ctx)
			return err
		})
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestStore_SequenceStopsAtMaxInt64(t *testing.T) {
	store, testDB := setupTestStore(t)
	ctx := context.Background()

	if _, err := testDB.Exec("UPDATE sequences SET value = ? WHERE name = 'entry'", int64(math.MaxInt64)); err != nil {
		t.Fatalf("failed to bump sequence: %v", err)
	}

	err := store.Update(ctx, func(tx secondary.Tx) error {
		_, err := tx.Sequence().Next(ctx)
		return err
	})
	if err == nil {
		t.Fatal("expected exhausted sequence error, got nil")
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	store, testDB := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Update(ctx, func(tx secondary.Tx) error {
		id, err := tx.Sequence().Next(ctx)
		if err != nil {
			return err
		}
		if err := tx.Entries().Put(ctx, entry.New(id, "half-written", nil, "alice")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count, seq int
	testDB.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	testDB.QueryRow("SELECT value FROM sequences WHERE name = 'entry'").Scan(&seq)
	if count != 0 {
		t.Errorf("expected no entries after rollback, got %d", count)
	}
	if seq != 0 {
		t.Errorf("expected sequence 0 after rollback, got %d", seq)
	}
}

func TestStore_ViewRejectsWrites(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	err := store.View(ctx, func(tx secondary.Tx) error {
		return tx.Entries().Put(ctx, entry.New(1, "x", nil, "alice"))
	})
	if err == nil {
		t.Error("expected Put inside View to fail")
	}

	err = store.View(ctx, func(tx secondary.Tx) error {
		return tx.Entries().Delete(ctx, 1)
	})
	if err == nil {
		t.Error("expected Delete inside View to fail")
	}

	err = store.View(ctx, func(tx secondary.Tx) error {
		_, err := tx.Sequence().Next(ctx)
		return err
	})
	if err == nil {
		t.Error("expected sequence Next inside View to fail")
	}

	err = store.View(ctx, func(tx secondary.Tx) error {
		current, err := tx.Sequence().Current(ctx)
		if err != nil {
			return err
		}
		if current != 0 {
			t.Errorf("expected sequence 0, got %d", current)
		}
		_, err = tx.Entries().Get(ctx, 1)
		if !errors.Is(err, entry.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestStore_ScanInsideView(t *testing.T) {
	store, testDB := setupTestStore(t)
	ctx := context.Background()
	seedEntry(t, testDB, 1, "alice", "a")
	seedEntry(t, testDB, 2, "bob", "b")

	err := store.View(ctx, func(tx secondary.Tx) error {
		it, err := tx.Entries().Scan(ctx, nil)
		if err != nil {
			return err
		}
		if got := ids(collect(t, it, 0)); !equalIDs(got, []uint64{1, 2}) {
			t.Errorf("scan = %v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestStore_InfoWithoutTag(t *testing.T) {
	store, testDB := setupTestStore(t)
	if _, err := testDB.Exec("DELETE FROM contract_info"); err != nil {
		t.Fatalf("failed to clear contract_info: %v", err)
	}

	if _, err := store.Info(context.Background()); err == nil {
		t.Fatal("expected error when the setup tag is missing")
	}
}
