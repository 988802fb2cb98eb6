package memory_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/todoledger/internal/adapters/memory"
	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/secondary"
)

var testInfo = secondary.ContractInfo{Name: "todo-ledger", Version: "test"}

func putAll(t *testing.T, store *memory.Store, owner string, ids ...uint64) {
	t.Helper()
	err := store.Update(context.Background(), func(tx secondary.Tx) error {
		for _, id := range ids {
			if err := tx.Entries().Put(context.Background(), entry.New(id, "x", nil, owner)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func scanIDs(t *testing.T, store *memory.Store, startAfter *uint64, max int) []uint64 {
	t.Helper()
	var out []uint64
	err := store.View(context.Background(), func(tx secondary.Tx) error {
		it, err := tx.Entries().Scan(context.Background(), startAfter)
		if err != nil {
			return err
		}
		defer it.Close()
		for it.Next() {
			out = append(out, it.Entry().ID)
			if max > 0 && len(out) == max {
				break
			}
		}
		return it.Err()
	})
	require.NoError(t, err)
	return out
}

func TestStore_PutGetDelete(t *testing.T) {
	store := memory.NewStore(testInfo)
	ctx := context.Background()

	putAll(t, store, "alice", 1)

	err := store.View(ctx, func(tx secondary.Tx) error {
		e, err := tx.Entries().Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "alice", e.Owner)
		assert.Equal(t, entry.StatusToDo, e.Status)

		_, err = tx.Entries().Get(ctx, 2)
		assert.ErrorIs(t, err, entry.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	err = store.Update(ctx, func(tx secondary.Tx) error {
		require.NoError(t, tx.Entries().Delete(ctx, 1))
		return tx.Entries().Delete(ctx, 1)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := memory.NewStore(testInfo)
	ctx := context.Background()
	putAll(t, store, "alice", 1)

	_ = store.View(ctx, func(tx secondary.Tx) error {
		e, err := tx.Entries().Get(ctx, 1)
		require.NoError(t, err)
		e.Owner = "mallory"
		return nil
	})

	_ = store.View(ctx, func(tx secondary.Tx) error {
		e, err := tx.Entries().Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "alice", e.Owner)
		return nil
	})
}

func TestStore_UpdateDiscardedOnError(t *testing.T) {
	store := memory.NewStore(testInfo)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Update(ctx, func(tx secondary.Tx) error {
		id, err := tx.Sequence().Next(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Entries().Put(ctx, entry.New(id, "half-written", nil, "alice")))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())

	_ = store.View(ctx, func(tx secondary.Tx) error {
		current, err := tx.Sequence().Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), current)
		return nil
	})
}

func TestStore_SequenceStrictlyIncreasing(t *testing.T) {
	store := memory.NewStore(testInfo)
	ctx := context.Background()

	for want := uint64(1); want <= 10; want++ {
		var got uint64
		err := store.Update(ctx, func(tx secondary.Tx) error {
			var err error
			got, err = tx.Sequence().Next(ctx)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStore_ViewRejectsWrites(t *testing.T) {
	store := memory.NewStore(testInfo)
	ctx := context.Background()

	err := store.View(ctx, func(tx secondary.Tx) error {
		return tx.Entries().Put(ctx, entry.New(1, "x", nil, "alice"))
	})
	assert.Error(t, err)

	err = store.View(ctx, func(tx secondary.Tx) error {
		_, err := tx.Sequence().Next(ctx)
		return err
	})
	assert.Error(t, err)
}

func TestStore_PutRejectsZeroID(t *testing.T) {
	store := memory.NewStore(testInfo)
	err := store.Update(context.Background(), func(tx secondary.Tx) error {
		return tx.Entries().Put(context.Background(), &entry.Entry{ID: 0, Owner: "alice"})
	})
	assert.Error(t, err)
}

func TestStore_ScanOrderAndCursor(t *testing.T) {
	store := memory.NewStore(testInfo)
	putAll(t, store, "alice", 5, 1, 3, 2, 4)

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, scanIDs(t, store, nil, 0))

	after := uint64(2)
	assert.Equal(t, []uint64{3, 4, 5}, scanIDs(t, store, &after, 0))
	assert.Equal(t, []uint64{3, 4}, scanIDs(t, store, &after, 2))

	end := uint64(5)
	assert.Empty(t, scanIDs(t, store, &end, 0))

	maxID := uint64(math.MaxUint64)
	assert.Empty(t, scanIDs(t, store, &maxID, 0))
}

func TestStore_ScanAcrossBatches(t *testing.T) {
	store := memory.NewStore(testInfo)

	var want []uint64
	for id := uint64(1); id <= 100; id++ {
		want = append(want, id)
	}
	putAll(t, store, "alice", want...)

	assert.Equal(t, want, scanIDs(t, store, nil, 0))

	after := uint64(31)
	assert.Equal(t, want[31:], scanIDs(t, store, &after, 0))
}

func TestStore_ScanIncludesMaxID(t *testing.T) {
	store := memory.NewStore(testInfo)
	putAll(t, store, "alice", 1, math.MaxUint64)

	assert.Equal(t, []uint64{1, math.MaxUint64}, scanIDs(t, store, nil, 0))
}

func TestStore_InfoAndClose(t *testing.T) {
	store := memory.NewStore(testInfo)
	ctx := context.Background()

	info, err := store.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, testInfo, *info)

	require.NoError(t, store.Close())
	_, err = store.Info(ctx)
	assert.Error(t, err)
	assert.Error(t, store.View(ctx, func(tx secondary.Tx) error { return nil }))
}
