package app

import (
	"context"
	"maps"
	"slices"

	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.Store             = (*mockStore)(nil)
	_ secondary.Tx                = (*mockTx)(nil)
	_ secondary.EntryRepository   = (*mockTx)(nil)
	_ secondary.SequenceGenerator = (*mockTx)(nil)
	_ secondary.LogWriter         = (*mockLogWriter)(nil)
)

// mockStore implements secondary.Store with copy-on-write maps so that a
// failed Update leaves no trace.
type mockStore struct {
	entries map[uint64]*entry.Entry
	seq     uint64

	getErr  error
	putErr  error
	nextErr error
	scanErr error

	updates int
	views   int
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[uint64]*entry.Entry)}
}

func (m *mockStore) Update(ctx context.Context, fn func(tx secondary.Tx) error) error {
	m.updates++
	tx := &mockTx{store: m, entries: maps.Clone(m.entries), seq: m.seq}
	if err := fn(tx); err != nil {
		return err
	}
	m.entries = tx.entries
	m.seq = tx.seq
	return nil
}

func (m *mockStore) View(ctx context.Context, fn func(tx secondary.Tx) error) error {
	m.views++
	return fn(&mockTx{store: m, entries: m.entries, seq: m.seq})
}

func (m *mockStore) Info(ctx context.Context) (*secondary.ContractInfo, error) {
	return &secondary.ContractInfo{Name: "todo-ledger", Version: "test"}, nil
}

func (m *mockStore) Close() error { return nil }

// mockTx is both the record table and the sequence for one unit of work.
type mockTx struct {
	store   *mockStore
	entries map[uint64]*entry.Entry
	seq     uint64
}

func (t *mockTx) Entries() secondary.EntryRepository    { return t }
func (t *mockTx) Sequence() secondary.SequenceGenerator { return t }

func (t *mockTx) Get(ctx context.Context, id uint64) (*entry.Entry, error) {
	if t.store.getErr != nil {
		return nil, t.store.getErr
	}
	e, ok := t.entries[id]
	if !ok {
		return nil, entry.NotFoundError(id)
	}
	return e.Clone(), nil
}

func (t *mockTx) Put(ctx context.Context, e *entry.Entry) error {
	if t.store.putErr != nil {
		return t.store.putErr
	}
	t.entries[e.ID] = e.Clone()
	return nil
}

func (t *mockTx) Delete(ctx context.Context, id uint64) error {
	delete(t.entries, id)
	return nil
}

func (t *mockTx) Scan(ctx context.Context, startAfter *uint64) (secondary.EntryIterator, error) {
	if t.store.scanErr != nil {
		return nil, t.store.scanErr
	}
	ids := make([]uint64, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var items []*entry.Entry
	for _, id := range ids {
		if startAfter != nil && id <= *startAfter {
			continue
		}
		items = append(items, t.entries[id].Clone())
	}
	return &mockIterator{items: items, pos: -1}, nil
}

func (t *mockTx) Next(ctx context.Context) (uint64, error) {
	if t.store.nextErr != nil {
		return 0, t.store.nextErr
	}
	t.seq++
	return t.seq, nil
}

func (t *mockTx) Current(ctx context.Context) (uint64, error) {
	return t.seq, nil
}

type mockIterator struct {
	items  []*entry.Entry
	pos    int
	pulled int
}

func (it *mockIterator) Next() bool {
	if it.pos+1 >= len(it.items) {
		return false
	}
	it.pos++
	it.pulled++
	return true
}

func (it *mockIterator) Entry() *entry.Entry { return it.items[it.pos] }
func (it *mockIterator) Err() error          { return nil }
func (it *mockIterator) Close() error        { return nil }

// mockLogWriter records audit calls.
type mockLogWriter struct {
	creates []string
	updates []string
	deletes []string
	err     error
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.creates = append(m.creates, entityType+":"+entityID)
	return m.err
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.updates = append(m.updates, entityID+":"+fieldName+":"+oldValue+"->"+newValue)
	return m.err
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.deletes = append(m.deletes, entityType+":"+entityID)
	return m.err
}
