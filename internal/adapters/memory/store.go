// Package memory contains an in-process implementation of the entry store
// backed by a copy-on-write B-tree.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/btree"

	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/secondary"
)

const (
	treeDegree = 16
	scanBatch  = 32
)

var (
	errClosed   = errors.New("store is closed")
	errReadOnly = errors.New("write in read-only unit of work")
)

func lessByID(a, b *entry.Entry) bool {
	return a.ID < b.ID
}

// Store implements secondary.Store in memory. Update works on a clone of the
// tree and publishes it only when the unit of work succeeds.
type Store struct {
	mu       sync.RWMutex
	tree     *btree.BTreeG[*entry.Entry]
	sequence uint64
	info     secondary.ContractInfo
	closed   bool
}

// NewStore creates an empty store with the sequence at 0.
func NewStore(info secondary.ContractInfo) *Store {
	return &Store{
		tree: btree.NewG(treeDegree, lessByID),
		info: info,
	}
}

// Update runs fn against a private copy of the table and sequence.
func (s *Store) Update(ctx context.Context, fn func(tx secondary.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	tx := &memTx{tree: s.tree.Clone(), sequence: s.sequence}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.tree = tx.tree
	s.sequence = tx.sequence
	return nil
}

// View runs fn against the current table. Writes are rejected.
func (s *Store) View(ctx context.Context, fn func(tx secondary.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return fn(&memTx{tree: s.tree, sequence: s.sequence, readOnly: true})
}

// Info returns the contract tag the store was created with.
func (s *Store) Info(ctx context.Context) (*secondary.ContractInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	info := s.info
	return &info, nil
}

// Close drops the table.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tree = nil
	return nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return 0
	}
	return s.tree.Len()
}

type memTx struct {
	tree     *btree.BTreeG[*entry.Entry]
	sequence uint64
	readOnly bool
}

func (t *memTx) Entries() secondary.EntryRepository    { return (*entryTable)(t) }
func (t *memTx) Sequence() secondary.SequenceGenerator { return (*sequence)(t) }

// entryTable is the record table view of a unit of work.
type entryTable memTx

func (t *entryTable) Get(ctx context.Context, id uint64) (*entry.Entry, error) {
	e, ok := t.tree.Get(&entry.Entry{ID: id})
	if !ok {
		return nil, entry.NotFoundError(id)
	}
	return e.Clone(), nil
}

func (t *entryTable) Put(ctx context.Context, e *entry.Entry) error {
	if t.readOnly {
		return errReadOnly
	}
	if e.ID == 0 {
		return fmt.Errorf("invalid entry id 0")
	}
	t.tree.ReplaceOrInsert(e.Clone())
	return nil
}

func (t *entryTable) Delete(ctx context.Context, id uint64) error {
	if t.readOnly {
		return errReadOnly
	}
	t.tree.Delete(&entry.Entry{ID: id})
	return nil
}

func (t *entryTable) Scan(ctx context.Context, startAfter *uint64) (secondary.EntryIterator, error) {
	it := &treeIterator{tree: t.tree}
	if startAfter != nil {
		if *startAfter == math.MaxUint64 {
			it.done = true
		} else {
			it.pivot = *startAfter + 1
		}
	}
	return it, nil
}

type sequence memTx

func (s *sequence) Next(ctx context.Context) (uint64, error) {
	if s.readOnly {
		return 0, errReadOnly
	}
	if s.sequence == math.MaxUint64 {
		return 0, fmt.Errorf("entry sequence exhausted")
	}
	s.sequence++
	return s.sequence, nil
}

func (s *sequence) Current(ctx context.Context) (uint64, error) {
	return s.sequence, nil
}

// treeIterator walks the tree in batches, re-seeking from the last id seen,
// so only the entries the consumer pulls are copied.
type treeIterator struct {
	tree  *btree.BTreeG[*entry.Entry]
	pivot uint64
	buf   []*entry.Entry
	cur   *entry.Entry
	done  bool
}

func (it *treeIterator) Next() bool {
	if len(it.buf) == 0 && !it.done {
		it.fill()
	}
	if len(it.buf) == 0 {
		it.cur = nil
		return false
	}
	it.cur, it.buf = it.buf[0], it.buf[1:]
	return true
}

func (it *treeIterator) fill() {
	if it.tree == nil {
		it.done = true
		return
	}
	it.tree.AscendGreaterOrEqual(&entry.Entry{ID: it.pivot}, func(e *entry.Entry) bool {
		it.buf = append(it.buf, e.Clone())
		return len(it.buf) < scanBatch
	})
	if len(it.buf) < scanBatch {
		it.done = true
		return
	}
	last := it.buf[len(it.buf)-1].ID
	if last == math.MaxUint64 {
		it.done = true
		return
	}
	it.pivot = last + 1
}

func (it *treeIterator) Entry() *entry.Entry { return it.cur }
func (it *treeIterator) Err() error          { return nil }

func (it *treeIterator) Close() error {
	it.done = true
	it.buf = nil
	return nil
}

// Ensure Store implements the interface
var _ secondary.Store = (*Store)(nil)
