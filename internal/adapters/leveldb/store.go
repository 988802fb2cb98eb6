// Package leveldb contains a LevelDB implementation of the entry store.
//
// Key layout:
//
//	e/<id as 8 bytes big-endian>  JSON-encoded entry
//	m/sequence                    last issued id, 8 bytes big-endian
//	m/contract                    JSON-encoded contract tag
//
// Big-endian ids make the byte order of the entry keys equal to id order.
package leveldb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/secondary"
)

var (
	entryPrefix = []byte("e/")
	sequenceKey = []byte("m/sequence")
	contractKey = []byte("m/contract")
)

func entryKey(id uint64) []byte {
	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint64(key[len(entryPrefix):], id)
	return key
}

// reader is satisfied by *leveldb.Transaction and *leveldb.Snapshot.
type reader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// Store implements secondary.Store on a LevelDB database.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) a database directory and runs setup.
func Open(path string, info secondary.ContractInfo) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return newStore(db, info)
}

// OpenStorage opens a database over an arbitrary goleveldb storage, such as
// storage.NewMemStorage, and runs setup.
func OpenStorage(stor storage.Storage, info secondary.ContractInfo) (*Store, error) {
	db, err := leveldb.Open(stor, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb: %w", err)
	}
	return newStore(db, info)
}

func newStore(db *leveldb.DB, info secondary.ContractInfo) (*Store, error) {
	s := &Store{db: db}
	if err := s.setup(info); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// setup writes the sequence and contract tag only if they are absent.
func (s *Store) setup(info secondary.ContractInfo) error {
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("failed to begin setup: %w", err)
	}
	defer tr.Discard()

	ok, err := tr.Has(sequenceKey, nil)
	if err != nil {
		return err
	}
	if !ok {
		if err := tr.Put(sequenceKey, encodeUint64(0), nil); err != nil {
			return fmt.Errorf("failed to initialize entry sequence: %w", err)
		}
	}

	ok, err = tr.Has(contractKey, nil)
	if err != nil {
		return err
	}
	if !ok {
		raw, err := json.Marshal(info)
		if err != nil {
			return err
		}
		if err := tr.Put(contractKey, raw, nil); err != nil {
			return fmt.Errorf("failed to record contract info: %w", err)
		}
	}
	return tr.Commit()
}

// Update runs fn inside a LevelDB transaction and commits only if fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx secondary.Tx) error) error {
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tr.Discard() // No-op after commit

	if err := fn(&levelTx{r: tr, w: tr}); err != nil {
		return err
	}
	if err := tr.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// View runs fn against a snapshot.
func (s *Store) View(ctx context.Context, fn func(tx secondary.Tx) error) error {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return fmt.Errorf("failed to acquire snapshot: %w", err)
	}
	defer snap.Release()

	return fn(&levelTx{r: snap})
}

// Info returns the contract tag recorded at setup.
func (s *Store) Info(ctx context.Context) (*secondary.ContractInfo, error) {
	raw, err := s.db.Get(contractKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("store has not been set up")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract info: %w", err)
	}
	info := &secondary.ContractInfo{}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("failed to decode contract info: %w", err)
	}
	return info, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// levelTx is one unit of work. w is nil inside View.
type levelTx struct {
	r reader
	w *leveldb.Transaction
}

func (t *levelTx) Entries() secondary.EntryRepository    { return (*entryTable)(t) }
func (t *levelTx) Sequence() secondary.SequenceGenerator { return (*sequence)(t) }

var errReadOnly = errors.New("write in read-only unit of work")

type entryTable levelTx

func (t *entryTable) Get(ctx context.Context, id uint64) (*entry.Entry, error) {
	raw, err := t.r.Get(entryKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, entry.NotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return decodeEntry(raw)
}

func (t *entryTable) Put(ctx context.Context, e *entry.Entry) error {
	if t.w == nil {
		return errReadOnly
	}
	if e.ID == 0 {
		return fmt.Errorf("invalid entry id 0")
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	return t.w.Put(entryKey(e.ID), raw, nil)
}

func (t *entryTable) Delete(ctx context.Context, id uint64) error {
	if t.w == nil {
		return errReadOnly
	}
	return t.w.Delete(entryKey(id), nil)
}

func (t *entryTable) Scan(ctx context.Context, startAfter *uint64) (secondary.EntryIterator, error) {
	rng := util.BytesPrefix(entryPrefix)
	if startAfter != nil {
		if *startAfter == math.MaxUint64 {
			return &levelIterator{}, nil
		}
		rng.Start = entryKey(*startAfter + 1)
	}
	return &levelIterator{it: t.r.NewIterator(rng, nil)}, nil
}

type sequence levelTx

func (s *sequence) Next(ctx context.Context) (uint64, error) {
	if s.w == nil {
		return 0, errReadOnly
	}
	current, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	if current == math.MaxUint64 {
		return 0, fmt.Errorf("entry sequence exhausted")
	}
	next := current + 1
	if err := s.w.Put(sequenceKey, encodeUint64(next), nil); err != nil {
		return 0, fmt.Errorf("failed to advance entry sequence: %w", err)
	}
	return next, nil
}

func (s *sequence) Current(ctx context.Context) (uint64, error) {
	raw, err := s.r.Get(sequenceKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, fmt.Errorf("entry sequence not initialized")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read entry sequence: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt entry sequence: %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// levelIterator decodes entries lazily from a LevelDB range iterator.
// A nil it is an empty sequence.
type levelIterator struct {
	it  iterator.Iterator
	cur *entry.Entry
	err error
}

func (l *levelIterator) Next() bool {
	if l.it == nil || l.err != nil {
		return false
	}
	if !l.it.Next() {
		l.cur = nil
		return false
	}
	e, err := decodeEntry(l.it.Value())
	if err != nil {
		l.err = err
		l.cur = nil
		return false
	}
	l.cur = e
	return true
}

func (l *levelIterator) Entry() *entry.Entry { return l.cur }

func (l *levelIterator) Err() error {
	if l.err != nil {
		return l.err
	}
	if l.it == nil {
		return nil
	}
	return l.it.Error()
}

func (l *levelIterator) Close() error {
	if l.it != nil {
		l.it.Release()
	}
	return nil
}

func decodeEntry(raw []byte) (*entry.Entry, error) {
	e := &entry.Entry{}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	return e, nil
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// Ensure Store implements the interface
var _ secondary.Store = (*Store)(nil)
