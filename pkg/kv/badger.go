package kv

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerEngine is the production Engine implementation, backed by
// BadgerDB. BadgerDB has no native concept of column families, so
// BadgerEngine emulates one by prefixing every key with the family's byte,
// the same scheme the original node/edge/index key layout used.
type BadgerEngine struct {
	db *badger.DB
}

// BadgerOptions configures a BadgerEngine.
type BadgerOptions struct {
	// DataDir is the directory BadgerDB stores its files in. Required
	// unless InMemory is set.
	DataDir string

	// InMemory runs BadgerDB entirely in RAM, with nothing written to
	// disk. Used by tests that want real BadgerDB semantics without disk
	// I/O.
	InMemory bool

	// SyncWrites forces an fsync after every write for maximum
	// durability, at a throughput cost.
	SyncWrites bool

	// LowMemory reduces BadgerDB's internal buffer sizes, trading
	// throughput for a smaller memory footprint.
	LowMemory bool

	// Logger receives BadgerDB's internal log output. If nil, BadgerDB's
	// logging is silenced.
	Logger badger.Logger
}

// NewBadgerEngine opens a persistent BadgerEngine rooted at dataDir with
// default options.
func NewBadgerEngine(dataDir string) (*BadgerEngine, error) {
	return NewBadgerEngineWithOptions(BadgerOptions{DataDir: dataDir})
}

// NewBadgerEngineInMemory opens a BadgerEngine with InMemory set, for tests
// that want BadgerDB's exact transaction and iteration semantics without
// touching disk.
func NewBadgerEngineInMemory() (*BadgerEngine, error) {
	return NewBadgerEngineWithOptions(BadgerOptions{InMemory: true})
}

// NewBadgerEngineWithOptions opens a BadgerEngine with custom options.
func NewBadgerEngineWithOptions(opts BadgerOptions) (*BadgerEngine, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	if opts.LowMemory {
		badgerOpts = badgerOpts.
			WithMemTableSize(16 << 20).
			WithValueLogFileSize(64 << 20).
			WithNumMemtables(2).
			WithNumLevelZeroTables(2).
			WithNumLevelZeroTablesStall(4).
			WithBlockCacheSize(32 << 20).
			WithIndexCacheSize(16 << 20)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to open badger: %w", err)
	}
	return &BadgerEngine{db: db}, nil
}

// prefixedKey prepends cf to key. BadgerEngine's on-disk key for (cf, key)
// is always this concatenation; nothing else builds a Badger key.
func prefixedKey(cf ColumnFamily, key []byte) []byte {
	out := make([]byte, 0, 1+len(key))
	out = append(out, byte(cf))
	out = append(out, key...)
	return out
}

func (e *BadgerEngine) Get(cf ColumnFamily, key []byte) ([]byte, error) {
	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(prefixedKey(cf, key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrKeyNotFound
			}
			return err
		}
		return item.Value(func(v []byte) error {
			value = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (e *BadgerEngine) Set(cf ColumnFamily, key, value []byte) error {
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(prefixedKey(cf, key), value)
	})
}

func (e *BadgerEngine) Delete(cf ColumnFamily, key []byte) error {
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(prefixedKey(cf, key))
	})
}

func (e *BadgerEngine) NewIterator(cf ColumnFamily) Iterator {
	txn := e.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte{byte(cf)}
	it := txn.NewIterator(opts)
	it.Rewind()
	return &badgerIterator{cf: cf, txn: txn, it: it}
}

func (e *BadgerEngine) NewWriteBatch() WriteBatch {
	return &badgerWriteBatch{db: e.db}
}

func (e *BadgerEngine) Close() error {
	return e.db.Close()
}

// badgerIterator adapts a badger.Iterator, stripping the column-family
// prefix byte so callers see the same keys they passed to Set.
type badgerIterator struct {
	cf  ColumnFamily
	txn *badger.Txn
	it  *badger.Iterator
}

func (i *badgerIterator) Seek(prefix []byte) {
	i.it.Seek(prefixedKey(i.cf, prefix))
}

func (i *badgerIterator) ValidForPrefix(prefix []byte) bool {
	return i.it.ValidForPrefix(prefixedKey(i.cf, prefix))
}

func (i *badgerIterator) Next() {
	i.it.Next()
}

func (i *badgerIterator) Key() []byte {
	full := i.it.Item().KeyCopy(nil)
	return full[1:]
}

func (i *badgerIterator) Value() ([]byte, error) {
	return i.it.Item().ValueCopy(nil)
}

func (i *badgerIterator) Close() {
	i.it.Close()
	i.txn.Discard()
}

// badgerWriteBatch stages operations and applies them inside a single
// BadgerDB transaction on Commit, giving the all-or-nothing guarantee the
// graphstore managers need for cascading writes.
type badgerWriteBatch struct {
	db  *badger.DB
	ops []badgerOp
}

type badgerOp struct {
	kind  BatchOpType
	key   []byte
	value []byte
}

func (b *badgerWriteBatch) Set(cf ColumnFamily, key, value []byte) WriteBatch {
	b.ops = append(b.ops, badgerOp{kind: BatchSet, key: prefixedKey(cf, key), value: value})
	return b
}

func (b *badgerWriteBatch) Delete(cf ColumnFamily, key []byte) WriteBatch {
	b.ops = append(b.ops, badgerOp{kind: BatchDelete, key: prefixedKey(cf, key)})
	return b
}

func (b *badgerWriteBatch) Size() int {
	return len(b.ops)
}

func (b *badgerWriteBatch) Commit() error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, op := range b.ops {
			var err error
			switch op.kind {
			case BatchSet:
				err = txn.Set(op.key, op.value)
			case BatchDelete:
				err = txn.Delete(op.key)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
