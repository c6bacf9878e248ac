// Package kv defines the ordered key-value abstraction the graph store's
// managers are built on: column families, atomic write batches, and
// prefix-ordered iteration. package graphstore depends only on this
// interface, never on a specific engine, so it can run against BadgerEngine
// in production and MemoryEngine in tests without any code changes.
package kv

import "errors"

// ColumnFamily is a logical keyspace within an Engine. Engines that don't
// natively support column families (BadgerEngine) emulate one by prefixing
// every key with the family's byte.
type ColumnFamily byte

// ErrKeyNotFound is returned by Get when no value exists for a key. Managers
// in package graphstore translate this into a (zero-value, false) "optional
// success" return rather than propagating it as an error.
var ErrKeyNotFound = errors.New("kv: key not found")

// Engine is the ordered key-value store every graphstore manager operates
// through. Implementations must preserve byte-lexicographic key ordering
// within each column family, since that ordering is what makes keycodec's
// range scans correct.
type Engine interface {
	// Get returns the value stored for key in cf, or ErrKeyNotFound if
	// absent.
	Get(cf ColumnFamily, key []byte) ([]byte, error)

	// Set stores value for key in cf as a single-operation write,
	// overwriting any existing value.
	Set(cf ColumnFamily, key, value []byte) error

	// Delete removes key from cf as a single-operation write. Deleting an
	// absent key is not an error.
	Delete(cf ColumnFamily, key []byte) error

	// NewIterator returns an Iterator over cf seeked to the first key
	// greater than or equal to the empty prefix. Callers normally call
	// Seek immediately to position it.
	NewIterator(cf ColumnFamily) Iterator

	// NewWriteBatch returns a WriteBatch for accumulating writes that must
	// commit atomically.
	NewWriteBatch() WriteBatch

	// Close releases the engine's resources. No further calls are valid
	// after Close returns.
	Close() error
}

// Iterator walks keys within a single column family in ascending
// byte-lexicographic order. An Iterator must be closed after use.
type Iterator interface {
	// Seek positions the iterator at the first key greater than or equal
	// to prefix.
	Seek(prefix []byte)

	// ValidForPrefix reports whether the iterator is positioned at an entry
	// whose key has the given prefix. Iteration over a range ends when
	// ValidForPrefix returns false for that range's prefix.
	ValidForPrefix(prefix []byte) bool

	// Next advances the iterator to the following key.
	Next()

	// Key returns the current entry's key. The returned slice is only
	// valid until the next call to Next or Close.
	Key() []byte

	// Value returns the current entry's value, copied so it remains
	// valid after the iterator advances or closes.
	Value() ([]byte, error)

	// Close releases the iterator's resources.
	Close()
}

// BatchOpType identifies the kind of operation recorded in a WriteBatch.
type BatchOpType int

const (
	// BatchSet records a key/value write.
	BatchSet BatchOpType = iota
	// BatchDelete records a key deletion.
	BatchDelete
)

// WriteBatch accumulates Set and Delete operations across one or more
// column families for atomic commit. All the managers that cascade writes
// across column families (VertexManager.Delete, EdgeManager.Set, and so on)
// stage every write of the cascade onto one caller-supplied WriteBatch, which
// the caller commits once, so a crash mid-cascade never leaves a column
// family partially updated relative to the others.
type WriteBatch interface {
	// Set stages a write; it is not visible to readers until Commit
	// succeeds.
	Set(cf ColumnFamily, key, value []byte) WriteBatch

	// Delete stages a deletion; it is not visible to readers until Commit
	// succeeds.
	Delete(cf ColumnFamily, key []byte) WriteBatch

	// Size reports the number of operations staged so far.
	Size() int

	// Commit applies every staged operation atomically. A WriteBatch must
	// not be reused after Commit is called.
	Commit() error
}
