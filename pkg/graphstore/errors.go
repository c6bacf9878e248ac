package graphstore

import (
	"errors"
	"fmt"
)

// Sentinel error kinds returned by graphstore operations. Absence — a
// missing vertex, edge, or property — is never one of these; it is
// represented as a zero value plus ok=false (or just ok=false for the
// property Get methods) with a nil error, per the storage core's "absence is
// a value, not an error" rule.
var (
	// ErrStoreIO wraps a failure reported by the underlying kv.Engine
	// (disk error, closed handle, and so on).
	ErrStoreIO = errors.New("graphstore: store i/o error")

	// ErrJSONEncode is returned when a property value cannot be
	// serialized to JSON.
	ErrJSONEncode = errors.New("graphstore: json encode error")

	// ErrJSONDecode is returned when a stored property value cannot be
	// parsed as JSON.
	ErrJSONDecode = errors.New("graphstore: json decode error")
)

// storeIOf wraps an underlying kv.Engine error as an ErrStoreIO, preserving
// both the original error and the sentinel for errors.Is.
func storeIOf(context string, err error) error {
	return fmt.Errorf("graphstore: %s: %w: %w", context, err, ErrStoreIO)
}
