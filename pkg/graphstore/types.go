// Package graphstore implements the index managers that make up a
// property-graph storage core: VertexManager, EdgeManager, two
// EdgeRangeManager instances (forward and reversed traversal), and the
// VertexProperty/EdgeProperty managers. Each owns one column family in a
// kv.Engine; callers stage mutations onto a shared kv.WriteBatch so that
// composite updates spanning several managers commit atomically.
package graphstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/kv"
)

// Column families, one per manager, matching the stable `:v1` names in the
// external interface contract. Badger has no native notion of a column
// family; kv.Engine emulates one per distinct byte value here.
const (
	cfVertices kv.ColumnFamily = iota + 1
	cfEdges
	cfEdgeRanges
	cfReversedEdgeRanges
	cfVertexProperties
	cfEdgeProperties
)

// Vertex is a graph node: a UUID identity and one type label.
type Vertex struct {
	ID   uuid.UUID
	Type string
}

// Edge is a typed directed relation between two vertices, carrying the
// wall-clock instant it was last set.
type Edge struct {
	Outbound       uuid.UUID
	Type           string
	Inbound        uuid.UUID
	UpdateDateTime time.Time
}

// IDGenerator produces new vertex identifiers (edges are identified by
// their (outbound, type, inbound) triple and need none). The default
// implementation wraps google/uuid; tests may substitute a deterministic
// generator.
type IDGenerator interface {
	NewID() uuid.UUID
}

// UUIDGenerator is the production IDGenerator, generating random (version 4)
// UUIDs via github.com/google/uuid.
type UUIDGenerator struct{}

// NewID returns a new random UUID.
func (UUIDGenerator) NewID() uuid.UUID {
	return uuid.New()
}

// Clock supplies the wall-clock instants stored as edge update_datetime
// values. The caller is responsible for passing monotonically increasing
// instants per (outbound, type, inbound) across successive sets; this layer
// does not enforce it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, wrapping time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock that always returns the same instant, useful for
// tests that need deterministic update_datetime values. Advance mutates the
// returned instant for the next call.
type FixedClock struct {
	instant time.Time
}

// NewFixedClock returns a FixedClock starting at instant.
func NewFixedClock(instant time.Time) *FixedClock {
	return &FixedClock{instant: instant}
}

// Now returns the clock's current instant.
func (c *FixedClock) Now() time.Time {
	return c.instant
}

// Advance moves the clock forward by d and returns the new instant.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.instant = c.instant.Add(d)
	return c.instant
}
