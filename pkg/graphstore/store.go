package graphstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/keycodec"
	"github.com/vtxgraph/storecore/pkg/kv"
)

// Store bundles the five index managers behind one handle that owns the
// kv.Engine and binds each manager to its column family once. This is the entry point
// higher-level code (a query engine, import tooling) is expected to
// construct and hold for the lifetime of the process.
type Store struct {
	Vertices         *VertexManager
	Edges            *EdgeManager
	ForwardRanges    *EdgeRangeManager
	ReversedRanges   *EdgeRangeManager
	VertexProperties *VertexPropertyManager
	EdgeProperties   *EdgePropertyManager

	engine kv.Engine
	clock  Clock
	ids    IDGenerator
}

// NewStore wires the five managers against engine, using clock for edge
// timestamps when callers use the CreateEdge convenience method (and
// BulkCreateEdges for edges without a timestamp), and ids for vertex
// identifier generation when callers use CreateVertex.
func NewStore(engine kv.Engine, clock Clock, ids IDGenerator) *Store {
	forwardRanges := NewEdgeRangeManager(engine, cfEdgeRanges)
	reversedRanges := NewEdgeRangeManager(engine, cfReversedEdgeRanges)
	edgeProperties := NewEdgePropertyManager(engine)
	vertexProperties := NewVertexPropertyManager(engine)
	edges := NewEdgeManager(engine, forwardRanges, reversedRanges, edgeProperties)
	vertices := NewVertexManager(engine, forwardRanges, reversedRanges, edges, vertexProperties)

	return &Store{
		Vertices:         vertices,
		Edges:            edges,
		ForwardRanges:    forwardRanges,
		ReversedRanges:   reversedRanges,
		VertexProperties: vertexProperties,
		EdgeProperties:   edgeProperties,
		engine:           engine,
		clock:            clock,
		ids:              ids,
	}
}

// NewBatch returns a fresh write batch against the store's engine.
func (s *Store) NewBatch() kv.WriteBatch {
	return s.engine.NewWriteBatch()
}

// CreateVertex generates a new id via the store's IDGenerator, stages its
// creation onto batch, and returns the vertex.
func (s *Store) CreateVertex(batch kv.WriteBatch, vertexType string) Vertex {
	v := Vertex{ID: s.ids.NewID(), Type: vertexType}
	s.Vertices.Create(batch, v)
	return v
}

// DeleteVertex removes the vertex row, all its vertex-property rows, every
// edge incident to it, and every range row mentioning it in either family.
// It exists only to keep the five-manager wiring in one place; it contains
// no logic beyond VertexManager.Delete.
func (s *Store) DeleteVertex(batch kv.WriteBatch, id uuid.UUID) error {
	return s.Vertices.Delete(batch, id)
}

// CreateEdge sets a new edge stamped with the store's Clock, equivalent to
// SetEdge(batch, outbound, edgeType, inbound, clock.Now()).
func (s *Store) CreateEdge(batch kv.WriteBatch, outbound uuid.UUID, edgeType string, inbound uuid.UUID) (time.Time, error) {
	now := s.clock.Now()
	if err := s.Edges.Set(batch, outbound, edgeType, inbound, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// SetEdge upserts an edge at the given timestamp, exposed on Store for
// symmetry with CreateEdge/DeleteVertex.
func (s *Store) SetEdge(batch kv.WriteBatch, outbound uuid.UUID, edgeType string, inbound uuid.UUID, dt time.Time) error {
	return s.Edges.Set(batch, outbound, edgeType, inbound, dt)
}

// validateType panics with a keycodec.SchemaViolation if t cannot be encoded
// as a Type component, by running it through the same key encoder Create
// itself uses.
func validateType(t string) {
	keycodec.NewBuilder(1 + len(t)).Type(keycodec.Type(t))
}

// BulkCreateVertices stages a Create for every vertex onto batch. Every
// vertex's type is validated before any Set is staged, so a panic partway
// through validation never leaves a prefix of the input staged and the rest
// dropped. This is sugar over repeated Vertices.Create calls: it introduces
// no new index or invariant, only a pre-validation pass.
func (s *Store) BulkCreateVertices(batch kv.WriteBatch, vertices []Vertex) {
	for _, v := range vertices {
		validateType(v.Type)
	}
	for _, v := range vertices {
		s.Vertices.Create(batch, v)
	}
}

// BulkCreateEdges stages a Set for every edge onto batch, using each edge's
// UpdateDateTime if non-zero or the store's clock otherwise. As with
// BulkCreateVertices, every edge's type is validated before any write is
// staged.
func (s *Store) BulkCreateEdges(batch kv.WriteBatch, edges []Edge) error {
	for _, e := range edges {
		validateType(e.Type)
	}
	for _, e := range edges {
		dt := e.UpdateDateTime
		if dt.IsZero() {
			dt = s.clock.Now()
		}
		if err := s.Edges.Set(batch, e.Outbound, e.Type, e.Inbound, dt); err != nil {
			return err
		}
	}
	return nil
}
