package graphstore

import (
	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/keycodec"
	"github.com/vtxgraph/storecore/pkg/kv"
)

// VertexManager owns the vertices:v1 column family: one row per vertex,
// keyed by UUID and valued with its type.
type VertexManager struct {
	engine         kv.Engine
	forwardRanges  *EdgeRangeManager
	reversedRanges *EdgeRangeManager
	edges          *EdgeManager
	properties     *VertexPropertyManager
}

// NewVertexManager returns a manager bound to engine, cascading deletes
// through the given range managers, edge manager, and property manager.
// Store wires these consistently (see store.go).
func NewVertexManager(engine kv.Engine, forwardRanges, reversedRanges *EdgeRangeManager, edges *EdgeManager, properties *VertexPropertyManager) *VertexManager {
	return &VertexManager{
		engine:         engine,
		forwardRanges:  forwardRanges,
		reversedRanges: reversedRanges,
		edges:          edges,
		properties:     properties,
	}
}

func vertexKey(id uuid.UUID) []byte {
	return keycodec.NewBuilder(16).UUID(id).Bytes()
}

// Exists reports whether a vertex row exists for id.
func (m *VertexManager) Exists(id uuid.UUID) (bool, error) {
	_, ok, err := m.Get(id)
	return ok, err
}

// Get returns the vertex's type. ok is false and err is nil if the vertex
// does not exist.
func (m *VertexManager) Get(id uuid.UUID) (vertexType string, ok bool, err error) {
	raw, err := m.engine.Get(cfVertices, vertexKey(id))
	if err == kv.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeIOf("get vertex", err)
	}
	return string(keycodec.NewCursor(raw).Type()), true, nil
}

// Create stages a put of the vertex row onto batch. This is an upsert: a
// later Create for the same id silently overwrites the stored type, and no
// existence check is performed — callers enforce uniqueness themselves if
// they need it.
func (m *VertexManager) Create(batch kv.WriteBatch, v Vertex) {
	value := keycodec.NewBuilder(1 + len(v.Type)).Type(keycodec.Type(v.Type)).Bytes()
	batch.Set(cfVertices, vertexKey(v.ID), value)
}

// IterateForRange performs a forward scan of the vertices column family
// starting at id, through the end of the family. There is no upper bound
// baked in, and the scan is not lazy: it always reads every row from id to
// the end of the family and returns them all in one slice, so a caller
// cannot stop it early.
func (m *VertexManager) IterateForRange(id uuid.UUID) ([]Vertex, error) {
	it := m.engine.NewIterator(cfVertices)
	defer it.Close()

	var out []Vertex
	for it.Seek(vertexKey(id)); it.ValidForPrefix(nil); it.Next() {
		cur := keycodec.NewCursor(it.Key())
		vid := cur.UUID()
		value, err := it.Value()
		if err != nil {
			return out, storeIOf("iterate vertices", err)
		}
		vtype := keycodec.NewCursor(value).Type()
		out = append(out, Vertex{ID: vid, Type: string(vtype)})
	}
	return out, nil
}

// Delete stages deletion of the vertex row, then discovers and stages
// deletion of every row it owns elsewhere: its vertex-property rows, and
// — by scanning both range families for rows it owns — every edge
// incident to it (forward edges where it is outbound, reversed edges
// where it is inbound), cascading each through EdgeManager.Delete so the
// edge row, its range-row pair, and its edge-property rows all disappear
// together. The cascade is breadth-one: deleting a vertex never
// transitively deletes a neighboring vertex.
func (m *VertexManager) Delete(batch kv.WriteBatch, id uuid.UUID) error {
	batch.Delete(cfVertices, vertexKey(id))

	if err := m.properties.deleteAllForOwner(batch, id); err != nil {
		return err
	}

	forwardOwned, err := m.forwardRanges.deleteAllForOwner(batch, id)
	if err != nil {
		return err
	}
	for _, e := range forwardOwned {
		// id is outbound in the forward family.
		if err := m.edges.Delete(batch, e.First, e.Type, e.Second, e.UpdateDateTime); err != nil {
			return err
		}
	}

	reversedOwned, err := m.reversedRanges.deleteAllForOwner(batch, id)
	if err != nil {
		return err
	}
	for _, e := range reversedOwned {
		// id is inbound in the reversed family; e.First=id, e.Second=outbound.
		if err := m.edges.Delete(batch, e.Second, e.Type, e.First, e.UpdateDateTime); err != nil {
			return err
		}
	}

	return nil
}
