package graphstore

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/keycodec"
	"github.com/vtxgraph/storecore/pkg/kv"
)

// VertexPropertyManager owns the vertex_properties:v1 column family: JSON
// property values keyed by (vertex, name).
type VertexPropertyManager struct {
	engine kv.Engine
}

// NewVertexPropertyManager returns a manager bound to engine.
func NewVertexPropertyManager(engine kv.Engine) *VertexPropertyManager {
	return &VertexPropertyManager{engine: engine}
}

func vertexPropertyKey(vertex uuid.UUID, name string) []byte {
	return keycodec.NewBuilder(16+len(name)).UUID(vertex).UnsizedString(name).Bytes()
}

// Get returns the decoded JSON value stored for (vertex, name). ok is false
// and err is nil if no such property exists.
func (m *VertexPropertyManager) Get(vertex uuid.UUID, name string, out any) (ok bool, err error) {
	raw, err := m.engine.Get(cfVertexProperties, vertexPropertyKey(vertex, name))
	if err == kv.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, storeIOf("get vertex property", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: %w", ErrJSONDecode, err)
	}
	return true, nil
}

// Set stages a put of (vertex, name) = json(value) onto batch.
func (m *VertexPropertyManager) Set(batch kv.WriteBatch, vertex uuid.UUID, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJSONEncode, err)
	}
	batch.Set(cfVertexProperties, vertexPropertyKey(vertex, name), raw)
	return nil
}

// Delete stages a deletion of (vertex, name) onto batch. Deleting a
// nonexistent property is not an error.
func (m *VertexPropertyManager) Delete(batch kv.WriteBatch, vertex uuid.UUID, name string) {
	batch.Delete(cfVertexProperties, vertexPropertyKey(vertex, name))
}

// VertexPropertyEntry is one row yielded by IterateForOwner.
type VertexPropertyEntry struct {
	Name  string
	Value json.RawMessage
}

// IterateForOwner yields every property row owned by vertex, in key order.
// A JSON that fails to parse never occurs here since raw values are
// returned undecoded; callers that need typed values call Get per name or
// unmarshal Value themselves.
func (m *VertexPropertyManager) IterateForOwner(vertex uuid.UUID) ([]VertexPropertyEntry, error) {
	prefix := keycodec.NewBuilder(16).UUID(vertex).Bytes()
	it := m.engine.NewIterator(cfVertexProperties)
	defer it.Close()

	var entries []VertexPropertyEntry
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		cur := keycodec.NewCursor(it.Key())
		_ = cur.UUID()
		name := cur.UnsizedString()
		value, err := it.Value()
		if err != nil {
			return entries, storeIOf("iterate vertex properties", err)
		}
		entries = append(entries, VertexPropertyEntry{Name: name, Value: json.RawMessage(value)})
	}
	return entries, nil
}

// deleteAllForOwner stages deletion of every property row owned by vertex.
// Used by VertexManager.Delete's cascade.
func (m *VertexPropertyManager) deleteAllForOwner(batch kv.WriteBatch, vertex uuid.UUID) error {
	entries, err := m.IterateForOwner(vertex)
	if err != nil {
		return err
	}
	for _, e := range entries {
		m.Delete(batch, vertex, e.Name)
	}
	return nil
}
