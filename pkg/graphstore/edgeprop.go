package graphstore

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/keycodec"
	"github.com/vtxgraph/storecore/pkg/kv"
)

// EdgePropertyManager owns the edge_properties:v1 column family: JSON
// property values keyed by (outbound, type, inbound, name).
type EdgePropertyManager struct {
	engine kv.Engine
}

// NewEdgePropertyManager returns a manager bound to engine.
func NewEdgePropertyManager(engine kv.Engine) *EdgePropertyManager {
	return &EdgePropertyManager{engine: engine}
}

func edgePropertyKey(outbound uuid.UUID, edgeType string, inbound uuid.UUID, name string) []byte {
	return keycodec.NewBuilder(16+1+len(edgeType)+16+len(name)).
		UUID(outbound).Type(keycodec.Type(edgeType)).UUID(inbound).UnsizedString(name).Bytes()
}

func edgePropertyPrefix(outbound uuid.UUID, edgeType string, inbound uuid.UUID) []byte {
	return keycodec.NewBuilder(16+1+len(edgeType)+16).
		UUID(outbound).Type(keycodec.Type(edgeType)).UUID(inbound).Bytes()
}

// Get returns the decoded JSON value stored for (outbound, type, inbound,
// name). ok is false and err is nil if no such property exists.
func (m *EdgePropertyManager) Get(outbound uuid.UUID, edgeType string, inbound uuid.UUID, name string, out any) (ok bool, err error) {
	raw, err := m.engine.Get(cfEdgeProperties, edgePropertyKey(outbound, edgeType, inbound, name))
	if err == kv.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, storeIOf("get edge property", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: %w", ErrJSONDecode, err)
	}
	return true, nil
}

// Set stages a put of (outbound, type, inbound, name) = json(value) onto
// batch.
func (m *EdgePropertyManager) Set(batch kv.WriteBatch, outbound uuid.UUID, edgeType string, inbound uuid.UUID, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJSONEncode, err)
	}
	batch.Set(cfEdgeProperties, edgePropertyKey(outbound, edgeType, inbound, name), raw)
	return nil
}

// Delete stages a deletion of (outbound, type, inbound, name) onto batch.
func (m *EdgePropertyManager) Delete(batch kv.WriteBatch, outbound uuid.UUID, edgeType string, inbound uuid.UUID, name string) {
	batch.Delete(cfEdgeProperties, edgePropertyKey(outbound, edgeType, inbound, name))
}

// EdgePropertyEntry is one row yielded by IterateForOwner.
type EdgePropertyEntry struct {
	Name  string
	Value json.RawMessage
}

// IterateForOwner yields every property row owned by the edge
// (outbound, type, inbound), in key order.
func (m *EdgePropertyManager) IterateForOwner(outbound uuid.UUID, edgeType string, inbound uuid.UUID) ([]EdgePropertyEntry, error) {
	prefix := edgePropertyPrefix(outbound, edgeType, inbound)
	it := m.engine.NewIterator(cfEdgeProperties)
	defer it.Close()

	var entries []EdgePropertyEntry
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		cur := keycodec.NewCursor(it.Key())
		_ = cur.UUID()
		_ = cur.Type()
		_ = cur.UUID()
		name := cur.UnsizedString()
		value, err := it.Value()
		if err != nil {
			return entries, storeIOf("iterate edge properties", err)
		}
		entries = append(entries, EdgePropertyEntry{Name: name, Value: json.RawMessage(value)})
	}
	return entries, nil
}

// deleteAllForOwner stages deletion of every property row owned by the
// edge (outbound, type, inbound). Used by EdgeManager.Delete's cascade.
func (m *EdgePropertyManager) deleteAllForOwner(batch kv.WriteBatch, outbound uuid.UUID, edgeType string, inbound uuid.UUID) error {
	prefix := edgePropertyPrefix(outbound, edgeType, inbound)
	it := m.engine.NewIterator(cfEdgeProperties)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := append([]byte(nil), it.Key()...)
		batch.Delete(cfEdgeProperties, key)
	}
	return nil
}
