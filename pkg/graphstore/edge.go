package graphstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/keycodec"
	"github.com/vtxgraph/storecore/pkg/kv"
)

// EdgeManager owns the edges:v1 column family: one row per (outbound, type,
// inbound) triple, valued with its current update_datetime. Set and Delete
// keep this row consistent with the two EdgeRangeManager instances and the
// edge-property rows that belong to the same edge.
type EdgeManager struct {
	engine         kv.Engine
	forwardRanges  *EdgeRangeManager
	reversedRanges *EdgeRangeManager
	properties     *EdgePropertyManager
}

// NewEdgeManager returns a manager bound to engine, cascading range-row and
// property-row mutations through the given forward/reversed range managers
// and property manager. Store wires these consistently (see store.go);
// constructing an EdgeManager directly with mismatched managers is a
// caller error.
func NewEdgeManager(engine kv.Engine, forwardRanges, reversedRanges *EdgeRangeManager, properties *EdgePropertyManager) *EdgeManager {
	return &EdgeManager{
		engine:         engine,
		forwardRanges:  forwardRanges,
		reversedRanges: reversedRanges,
		properties:     properties,
	}
}

func edgeKey(outbound uuid.UUID, edgeType string, inbound uuid.UUID) []byte {
	return keycodec.NewBuilder(16+1+len(edgeType)+16).
		UUID(outbound).Type(keycodec.Type(edgeType)).UUID(inbound).Bytes()
}

// Get returns the edge's current update_datetime. ok is false and err is
// nil if the edge does not exist.
func (m *EdgeManager) Get(outbound uuid.UUID, edgeType string, inbound uuid.UUID) (dt time.Time, ok bool, err error) {
	raw, err := m.engine.Get(cfEdges, edgeKey(outbound, edgeType, inbound))
	if err == kv.ErrKeyNotFound {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, storeIOf("get edge", err)
	}
	return decodeEdgeValue(raw), true, nil
}

func decodeEdgeValue(raw []byte) time.Time {
	dt := keycodec.NewCursor(raw).DateTime()
	return time.Unix(0, dt.UnixNano()).UTC()
}

func encodeEdgeValue(dt time.Time) []byte {
	return keycodec.NewBuilder(8).DateTime(keycodec.DateTimeFromUnixNano(dt.UnixNano())).Bytes()
}

// Set is an upsert: if the edge already exists, its stale range rows (at
// the old timestamp) are staged for deletion before the new edge row and
// new range rows are staged. Read failures while looking up the prior
// timestamp surface to the caller; the batch should then be discarded
// rather than committed.
func (m *EdgeManager) Set(batch kv.WriteBatch, outbound uuid.UUID, edgeType string, inbound uuid.UUID, newDT time.Time) error {
	oldDT, existed, err := m.Get(outbound, edgeType, inbound)
	if err != nil {
		return err
	}
	if existed {
		m.forwardRanges.Delete(batch, outbound, edgeType, oldDT, inbound)
		m.reversedRanges.Delete(batch, inbound, edgeType, oldDT, outbound)
	}

	batch.Set(cfEdges, edgeKey(outbound, edgeType, inbound), encodeEdgeValue(newDT))
	m.forwardRanges.Set(batch, outbound, edgeType, newDT, inbound)
	m.reversedRanges.Set(batch, inbound, edgeType, newDT, outbound)
	return nil
}

// Delete stages deletion of the edge row, both range rows at dt, and every
// edge-property row belonging to the edge. dt must be the edge's current
// timestamp — typically obtained from the range row being walked by the
// caller — since Delete does not look it up itself; passing a stale dt
// leaves orphan range rows behind.
func (m *EdgeManager) Delete(batch kv.WriteBatch, outbound uuid.UUID, edgeType string, inbound uuid.UUID, dt time.Time) error {
	batch.Delete(cfEdges, edgeKey(outbound, edgeType, inbound))
	m.forwardRanges.Delete(batch, outbound, edgeType, dt, inbound)
	m.reversedRanges.Delete(batch, inbound, edgeType, dt, outbound)
	return m.properties.deleteAllForOwner(batch, outbound, edgeType, inbound)
}
