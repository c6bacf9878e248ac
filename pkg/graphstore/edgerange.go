package graphstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/keycodec"
	"github.com/vtxgraph/storecore/pkg/kv"
)

// EdgeRangeEntry is one key-only row in a range index: (first, type, dt,
// second). The value is always empty; the row exists purely to support
// prefix-bounded, time-ordered traversal.
type EdgeRangeEntry struct {
	First          uuid.UUID
	Type           string
	UpdateDateTime time.Time
	Second         uuid.UUID
}

// EdgeRangeManager owns one of the two symmetric range column families.
// Two instances are constructed against cfEdgeRanges and
// cfReversedEdgeRanges respectively; their logic is identical, only the
// backing column family differs. The forward instance stores
// first=outbound, second=inbound; the reversed instance stores
// first=inbound, second=outbound.
type EdgeRangeManager struct {
	engine kv.Engine
	cf     kv.ColumnFamily
}

// NewEdgeRangeManager returns a manager bound to engine and cf. Callers
// construct one against cfEdgeRanges (forward) and one against
// cfReversedEdgeRanges (reversed); Store wires both (see store.go).
func NewEdgeRangeManager(engine kv.Engine, cf kv.ColumnFamily) *EdgeRangeManager {
	return &EdgeRangeManager{engine: engine, cf: cf}
}

func rangeKey(first uuid.UUID, edgeType string, dt time.Time, second uuid.UUID) []byte {
	return keycodec.NewBuilder(16+1+len(edgeType)+8+16).
		UUID(first).
		Type(keycodec.Type(edgeType)).
		DateTime(keycodec.DateTimeFromUnixNano(dt.UnixNano())).
		UUID(second).
		Bytes()
}

func rangeOwnerPrefix(first uuid.UUID) []byte {
	return keycodec.NewBuilder(16).UUID(first).Bytes()
}

func rangeTypePrefix(first uuid.UUID, edgeType string) []byte {
	return keycodec.NewBuilder(16+1+len(edgeType)).UUID(first).Type(keycodec.Type(edgeType)).Bytes()
}

func rangeSeekKey(first uuid.UUID, edgeType string, high keycodec.DateTime) []byte {
	return keycodec.NewBuilder(16+1+len(edgeType)+8).
		UUID(first).
		Type(keycodec.Type(edgeType)).
		DateTime(high).
		Bytes()
}

// Set stages a put of the key-only row (first, type, dt, second) onto
// batch.
func (m *EdgeRangeManager) Set(batch kv.WriteBatch, first uuid.UUID, edgeType string, dt time.Time, second uuid.UUID) {
	batch.Set(m.cf, rangeKey(first, edgeType, dt, second), []byte{})
}

// Delete stages deletion of the exact row (first, type, dt, second) onto
// batch.
func (m *EdgeRangeManager) Delete(batch kv.WriteBatch, first uuid.UUID, edgeType string, dt time.Time, second uuid.UUID) {
	batch.Delete(m.cf, rangeKey(first, edgeType, dt, second))
}

// IterateForOwner seeks to the (first) prefix and yields every row that
// begins with it, across all types and timestamps.
func (m *EdgeRangeManager) IterateForOwner(first uuid.UUID) ([]EdgeRangeEntry, error) {
	prefix := rangeOwnerPrefix(first)
	return m.scanPrefix(prefix, first)
}

// IterateForRange walks rows for first in reverse-chronological order,
// optionally narrowed to one edge type and bounded above by high:
//
//   - If edgeType is non-empty: seeks to (first, edgeType, high) — high
//     defaults to keycodec.MaxDateTime when zero — and yields while the
//     (first, edgeType) prefix holds. Because DateTime is encoded
//     descending, this walks newest-to-oldest, bounded above by high.
//   - If edgeType is empty: seeks to the (first) prefix and yields every
//     row regardless of type, filtering to update_datetime <= high in
//     memory when high is non-zero (the key prefix alone cannot bound dt
//     once type varies row to row).
func (m *EdgeRangeManager) IterateForRange(first uuid.UUID, edgeType string, high time.Time) ([]EdgeRangeEntry, error) {
	if edgeType != "" {
		seekHigh := keycodec.MaxDateTime
		if !high.IsZero() {
			seekHigh = keycodec.DateTimeFromUnixNano(high.UnixNano())
		}
		prefix := rangeTypePrefix(first, edgeType)
		seek := rangeSeekKey(first, edgeType, seekHigh)
		return m.scanFrom(seek, prefix, first)
	}

	entries, err := m.IterateForOwner(first)
	if err != nil {
		return nil, err
	}
	if high.IsZero() {
		return entries, nil
	}
	highDT := keycodec.DateTimeFromUnixNano(high.UnixNano())
	filtered := entries[:0]
	for _, e := range entries {
		entryDT := keycodec.DateTimeFromUnixNano(e.UpdateDateTime.UnixNano())
		if !highDT.Before(entryDT) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (m *EdgeRangeManager) scanPrefix(prefix []byte, first uuid.UUID) ([]EdgeRangeEntry, error) {
	it := m.engine.NewIterator(m.cf)
	defer it.Close()

	var entries []EdgeRangeEntry
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		entries = append(entries, decodeRangeEntry(it.Key(), first))
	}
	return entries, nil
}

func (m *EdgeRangeManager) scanFrom(seek, prefix []byte, first uuid.UUID) ([]EdgeRangeEntry, error) {
	it := m.engine.NewIterator(m.cf)
	defer it.Close()

	var entries []EdgeRangeEntry
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		entries = append(entries, decodeRangeEntry(it.Key(), first))
	}
	return entries, nil
}

func decodeRangeEntry(key []byte, first uuid.UUID) EdgeRangeEntry {
	cur := keycodec.NewCursor(key)
	_ = cur.UUID() // first, already known by caller
	t := cur.Type()
	dt := cur.DateTime()
	second := cur.UUID()
	return EdgeRangeEntry{
		First:          first,
		Type:           string(t),
		UpdateDateTime: time.Unix(0, dt.UnixNano()).UTC(),
		Second:         second,
	}
}

// deleteAllForOwner stages deletion of every row in this column family
// owned by first. Used by VertexManager.Delete's cascade, which must
// discover and remove both the forward and reversed range rows mentioning
// the deleted vertex before cascading into EdgeManager.Delete for the
// owning edges.
func (m *EdgeRangeManager) deleteAllForOwner(batch kv.WriteBatch, first uuid.UUID) ([]EdgeRangeEntry, error) {
	entries, err := m.IterateForOwner(first)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		m.Delete(batch, e.First, e.Type, e.UpdateDateTime, e.Second)
	}
	return entries, nil
}
