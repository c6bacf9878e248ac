package graphstore

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vtxgraph/storecore/pkg/kv"
)

func newTestStore() *Store {
	engine := kv.NewMemoryEngine()
	clock := NewFixedClock(time.Unix(1_700_000_000, 0).UTC())
	return NewStore(engine, clock, UUIDGenerator{})
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("uuid.Parse(%q): %v", s, err)
	}
	return id
}

func TestVertexCreateGetExists(t *testing.T) {
	s := newTestStore()
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")

	batch := s.NewBatch()
	s.Vertices.Create(batch, Vertex{ID: a, Type: "user"})
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	vtype, ok, err := s.Vertices.Get(a)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || vtype != "user" {
		t.Errorf("Get = (%q, %v), want (user, true)", vtype, ok)
	}

	exists, err := s.Vertices.Exists(a)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Errorf("Exists(A) = false, want true")
	}
}

func TestEdgeSetAndRangeSymmetry(t *testing.T) {
	s := newTestStore()
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	b := mustUUID(t, "22222222-2222-2222-2222-222222222222")
	dt := time.Unix(0, 1_700_000_000_000)

	batch := s.NewBatch()
	s.Vertices.Create(batch, Vertex{ID: a, Type: "user"})
	s.Vertices.Create(batch, Vertex{ID: b, Type: "user"})
	if err := s.Edges.Set(batch, a, "follows", b, dt); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, ok, err := s.Edges.Get(a, "follows", b)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || !got.Equal(dt) {
		t.Errorf("Get = (%v, %v), want (%v, true)", got, ok, dt)
	}

	forward, err := s.ForwardRanges.IterateForRange(a, "follows", time.Time{})
	if err != nil {
		t.Fatalf("IterateForRange forward: %v", err)
	}
	if len(forward) != 1 || forward[0].Second != b || !forward[0].UpdateDateTime.Equal(dt) {
		t.Fatalf("forward range = %+v, want one row (A,follows,%v,B)", forward, dt)
	}

	reversed, err := s.ReversedRanges.IterateForRange(b, "follows", time.Time{})
	if err != nil {
		t.Fatalf("IterateForRange reversed: %v", err)
	}
	if len(reversed) != 1 || reversed[0].Second != a || !reversed[0].UpdateDateTime.Equal(dt) {
		t.Fatalf("reversed range = %+v, want one row (B,follows,%v,A)", reversed, dt)
	}
}

// TestEdgeResetRewritesRangeRows checks that re-setting an existing edge at
// a later timestamp replaces its range rows rather than appending new ones
// alongside the stale pair.
func TestEdgeResetRewritesRangeRows(t *testing.T) {
	s := newTestStore()
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	b := mustUUID(t, "22222222-2222-2222-2222-222222222222")
	dt1 := s.clock.(*FixedClock).Now()
	dt2 := s.clock.(*FixedClock).Advance(100 * time.Microsecond)

	batch := s.NewBatch()
	if err := s.Edges.Set(batch, a, "follows", b, dt1); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit 1: %v", err)
	}

	batch = s.NewBatch()
	if err := s.Edges.Set(batch, a, "follows", b, dt2); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit 2: %v", err)
	}

	forward, err := s.ForwardRanges.IterateForOwner(a)
	if err != nil {
		t.Fatalf("IterateForOwner: %v", err)
	}
	if len(forward) != 1 {
		t.Fatalf("forward ranges after re-set = %+v, want exactly 1 row", forward)
	}
	if !forward[0].UpdateDateTime.Equal(dt2) {
		t.Errorf("surviving range row has dt %v, want %v (old row should be gone)", forward[0].UpdateDateTime, dt2)
	}

	dt, ok, err := s.Edges.Get(a, "follows", b)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || !dt.Equal(dt2) {
		t.Errorf("edge row dt = %v, want %v", dt, dt2)
	}
}

func TestVertexPropertyLifecycle(t *testing.T) {
	s := newTestStore()
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")

	batch := s.NewBatch()
	if err := s.VertexProperties.Set(batch, a, "name", "alice"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var name string
	ok, err := s.VertexProperties.Get(a, "name", &name)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || name != "alice" {
		t.Errorf("Get = (%q, %v), want (alice, true)", name, ok)
	}

	entries, err := s.VertexProperties.IterateForOwner(a)
	if err != nil {
		t.Fatalf("IterateForOwner: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "name" {
		t.Fatalf("IterateForOwner = %+v, want exactly one 'name' entry", entries)
	}

	batch = s.NewBatch()
	s.VertexProperties.Delete(batch, a, "name")
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit delete: %v", err)
	}

	ok, err = s.VertexProperties.Get(a, "name", &name)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if ok {
		t.Errorf("Get after delete returned ok=true, want false")
	}
}

// TestDeleteVertexCascade checks that deleting a vertex also removes its
// property rows, every edge incident to it, and the range rows (in both
// families) that mention it, while leaving unrelated vertices untouched.
func TestDeleteVertexCascade(t *testing.T) {
	s := newTestStore()
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	b := mustUUID(t, "22222222-2222-2222-2222-222222222222")
	dt := time.Unix(0, 1_700_000_000_000)

	batch := s.NewBatch()
	s.Vertices.Create(batch, Vertex{ID: a, Type: "user"})
	s.Vertices.Create(batch, Vertex{ID: b, Type: "user"})
	if err := s.Edges.Set(batch, a, "follows", b, dt); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.VertexProperties.Set(batch, a, "name", "alice"); err != nil {
		t.Fatalf("Set property: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	batch = s.NewBatch()
	if err := s.DeleteVertex(batch, a); err != nil {
		t.Fatalf("DeleteVertex: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit delete: %v", err)
	}

	if exists, _ := s.Vertices.Exists(a); exists {
		t.Errorf("Exists(A) = true after delete, want false")
	}
	if exists, _ := s.Vertices.Exists(b); !exists {
		t.Errorf("Exists(B) = false after deleting A, want true")
	}

	props, err := s.VertexProperties.IterateForOwner(a)
	if err != nil {
		t.Fatalf("IterateForOwner: %v", err)
	}
	if len(props) != 0 {
		t.Errorf("vertex properties of A after delete = %+v, want none", props)
	}

	forward, err := s.ForwardRanges.IterateForOwner(a)
	if err != nil {
		t.Fatalf("IterateForOwner forward: %v", err)
	}
	if len(forward) != 0 {
		t.Errorf("forward range rows owned by A after delete = %+v, want none", forward)
	}

	reversedFromB, err := s.ReversedRanges.IterateForOwner(b)
	if err != nil {
		t.Fatalf("IterateForOwner reversed(B): %v", err)
	}
	if len(reversedFromB) != 0 {
		t.Errorf("reversed range rows for B referencing A after delete = %+v, want none", reversedFromB)
	}

	if _, ok, err := s.Edges.Get(a, "follows", b); err != nil || ok {
		t.Errorf("edge (A,follows,B) still present after deleting A: ok=%v err=%v", ok, err)
	}
}

func TestBulkCreateVerticesAndEdges(t *testing.T) {
	s := newTestStore()
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	b := mustUUID(t, "22222222-2222-2222-2222-222222222222")

	batch := s.NewBatch()
	s.BulkCreateVertices(batch, []Vertex{
		{ID: a, Type: "user"},
		{ID: b, Type: "user"},
	})
	if err := s.BulkCreateEdges(batch, []Edge{
		{Outbound: a, Type: "follows", Inbound: b},
	}); err != nil {
		t.Fatalf("BulkCreateEdges: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if exists, _ := s.Vertices.Exists(a); !exists {
		t.Errorf("Exists(A) = false after bulk create")
	}
	if _, ok, err := s.Edges.Get(a, "follows", b); err != nil || !ok {
		t.Errorf("edge not found after bulk create: ok=%v err=%v", ok, err)
	}
}

// TestBulkCreateVerticesRejectsInvalidTypeBeforeStaging asserts that an
// invalid vertex type panics before any row is staged, matching the
// validate-then-insert contract and the panic-on-malformed-key error model.
func TestBulkCreateVerticesRejectsInvalidTypeBeforeStaging(t *testing.T) {
	s := newTestStore()
	a := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	b := mustUUID(t, "22222222-2222-2222-2222-222222222222")

	batch := s.NewBatch()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty vertex type")
		}
		if batch.Size() != 0 {
			t.Errorf("batch has %d staged ops after a pre-validation panic, want 0", batch.Size())
		}
	}()
	s.BulkCreateVertices(batch, []Vertex{
		{ID: a, Type: "user"},
		{ID: b, Type: ""},
	})
}
