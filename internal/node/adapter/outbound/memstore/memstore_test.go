package memstore

import (
	"testing"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ApplyLastWriterWins(t *testing.T) {
	s := New()

	applied := s.Apply("k", domain.VersionedValue{Value: "v1", Timestamp: 2, Writer: "a"})
	assert.True(t, applied)

	// older timestamp loses
	applied = s.Apply("k", domain.VersionedValue{Value: "v0", Timestamp: 1, Writer: "z"})
	assert.False(t, applied)

	// newer timestamp wins
	applied = s.Apply("k", domain.VersionedValue{Value: "v2", Timestamp: 3, Writer: "a"})
	assert.True(t, applied)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v.Value)
}

func TestStore_ApplyTieBreaksOnWriter(t *testing.T) {
	s := New()

	s.Apply("k", domain.VersionedValue{Value: "from-a", Timestamp: 5, Writer: "writer-a"})

	// same timestamp, higher writer wins
	applied := s.Apply("k", domain.VersionedValue{Value: "from-b", Timestamp: 5, Writer: "writer-b"})
	assert.True(t, applied)

	// same version again is discarded (idempotent)
	applied = s.Apply("k", domain.VersionedValue{Value: "from-b", Timestamp: 5, Writer: "writer-b"})
	assert.False(t, applied)

	v, _ := s.Get("k")
	assert.Equal(t, "from-b", v.Value)
}

func TestStore_ApplyIsIdempotentOnSummary(t *testing.T) {
	s := New()

	vv := domain.VersionedValue{Value: "v", Timestamp: 1, Writer: "w"}
	s.Apply("k", vv)
	root := s.SummaryRoot()

	// duplicate delivery leaves the digest unchanged
	s.Apply("k", vv)
	assert.Equal(t, root, s.SummaryRoot())
}

func TestStore_SummaryRootConvergesAcrossOrder(t *testing.T) {
	a := New()
	b := New()

	v1 := domain.VersionedValue{Value: "x", Timestamp: 1, Writer: "w1"}
	v2 := domain.VersionedValue{Value: "y", Timestamp: 2, Writer: "w2"}

	// a sees the writes in order, b sees them reversed plus a duplicate
	a.Apply("key-1", v1)
	a.Apply("key-1", v2)
	b.Apply("key-1", v2)
	b.Apply("key-1", v1)
	b.Apply("key-1", v2)

	va, _ := a.Get("key-1")
	vb, _ := b.Get("key-1")
	assert.Equal(t, va, vb)
	assert.Equal(t, a.SummaryRoot(), b.SummaryRoot())
}

func TestStore_SnapshotCopies(t *testing.T) {
	s := New()
	s.Apply("k1", domain.VersionedValue{Value: "v1", Timestamp: 1, Writer: "w"})
	s.Apply("k2", domain.VersionedValue{Value: "v2", Timestamp: 1, Writer: "w"})

	snap := s.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, 2, s.Len())

	// mutating the snapshot does not touch the store
	snap["k3"] = domain.VersionedValue{Value: "v3", Timestamp: 1, Writer: "w"}
	assert.False(t, s.Has("k3"))
}
