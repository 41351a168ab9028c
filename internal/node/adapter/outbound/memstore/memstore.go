package memstore

import (
	"sync"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/port"
	"github.com/anthanhphan/go-chord-kv-store/pkg/merkle"
)

const summaryBuckets = 256

// Store implements port.KVRepository in memory. Alongside the value map it
// maintains a merkle summary of (key, timestamp, writer) triples so
// anti-entropy can compare stores by a single digest.
type Store struct {
	mu      sync.RWMutex
	entries map[string]domain.VersionedValue
	buckets []uint64
	summary *merkle.Tree
}

var _ port.KVRepository = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	tree, err := merkle.NewTree(summaryBuckets)
	if err != nil {
		// summaryBuckets is a compile-time power of two
		panic(err)
	}
	return &Store{
		entries: make(map[string]domain.VersionedValue),
		buckets: make([]uint64, summaryBuckets),
		summary: tree,
	}
}

// Apply merges an incoming version under the LWW order. The stored value is
// replaced only on strict domination, which makes Apply commutative and
// idempotent across retries and reordered deliveries.
func (s *Store) Apply(key string, value domain.VersionedValue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.entries[key]
	if exists && !value.Dominates(old) {
		return false
	}

	s.entries[key] = value

	bucket := merkle.Bucket(key, summaryBuckets)
	digest := s.buckets[bucket]
	if exists {
		digest ^= merkle.EntryDigest(key, old.Timestamp, old.Writer)
	}
	digest ^= merkle.EntryDigest(key, value.Timestamp, value.Writer)
	s.buckets[bucket] = digest
	_ = s.summary.SetLeaf(bucket, digest)

	return true
}

// Get returns the stored version of key.
func (s *Store) Get(key string) (domain.VersionedValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Has reports whether key is stored.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Snapshot copies the full store.
func (s *Store) Snapshot() map[string]domain.VersionedValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.VersionedValue, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SummaryRoot returns the content digest.
func (s *Store) SummaryRoot() uint64 {
	return s.summary.Root()
}
