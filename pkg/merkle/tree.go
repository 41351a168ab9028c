package merkle

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/spaolacci/murmur3"
)

// Tree is a fixed-size binary hash tree over bucket digests, stored as a
// flattened array (root at 0, children of i at 2i+1 and 2i+2). Two stores
// holding the same versioned entries produce the same root, which lets
// anti-entropy skip full range exchanges when peers already agree.
//
// Digests are uint64; zero means an empty bucket or subtree.
type Tree struct {
	mu         sync.RWMutex
	nodes      []uint64
	numLeaves  int
	leafOffset int
}

// NewTree creates a tree with the given number of leaf buckets, which must be
// a power of two.
func NewTree(numLeaves int) (*Tree, error) {
	if numLeaves < 2 || numLeaves&(numLeaves-1) != 0 {
		return nil, fmt.Errorf("merkle: numLeaves must be a power of two >= 2, got %d", numLeaves)
	}
	return &Tree{
		nodes:      make([]uint64, 2*numLeaves-1),
		numLeaves:  numLeaves,
		leafOffset: numLeaves - 1,
	}, nil
}

// NumLeaves returns the bucket capacity of the tree.
func (t *Tree) NumLeaves() int {
	return t.numLeaves
}

// SetLeaf replaces the digest of one bucket and recomputes hashes up to the
// root.
func (t *Tree) SetLeaf(bucket int, digest uint64) error {
	if bucket < 0 || bucket >= t.numLeaves {
		return fmt.Errorf("merkle: bucket %d out of range [0,%d)", bucket, t.numLeaves)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.leafOffset + bucket
	t.nodes[idx] = digest
	for idx > 0 {
		parent := (idx - 1) / 2
		t.nodes[parent] = combine(t.nodes[2*parent+1], t.nodes[2*parent+2])
		idx = parent
	}
	return nil
}

// Root returns the digest covering every bucket. Zero means an empty tree.
func (t *Tree) Root() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes[0]
}

// combine hashes two child digests into their parent digest. Empty siblings
// collapse to the empty digest so a tree with no content keeps a zero root.
func combine(left, right uint64) uint64 {
	if left == 0 && right == 0 {
		return 0
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], left)
	binary.LittleEndian.PutUint64(buf[8:], right)
	return murmur3.Sum64(buf[:])
}

// EntryDigest hashes one versioned entry for bucket folding. Callers fold
// entry digests into a bucket with XOR, which keeps the bucket digest
// independent of insertion order.
func EntryDigest(key string, timestamp uint64, writer string) uint64 {
	buf := make([]byte, 0, len(key)+len(writer)+18)
	buf = append(buf, key...)
	buf = append(buf, 0)
	buf = binary.LittleEndian.AppendUint64(buf, timestamp)
	buf = append(buf, 0)
	buf = append(buf, writer...)
	return murmur3.Sum64(buf)
}

// Bucket maps a key onto one of n leaf buckets.
func Bucket(key string, n int) int {
	return int(murmur3.Sum64([]byte(key)) % uint64(n))
}
