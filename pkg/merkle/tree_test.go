package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTree_RequiresPowerOfTwo(t *testing.T) {
	_, err := NewTree(3)
	assert.Error(t, err)

	tree, err := NewTree(8)
	assert.NoError(t, err)
	assert.Equal(t, 8, tree.NumLeaves())
	assert.Equal(t, uint64(0), tree.Root())
}

func TestTree_RootTracksLeafUpdates(t *testing.T) {
	tree, err := NewTree(4)
	assert.NoError(t, err)

	assert.NoError(t, tree.SetLeaf(0, 111))
	root1 := tree.Root()
	assert.NotZero(t, root1)

	assert.NoError(t, tree.SetLeaf(3, 222))
	root2 := tree.Root()
	assert.NotEqual(t, root1, root2)

	// clearing the second leaf restores the first root
	assert.NoError(t, tree.SetLeaf(3, 0))
	assert.Equal(t, root1, tree.Root())

	assert.Error(t, tree.SetLeaf(4, 1))
}

func TestTree_EqualContentEqualRoot(t *testing.T) {
	a, _ := NewTree(8)
	b, _ := NewTree(8)

	entries := map[string]uint64{
		"key-0": EntryDigest("key-0", 1, "w1"),
		"key-1": EntryDigest("key-1", 2, "w2"),
		"key-2": EntryDigest("key-2", 3, "w1"),
	}

	// apply in different orders; XOR folding makes buckets order-independent
	bucketsA := make(map[int]uint64)
	for k, d := range entries {
		bucket := Bucket(k, 8)
		bucketsA[bucket] ^= d
		_ = a.SetLeaf(bucket, bucketsA[bucket])
	}

	keys := []string{"key-2", "key-0", "key-1"}
	bucketsB := make(map[int]uint64)
	for _, k := range keys {
		bucket := Bucket(k, 8)
		bucketsB[bucket] ^= entries[k]
		_ = b.SetLeaf(bucket, bucketsB[bucket])
	}

	assert.Equal(t, a.Root(), b.Root())
}

func TestEntryDigest_SensitiveToVersion(t *testing.T) {
	d1 := EntryDigest("key", 1, "w1")
	d2 := EntryDigest("key", 2, "w1")
	d3 := EntryDigest("key", 1, "w2")

	assert.NotEqual(t, d1, d2)
	assert.NotEqual(t, d1, d3)
	assert.Equal(t, d1, EntryDigest("key", 1, "w1"))
}
