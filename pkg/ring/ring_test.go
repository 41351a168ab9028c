package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpace_HashIsDeterministicAndTruncated(t *testing.T) {
	s := NewSpace(32)

	a := s.Hash("127.0.0.1:5000")
	b := s.Hash("127.0.0.1:5000")
	assert.Equal(t, a, b)

	c := s.Hash("127.0.0.1:5001")
	assert.NotEqual(t, a, c)

	assert.Less(t, a, uint64(1)<<32)
	assert.Less(t, c, uint64(1)<<32)
}

func TestSpace_Between(t *testing.T) {
	s := NewSpace(32)

	// plain interval
	assert.True(t, s.Between(5, 1, 10))
	assert.False(t, s.Between(1, 1, 10))
	assert.False(t, s.Between(10, 1, 10))

	// wrapped interval
	top := (uint64(1) << 32) - 1
	assert.True(t, s.Between(top, 100, 10))
	assert.True(t, s.Between(5, 100, 10))
	assert.False(t, s.Between(50, 100, 10))

	// empty interval
	assert.False(t, s.Between(5, 7, 7))
}

func TestSpace_BetweenRightIncl(t *testing.T) {
	s := NewSpace(32)

	assert.True(t, s.BetweenRightIncl(10, 1, 10))
	assert.False(t, s.BetweenRightIncl(1, 1, 10))

	// a == b is the full circle
	assert.True(t, s.BetweenRightIncl(42, 7, 7))

	// wrapped
	assert.True(t, s.BetweenRightIncl(3, 100, 10))
	assert.False(t, s.BetweenRightIncl(50, 100, 10))
}

func TestSpace_OffsetAndDistance(t *testing.T) {
	s := NewSpace(32)

	assert.Equal(t, uint64(9), s.Offset(8, 0))
	assert.Equal(t, uint64(8+1024), s.Offset(8, 10))

	// offset wraps around the top of the ring
	top := (uint64(1) << 32) - 1
	assert.Equal(t, uint64(0), s.Offset(top, 0))

	assert.Equal(t, uint64(5), s.Distance(10, 15))
	// wrapped distance
	assert.Equal(t, uint64(11), s.Distance(top-5, 5))
}
