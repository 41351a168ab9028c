package ring

import (
	"github.com/spaolacci/murmur3"
)

const (
	// DefaultBits is the width of the identifier space. A 32-bit ring keeps
	// identifiers readable in logs while leaving collisions negligible for
	// realistic cluster sizes.
	DefaultBits = 32
)

// Space models an m-bit circular identifier space. Node and key identifiers
// are murmur3 hashes truncated to m bits; ring order is integer order
// modulo 2^m.
type Space struct {
	bits uint
	size uint64
}

// NewSpace creates an identifier space of 2^bits positions.
func NewSpace(bits uint) Space {
	if bits == 0 || bits > 64 {
		bits = DefaultBits
	}
	var size uint64
	if bits == 64 {
		size = 0 // wraps naturally on uint64 arithmetic
	} else {
		size = uint64(1) << bits
	}
	return Space{bits: bits, size: size}
}

// Bits returns the identifier width m.
func (s Space) Bits() uint {
	return s.bits
}

// Hash maps an arbitrary string (node address or key) onto the ring.
func (s Space) Hash(v string) uint64 {
	return s.Truncate(murmur3.Sum64([]byte(v)))
}

// Truncate reduces a raw hash to the m-bit identifier space.
func (s Space) Truncate(id uint64) uint64 {
	if s.size == 0 {
		return id
	}
	return id % s.size
}

// Offset returns (id + 2^i) mod 2^m, the start of finger interval i.
func (s Space) Offset(id uint64, i uint) uint64 {
	return s.Truncate(id + (uint64(1) << i))
}

// Distance is the clockwise distance from a to b: (b - a) mod 2^m.
func (s Space) Distance(a, b uint64) uint64 {
	return s.Truncate(b - a)
}

// Between reports whether x lies in the open interval (a, b) on the ring,
// accounting for wraparound. a == b denotes the empty interval.
func (s Space) Between(x, a, b uint64) bool {
	switch {
	case a < b:
		return a < x && x < b
	case a > b:
		return x > a || x < b
	default:
		return false
	}
}

// BetweenRightIncl reports whether x lies in the half-open interval (a, b].
// a == b denotes the full circle, which matches the single-node ring where a
// node is its own successor.
func (s Space) BetweenRightIncl(x, a, b uint64) bool {
	switch {
	case a < b:
		return a < x && x <= b
	case a > b:
		return x > a || x <= b
	default:
		return true
	}
}
