package domain

import (
	"fmt"
)

// NodeInfo identifies a ring member: the m-bit identifier used for ring math
// and the network address used for I/O. Immutable once created.
type NodeInfo struct {
	ID   uint64 `json:"id"`
	Addr string `json:"addr"`
}

func (n NodeInfo) String() string {
	return fmt.Sprintf("%d@%s", n.ID, n.Addr)
}

// Equal compares by address; identifiers are derived from addresses, so the
// two never disagree for well-formed peers.
func (n NodeInfo) Equal(other NodeInfo) bool {
	return n.Addr == other.Addr
}

// IsZero reports whether the info is unset (no known peer).
func (n NodeInfo) IsZero() bool {
	return n.Addr == ""
}
