package port

import (
	"context"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/go-chord-kv-store/pkg/flood"
)

//go:generate mockgen -destination=../service/mocks/peer_mock.go -package=mocks -source=peer.go

// ElectReply is a peer's answer to an election probe. Defer set means the
// replying peer has a higher identifier and takes over the candidacy.
type ElectReply struct {
	ID    uint64 `json:"id"`
	Defer bool   `json:"defer"`
}

// PeerClient is the outbound peer-to-peer RPC surface. Every call must apply
// a bounded timeout so background loops never stall on a dead peer;
// unreachable peers yield errors wrapping domain.ErrPeerUnreachable.
type PeerClient interface {
	// Ping checks liveness.
	Ping(ctx context.Context, addr string) error

	// FindSuccessor resolves the owner of id starting at the given peer.
	FindSuccessor(ctx context.Context, addr string, id uint64) (domain.NodeInfo, error)

	// ClosestPrecedingOrSelf asks a peer for its best routing step toward id.
	ClosestPrecedingOrSelf(ctx context.Context, addr string, id uint64) (domain.NodeInfo, error)

	// GetPredecessor returns the peer's predecessor, if it knows one.
	GetPredecessor(ctx context.Context, addr string) (domain.NodeInfo, bool, error)

	// GetSuccessor returns the peer's current successor.
	GetSuccessor(ctx context.Context, addr string) (domain.NodeInfo, error)

	// GetSuccessorList returns the peer's successor list, nearest first.
	GetSuccessorList(ctx context.Context, addr string) ([]domain.NodeInfo, error)

	// Notify tells a peer that the caller may be its predecessor.
	Notify(ctx context.Context, addr string, candidate domain.NodeInfo) error

	// Replicate applies a versioned value on the peer through its LWW merge.
	Replicate(ctx context.Context, addr string, key string, value domain.VersionedValue) error

	// ReplicaGet reads the peer's local version of a key.
	ReplicaGet(ctx context.Context, addr string, key string) (domain.VersionedValue, bool, error)

	// SyncRange sends a key range for anti-entropy; the peer merges it and
	// returns the entries it holds that the sender is missing or has stale.
	SyncRange(ctx context.Context, addr string, entries map[string]domain.VersionedValue) (map[string]domain.VersionedValue, error)

	// SummaryRoot fetches the peer's KV summary digest, the anti-entropy
	// fast path.
	SummaryRoot(ctx context.Context, addr string) (uint64, error)

	// Elect probes a replica-set member during a bully election.
	Elect(ctx context.Context, addr string, key string, candidateID uint64) (ElectReply, error)

	// FloodQuery forwards one hop of a flood search.
	FloodQuery(ctx context.Context, addr string, q flood.Query) (flood.Result, error)
}
