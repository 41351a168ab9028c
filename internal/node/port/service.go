package port

import (
	"context"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/go-chord-kv-store/pkg/flood"
)

// NodeService is the business surface consumed by the inbound HTTP adapter.
// It covers both the client operations and the handlers behind the peer RPC
// endpoints.
type NodeService interface {
	// Put writes a value with replication. clientTS carries a client-supplied
	// Lamport timestamp; zero means none. Returns the timestamp assigned to
	// the write.
	Put(ctx context.Context, key, value, writer string, clientTS uint64) (uint64, error)

	// Get reads a key with read-repair across its replica set.
	Get(ctx context.Context, key string) (domain.VersionedValue, error)

	// Self returns this node's identity.
	Self() domain.NodeInfo

	// Ring state served to peers.
	Successor() domain.NodeInfo
	Predecessor() (domain.NodeInfo, bool)
	SuccessorList() []domain.NodeInfo

	// FindSuccessor resolves the owner of an identifier.
	FindSuccessor(ctx context.Context, id uint64) (domain.NodeInfo, error)

	// ClosestPrecedingOrSelf answers a routing step from this node's fingers.
	ClosestPrecedingOrSelf(id uint64) domain.NodeInfo

	// Notify handles a predecessor candidacy from a peer.
	Notify(candidate domain.NodeInfo)

	// ApplyReplica merges a replicated value into the local store.
	ApplyReplica(key string, value domain.VersionedValue)

	// ReplicaGet reads the local version only, without repair.
	ReplicaGet(key string) (domain.VersionedValue, bool)

	// MergeRange merges an anti-entropy exchange and returns entries the
	// sender is missing or holds stale.
	MergeRange(entries map[string]domain.VersionedValue) map[string]domain.VersionedValue

	// SummaryRoot exposes the local KV digest to anti-entropy peers.
	SummaryRoot() uint64

	// HandleElect answers an election probe for a key.
	HandleElect(key string, candidateID uint64) ElectReply

	// StartFlood begins a TTL-bounded flood search from this node.
	StartFlood(ctx context.Context, key string, ttl int) flood.Result

	// ReceiveFlood handles one incoming flood hop.
	ReceiveFlood(ctx context.Context, q flood.Query) flood.Result

	// MetricsSnapshot renders this node's counters.
	MetricsSnapshot() map[string]any
}
