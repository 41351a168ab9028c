package service

import (
	"context"
	"testing"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsLWWWinnerAcrossDivergedReplicas(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")

	// diverge the replicas by hand: every node holds a different version
	nodes[0].ApplyReplica("k", domain.VersionedValue{Value: "old", Timestamp: 3, Writer: "a"})
	nodes[1].ApplyReplica("k", domain.VersionedValue{Value: "mid", Timestamp: 5, Writer: "a"})
	nodes[2].ApplyReplica("k", domain.VersionedValue{Value: "new", Timestamp: 5, Writer: "b"})

	got, err := nodes[0].Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "new", got.Value, "ties on timestamp break on the higher writer id")
}

func TestGetRepairsStaleReplicas(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")

	winner := domain.VersionedValue{Value: "new", Timestamp: 9, Writer: "b"}
	nodes[0].ApplyReplica("k", domain.VersionedValue{Value: "old", Timestamp: 2, Writer: "a"})
	nodes[1].ApplyReplica("k", winner)
	// nodes[2] misses the key entirely

	got, err := nodes[2].Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, winner, got)

	// the stale and missing replicas are repaired asynchronously
	for _, n := range nodes {
		n := n
		eventually(t, func() bool {
			v, ok := n.ReplicaGet("k")
			return ok && v == winner
		}, "read repair must push the winner to every replica")
	}
}

func TestGetSkipsUnreachableReplicas(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")

	winner := domain.VersionedValue{Value: "v", Timestamp: 4, Writer: "w"}
	for _, n := range nodes {
		n.ApplyReplica("k", winner)
	}

	// one dead replica must not fail the read
	peers.setDown(nodes[1].Self().Addr, true)
	got, err := nodes[0].Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, winner, got)
}

func TestGetMissRecordsMetrics(t *testing.T) {
	peers := newLoopbackPeers()
	n := newClusterNode(t, peers, "127.0.0.1:5000", Options{})

	_, err := n.Get(context.Background(), "absent")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	kv := n.MetricsSnapshot()["kv"].(map[string]any)
	require.Equal(t, uint64(1), kv["total_get_misses"].(uint64))
}
