package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleElectDefersLowerCandidate(t *testing.T) {
	peers := newLoopbackPeers()
	n := newClusterNode(t, peers, "127.0.0.1:5000", Options{})

	t.Run("lower candidate is deferred", func(t *testing.T) {
		reply := n.HandleElect("k", n.Self().ID-1)
		require.Equal(t, n.Self().ID, reply.ID)
		require.True(t, reply.Defer)
		// answering a candidacy leaves the recipient's election state alone
		require.Equal(t, roleIdle, n.elections.role("k"))
	})

	t.Run("higher candidate is not deferred", func(t *testing.T) {
		reply := n.HandleElect("other", n.Self().ID+1)
		require.Equal(t, n.Self().ID, reply.ID)
		require.False(t, reply.Defer)
		require.Equal(t, roleIdle, n.elections.role("other"))
	})
}

func TestElectionPicksHighestLiveID(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")
	ordered := ringOrder(nodes)
	highest := ordered[len(ordered)-1]

	ctx := context.Background()
	set := nodes[0].replicator.replicaSet(ctx, "k")
	coord, ok := nodes[0].elections.coordinator(ctx, "k", set)
	require.True(t, ok)
	require.Equal(t, highest.Self().ID, coord.ID)

	// the winner sees itself as leader, a loser as follower
	if nodes[0].Self().Equal(coord) {
		require.Equal(t, roleLeader, nodes[0].elections.role("k"))
	} else {
		require.Equal(t, roleFollower, nodes[0].elections.role("k"))
	}
}

func TestElectionReusesCachedLeader(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")

	ctx := context.Background()
	set := nodes[0].replicator.replicaSet(ctx, "k")

	first, ok := nodes[0].elections.coordinator(ctx, "k", set)
	require.True(t, ok)

	electionsBefore := nodes[0].MetricsSnapshot()["replication"].(map[string]any)["elections"]
	second, ok := nodes[0].elections.coordinator(ctx, "k", set)
	require.True(t, ok)
	require.Equal(t, first, second)
	require.Equal(t, electionsBefore,
		nodes[0].MetricsSnapshot()["replication"].(map[string]any)["elections"],
		"a cached live leader must not trigger a re-election")
}

func TestElectionFailsOverWhenLeaderDies(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")
	ordered := ringOrder(nodes)
	highest := ordered[len(ordered)-1]
	second := ordered[len(ordered)-2]

	// run the election from a node that will survive
	var caller *Node
	for _, n := range nodes {
		if !n.Self().Equal(highest.Self()) {
			caller = n
			break
		}
	}

	ctx := context.Background()
	set := caller.replicator.replicaSet(ctx, "k")
	coord, ok := caller.elections.coordinator(ctx, "k", set)
	require.True(t, ok)
	require.Equal(t, highest.Self().ID, coord.ID)

	// leader dies; liveness check fails and the next highest id wins
	peers.setDown(highest.Self().Addr, true)
	coord, ok = caller.elections.coordinator(ctx, "k", set)
	require.True(t, ok)
	require.Equal(t, second.Self().ID, coord.ID)
}

func TestInvalidateDropsElectionsLedByDeadNode(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")

	ctx := context.Background()
	set := nodes[0].replicator.replicaSet(ctx, "k")
	coord, ok := nodes[0].elections.coordinator(ctx, "k", set)
	require.True(t, ok)

	nodes[0].elections.Invalidate(coord.ID)
	require.Equal(t, roleIdle, nodes[0].elections.role("k"),
		"invalidation must clear the cached election")
}
