package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/stretchr/testify/require"
)

func TestFindSuccessorResolvesOwners(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002", "127.0.0.1:5003")

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		id := nodes[0].space.Hash(fmt.Sprintf("lookup-%d", i))
		want := ownerOf(nodes, id).Self()
		for _, n := range nodes {
			got, err := n.FindSuccessor(ctx, id)
			require.NoError(t, err)
			require.Equal(t, want, got,
				"node %s must route id %d to %s", n.Self().Addr, id, want.Addr)
		}
	}
}

func TestFindSuccessorOwnIdentifier(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001")

	ctx := context.Background()
	for _, n := range nodes {
		// a node's own identifier belongs to itself
		got, err := nodes[0].FindSuccessor(ctx, n.Self().ID)
		require.NoError(t, err)
		require.Equal(t, n.Self(), got)
	}
}

func TestFindSuccessorSingleton(t *testing.T) {
	peers := newLoopbackPeers()
	n := newClusterNode(t, peers, "127.0.0.1:5000", Options{})

	got, err := n.FindSuccessor(context.Background(), n.Self().ID+12345)
	require.NoError(t, err)
	require.Equal(t, n.Self(), got, "a singleton owns the whole identifier space")
}

func TestClosestPrecedingOrSelfUsesFingers(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002", "127.0.0.1:5003")

	n := nodes[0]
	// any routing step must land strictly between us and the target, or be us
	id := n.space.Hash("step-target")
	step := n.ClosestPrecedingOrSelf(id)
	if !step.Equal(n.Self()) {
		require.True(t, n.space.Between(step.ID, n.Self().ID, id),
			"routing step %d must precede the target", step.ID)
	}
}

func TestFixFingersPopulatesTable(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001", "127.0.0.1:5002")

	n := nodes[0]
	for i := 0; i < int(n.space.Bits()); i++ {
		f := n.finger(i)
		require.False(t, f.IsZero(), "finger slot %d must be filled after repair", i)
		want := ownerOf(nodes, n.space.Offset(n.Self().ID, uint(i))).Self()
		require.Equal(t, want, f, "finger slot %d", i)
	}
}

func TestLookupHopBoundTerminates(t *testing.T) {
	peers := newLoopbackPeers()

	// Build a ring with more members than the hop bound where every node
	// knows only its direct successor. Each routing step then advances a
	// single position, and a lookup for the farthest identifier runs out
	// of hops before reaching its owner.
	var nodes []*Node
	for i := 0; i < 40; i++ {
		nodes = append(nodes, newClusterNode(t, peers, fmt.Sprintf("127.0.0.1:%d", 7000+i), Options{}))
	}
	ordered := ringOrder(nodes)
	for i, n := range ordered {
		next := ordered[(i+1)%len(ordered)].Self()
		n.setSuccessor(next)
		n.setFinger(0, next)
	}

	start := ordered[0]
	target := ordered[len(ordered)-1].Self().ID

	got, err := start.FindSuccessor(context.Background(), target)
	require.ErrorIs(t, err, domain.ErrNoRoute)
	require.False(t, got.IsZero(), "a bounded lookup still reports the best successor it reached")
}

func TestLookupRecordsHopMetrics(t *testing.T) {
	peers := newLoopbackPeers()
	nodes := buildCluster(t, peers, Options{},
		"127.0.0.1:5000", "127.0.0.1:5001")

	before := nodes[0].MetricsSnapshot()["ring"].(map[string]any)["total_lookups"].(uint64)
	_, err := nodes[0].FindSuccessor(context.Background(), nodes[1].Self().ID)
	require.NoError(t, err)
	after := nodes[0].MetricsSnapshot()["ring"].(map[string]any)["total_lookups"].(uint64)
	require.Equal(t, before+1, after)
}
