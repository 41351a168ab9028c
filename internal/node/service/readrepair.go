package service

import (
	"context"
	"time"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
)

// readRepairer drives the read path: fan out to the replica set, return the
// LWW maximum, and push it back to whichever replicas were stale. That
// bounds staleness to one read cycle per divergent replica.
type readRepairer struct {
	core *Node
}

// replicaRead is one replica's answer during a read.
type replicaRead struct {
	value     domain.VersionedValue
	found     bool
	reachable bool
}

// Get reads key through its replica set with read-repair.
func (n *Node) Get(ctx context.Context, key string) (domain.VersionedValue, error) {
	return n.repairer.get(ctx, key)
}

func (g *readRepairer) get(ctx context.Context, key string) (domain.VersionedValue, error) {
	n := g.core
	start := time.Now()

	replicas := n.replicator.replicaSet(ctx, key)
	if len(replicas) == 0 {
		replicas = []domain.NodeInfo{n.self}
	}

	// query the coordinator first; in the common case it already holds the
	// winning version
	if coord, ok := n.elections.coordinator(ctx, key, replicas); ok {
		replicas = coordinatorFirst(coord, replicas)
	}

	reads := make(map[string]replicaRead, len(replicas))
	var best domain.VersionedValue
	found := false
	for _, member := range replicas {
		read := g.readFrom(ctx, member, key)
		reads[member.Addr] = read
		if read.found && (!found || read.value.Dominates(best)) {
			best = read.value
			found = true
		}
	}

	if !found {
		n.metrics.RecordGet(time.Since(start), false)
		return domain.VersionedValue{}, domain.ErrKeyNotFound
	}

	// asynchronously repair replicas that missed the key or hold a dominated
	// version; unreachable members are left to anti-entropy
	for _, member := range replicas {
		read := reads[member.Addr]
		if !read.reachable {
			continue
		}
		if read.found && !best.Dominates(read.value) {
			continue
		}
		member := member
		winner := best
		if err := n.pool.Submit(ctx, func() { n.pushReplica(member, key, winner) }); err == nil {
			n.metrics.RecordReadRepair()
		}
	}

	n.metrics.RecordGet(time.Since(start), true)
	return best, nil
}

func (g *readRepairer) readFrom(ctx context.Context, member domain.NodeInfo, key string) replicaRead {
	n := g.core
	if member.Equal(n.self) {
		v, ok := n.kv.Get(key)
		return replicaRead{value: v, found: ok, reachable: true}
	}

	callCtx, cancel := n.callCtx(ctx)
	defer cancel()
	v, ok, err := n.peers.ReplicaGet(callCtx, member.Addr, key)
	if err != nil {
		return replicaRead{}
	}
	return replicaRead{value: v, found: ok, reachable: true}
}
