package service

import (
	"context"
	"time"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/gosdk/logger"
)

// replicator derives replica sets and drives the write path.
type replicator struct {
	core *Node
}

// replicaSet computes the k nodes responsible for key: its owner plus the
// owner's next k-1 distinct successors, walked over the live ring.
func (r *replicator) replicaSet(ctx context.Context, key string) []domain.NodeInfo {
	n := r.core

	keyID := n.space.Hash(key)
	owner, err := r.core.router.findSuccessor(ctx, keyID)
	if err != nil || owner.IsZero() {
		owner = n.self
	}

	replicas := []domain.NodeInfo{owner}
	cur := owner
	// the walk is capped: a small ring runs out of distinct nodes before k
	for steps := 0; len(replicas) < n.opts.ReplicationFactor && steps < 2*n.opts.ReplicationFactor; steps++ {
		next, err := r.core.router.successorOf(ctx, cur)
		if err != nil {
			break
		}
		if next.Equal(replicas[len(replicas)-1]) {
			break
		}
		if !containsNode(replicas, next) {
			replicas = append(replicas, next)
		}
		cur = next
	}
	return replicas
}

// Put writes a value into key's replica set. The write is acknowledged once
// the elected coordinator has applied it; the remaining replicas receive it
// asynchronously with one retry. clientTS carries a client-supplied Lamport
// timestamp, zero meaning none.
func (n *Node) Put(ctx context.Context, key, value, writer string, clientTS uint64) (uint64, error) {
	start := time.Now()

	var ts uint64
	if clientTS == 0 {
		ts = n.clock.Tick()
	} else {
		ts = n.clock.Observe(clientTS)
	}
	if writer == "" {
		writer = n.self.Addr
	}
	vv := domain.VersionedValue{Value: value, Timestamp: ts, Writer: writer}

	replicas := n.replicator.replicaSet(ctx, key)
	if len(replicas) == 0 {
		replicas = []domain.NodeInfo{n.self}
	}

	// coordinator-first: its apply is the acknowledgement condition
	ordered := replicas
	if coord, ok := n.elections.coordinator(ctx, key, replicas); ok {
		ordered = coordinatorFirst(coord, replicas)
	}

	acked := false
	var pending []domain.NodeInfo
	for _, member := range ordered {
		if acked {
			pending = append(pending, member)
			continue
		}
		if n.applyOnMember(ctx, member, key, vv) {
			acked = true
		} else {
			// unreachable now; retry asynchronously once acknowledged
			pending = append(pending, member)
		}
	}
	if !acked {
		logger.Warnw("write rejected, no reachable replica", "node", n.self.Addr, "key", key)
		return 0, domain.ErrReplicationUnavailable
	}

	for _, member := range pending {
		member := member
		_ = n.pool.Submit(ctx, func() { n.pushReplica(member, key, vv) })
	}

	n.metrics.RecordPut(time.Since(start))
	return ts, nil
}

// applyOnMember applies the value synchronously on one replica-set member.
func (n *Node) applyOnMember(ctx context.Context, member domain.NodeInfo, key string, vv domain.VersionedValue) bool {
	if member.Equal(n.self) {
		n.kv.Apply(key, vv)
		return true
	}
	callCtx, cancel := n.callCtx(ctx)
	defer cancel()
	if err := n.peers.Replicate(callCtx, member.Addr, key, vv); err != nil {
		logger.Debugw("replica push failed", "node", n.self.Addr, "member", member.Addr, "key", key, "error", err.Error())
		return false
	}
	return true
}

// pushReplica is the asynchronous fan-out path: best effort with one retry.
// Failures are left to read-repair and anti-entropy.
func (n *Node) pushReplica(member domain.NodeInfo, key string, vv domain.VersionedValue) {
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), n.opts.CallTimeout)
		var err error
		if member.Equal(n.self) {
			n.kv.Apply(key, vv)
		} else {
			err = n.peers.Replicate(ctx, member.Addr, key, vv)
		}
		cancel()
		if err == nil {
			return
		}
	}
	logger.Debugw("async replication gave up", "node", n.self.Addr, "member", member.Addr, "key", key)
}

func coordinatorFirst(coord domain.NodeInfo, replicas []domain.NodeInfo) []domain.NodeInfo {
	out := make([]domain.NodeInfo, 0, len(replicas))
	out = append(out, coord)
	for _, r := range replicas {
		if !r.Equal(coord) {
			out = append(out, r)
		}
	}
	return out
}

func containsNode(list []domain.NodeInfo, node domain.NodeInfo) bool {
	for _, m := range list {
		if m.Equal(node) {
			return true
		}
	}
	return false
}
