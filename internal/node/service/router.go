package service

import (
	"context"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/gosdk/logger"
)

// router implements identifier lookups over the finger table. Lookups are
// iterative: this node asks each hop for its best routing step and follows
// it, bounded by m hops to stay loop-safe against stale fingers.
type router struct {
	core *Node
}

// FindSuccessor resolves the node owning identifier id.
func (n *Node) FindSuccessor(ctx context.Context, id uint64) (domain.NodeInfo, error) {
	return n.router.findSuccessor(ctx, id)
}

// ClosestPrecedingOrSelf returns the finger entry closest to (but before) id,
// or this node when no finger precedes it.
func (n *Node) ClosestPrecedingOrSelf(id uint64) domain.NodeInfo {
	return n.router.closestPrecedingOrSelf(id)
}

func (r *router) findSuccessor(ctx context.Context, id uint64) (domain.NodeInfo, error) {
	n := r.core

	cur := n.self
	curSucc := n.Successor()
	maxHops := int(n.space.Bits())

	for hops := 1; hops <= maxHops; hops++ {
		// a node owns its own identifier
		if cur.ID == id {
			n.metrics.RecordLookup(hops)
			return cur, nil
		}
		if n.space.BetweenRightIncl(id, cur.ID, curSucc.ID) {
			n.metrics.RecordLookup(hops)
			return curSucc, nil
		}

		next := r.routingStep(ctx, cur, id)
		if next.Equal(cur) || next.IsZero() {
			// no forward progress; fall back to the best successor we know
			n.metrics.RecordLookup(hops)
			return curSucc, nil
		}

		cur = next
		succ, err := r.successorOf(ctx, cur)
		if err != nil {
			// stale route: the hop died between rounds, fall back and let
			// stabilization repair the pointer
			n.metrics.RecordLookup(hops)
			return curSucc, nil
		}
		curSucc = succ
	}

	n.metrics.RecordLookup(maxHops)
	return curSucc, domain.ErrNoRoute
}

// routingStep asks cur for its closest preceding finger toward id.
func (r *router) routingStep(ctx context.Context, cur domain.NodeInfo, id uint64) domain.NodeInfo {
	n := r.core
	if cur.Equal(n.self) {
		return r.closestPrecedingOrSelf(id)
	}
	callCtx, cancel := n.callCtx(ctx)
	defer cancel()
	step, err := n.peers.ClosestPrecedingOrSelf(callCtx, cur.Addr, id)
	if err != nil {
		return domain.NodeInfo{}
	}
	return step
}

func (r *router) successorOf(ctx context.Context, node domain.NodeInfo) (domain.NodeInfo, error) {
	n := r.core
	if node.Equal(n.self) {
		return n.Successor(), nil
	}
	callCtx, cancel := n.callCtx(ctx)
	defer cancel()
	return n.peers.GetSuccessor(callCtx, node.Addr)
}

func (r *router) closestPrecedingOrSelf(id uint64) domain.NodeInfo {
	n := r.core
	n.mu.RLock()
	defer n.mu.RUnlock()
	for i := len(n.fingers) - 1; i >= 0; i-- {
		f := n.fingers[i]
		if !f.IsZero() && n.space.Between(f.ID, n.self.ID, id) {
			return f
		}
	}
	return n.self
}

// fixFingersOnce recomputes one finger slot, round-robin, keeping per-round
// cost constant while the table converges on ring changes.
func (r *router) fixFingersOnce(ctx context.Context) {
	n := r.core

	n.mu.Lock()
	i := n.nextFinger
	n.nextFinger = (n.nextFinger + 1) % len(n.fingers)
	n.mu.Unlock()

	start := n.space.Offset(n.self.ID, uint(i))
	succ, err := r.findSuccessor(ctx, start)
	if err != nil {
		logger.Debugw("fix fingers lookup failed", "node", n.self.Addr, "slot", i, "error", err.Error())
		return
	}
	n.setFinger(i, succ)
}
