package service

import (
	"context"
	"sync"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	// missedHeartbeatsSuspect marks a peer suspect; missedHeartbeatsDead
	// declares it dead, which triggers ring repair and election invalidation.
	missedHeartbeatsSuspect = 1
	missedHeartbeatsDead    = 2
)

// failureDetector heartbeats the successor list and the predecessor. A peer
// failing consecutive heartbeats is declared dead: the ring advances past it
// and every election that named it leader is invalidated.
type failureDetector struct {
	core *Node

	mu     sync.Mutex
	misses map[string]int
}

func newFailureDetector(core *Node) *failureDetector {
	return &failureDetector{core: core, misses: make(map[string]int)}
}

func (d *failureDetector) heartbeatOnce(ctx context.Context) {
	n := d.core

	checked := make(map[string]bool)
	for _, member := range n.SuccessorList() {
		if member.Equal(n.self) || checked[member.Addr] {
			continue
		}
		checked[member.Addr] = true
		d.probe(ctx, member)
	}
	if pred, known := n.Predecessor(); known && !checked[pred.Addr] {
		d.probe(ctx, pred)
	}
}

func (d *failureDetector) probe(ctx context.Context, member domain.NodeInfo) {
	n := d.core

	callCtx, cancel := n.callCtx(ctx)
	err := n.peers.Ping(callCtx, member.Addr)
	cancel()

	d.mu.Lock()
	if err == nil {
		delete(d.misses, member.Addr)
		d.mu.Unlock()
		return
	}
	d.misses[member.Addr]++
	missed := d.misses[member.Addr]
	if missed >= missedHeartbeatsDead {
		delete(d.misses, member.Addr)
	}
	d.mu.Unlock()

	switch {
	case missed >= missedHeartbeatsDead:
		d.declareDead(member)
	case missed >= missedHeartbeatsSuspect:
		logger.Debugw("peer suspect", "node", n.self.Addr, "peer", member.Addr, "missed", missed)
	}
}

// declareDead removes the peer from the ring view and invalidates elections
// it may have been leading. Stabilization rebuilds the successor list on the
// next tick.
func (d *failureDetector) declareDead(dead domain.NodeInfo) {
	n := d.core
	logger.Warnw("peer dead", "node", n.self.Addr, "peer", dead.Addr)

	n.elections.Invalidate(dead.ID)

	n.mu.Lock()
	// drop the dead node from the successor list
	alive := n.succList[:0]
	for _, m := range n.succList {
		if !m.Equal(dead) {
			alive = append(alive, m)
		}
	}
	n.succList = alive

	if n.successor.Equal(dead) {
		if len(n.succList) > 0 {
			n.successor = n.succList[0]
		} else {
			// everyone we knew is gone; fall back to a singleton ring
			n.successor = n.self
			n.succList = []domain.NodeInfo{n.self}
		}
		logger.Infow("successor failed over", "node", n.self.Addr, "successor", n.successor.Addr)
	}
	if n.predecessor.Equal(dead) {
		n.predecessor = domain.NodeInfo{}
	}
	n.mu.Unlock()
}
