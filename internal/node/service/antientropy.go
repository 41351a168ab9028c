package service

import (
	"context"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/gosdk/logger"
)

// antiEntropyService reconciles the node's key range with its successor-list
// peers on a fixed interval, independent of client traffic. It repairs cold
// keys that read-repair never touches and refills peers that restarted
// empty.
type antiEntropyService struct {
	core *Node
}

func (a *antiEntropyService) runOnce(ctx context.Context) {
	n := a.core

	for _, peer := range n.SuccessorList() {
		if peer.Equal(n.self) {
			continue
		}
		a.reconcilePeer(ctx, peer)
	}
}

func (a *antiEntropyService) reconcilePeer(ctx context.Context, peer domain.NodeInfo) {
	n := a.core

	// digest fast path: matching summary roots mean identical stores
	callCtx, cancel := n.callCtx(ctx)
	peerRoot, err := n.peers.SummaryRoot(callCtx, peer.Addr)
	cancel()
	if err == nil && peerRoot == n.kv.SummaryRoot() {
		logger.Debugw("anti-entropy digests match", "node", n.self.Addr, "peer", peer.Addr)
		return
	}

	// full exchange: send our range, merge back whatever the peer holds that
	// we are missing or have stale. A freshly restarted empty peer receives
	// the entire range this way.
	callCtx, cancel = n.callCtx(ctx)
	missing, err := n.peers.SyncRange(callCtx, peer.Addr, n.kv.Snapshot())
	cancel()
	if err != nil {
		logger.Debugw("anti-entropy exchange failed", "node", n.self.Addr, "peer", peer.Addr, "error", err.Error())
		return
	}

	for key, vv := range missing {
		n.clock.Observe(vv.Timestamp)
		if n.kv.Apply(key, vv) {
			n.metrics.RecordSyncMerge()
		}
	}
}

// MergeRange is the receiving side of an anti-entropy exchange: merge the
// sender's entries through LWW, then return every local entry the sender is
// missing or holds a dominated version of.
func (n *Node) MergeRange(entries map[string]domain.VersionedValue) map[string]domain.VersionedValue {
	for key, vv := range entries {
		n.clock.Observe(vv.Timestamp)
		if n.kv.Apply(key, vv) {
			n.metrics.RecordSyncMerge()
		}
	}

	reply := make(map[string]domain.VersionedValue)
	for key, vv := range n.kv.Snapshot() {
		sent, ok := entries[key]
		if !ok || vv.Dominates(sent) {
			reply[key] = vv
		}
	}
	return reply
}
