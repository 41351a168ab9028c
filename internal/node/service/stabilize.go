package service

import (
	"context"
	"fmt"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/gosdk/logger"
)

// stabilizer maintains the successor/predecessor pointers and the successor
// list. Stabilization is self-correcting: every round reconciles against the
// successor's view, so stale pointers survive at most until the next tick.
type stabilizer struct {
	core *Node
}

func (s *stabilizer) join(ctx context.Context, bootstrap string) error {
	n := s.core
	if bootstrap == "" || bootstrap == n.self.Addr {
		return nil
	}

	callCtx, cancel := n.callCtx(ctx)
	defer cancel()
	succ, err := n.peers.FindSuccessor(callCtx, bootstrap, n.self.ID)
	if err != nil {
		// stay singleton; stabilization can still attach us later if a peer
		// notifies us
		return fmt.Errorf("join via %s: %w", bootstrap, err)
	}

	n.setSuccessorList([]domain.NodeInfo{succ})
	logger.Infow("joined ring", "node", n.self.Addr, "bootstrap", bootstrap, "successor", succ.Addr)
	return nil
}

func (s *stabilizer) stabilizeOnce(ctx context.Context) {
	n := s.core
	succ := n.Successor()

	// A singleton that has learned a predecessor (via notify) adopts it as
	// successor. This is how the bootstrap node discovers the ring forming
	// around it.
	if succ.Equal(n.self) {
		pred, known := n.Predecessor()
		if !known {
			return
		}
		n.setSuccessor(pred)
		succ = pred
	}

	// Adopt the successor's predecessor when it sits strictly between us and
	// the successor.
	callCtx, cancel := n.callCtx(ctx)
	x, known, err := n.peers.GetPredecessor(callCtx, succ.Addr)
	cancel()
	if err == nil && known && n.space.Between(x.ID, n.self.ID, succ.ID) {
		n.setSuccessor(x)
		succ = x
	}

	// Tell the successor about us so it can adopt us as predecessor.
	callCtx, cancel = n.callCtx(ctx)
	if err := n.peers.Notify(callCtx, succ.Addr, n.self); err != nil {
		logger.Debugw("notify failed", "node", n.self.Addr, "successor", succ.Addr, "error", err.Error())
	}
	cancel()

	// Refresh the successor list from the successor's own: [succ] + its list
	// truncated to r. This is what tolerates r-1 consecutive failures.
	callCtx, cancel = n.callCtx(ctx)
	list, err := n.peers.GetSuccessorList(callCtx, succ.Addr)
	cancel()
	if err == nil {
		n.setSuccessorList(prependTrimmed(succ, list, n.opts.SuccessorListSize))
	}

	s.refreshFloodNeighbors()
}

// refreshFloodNeighbors derives the flood-search neighbor set from the
// current ring view.
func (s *stabilizer) refreshFloodNeighbors() {
	n := s.core
	var addrs []string
	for _, m := range n.SuccessorList() {
		addrs = append(addrs, m.Addr)
	}
	if pred, known := n.Predecessor(); known {
		addrs = append(addrs, pred.Addr)
	}
	n.searcher.SetNeighbors(addrs)
}
