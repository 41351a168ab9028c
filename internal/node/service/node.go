package service

import (
	"context"
	"sync"
	"time"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/metrics"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/port"
	"github.com/anthanhphan/go-chord-kv-store/pkg/flood"
	"github.com/anthanhphan/go-chord-kv-store/pkg/lamport"
	"github.com/anthanhphan/go-chord-kv-store/pkg/resilience"
	"github.com/anthanhphan/go-chord-kv-store/pkg/ring"
	"github.com/anthanhphan/gosdk/logger"
)

// Options tunes a node. Zero values get defaults matching a small LAN
// cluster.
type Options struct {
	RingBits          uint
	ReplicationFactor int
	SuccessorListSize int

	StabilizeInterval   time.Duration
	FixFingersInterval  time.Duration
	HeartbeatInterval   time.Duration
	AntiEntropyInterval time.Duration

	ElectionTimeout time.Duration
	CallTimeout     time.Duration
	FloodTTL        int
}

func (o Options) withDefaults() Options {
	if o.RingBits == 0 {
		o.RingBits = ring.DefaultBits
	}
	if o.ReplicationFactor <= 0 {
		o.ReplicationFactor = 3
	}
	if o.SuccessorListSize <= 0 {
		o.SuccessorListSize = 4
	}
	if o.StabilizeInterval <= 0 {
		o.StabilizeInterval = 3 * time.Second
	}
	if o.FixFingersInterval <= 0 {
		o.FixFingersInterval = 5 * time.Second
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 3 * time.Second
	}
	if o.AntiEntropyInterval <= 0 {
		o.AntiEntropyInterval = 10 * time.Second
	}
	if o.ElectionTimeout <= 0 {
		o.ElectionTimeout = 5 * time.Second
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 2 * time.Second
	}
	if o.FloodTTL <= 0 {
		o.FloodTTL = 5
	}
	return o
}

// Node is the consistency and membership engine of one ring member. It owns
// the ring state, the versioned KV store, the Lamport clock, and the
// background maintenance loops. All ring-state mutation happens under one
// mutex so stabilization and routing never observe torn pointers.
type Node struct {
	opts  Options
	space ring.Space
	self  domain.NodeInfo

	peers    port.PeerClient
	kv       port.KVRepository
	clock    *lamport.Clock
	metrics  *metrics.Registry
	pool     *resilience.WorkerPool
	searcher *flood.Searcher

	mu          sync.RWMutex
	successor   domain.NodeInfo
	predecessor domain.NodeInfo // zero value when unknown
	succList    []domain.NodeInfo
	fingers     []domain.NodeInfo
	nextFinger  int

	stabilizer  *stabilizer
	router      *router
	replicator  *replicator
	repairer    *readRepairer
	elections   *electionManager
	detector    *failureDetector
	antiEntropy *antiEntropyService
}

var _ port.NodeService = (*Node)(nil)

// NewNode builds a node listening at addr. The node starts as a singleton
// ring; call Join to attach it to an existing one and Run to start the
// maintenance loops.
func NewNode(addr string, peers port.PeerClient, kv port.KVRepository, opts Options) *Node {
	opts = opts.withDefaults()
	space := ring.NewSpace(opts.RingBits)
	self := domain.NodeInfo{ID: space.Hash(addr), Addr: addr}

	n := &Node{
		opts:      opts,
		space:     space,
		self:      self,
		peers:     peers,
		kv:        kv,
		clock:     lamport.NewClock(0),
		metrics:   metrics.NewRegistry(addr),
		pool:      resilience.NewWorkerPool(4, 64),
		successor: self,
		succList:  []domain.NodeInfo{self},
		fingers:   make([]domain.NodeInfo, space.Bits()),
	}
	n.searcher = flood.NewSearcher(addr, kv.Has, peerFloodForwarder{peers: peers, timeout: opts.CallTimeout})

	n.stabilizer = &stabilizer{core: n}
	n.router = &router{core: n}
	n.replicator = &replicator{core: n}
	n.repairer = &readRepairer{core: n}
	n.elections = newElectionManager(n)
	n.detector = newFailureDetector(n)
	n.antiEntropy = &antiEntropyService{core: n}

	return n
}

// Self returns this node's identity.
func (n *Node) Self() domain.NodeInfo {
	return n.self
}

// Join attaches the node to the ring known by bootstrap. An empty bootstrap
// (or the node's own address) forms a singleton ring. If the bootstrap peer
// is unreachable the node stays singleton and the error is returned; a later
// notify from a joining peer can still pull it into a ring.
func (n *Node) Join(ctx context.Context, bootstrap string) error {
	return n.stabilizer.join(ctx, bootstrap)
}

// Run executes the maintenance loops until ctx is cancelled: stabilization,
// finger repair, failure detection, and anti-entropy. Loops are independent;
// each applies its own call timeouts so one dead peer cannot stall a tick.
func (n *Node) Run(ctx context.Context) {
	var wg sync.WaitGroup
	loop := func(interval time.Duration, tick func(context.Context)) {
		defer wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				tick(ctx)
			}
		}
	}

	wg.Add(4)
	go loop(n.opts.StabilizeInterval, n.stabilizeOnce)
	go loop(n.opts.FixFingersInterval, n.fixFingersOnce)
	go loop(n.opts.HeartbeatInterval, n.heartbeatOnce)
	go loop(n.opts.AntiEntropyInterval, n.antiEntropyOnce)
	wg.Wait()

	n.pool.Close()
	logger.Infow("node maintenance loops stopped", "node", n.self.Addr)
}

func (n *Node) stabilizeOnce(ctx context.Context)   { n.stabilizer.stabilizeOnce(ctx) }
func (n *Node) fixFingersOnce(ctx context.Context)  { n.router.fixFingersOnce(ctx) }
func (n *Node) heartbeatOnce(ctx context.Context)   { n.detector.heartbeatOnce(ctx) }
func (n *Node) antiEntropyOnce(ctx context.Context) { n.antiEntropy.runOnce(ctx) }

// callCtx derives a bounded context for one outbound peer call.
func (n *Node) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, n.opts.CallTimeout)
}

// ---------- ring state accessors ----------

// Successor returns the current successor.
func (n *Node) Successor() domain.NodeInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.successor
}

// Predecessor returns the current predecessor, if known.
func (n *Node) Predecessor() (domain.NodeInfo, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.predecessor, !n.predecessor.IsZero()
}

// SuccessorList returns a copy of the successor list, nearest first.
func (n *Node) SuccessorList() []domain.NodeInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]domain.NodeInfo, len(n.succList))
	copy(out, n.succList)
	return out
}

func (n *Node) setSuccessor(s domain.NodeInfo) {
	n.mu.Lock()
	changed := !n.successor.Equal(s)
	n.successor = s
	if len(n.succList) == 0 || !n.succList[0].Equal(s) {
		n.succList = prependTrimmed(s, n.succList, n.opts.SuccessorListSize)
	}
	n.mu.Unlock()
	if changed {
		logger.Infow("successor changed", "node", n.self.Addr, "successor", s.Addr)
	}
}

func (n *Node) setSuccessorList(list []domain.NodeInfo) {
	if len(list) == 0 {
		return
	}
	n.mu.Lock()
	n.successor = list[0]
	n.succList = list
	n.mu.Unlock()
}

func (n *Node) setPredecessor(p domain.NodeInfo) {
	n.mu.Lock()
	changed := !n.predecessor.Equal(p)
	n.predecessor = p
	n.mu.Unlock()
	if changed && !p.IsZero() {
		logger.Infow("predecessor changed", "node", n.self.Addr, "predecessor", p.Addr)
	}
}

func (n *Node) clearPredecessor() {
	n.mu.Lock()
	n.predecessor = domain.NodeInfo{}
	n.mu.Unlock()
}

func (n *Node) finger(i int) domain.NodeInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.fingers[i]
}

func (n *Node) setFinger(i int, f domain.NodeInfo) {
	n.mu.Lock()
	n.fingers[i] = f
	n.mu.Unlock()
}

// prependTrimmed builds [head, rest...] without duplicating head, capped at
// max entries.
func prependTrimmed(head domain.NodeInfo, rest []domain.NodeInfo, max int) []domain.NodeInfo {
	out := make([]domain.NodeInfo, 0, max)
	out = append(out, head)
	for _, r := range rest {
		if len(out) >= max {
			break
		}
		if !r.Equal(head) {
			out = append(out, r)
		}
	}
	return out
}

// ---------- peer-facing handlers ----------

// Notify handles a predecessor candidacy: adopt when no predecessor is known
// or the candidate sits strictly between the current one and this node.
func (n *Node) Notify(candidate domain.NodeInfo) {
	if candidate.Equal(n.self) {
		return
	}
	pred, known := n.Predecessor()
	if !known || n.space.Between(candidate.ID, pred.ID, n.self.ID) {
		n.setPredecessor(candidate)
	}
}

// ApplyReplica merges a replicated value into the local store, advancing the
// Lamport clock past the observed timestamp.
func (n *Node) ApplyReplica(key string, value domain.VersionedValue) {
	n.clock.Observe(value.Timestamp)
	n.kv.Apply(key, value)
}

// ReplicaGet reads the local version only.
func (n *Node) ReplicaGet(key string) (domain.VersionedValue, bool) {
	return n.kv.Get(key)
}

// SummaryRoot exposes the KV content digest.
func (n *Node) SummaryRoot() uint64 {
	return n.kv.SummaryRoot()
}

// MetricsSnapshot renders the node's counters.
func (n *Node) MetricsSnapshot() map[string]any {
	return n.metrics.Snapshot()
}

// ---------- flood search ----------

// StartFlood begins a TTL-bounded flood search from this node.
func (n *Node) StartFlood(ctx context.Context, key string, ttl int) flood.Result {
	if ttl <= 0 {
		ttl = n.opts.FloodTTL
	}
	res := n.searcher.Start(ctx, key, ttl)
	n.metrics.RecordFloodQuery(res.Forwarded)
	return res
}

// ReceiveFlood handles one incoming flood hop.
func (n *Node) ReceiveFlood(ctx context.Context, q flood.Query) flood.Result {
	return n.searcher.Receive(ctx, q)
}

// peerFloodForwarder adapts the peer client to the flood.Forwarder interface.
type peerFloodForwarder struct {
	peers   port.PeerClient
	timeout time.Duration
}

func (f peerFloodForwarder) Forward(ctx context.Context, neighbor string, q flood.Query) (flood.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.peers.FloodQuery(callCtx, neighbor, q)
}
