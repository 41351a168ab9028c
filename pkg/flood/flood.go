package flood

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Match reports one node that holds the searched key.
type Match struct {
	Addr string `json:"addr"`
	Key  string `json:"key"`
}

// Result aggregates matches and the number of forwards a query caused
// downstream of this node.
type Result struct {
	Matches   []Match `json:"matches"`
	Forwarded int     `json:"forwarded"`
}

// Query is one hop of a TTL-bounded flood. MsgID identifies the flood for
// duplicate suppression across hops.
type Query struct {
	MsgID  string `json:"msg_id"`
	Key    string `json:"key"`
	TTL    int    `json:"ttl"`
	Origin string `json:"origin"`
}

// Forwarder delivers a query to one neighbor and returns that neighbor's
// aggregated result. The network adapter implements this.
type Forwarder interface {
	Forward(ctx context.Context, neighbor string, q Query) (Result, error)
}

// Searcher implements unstructured flood search over the node's ring
// neighborhood. The neighbor set is refreshed from the ring view each
// stabilization round, so floods follow the live topology.
type Searcher struct {
	addr      string
	hasKey    func(key string) bool
	forwarder Forwarder

	mu        sync.Mutex
	neighbors map[string]struct{}
	seen      map[string]struct{}
	seenOrder []string
}

// maxSeen bounds the duplicate-suppression set. Once full, the oldest
// message ID is evicted, so a long-running node holds a sliding window of
// recent floods instead of every ID it ever saw.
const maxSeen = 4096

// NewSearcher creates a searcher for the node at addr. hasKey answers local
// match checks against the node's KV store.
func NewSearcher(addr string, hasKey func(string) bool, forwarder Forwarder) *Searcher {
	return &Searcher{
		addr:      addr,
		hasKey:    hasKey,
		forwarder: forwarder,
		neighbors: make(map[string]struct{}),
		seen:      make(map[string]struct{}),
	}
}

// SetNeighbors replaces the neighbor set, dropping the node's own address.
func (s *Searcher) SetNeighbors(addrs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.neighbors = make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		if a != s.addr && a != "" {
			s.neighbors[a] = struct{}{}
		}
	}
}

// Neighbors returns the current neighbor addresses.
func (s *Searcher) Neighbors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.neighbors))
	for a := range s.neighbors {
		out = append(out, a)
	}
	return out
}

// Start begins a new flood from this node and returns the aggregated result.
func (s *Searcher) Start(ctx context.Context, key string, ttl int) Result {
	q := Query{
		MsgID:  uuid.NewString(),
		Key:    key,
		TTL:    ttl,
		Origin: s.addr,
	}
	s.markSeen(q.MsgID)

	res := s.localResult(key)
	s.fanOut(ctx, q, "", &res)
	return res
}

// Receive handles a query arriving from a peer. Duplicate message IDs are
// dropped so a flood visits each node at most once.
func (s *Searcher) Receive(ctx context.Context, q Query) Result {
	if !s.firstSighting(q.MsgID) {
		return Result{Matches: []Match{}}
	}

	res := s.localResult(q.Key)
	s.fanOut(ctx, q, q.Origin, &res)
	return res
}

func (s *Searcher) localResult(key string) Result {
	res := Result{Matches: []Match{}}
	if s.hasKey != nil && s.hasKey(key) {
		res.Matches = append(res.Matches, Match{Addr: s.addr, Key: key})
	}
	return res
}

// fanOut forwards the query with a decremented TTL to every neighbor except
// the one it arrived from. Unreachable neighbors are skipped.
func (s *Searcher) fanOut(ctx context.Context, q Query, skip string, res *Result) {
	if q.TTL <= 0 || s.forwarder == nil {
		return
	}

	next := Query{MsgID: q.MsgID, Key: q.Key, TTL: q.TTL - 1, Origin: s.addr}
	for _, nb := range s.Neighbors() {
		if nb == skip {
			continue
		}
		sub, err := s.forwarder.Forward(ctx, nb, next)
		if err != nil {
			continue
		}
		res.Forwarded += 1 + sub.Forwarded
		res.Matches = append(res.Matches, sub.Matches...)
	}
}

func (s *Searcher) markSeen(msgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rememberLocked(msgID)
}

// firstSighting records msgID and reports whether it was new.
func (s *Searcher) firstSighting(msgID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[msgID]; ok {
		return false
	}
	s.rememberLocked(msgID)
	return true
}

// rememberLocked adds msgID to the seen window, evicting the oldest entry
// when the window is full. Caller holds s.mu.
func (s *Searcher) rememberLocked(msgID string) {
	if _, ok := s.seen[msgID]; ok {
		return
	}
	if len(s.seenOrder) >= maxSeen {
		oldest := s.seenOrder[0]
		s.seenOrder = s.seenOrder[1:]
		delete(s.seen, oldest)
	}
	s.seen[msgID] = struct{}{}
	s.seenOrder = append(s.seenOrder, msgID)
}
