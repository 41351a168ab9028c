package flood

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memForwarder wires searchers together in process.
type memForwarder struct {
	mu    sync.Mutex
	nodes map[string]*Searcher
	sent  int
}

func (f *memForwarder) Forward(ctx context.Context, neighbor string, q Query) (Result, error) {
	f.mu.Lock()
	target := f.nodes[neighbor]
	f.sent++
	f.mu.Unlock()
	if target == nil {
		return Result{}, context.DeadlineExceeded
	}
	return target.Receive(ctx, q), nil
}

func buildLine(t *testing.T, keys map[string][]string, addrs ...string) (*memForwarder, map[string]*Searcher) {
	t.Helper()
	f := &memForwarder{nodes: make(map[string]*Searcher)}
	out := make(map[string]*Searcher, len(addrs))
	for _, addr := range addrs {
		addr := addr
		held := map[string]bool{}
		for _, k := range keys[addr] {
			held[k] = true
		}
		s := NewSearcher(addr, func(k string) bool { return held[k] }, f)
		f.nodes[addr] = s
		out[addr] = s
	}
	// line topology a-b-c-...
	for i, addr := range addrs {
		var nbs []string
		if i > 0 {
			nbs = append(nbs, addrs[i-1])
		}
		if i < len(addrs)-1 {
			nbs = append(nbs, addrs[i+1])
		}
		out[addr].SetNeighbors(nbs)
	}
	return f, out
}

func TestSearcher_FindsKeyAcrossHops(t *testing.T) {
	_, nodes := buildLine(t, map[string][]string{"c": {"wanted"}}, "a", "b", "c")

	res := nodes["a"].Start(context.Background(), "wanted", 5)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, "c", res.Matches[0].Addr)
	assert.Equal(t, "wanted", res.Matches[0].Key)
	assert.Equal(t, 2, res.Forwarded)
}

func TestSearcher_TTLBoundsFlood(t *testing.T) {
	_, nodes := buildLine(t, map[string][]string{"c": {"wanted"}}, "a", "b", "c")

	// TTL 1 reaches b but not c
	res := nodes["a"].Start(context.Background(), "wanted", 1)
	assert.Empty(t, res.Matches)
	assert.Equal(t, 1, res.Forwarded)

	// TTL 0 stays local
	res = nodes["a"].Start(context.Background(), "wanted", 0)
	assert.Empty(t, res.Matches)
	assert.Zero(t, res.Forwarded)
}

func TestSearcher_DuplicateSuppression(t *testing.T) {
	// triangle topology: every node neighbors the other two
	f := &memForwarder{nodes: make(map[string]*Searcher)}
	addrs := []string{"a", "b", "c"}
	nodes := make(map[string]*Searcher)
	for _, addr := range addrs {
		s := NewSearcher(addr, func(string) bool { return true }, f)
		f.nodes[addr] = s
		nodes[addr] = s
	}
	for _, addr := range addrs {
		var nbs []string
		for _, other := range addrs {
			if other != addr {
				nbs = append(nbs, other)
			}
		}
		nodes[addr].SetNeighbors(nbs)
	}

	res := nodes["a"].Start(context.Background(), "k", 10)

	// every node matches exactly once despite the cycle
	counts := map[string]int{}
	for _, m := range res.Matches {
		counts[m.Addr]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, counts)
}

func TestSearcher_ReceiveDropsSeenMessage(t *testing.T) {
	s := NewSearcher("a", func(string) bool { return true }, nil)
	q := Query{MsgID: "m1", Key: "k", TTL: 3, Origin: "b"}

	first := s.Receive(context.Background(), q)
	assert.Len(t, first.Matches, 1)

	second := s.Receive(context.Background(), q)
	assert.Empty(t, second.Matches)
	assert.Zero(t, second.Forwarded)
}

func TestSearcher_SeenWindowEvictsOldest(t *testing.T) {
	s := NewSearcher("a", func(string) bool { return true }, nil)
	ctx := context.Background()

	first := Query{MsgID: "m0", Key: "k", TTL: 3, Origin: "b"}
	res := s.Receive(ctx, first)
	require.Len(t, res.Matches, 1)

	// a duplicate inside the window is dropped
	res = s.Receive(ctx, first)
	assert.Empty(t, res.Matches)

	// fill the window until m0 is the oldest evicted entry
	for i := 1; i <= maxSeen; i++ {
		s.firstSighting(fmt.Sprintf("m%d", i))
	}

	// m0 aged out and counts as a fresh flood again
	res = s.Receive(ctx, first)
	assert.Len(t, res.Matches, 1)

	// the window itself never exceeds the cap
	s.mu.Lock()
	assert.LessOrEqual(t, len(s.seen), maxSeen)
	assert.LessOrEqual(t, len(s.seenOrder), maxSeen)
	s.mu.Unlock()
}

func TestSearcher_SetNeighborsExcludesSelf(t *testing.T) {
	s := NewSearcher("a", nil, nil)
	s.SetNeighbors([]string{"a", "b", "", "c"})
	assert.ElementsMatch(t, []string{"b", "c"}, s.Neighbors())
}
