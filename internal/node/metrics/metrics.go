package metrics

import (
	"sync"
	"time"
)

// Registry collects per-node operation counters. A node owns exactly one
// registry; the HTTP adapter serves Snapshot at /metrics.
type Registry struct {
	mu        sync.Mutex
	nodeAddr  string
	startedAt time.Time

	puts          uint64
	gets          uint64
	getHits       uint64
	getMisses     uint64
	putLatencySum time.Duration
	getLatencySum time.Duration

	lookups uint64
	hopSum  uint64

	elections   uint64
	readRepairs uint64
	syncMerges  uint64

	floodQueries  uint64
	floodForwards uint64
}

// NewRegistry creates a registry for the node at addr.
func NewRegistry(addr string) *Registry {
	return &Registry{nodeAddr: addr, startedAt: time.Now()}
}

// RecordPut accounts one acknowledged write.
func (r *Registry) RecordPut(latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts++
	r.putLatencySum += latency
}

// RecordGet accounts one read and whether it found a value.
func (r *Registry) RecordGet(latency time.Duration, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	r.getLatencySum += latency
	if hit {
		r.getHits++
	} else {
		r.getMisses++
	}
}

// RecordLookup accounts one routed lookup and its hop count.
func (r *Registry) RecordLookup(hops int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	r.hopSum += uint64(hops)
}

// RecordElection accounts one completed per-key election.
func (r *Registry) RecordElection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elections++
}

// RecordReadRepair accounts one repair push to a stale replica.
func (r *Registry) RecordReadRepair() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readRepairs++
}

// RecordSyncMerge accounts one entry applied from an anti-entropy exchange.
func (r *Registry) RecordSyncMerge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncMerges++
}

// RecordFloodQuery accounts one flood search and its forward count.
func (r *Registry) RecordFloodQuery(forwarded int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floodQueries++
	r.floodForwards += uint64(forwarded)
}

// Snapshot renders the counters for the /metrics endpoint.
func (r *Registry) Snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	avg := func(sum time.Duration, n uint64) float64 {
		if n == 0 {
			return 0
		}
		return sum.Seconds() / float64(n)
	}
	avgHops := 0.0
	if r.lookups > 0 {
		avgHops = float64(r.hopSum) / float64(r.lookups)
	}
	avgForwarded := 0.0
	if r.floodQueries > 0 {
		avgForwarded = float64(r.floodForwards) / float64(r.floodQueries)
	}

	return map[string]any{
		"node":       r.nodeAddr,
		"uptime_sec": time.Since(r.startedAt).Seconds(),
		"kv": map[string]any{
			"total_puts":          r.puts,
			"total_gets":          r.gets,
			"total_get_hits":      r.getHits,
			"total_get_misses":    r.getMisses,
			"avg_put_latency_sec": avg(r.putLatencySum, r.puts),
			"avg_get_latency_sec": avg(r.getLatencySum, r.gets),
		},
		"ring": map[string]any{
			"total_lookups": r.lookups,
			"avg_hops":      avgHops,
		},
		"replication": map[string]any{
			"elections":           r.elections,
			"read_repairs":        r.readRepairs,
			"anti_entropy_merges": r.syncMerges,
		},
		"flood": map[string]any{
			"total_queries":           r.floodQueries,
			"avg_forwarded_per_query": avgForwarded,
		},
	}
}
