package service

import (
	"context"
	"sort"
	"sync"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/port"
	"github.com/anthanhphan/gosdk/logger"
)

// electionRole is this node's view of a key's coordinator election.
type electionRole string

const (
	roleIdle     electionRole = "idle"
	roleElecting electionRole = "electing"
	roleLeader   electionRole = "leader"
	roleFollower electionRole = "follower"
)

// keyElection is the ephemeral per-key election state. It is recomputed from
// liveness whenever the replica set changes or the leader is suspected dead;
// nothing here is persisted.
type keyElection struct {
	role   electionRole
	leader uint64
	epoch  uint64
}

// electionManager runs bully elections scoped to a key's replica set: the
// highest-identifier live member wins. The election is advisory, it picks a
// write coordinator, while convergence itself rests on the LWW merge rule.
type electionManager struct {
	core *Node

	mu     sync.Mutex
	perKey map[string]*keyElection
}

func newElectionManager(core *Node) *electionManager {
	return &electionManager{core: core, perKey: make(map[string]*keyElection)}
}

// HandleElect answers a candidacy probe: reply with our identifier, deferring
// the candidate when ours is higher.
func (n *Node) HandleElect(key string, candidateID uint64) port.ElectReply {
	return n.elections.handleElect(key, candidateID)
}

// Answering is stateless: only the node that started the election tracks
// its progress, so an answered candidacy leaves the recipient's per-key
// state untouched.
func (m *electionManager) handleElect(key string, candidateID uint64) port.ElectReply {
	self := m.core.self.ID
	return port.ElectReply{ID: self, Defer: self > candidateID}
}

// coordinator returns the elected write coordinator for key among the given
// replicas, reusing a cached leader while it stays in the set and alive.
func (m *electionManager) coordinator(ctx context.Context, key string, replicas []domain.NodeInfo) (domain.NodeInfo, bool) {
	if len(replicas) == 0 {
		m.clear(key)
		return domain.NodeInfo{}, false
	}

	if leader, ok := m.cachedLeader(key, replicas); ok {
		if m.isAlive(ctx, leader) {
			return leader, true
		}
		m.Invalidate(leader.ID)
	}

	return m.elect(ctx, key, replicas)
}

// elect runs one bully round: probe every member, collect the identifiers of
// those that answered, and crown the highest. Identifier uniqueness makes a
// tie impossible.
func (m *electionManager) elect(ctx context.Context, key string, replicas []domain.NodeInfo) (domain.NodeInfo, bool) {
	n := m.core

	m.setRole(key, roleElecting)

	// probe highest-id members first so the common case settles on the first
	// live answer
	sorted := make([]domain.NodeInfo, len(replicas))
	copy(sorted, replicas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })

	var leader domain.NodeInfo
	found := false
	for _, member := range sorted {
		if member.Equal(n.self) {
			leader, found = member, true
			break
		}
		probeCtx, cancel := context.WithTimeout(ctx, n.opts.ElectionTimeout)
		reply, err := n.peers.Elect(probeCtx, member.Addr, key, n.self.ID)
		cancel()
		if err != nil {
			continue
		}
		leader, found = domain.NodeInfo{ID: reply.ID, Addr: member.Addr}, true
		break
	}

	if !found {
		m.clear(key)
		return domain.NodeInfo{}, false
	}

	m.mu.Lock()
	st := m.stateLocked(key)
	st.leader = leader.ID
	st.epoch++
	if leader.Equal(n.self) {
		st.role = roleLeader
	} else {
		st.role = roleFollower
	}
	epoch := st.epoch
	m.mu.Unlock()

	n.metrics.RecordElection()
	logger.Debugw("coordinator elected", "node", n.self.Addr, "key", key, "leader", leader.Addr, "epoch", epoch)
	return leader, true
}

// Invalidate drops every cached election naming nodeID as leader. The
// failure detector calls this when it declares a peer dead, forcing the next
// coordination need to re-elect.
func (m *electionManager) Invalidate(nodeID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, st := range m.perKey {
		if st.leader == nodeID && (st.role == roleLeader || st.role == roleFollower) {
			delete(m.perKey, key)
		}
	}
}

func (m *electionManager) cachedLeader(key string, replicas []domain.NodeInfo) (domain.NodeInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.perKey[key]
	if !ok || (st.role != roleLeader && st.role != roleFollower) {
		return domain.NodeInfo{}, false
	}
	for _, r := range replicas {
		if r.ID == st.leader {
			return r, true
		}
	}
	// the replica set moved under the cached leader
	delete(m.perKey, key)
	return domain.NodeInfo{}, false
}

func (m *electionManager) isAlive(ctx context.Context, member domain.NodeInfo) bool {
	n := m.core
	if member.Equal(n.self) {
		return true
	}
	callCtx, cancel := n.callCtx(ctx)
	defer cancel()
	return n.peers.Ping(callCtx, member.Addr) == nil
}

func (m *electionManager) setRole(key string, role electionRole) {
	m.mu.Lock()
	m.stateLocked(key).role = role
	m.mu.Unlock()
}

func (m *electionManager) clear(key string) {
	m.mu.Lock()
	delete(m.perKey, key)
	m.mu.Unlock()
}

func (m *electionManager) stateLocked(key string) *keyElection {
	st, ok := m.perKey[key]
	if !ok {
		st = &keyElection{role: roleIdle}
		m.perKey[key] = st
	}
	return st
}

// role reports this node's current election role for a key.
func (m *electionManager) role(key string) electionRole {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.perKey[key]; ok {
		return st.role
	}
	return roleIdle
}
