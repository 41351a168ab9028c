// Package wire defines the JSON bodies of the peer-to-peer and client HTTP
// surface. Both the inbound fiber handlers and the outbound peer client
// marshal through these types.
package wire

import (
	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
)

// Peer RPC paths.
const (
	PathPing                   = "/ping"
	PathFindSuccessor          = "/find_successor"
	PathClosestPrecedingOrSelf = "/closest_preceding_or_self"
	PathGetPredecessor         = "/get_predecessor"
	PathGetSuccessor           = "/get_successor"
	PathGetSuccessorList       = "/get_successor_list"
	PathNotify                 = "/notify"
	PathReplicaPut             = "/replica_put"
	PathReplicaGet             = "/replica_get"
	PathReplicaSync            = "/replica_sync"
	PathSummaryRoot            = "/summary_root"
	PathElect                  = "/elect"
	PathFloodQuery             = "/g_query"
)

// Client-facing paths.
const (
	PathPut        = "/put"
	PathGet        = "/get"
	PathMetrics    = "/metrics"
	PathStartQuery = "/g_start_query"
)

// NodeRef is a serializable NodeInfo.
type NodeRef struct {
	ID   uint64 `json:"id"`
	Addr string `json:"addr"`
}

func FromNode(n domain.NodeInfo) NodeRef {
	return NodeRef{ID: n.ID, Addr: n.Addr}
}

func (r NodeRef) ToNode() domain.NodeInfo {
	return domain.NodeInfo{ID: r.ID, Addr: r.Addr}
}

func FromNodes(nodes []domain.NodeInfo) []NodeRef {
	out := make([]NodeRef, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, FromNode(n))
	}
	return out
}

func ToNodes(refs []NodeRef) []domain.NodeInfo {
	out := make([]domain.NodeInfo, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.ToNode())
	}
	return out
}

// Version is a serializable VersionedValue.
type Version struct {
	Value    string `json:"value"`
	TS       uint64 `json:"ts"`
	WriterID string `json:"writer_id"`
}

func FromVersion(v domain.VersionedValue) Version {
	return Version{Value: v.Value, TS: v.Timestamp, WriterID: v.Writer}
}

func (v Version) ToVersion() domain.VersionedValue {
	return domain.VersionedValue{Value: v.Value, Timestamp: v.TS, Writer: v.WriterID}
}

func FromVersionMap(m map[string]domain.VersionedValue) map[string]Version {
	out := make(map[string]Version, len(m))
	for k, v := range m {
		out[k] = FromVersion(v)
	}
	return out
}

func ToVersionMap(m map[string]Version) map[string]domain.VersionedValue {
	out := make(map[string]domain.VersionedValue, len(m))
	for k, v := range m {
		out[k] = v.ToVersion()
	}
	return out
}

type AckResponse struct {
	OK bool `json:"ok"`
}

type IDRequest struct {
	ID uint64 `json:"id"`
}

type NodeResponse struct {
	Node NodeRef `json:"node"`
}

type PredecessorResponse struct {
	Predecessor *NodeRef `json:"predecessor"`
}

type SuccessorResponse struct {
	Successor NodeRef `json:"successor"`
}

type SuccessorListResponse struct {
	Successors []NodeRef `json:"successor_list"`
}

type NotifyRequest struct {
	Node NodeRef `json:"node"`
}

type ReplicaPutRequest struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	TS       uint64 `json:"ts"`
	WriterID string `json:"writer_id"`
}

type KeyRequest struct {
	Key string `json:"key"`
}

type ReplicaGetResponse struct {
	Found    bool   `json:"found"`
	Value    string `json:"value,omitempty"`
	TS       uint64 `json:"ts,omitempty"`
	WriterID string `json:"writer_id,omitempty"`
}

type SyncRangeRequest struct {
	Entries map[string]Version `json:"entries"`
}

type SyncRangeResponse struct {
	Entries map[string]Version `json:"entries"`
}

type SummaryRootResponse struct {
	Root uint64 `json:"root"`
}

type ElectRequest struct {
	Key         string `json:"key"`
	CandidateID uint64 `json:"candidate_id"`
}

type ElectResponse struct {
	ID    uint64 `json:"id"`
	Defer bool   `json:"defer"`
}

// Client API bodies.

type PutRequest struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	TS       uint64 `json:"ts,omitempty"`
	WriterID string `json:"writer_id,omitempty"`
}

type PutResponse struct {
	OK bool   `json:"ok"`
	TS uint64 `json:"ts"`
}

type GetResponse struct {
	Found    bool   `json:"found"`
	Value    string `json:"value,omitempty"`
	TS       uint64 `json:"ts,omitempty"`
	WriterID string `json:"writer_id,omitempty"`
}

type StartQueryRequest struct {
	Key string `json:"key"`
	TTL int    `json:"ttl,omitempty"`
}
