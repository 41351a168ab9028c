// Package peerhttp implements the outbound peer RPC surface over HTTP/JSON.
package peerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/adapter/wire"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/port"
	"github.com/anthanhphan/go-chord-kv-store/pkg/flood"
	"github.com/anthanhphan/go-chord-kv-store/pkg/resilience"
)

// Client implements port.PeerClient. It keeps one circuit breaker per peer
// address so calls to a dead peer fail fast between failure-detector rounds
// instead of burning a timeout each.
type Client struct {
	http *http.Client

	mu       sync.Mutex
	breakers map[string]*resilience.Breaker
}

var _ port.PeerClient = (*Client)(nil)

// NewClient creates a peer client. Per-call deadlines come from the caller's
// context; the transport itself puts a ceiling on idle connections only.
func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		breakers: make(map[string]*resilience.Breaker),
	}
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) breaker(addr string) *resilience.Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[addr]
	if !ok {
		b = resilience.NewBreaker(resilience.BreakerConfig{
			Name:             addr,
			FailureThreshold: 3,
			OpenTimeout:      5 * time.Second,
		})
		c.breakers[addr] = b
	}
	return b
}

// post sends a JSON body to a peer path and decodes the JSON reply into out.
// Transport-level failures are mapped onto domain.ErrPeerUnreachable so the
// service layer can treat them uniformly as suspicion input.
func (c *Client) post(ctx context.Context, addr, path string, in, out any) error {
	return c.breaker(addr).Execute(ctx, func(ctx context.Context) error {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build %s request: %w", path, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", domain.ErrPeerUnreachable, addr, path, err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: %s%s: status %d", domain.ErrPeerUnreachable, addr, path, resp.StatusCode)
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response from %s: %w", path, addr, err)
		}
		return nil
	})
}

func (c *Client) Ping(ctx context.Context, addr string) error {
	var ack wire.AckResponse
	return c.post(ctx, addr, wire.PathPing, struct{}{}, &ack)
}

func (c *Client) FindSuccessor(ctx context.Context, addr string, id uint64) (domain.NodeInfo, error) {
	var resp wire.NodeResponse
	if err := c.post(ctx, addr, wire.PathFindSuccessor, wire.IDRequest{ID: id}, &resp); err != nil {
		return domain.NodeInfo{}, err
	}
	return resp.Node.ToNode(), nil
}

func (c *Client) ClosestPrecedingOrSelf(ctx context.Context, addr string, id uint64) (domain.NodeInfo, error) {
	var resp wire.NodeResponse
	if err := c.post(ctx, addr, wire.PathClosestPrecedingOrSelf, wire.IDRequest{ID: id}, &resp); err != nil {
		return domain.NodeInfo{}, err
	}
	return resp.Node.ToNode(), nil
}

func (c *Client) GetPredecessor(ctx context.Context, addr string) (domain.NodeInfo, bool, error) {
	var resp wire.PredecessorResponse
	if err := c.post(ctx, addr, wire.PathGetPredecessor, struct{}{}, &resp); err != nil {
		return domain.NodeInfo{}, false, err
	}
	if resp.Predecessor == nil {
		return domain.NodeInfo{}, false, nil
	}
	return resp.Predecessor.ToNode(), true, nil
}

func (c *Client) GetSuccessor(ctx context.Context, addr string) (domain.NodeInfo, error) {
	var resp wire.SuccessorResponse
	if err := c.post(ctx, addr, wire.PathGetSuccessor, struct{}{}, &resp); err != nil {
		return domain.NodeInfo{}, err
	}
	return resp.Successor.ToNode(), nil
}

func (c *Client) GetSuccessorList(ctx context.Context, addr string) ([]domain.NodeInfo, error) {
	var resp wire.SuccessorListResponse
	if err := c.post(ctx, addr, wire.PathGetSuccessorList, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return wire.ToNodes(resp.Successors), nil
}

func (c *Client) Notify(ctx context.Context, addr string, candidate domain.NodeInfo) error {
	var ack wire.AckResponse
	return c.post(ctx, addr, wire.PathNotify, wire.NotifyRequest{Node: wire.FromNode(candidate)}, &ack)
}

func (c *Client) Replicate(ctx context.Context, addr string, key string, value domain.VersionedValue) error {
	req := wire.ReplicaPutRequest{Key: key, Value: value.Value, TS: value.Timestamp, WriterID: value.Writer}
	var ack wire.AckResponse
	return c.post(ctx, addr, wire.PathReplicaPut, req, &ack)
}

func (c *Client) ReplicaGet(ctx context.Context, addr string, key string) (domain.VersionedValue, bool, error) {
	var resp wire.ReplicaGetResponse
	if err := c.post(ctx, addr, wire.PathReplicaGet, wire.KeyRequest{Key: key}, &resp); err != nil {
		return domain.VersionedValue{}, false, err
	}
	if !resp.Found {
		return domain.VersionedValue{}, false, nil
	}
	return domain.VersionedValue{Value: resp.Value, Timestamp: resp.TS, Writer: resp.WriterID}, true, nil
}

func (c *Client) SyncRange(ctx context.Context, addr string, entries map[string]domain.VersionedValue) (map[string]domain.VersionedValue, error) {
	req := wire.SyncRangeRequest{Entries: wire.FromVersionMap(entries)}
	var resp wire.SyncRangeResponse
	if err := c.post(ctx, addr, wire.PathReplicaSync, req, &resp); err != nil {
		return nil, err
	}
	return wire.ToVersionMap(resp.Entries), nil
}

func (c *Client) SummaryRoot(ctx context.Context, addr string) (uint64, error) {
	var resp wire.SummaryRootResponse
	if err := c.post(ctx, addr, wire.PathSummaryRoot, struct{}{}, &resp); err != nil {
		return 0, err
	}
	return resp.Root, nil
}

func (c *Client) Elect(ctx context.Context, addr string, key string, candidateID uint64) (port.ElectReply, error) {
	var resp wire.ElectResponse
	if err := c.post(ctx, addr, wire.PathElect, wire.ElectRequest{Key: key, CandidateID: candidateID}, &resp); err != nil {
		return port.ElectReply{}, err
	}
	return port.ElectReply{ID: resp.ID, Defer: resp.Defer}, nil
}

func (c *Client) FloodQuery(ctx context.Context, addr string, q flood.Query) (flood.Result, error) {
	var resp flood.Result
	if err := c.post(ctx, addr, wire.PathFloodQuery, q, &resp); err != nil {
		return flood.Result{}, err
	}
	return resp, nil
}
