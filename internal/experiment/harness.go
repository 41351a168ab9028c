// Package experiment drives multi-node clusters for scale and churn runs.
// It spawns node processes, pushes a PUT/GET workload through them over the
// client HTTP API, and dumps the counters of one node at the end.
package experiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/adapter/wire"
	"github.com/anthanhphan/gosdk/logger"
)

type Config struct {
	NumNodes int
	BasePort int
	NumOps   int
	// ChurnInterval enables churn mode when positive: every interval a random
	// node is killed and restarted against the first node.
	ChurnInterval time.Duration
	// Binary is the node executable to spawn. Empty means the running binary.
	Binary string
}

type Harness struct {
	cfg   Config
	http  *http.Client
	procs []*exec.Cmd
	ports []int
}

func NewHarness(cfg Config) (*Harness, error) {
	if cfg.NumNodes <= 0 {
		return nil, fmt.Errorf("num nodes must be positive, got %d", cfg.NumNodes)
	}
	if cfg.Binary == "" {
		bin, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve node binary: %w", err)
		}
		cfg.Binary = bin
	}

	ports := make([]int, 0, cfg.NumNodes)
	for i := 0; i < cfg.NumNodes; i++ {
		ports = append(ports, cfg.BasePort+i)
	}

	return &Harness{
		cfg:   cfg,
		http:  &http.Client{Timeout: 2 * time.Second},
		ports: ports,
	}, nil
}

// Run starts the cluster, pushes the workload, prints metrics from the first
// node, and tears everything down.
func (h *Harness) Run(ctx context.Context) error {
	if err := h.startCluster(); err != nil {
		h.stopCluster()
		return err
	}
	defer h.stopCluster()

	if err := h.runWorkload(ctx); err != nil {
		return err
	}
	return h.collectMetrics(os.Stdout)
}

func (h *Harness) startNode(port int, bootstrap string) (*exec.Cmd, error) {
	args := []string{"node", "--host", "127.0.0.1", "--port", fmt.Sprintf("%d", port)}
	if bootstrap != "" {
		args = append(args, "--bootstrap", bootstrap)
	}

	cmd := exec.Command(h.cfg.Binary, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start node on port %d: %w", port, err)
	}
	return cmd, nil
}

func (h *Harness) startCluster() error {
	bootstrap := fmt.Sprintf("127.0.0.1:%d", h.cfg.BasePort)

	h.procs = make([]*exec.Cmd, 0, h.cfg.NumNodes)
	for i, port := range h.ports {
		bs := bootstrap
		if i == 0 {
			bs = ""
		}
		cmd, err := h.startNode(port, bs)
		if err != nil {
			return err
		}
		h.procs = append(h.procs, cmd)
		// Let each node bind and join before starting the next.
		time.Sleep(500 * time.Millisecond)
	}

	logger.Infow("Cluster started, waiting for ring to stabilize", "nodes", h.cfg.NumNodes)
	time.Sleep(5 * time.Second)
	return nil
}

func (h *Harness) stopCluster() {
	for _, cmd := range h.procs {
		if cmd == nil || cmd.Process == nil {
			continue
		}
		_ = cmd.Process.Signal(os.Interrupt)
	}
	for _, cmd := range h.procs {
		if cmd == nil || cmd.Process == nil {
			continue
		}
		done := make(chan struct{})
		go func(c *exec.Cmd) {
			_ = c.Wait()
			close(done)
		}(cmd)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
		}
	}
	h.procs = nil
}

func (h *Harness) runWorkload(ctx context.Context) error {
	nextChurn := time.Now().Add(h.cfg.ChurnInterval)

	for i := 0; i < h.cfg.NumOps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if h.cfg.ChurnInterval > 0 && time.Now().After(nextChurn) {
			h.churnOnce()
			nextChurn = time.Now().Add(h.cfg.ChurnInterval)
		}

		key := fmt.Sprintf("key-%d", i)
		value := fmt.Sprintf("value-%d", i)

		// Failed ops are part of the experiment; keep going.
		if err := h.put(h.randomPort(), key, value); err != nil {
			logger.Debugw("Workload put failed", "key", key, "error", err.Error())
		}
		if err := h.get(h.randomPort(), key); err != nil {
			logger.Debugw("Workload get failed", "key", key, "error", err.Error())
		}
	}
	return nil
}

// churnOnce kills a random node and restarts it bootstrapped off the first.
func (h *Harness) churnOnce() {
	idx := rand.Intn(len(h.procs))
	port := h.ports[idx]
	logger.Infow("Churn: killing node", "port", port)

	if cmd := h.procs[idx]; cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(os.Interrupt)
		_ = cmd.Wait()
	}

	logger.Infow("Churn: restarting node", "port", port)
	cmd, err := h.startNode(port, fmt.Sprintf("127.0.0.1:%d", h.cfg.BasePort))
	if err != nil {
		logger.Errorw("Churn restart failed", "port", port, "error", err.Error())
		h.procs[idx] = nil
		return
	}
	h.procs[idx] = cmd
}

func (h *Harness) randomPort() int {
	return h.ports[rand.Intn(len(h.ports))]
}

func (h *Harness) put(port int, key, value string) error {
	body, err := json.Marshal(wire.PutRequest{Key: key, Value: value, WriterID: "client0"})
	if err != nil {
		return err
	}
	resp, err := h.http.Post(
		fmt.Sprintf("http://127.0.0.1:%d%s", port, wire.PathPut),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("put %q: status %d", key, resp.StatusCode)
	}
	return nil
}

func (h *Harness) get(port int, key string) error {
	resp, err := h.http.Get(fmt.Sprintf("http://127.0.0.1:%d%s?key=%s", port, wire.PathGet, key))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (h *Harness) collectMetrics(w io.Writer) error {
	var firstErr error
	for _, port := range h.ports {
		resp, err := h.http.Get(fmt.Sprintf("http://127.0.0.1:%d%s", port, wire.PathMetrics))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch metrics from %d: %w", port, err)
			}
			continue
		}
		fmt.Fprintf(w, "=== Metrics from node %d ===\n", port)
		_, _ = io.Copy(w, resp.Body)
		fmt.Fprintln(w)
		_ = resp.Body.Close()
	}
	return firstErr
}
