package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpHandler "github.com/anthanhphan/go-chord-kv-store/internal/node/adapter/inbound/http"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/adapter/outbound/memstore"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/adapter/outbound/peerhttp"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/config"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/service"
	"github.com/anthanhphan/gosdk/logger"
)

type App struct {
	cfg    *config.Config
	node   *service.Node
	server *httpHandler.Server
	client *peerhttp.Client
}

// Overrides are command-line values that take precedence over the config
// file. Zero values leave the file's settings alone.
type Overrides struct {
	Host      string
	Port      int
	Bootstrap string
}

func New(configPath string, overrides Overrides) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if overrides.Host != "" {
		cfg.Server.Hostname = overrides.Host
	}
	if overrides.Port != 0 {
		cfg.Server.Port = overrides.Port
	}
	if overrides.Bootstrap != "" {
		cfg.Server.Bootstrap = overrides.Bootstrap
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Local Store
	store := memstore.New()

	// 4. Peer Client
	client := peerhttp.NewClient()

	// 5. Node Core
	node := service.NewNode(cfg.Server.Addr(), client, store, service.Options{
		RingBits:            cfg.Ring.Bits,
		ReplicationFactor:   cfg.Ring.ReplicationFactor,
		SuccessorListSize:   cfg.Ring.SuccessorListSize,
		StabilizeInterval:   cfg.Intervals.Stabilize,
		FixFingersInterval:  cfg.Intervals.FixFingers,
		HeartbeatInterval:   cfg.Intervals.Heartbeat,
		AntiEntropyInterval: cfg.Intervals.AntiEntropy,
		ElectionTimeout:     cfg.Intervals.Election,
		CallTimeout:         cfg.Intervals.CallTimeout,
		FloodTTL:            cfg.Flood.DefaultTTL,
	})

	// 6. HTTP Server
	server := httpHandler.NewServer(cfg, node)

	return &App{
		cfg:    cfg,
		node:   node,
		server: server,
		client: client,
	}, nil
}

func (a *App) Run() error {
	// Bind before joining so the bootstrap's callbacks can reach us.
	listener, err := net.Listen("tcp", a.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Server.Addr(), err)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Serve(listener); err != nil {
			serverErrCh <- err
		}
	}()

	logger.Infow("Node starting",
		"id", a.node.Self().ID,
		"addr", a.node.Self().Addr,
		"bootstrap", a.cfg.Server.Bootstrap)

	// Join the ring, retrying while the bootstrap comes up.
	if a.cfg.Server.Bootstrap != "" {
		joinCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		var joinErr error
		for i := 0; i < 5; i++ {
			joinErr = a.node.Join(joinCtx, a.cfg.Server.Bootstrap)
			if joinErr == nil {
				break
			}
			logger.Warnw("Failed to join ring, retrying...", "attempt", i+1, "error", joinErr.Error())
			time.Sleep(2 * time.Second)
		}
		cancel()
		if joinErr != nil {
			logger.Errorw("Failed to join ring after retries, running as singleton", "error", joinErr.Error())
		}
	}

	// Maintenance loops.
	bgCtx, bgStop := context.WithCancel(context.Background())
	loopsDone := make(chan struct{})
	go func() {
		a.node.Run(bgCtx)
		close(loopsDone)
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, net.ErrClosed) && !strings.Contains(err.Error(), "use of closed network connection") {
			runErr = fmt.Errorf("HTTP server failed: %w", err)
			logger.Errorw("HTTP server exited unexpectedly", "error", err.Error())
		}
	}

	logger.Info("Shutting down node")
	bgStop()
	<-loopsDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		logger.Warnw("HTTP server shutdown failed", "error", err.Error())
	}
	a.client.Close()

	return runErr
}
