package http_handler

import (
	"context"
	"errors"
	"net"

	"github.com/anthanhphan/go-chord-kv-store/internal/node/adapter/wire"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/config"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/port"
	"github.com/anthanhphan/go-chord-kv-store/pkg/flood"
	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	service port.NodeService
}

func NewServer(cfg *config.Config, service port.NodeService) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app:     app,
		cfg:     cfg,
		service: service,
	}

	// Routes
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	// Peer RPC surface.
	s.app.Post(wire.PathPing, s.handlePing)
	s.app.Post(wire.PathFindSuccessor, s.handleFindSuccessor)
	s.app.Post(wire.PathClosestPrecedingOrSelf, s.handleClosestPrecedingOrSelf)
	s.app.Post(wire.PathGetPredecessor, s.handleGetPredecessor)
	s.app.Post(wire.PathGetSuccessor, s.handleGetSuccessor)
	s.app.Post(wire.PathGetSuccessorList, s.handleGetSuccessorList)
	s.app.Post(wire.PathNotify, s.handleNotify)
	s.app.Post(wire.PathReplicaPut, s.handleReplicaPut)
	s.app.Post(wire.PathReplicaGet, s.handleReplicaGet)
	s.app.Post(wire.PathReplicaSync, s.handleReplicaSync)
	s.app.Post(wire.PathSummaryRoot, s.handleSummaryRoot)
	s.app.Post(wire.PathElect, s.handleElect)
	s.app.Post(wire.PathFloodQuery, s.handleFloodQuery)

	// Client surface.
	s.app.Post(wire.PathPut, s.handlePut)
	s.app.Get(wire.PathGet, s.handleGet)
	s.app.Get(wire.PathMetrics, s.handleMetrics)
	s.app.Post(wire.PathStartQuery, s.handleStartQuery)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr())
}

// Serve accepts connections from an already-bound listener. The app wiring
// binds first so a joining node is reachable before it contacts its bootstrap.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.Shutdown()
}

// App exposes the fiber app for handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(wire.AckResponse{OK: true})
}

func (s *Server) handleFindSuccessor(c *fiber.Ctx) error {
	var req wire.IDRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	node, err := s.service.FindSuccessor(c.Context(), req.ID)
	if err != nil {
		sdklogger.Warnw("Find successor failed", "id", req.ID, "error", err.Error())
		return s.sendJSONError(c, fiber.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(wire.NodeResponse{Node: wire.FromNode(node)})
}

func (s *Server) handleClosestPrecedingOrSelf(c *fiber.Ctx) error {
	var req wire.IDRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	node := s.service.ClosestPrecedingOrSelf(req.ID)
	return c.JSON(wire.NodeResponse{Node: wire.FromNode(node)})
}

func (s *Server) handleGetPredecessor(c *fiber.Ctx) error {
	pred, ok := s.service.Predecessor()
	if !ok {
		return c.JSON(wire.PredecessorResponse{})
	}
	ref := wire.FromNode(pred)
	return c.JSON(wire.PredecessorResponse{Predecessor: &ref})
}

func (s *Server) handleGetSuccessor(c *fiber.Ctx) error {
	return c.JSON(wire.SuccessorResponse{Successor: wire.FromNode(s.service.Successor())})
}

func (s *Server) handleGetSuccessorList(c *fiber.Ctx) error {
	return c.JSON(wire.SuccessorListResponse{Successors: wire.FromNodes(s.service.SuccessorList())})
}

func (s *Server) handleNotify(c *fiber.Ctx) error {
	var req wire.NotifyRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s.service.Notify(req.Node.ToNode())
	return c.JSON(wire.AckResponse{OK: true})
}

func (s *Server) handleReplicaPut(c *fiber.Ctx) error {
	var req wire.ReplicaPutRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Key == "" {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'key'")
	}

	s.service.ApplyReplica(req.Key, domain.VersionedValue{
		Value:     req.Value,
		Timestamp: req.TS,
		Writer:    req.WriterID,
	})
	return c.JSON(wire.AckResponse{OK: true})
}

func (s *Server) handleReplicaGet(c *fiber.Ctx) error {
	var req wire.KeyRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	v, ok := s.service.ReplicaGet(req.Key)
	if !ok {
		return c.JSON(wire.ReplicaGetResponse{Found: false})
	}
	return c.JSON(wire.ReplicaGetResponse{
		Found:    true,
		Value:    v.Value,
		TS:       v.Timestamp,
		WriterID: v.Writer,
	})
}

func (s *Server) handleReplicaSync(c *fiber.Ctx) error {
	var req wire.SyncRangeRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	missing := s.service.MergeRange(wire.ToVersionMap(req.Entries))
	return c.JSON(wire.SyncRangeResponse{Entries: wire.FromVersionMap(missing)})
}

func (s *Server) handleSummaryRoot(c *fiber.Ctx) error {
	return c.JSON(wire.SummaryRootResponse{Root: s.service.SummaryRoot()})
}

func (s *Server) handleElect(c *fiber.Ctx) error {
	var req wire.ElectRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	reply := s.service.HandleElect(req.Key, req.CandidateID)
	return c.JSON(wire.ElectResponse{ID: reply.ID, Defer: reply.Defer})
}

func (s *Server) handleFloodQuery(c *fiber.Ctx) error {
	var q flood.Query
	if err := c.BodyParser(&q); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	return c.JSON(s.service.ReceiveFlood(c.Context(), q))
}

func (s *Server) handlePut(c *fiber.Ctx) error {
	var req wire.PutRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Key == "" {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'key'")
	}

	ts, err := s.service.Put(c.Context(), req.Key, req.Value, req.WriterID, req.TS)
	if err != nil {
		sdklogger.Errorw("Put failed", "key", req.Key, "error", err.Error())
		if errors.Is(err, domain.ErrReplicationUnavailable) {
			return s.sendJSONError(c, fiber.StatusServiceUnavailable, err.Error())
		}
		return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(wire.PutResponse{OK: true, TS: ts})
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'key' query parameter")
	}

	v, err := s.service.Get(c.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(wire.GetResponse{Found: false})
		}
		sdklogger.Warnw("Get failed", "key", key, "error", err.Error())
		return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(wire.GetResponse{
		Found:    true,
		Value:    v.Value,
		TS:       v.Timestamp,
		WriterID: v.Writer,
	})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.service.MetricsSnapshot())
}

func (s *Server) handleStartQuery(c *fiber.Ctx) error {
	var req wire.StartQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Key == "" {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'key'")
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.cfg.Flood.DefaultTTL
	}
	return c.JSON(s.service.StartFlood(c.Context(), req.Key, ttl))
}
