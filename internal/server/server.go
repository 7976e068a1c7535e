package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/gravitas-015/hexward/internal/config"
	"github.com/gravitas-015/hexward/internal/gamemap"
	"github.com/gravitas-015/hexward/internal/network"
	"github.com/zyedidia/generic/mapset"
)

// Server serves geometry queries against one shared hex map
type Server struct {
	config       *config.Config
	session      *Session
	gameMap      *gamemap.GameMap
	upgrader     websocket.Upgrader
	httpSrv      *http.Server
	jwtValidator *JWTValidator
	redis        *redis.Client
	metrics      *metrics

	// Connection tracking
	connections mapset.Set[*Connection]
	connMu      sync.Mutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	log.Println("Initializing server...")

	ctx, cancel := context.WithCancel(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("Connected to Redis")

	jwtValidator, err := NewJWTValidator(ctx, cfg, NewRedisBlacklist(redisClient, cfg.Redis.BlacklistPrefix))
	if err != nil {
		cancel()
		redisClient.Close()
		return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
	}

	gameMap, err := gamemap.New(cfg.Grid)
	if err != nil {
		cancel()
		redisClient.Close()
		return nil, err
	}

	srv := newServer(ctx, cancel, cfg, jwtValidator, gameMap)
	srv.redis = redisClient

	log.Println("Server initialized successfully")
	return srv, nil
}

func newServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, v *JWTValidator, gm *gamemap.GameMap) *Server {
	return &Server{
		config:       cfg,
		session:      NewSession(uuid.NewString(), gm),
		gameMap:      gm,
		jwtValidator: v,
		metrics:      newMetrics(func() float64 { return float64(gm.Len()) }),
		connections:  mapset.New[*Connection](),
		ctx:          ctx,
		cancel:       cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: check Origin against a configured allow list
				return true
			},
		},
	}
}

// Router returns the HTTP handler for all endpoints
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/map", s.handleMapInfo)
	r.Get("/map/cells", s.handleMapCells)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	return r
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	log.Printf("Starting WebSocket server on %s", addr)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("WebSocket endpoint: ws://%s/ws", addr)
	log.Printf("Health endpoint: http://%s/health", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	log.Println("Shutting down server...")

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	s.connMu.Lock()
	s.connections.Each(func(conn *Connection) { conn.Close() })
	s.connMu.Unlock()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log.Printf("New WebSocket connection request from %s", r.RemoteAddr)

	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		log.Printf("Missing JWT token from %s", r.RemoteAddr)
		s.metrics.connectionsDenied.WithLabelValues("missing_token").Inc()
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}

	player, err := s.jwtValidator.ValidateToken(r.Context(), tokenString)
	if err != nil {
		log.Printf("Invalid JWT token from %s: %v", r.RemoteAddr, err)
		s.metrics.connectionsDenied.WithLabelValues("invalid_token").Inc()
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	log.Printf("Authenticated user: %s (%s) from %s", player.Username, player.ID, r.RemoteAddr)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := NewConnection(ws, s, player)

	s.connMu.Lock()
	s.connections.Put(conn)
	s.connMu.Unlock()
	s.metrics.wsConnections.Inc()

	log.Printf("WebSocket connection %s established: %s (%s)", conn.id, player.Username, r.RemoteAddr)

	// Blocks until the client goes away
	conn.Handle()

	s.connMu.Lock()
	s.connections.Remove(conn)
	s.connMu.Unlock()
	s.metrics.wsConnections.Dec()

	log.Printf("WebSocket connection %s closed: %s (%s)", conn.id, player.Username, r.RemoteAddr)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"session": s.session.GetStatus(),
	})
}

// handleMapInfo describes the map and its pixel extent
func (s *Server) handleMapInfo(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		network.MapInfo
		Bound *[2][2]float64 `json:"bound,omitempty"`
	}{MapInfo: mapInfo(s.gameMap.Info())}
	if b, ok := s.gameMap.Bound(); ok {
		resp.Bound = &[2][2]float64{b.Min, b.Max}
	}
	writeJSON(w, resp)
}

// handleMapCells returns every stored cell with its geometry
func (s *Server) handleMapCells(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, network.CellsPayload{Cells: cells(s.gameMap.Cells())})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func mapInfo(info gamemap.Info) network.MapInfo {
	return network.MapInfo{
		Radius:      info.Radius,
		Orientation: info.Orientation,
		CellSize:    info.CellSize,
		Cells:       info.Cells,
	}
}

func cells(views []gamemap.CellView) []network.Cell {
	out := make([]network.Cell, len(views))
	for i, v := range views {
		out[i] = cell(v)
	}
	return out
}

func cell(v gamemap.CellView) network.Cell {
	return network.Cell{
		Point:   v.Point,
		Col:     v.Col,
		Row:     v.Row,
		Center:  v.Center,
		Corners: v.Corners,
		Terrain: v.Hex.Terrain,
	}
}
