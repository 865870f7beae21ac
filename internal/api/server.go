package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"bombgrid/internal/config"
	"bombgrid/internal/game"

	"github.com/go-chi/chi/v5"
)

const gaugeUpdateInterval = time.Second

// Server is the HTTP API server with WebSocket support. It combines the
// HTTP router with the broadcast hub and wires the engine's flush handler
// so every drained diff batch reaches every connection.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	hub         *Hub
	rateLimiter *IPRateLimiter

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewServer creates an API server around an engine.
//
// IMPORTANT: background workers do NOT start until Start() is called.
// Tests can construct the server and use Router() without goroutines or
// network listeners running.
func NewServer(engine *game.Engine, cfg config.ServerConfig) *Server {
	s := &Server{
		engine: engine,
		hub: NewHub(engine, HubOptions{
			MaxConnections:  cfg.MaxConnections,
			MaxConnsPerIP:   cfg.MaxConnsPerIP,
			BroadcastBuffer: cfg.BroadcastBuffer,
		}),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
		stopChan:    make(chan struct{}),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		RateLimiter: s.rateLimiter,
		StaticDir:   cfg.StaticDir,
	})
	s.router.Get("/ws", s.hub.HandleWebSocket)

	// Wire before the tick loop starts.
	engine.SetFlushHandler(s.hub.BroadcastDiffs)
	engine.SetTickObserver(RecordTick)

	return s
}

// Start begins the HTTP server AND starts background workers. This is the
// only method that starts goroutines or opens network listeners.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	go s.gaugeLoop()

	log.Printf("api server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the broadcast hub, mainly for introspection.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Stop shuts down background workers. Call before process exit.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.rateLimiter.Stop()
	})
}

// gaugeLoop mirrors engine counters into the metrics gauges.
func (s *Server) gaugeLoop() {
	ticker := time.NewTicker(gaugeUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			UpdateArenaGauges(s.engine.Stats())
			UpdateDiffLogStats(s.engine.DiffLogStats())
		}
	}
}
