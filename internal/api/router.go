package api

import (
	"net/http"

	"bombgrid/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineState is the read-only engine surface the HTTP handlers use.
// Keep this minimal - only include methods the handlers actually call.
type EngineState interface {
	// Snapshot returns a detached copy of the whole arena
	Snapshot() game.Snapshot
	// Stats returns current simulation counters
	Stats() game.EngineStats
	// Scores returns the cross-round win tally
	Scores() *game.Scoreboard
	// DiffLogStats returns change-log audit counters
	DiffLogStats() map[string]any
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineState

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default local-development origins.
	CORSOrigins []string

	// StaticDir is the directory holding the browser client.
	// If empty, defaults to "./web".
	StaticDir string

	// DisableLogging disables the request logger middleware (useful for tests).
	DisableLogging bool
}

// routerHandlers holds the handler dependencies for the router.
type routerHandlers struct {
	engine EngineState
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// This function is PURE - no goroutines, no listeners, no background
// workers - which makes it safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - order matters
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{engine: cfg.Engine}

	r.Route("/api", func(r chi.Router) {
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		})
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/scoreboard", h.handleGetScoreboard)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// The browser client.
	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = "./web"
	}
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))

	return r
}
