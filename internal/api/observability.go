package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"bombgrid/internal/config"
	"bombgrid/internal/game"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-player labels to prevent DoS)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_player_count",
		Help: "Current number of players",
	})

	aliveCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_alive_count",
		Help: "Players currently alive",
	})

	bombCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_bomb_count",
		Help: "Bombs currently burning",
	})

	blastCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_blast_count",
		Help: "Explosions currently lethal",
	})

	powerUpCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_powerup_count",
		Help: "Power-ups on the floor",
	})

	roundsCompleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_rounds_completed",
		Help: "Finished rounds since start",
	})

	// Diff log metrics
	diffLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "diff_log_appended_total",
		Help: "Diffs appended to the change log",
	})

	diffLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "diff_log_dropped_total",
		Help: "Audit mirror records dropped under load",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter, caps or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket batches broadcast",
	})

	wsBroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_broadcast_dropped_total",
		Help: "Diff batches dropped because a send buffer was full",
	})
)

// StartDebugServer starts the internal observability server with pprof and
// the Prometheus endpoint.
// CRITICAL: this MUST bind to localhost only to prevent pprof-based DoS.
func StartDebugServer(cfg config.ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("debug server on %s (pprof, /metrics)", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()

	return nil
}

// RecordTick records tick timing for the histogram
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateArenaGauges pushes an engine counter snapshot into the gauges
func UpdateArenaGauges(s game.EngineStats) {
	playerCount.Set(float64(s.Players))
	aliveCount.Set(float64(s.Alive))
	bombCount.Set(float64(s.Bombs))
	blastCount.Set(float64(s.Explosions))
	powerUpCount.Set(float64(s.PowerUps))
	roundsCompleted.Set(float64(s.Rounds))
}

// UpdateDiffLogStats pushes audit counters into the gauges
func UpdateDiffLogStats(stats map[string]any) {
	if total, ok := stats["total"].(uint64); ok {
		diffLogTotal.Set(float64(total))
	}
	if dropped, ok := stats["dropped"].(uint64); ok {
		diffLogDropped.Set(float64(dropped))
	}
}

// RecordConnectionRejected increments the rejection counter.
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates the WebSocket connection gauge
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one broadcast batch
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// IncrementBroadcastDropped counts a batch dropped on backpressure
func IncrementBroadcastDropped() {
	wsBroadcastDropped.Inc()
}
