// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// GameConfig holds all arena simulation settings.
// Grid dimensions must be odd so the pillar pattern lines up with the border.
type GameConfig struct {
	GridWidth  int // Arena width in tiles (odd)
	GridHeight int // Arena height in tiles (odd)
	TickRate   int // Simulation ticks per second

	SoftTileChance float64       // Probability an eligible cell becomes a soft tile
	BombFuse       time.Duration // Time from placement to detonation
	BlastLifetime  time.Duration // How long explosion tiles stay lethal
	PowerUpChance  float64       // Probability a destroyed soft tile drops a power-up

	DefaultBombsMax int     // Starting simultaneous bomb cap per player
	DefaultRadius   int     // Starting blast radius in tiles
	SpeedCap        float64 // Maximum speed multiplier from pickups

	CountdownTicks int           // One-second countdown steps before a round goes live
	RestartDelay   time.Duration // Pause between game over and the next round

	MaxPlayers int // Join ceiling; joins beyond this are rejected with gameFull
}

// DefaultGame returns the default simulation configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		GridWidth:       21,
		GridHeight:      21,
		TickRate:        30,
		SoftTileChance:  0.75,
		BombFuse:        3 * time.Second,
		BlastLifetime:   600 * time.Millisecond,
		PowerUpChance:   0.3,
		DefaultBombsMax: 1,
		DefaultRadius:   2,
		SpeedCap:        2.0,
		CountdownTicks:  5,
		RestartDelay:    5 * time.Second,
		MaxPlayers:      16,
	}
}

// GameFromEnv returns simulation configuration with environment variable overrides.
// Environment variables take precedence over defaults.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if w := getEnvInt("GRID_WIDTH", 0); w > 0 {
		cfg.GridWidth = w | 1 // force odd
	}
	if h := getEnvInt("GRID_HEIGHT", 0); h > 0 {
		cfg.GridHeight = h | 1
	}
	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if p := getEnvFloat("SOFT_TILE_CHANCE", -1); p >= 0 && p <= 1 {
		cfg.SoftTileChance = p
	}
	if d := getEnvDuration("BOMB_FUSE", 0); d > 0 {
		cfg.BombFuse = d
	}
	if d := getEnvDuration("BLAST_LIFETIME", 0); d > 0 {
		cfg.BlastLifetime = d
	}
	if p := getEnvFloat("POWERUP_CHANCE", -1); p >= 0 && p <= 1 {
		cfg.PowerUpChance = p
	}
	if d := getEnvDuration("RESTART_DELAY", 0); d > 0 {
		cfg.RestartDelay = d
	}
	if mp := getEnvInt("MAX_PLAYERS", 0); mp > 0 {
		cfg.MaxPlayers = mp
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP/WebSocket server settings.
type ServerConfig struct {
	Port            int
	MaxConnections  int    // Total viewer/player connections
	MaxConnsPerIP   int    // Connections per source IP
	StaticDir       string // Directory served at / (the browser client)
	DiffLogPath     string // JSONL audit trail of drained diff batches; empty disables
	BroadcastBuffer int    // Outbound hub channel capacity
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            3000,
		MaxConnections:  500,
		MaxConnsPerIP:   10,
		StaticDir:       "./web",
		DiffLogPath:     "diffs.jsonl",
		BroadcastBuffer: 256,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if mc := getEnvInt("MAX_CONNECTIONS", 0); mc > 0 {
		cfg.MaxConnections = mc
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v, ok := os.LookupEnv("DIFF_LOG_PATH"); ok {
		cfg.DiffLogPath = v
	}

	return cfg
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// ObservabilityConfig configures the internal debug/metrics server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // MUST stay on localhost in production
}

// DefaultObservability returns safe defaults.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060", // Localhost only - NEVER expose externally
	}
}

// ObservabilityFromEnv returns observability configuration with env overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := DefaultObservability()
	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Enabled = false
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Game          GameConfig
	Server        ServerConfig
	Observability ObservabilityConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Game:          GameFromEnv(),
		Server:        ServerFromEnv(),
		Observability: ObservabilityFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
