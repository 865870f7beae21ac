package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"bombgrid/internal/api"
	"bombgrid/internal/config"
	"bombgrid/internal/game"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	cfg := config.Load()

	engine := game.NewEngine(tuningFrom(cfg.Game))
	log.Printf("arena: %dx%d grid, %d TPS, fuse %s, max %d players",
		cfg.Game.GridWidth, cfg.Game.GridHeight, cfg.Game.TickRate,
		cfg.Game.BombFuse, cfg.Game.MaxPlayers)

	if err := engine.StartDiffLog(cfg.Server.DiffLogPath); err != nil {
		log.Printf("diff audit log disabled: %v", err)
	} else if cfg.Server.DiffLogPath != "" {
		log.Printf("diff audit log: %s", cfg.Server.DiffLogPath)
	}

	if err := api.StartDebugServer(cfg.Observability); err != nil {
		log.Printf("debug server disabled: %v", err)
	}

	server := api.NewServer(engine, cfg.Server)

	engine.Start()

	go func() {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down")
	server.Stop()
	engine.StopDiffLog()
	engine.Stop()
}

// tuningFrom maps environment-driven settings onto the engine's tuning.
func tuningFrom(g config.GameConfig) game.Tuning {
	return game.Tuning{
		GridWidth:       g.GridWidth,
		GridHeight:      g.GridHeight,
		TickRate:        g.TickRate,
		SoftTileChance:  g.SoftTileChance,
		BombFuse:        g.BombFuse,
		BlastLifetime:   g.BlastLifetime,
		PowerUpChance:   g.PowerUpChance,
		DefaultBombsMax: g.DefaultBombsMax,
		DefaultRadius:   g.DefaultRadius,
		SpeedCap:        g.SpeedCap,
		CountdownTicks:  g.CountdownTicks,
		RestartDelay:    g.RestartDelay,
		MaxPlayers:      g.MaxPlayers,
	}
}
