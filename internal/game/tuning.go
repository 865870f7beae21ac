package game

import "time"

// Tuning holds every simulation constant the engine reads. The config
// package maps environment-driven settings onto this struct so the game
// package has no config dependency and tests can tune freely.
type Tuning struct {
	GridWidth  int
	GridHeight int
	TickRate   int

	SoftTileChance float64
	BombFuse       time.Duration
	BlastLifetime  time.Duration
	PowerUpChance  float64

	DefaultBombsMax int
	DefaultRadius   int
	SpeedCap        float64

	CountdownTicks int
	RestartDelay   time.Duration

	MaxPlayers int
}

// DefaultTuning returns the standard arena parameters.
func DefaultTuning() Tuning {
	return Tuning{
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
