package game

import (
	"sort"
	"time"
)

// Snapshot is a value-typed copy of the full arena state. It is what a new
// connection receives, what the fullState diff carries after a round reset,
// and what the REST state endpoint serves. Nothing in it aliases engine
// memory, so it is safe to serialize outside the engine mutex.
type Snapshot struct {
	Tick      int64              `json:"tick" msgpack:"tick"`
	Width     int                `json:"width" msgpack:"width"`
	Height    int                `json:"height" msgpack:"height"`
	Grid      [][]Tile           `json:"grid" msgpack:"grid"`
	Players   []PlayerPayload    `json:"players" msgpack:"players"`
	Bombs     []BombPayload      `json:"bombs" msgpack:"bombs"`
	Blasts    []ExplosionPayload `json:"explosions" msgpack:"explosions"`
	PowerUps  []PowerUpPayload   `json:"powerUps" msgpack:"powerUps"`
	GameOver  bool               `json:"gameOver" msgpack:"gameOver"`
	Winner    string             `json:"winner,omitempty" msgpack:"winner,omitempty"`
	Draw      bool               `json:"draw" msgpack:"draw"`
	Countdown int                `json:"countdown" msgpack:"countdown"`
}

// Snapshot copies the full state under the engine mutex.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.now())
}

func (e *Engine) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		Tick:      e.tickCount,
		Width:     e.grid.Width,
		Height:    e.grid.Height,
		Grid:      e.grid.Tiles(),
		Players:   make([]PlayerPayload, 0, len(e.players)),
		Bombs:     make([]BombPayload, 0, len(e.bombs)),
		Blasts:    make([]ExplosionPayload, 0, len(e.explosions)),
		PowerUps:  make([]PowerUpPayload, 0, len(e.powerUps)),
		GameOver:  e.gameOver,
		Winner:    e.winner,
		Draw:      e.draw,
		Countdown: e.countdownLeft,
	}

	// Players in join order, everything else by sorted identifier, so
	// repeated snapshots of the same state are byte-identical.
	for _, id := range e.order {
		if p, ok := e.players[id]; ok {
			snap.Players = append(snap.Players, playerPayload(p))
		}
	}
	for _, id := range sortedKeys(e.bombs) {
		b := e.bombs[id]
		fuse := b.Deadline.Sub(now)
		if fuse < 0 {
			fuse = 0
		}
		snap.Bombs = append(snap.Bombs, BombPayload{
			ID:      b.ID,
			OwnerID: b.OwnerID,
			X:       b.X,
			Y:       b.Y,
			FuseMs:  fuse.Milliseconds(),
		})
	}
	for _, id := range sortedKeys(e.explosions) {
		ex := e.explosions[id]
		tiles := make([]Cell, len(ex.Tiles))
		copy(tiles, ex.Tiles)
		snap.Blasts = append(snap.Blasts, ExplosionPayload{ID: ex.ID, Tiles: tiles})
	}
	for _, id := range sortedKeys(e.powerUps) {
		pu := e.powerUps[id]
		snap.PowerUps = append(snap.PowerUps, PowerUpPayload{ID: pu.ID, X: pu.X, Y: pu.Y, Kind: pu.Kind})
	}

	return snap
}

func playerPayload(p *Player) PlayerPayload {
	return PlayerPayload{
		ID:       p.ID,
		Nickname: p.Nickname,
		Color:    p.Color,
		X:        p.X,
		Y:        p.Y,
		Facing:   p.Facing,
		Alive:    p.Alive,
		BombsMax: p.BombsMax,
		Radius:   p.Radius,
		Speed:    p.Speed,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
