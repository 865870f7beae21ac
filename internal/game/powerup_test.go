package game

import (
	"testing"
)

func plantPowerUp(e *Engine, x, y int, kind PowerUpKind) *PowerUp {
	pu := &PowerUp{ID: powerUpID(x, y), X: x, Y: y, Kind: kind}
	e.powerUps[pu.ID] = pu
	return pu
}

// TestPowerUpSpawnOnSoftDestruction verifies the spawn roll fires when the
// chance is certain and stays silent when it is zero.
func TestPowerUpSpawnOnSoftDestruction(t *testing.T) {
	cfg := DefaultTuning()
	cfg.SoftTileChance = 1.0
	cfg.PowerUpChance = 1.0
	e, clk := newTestEngine(t, cfg)
	p, _ := e.Join("c1", "alice")
	activate(t, e, clk)

	e.PlaceBomb("c1")
	p.X, p.Y = 9, 9

	clk.Advance(e.cfg.BombFuse)
	batch := e.Step(clk.now)

	destroyed := countDiffs(batch, DiffTileChanged)
	if destroyed == 0 {
		t.Fatal("blast should destroy at least one soft tile at density 1.0")
	}
	if countDiffs(batch, DiffPowerUpSpawned) != destroyed {
		t.Errorf("every destroyed soft tile should spawn a power-up at chance 1.0")
	}
	if e.Stats().PowerUps != destroyed {
		t.Error("spawned power-ups should be stored")
	}
}

// TestPowerUpCollection verifies pickup on a successful move
func TestPowerUpCollection(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	p, _ := e.Join("c1", "alice")
	activate(t, e, clk)

	plantPowerUp(e, 1, 2, PowerUpBombRange)

	e.Move("c1", DirDown)
	if p.Radius != 3 {
		t.Errorf("range pickup should raise radius to 3, got %d", p.Radius)
	}
	if e.Stats().PowerUps != 0 {
		t.Error("collected power-up should be removed")
	}

	batch := e.Step(clk.now)
	d, ok := findDiff(batch, DiffPowerUpCollected)
	if !ok {
		t.Fatal("expected powerUpCollected diff")
	}
	payload := d.Payload.(PowerUpCollectedPayload)
	if payload.PlayerID != p.ID || payload.Kind != PowerUpBombRange {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

// TestPowerUpEffects verifies each kind's stat change
func TestPowerUpEffects(t *testing.T) {
	cfg := DefaultTuning()
	p := &Player{BombsMax: 1, Radius: 2, Speed: 1.0}

	(&PowerUp{Kind: PowerUpBombCount}).apply(p, cfg)
	if p.BombsMax != 2 {
		t.Errorf("bomb_count: got %d, want 2", p.BombsMax)
	}
	(&PowerUp{Kind: PowerUpBombRange}).apply(p, cfg)
	if p.Radius != 3 {
		t.Errorf("bomb_range: got %d, want 3", p.Radius)
	}
	(&PowerUp{Kind: PowerUpSpeed}).apply(p, cfg)
	if p.Speed != 1.0+SpeedStep {
		t.Errorf("speed: got %v, want %v", p.Speed, 1.0+SpeedStep)
	}
}

// TestSpeedCap verifies the speed bonus saturates
func TestSpeedCap(t *testing.T) {
	cfg := DefaultTuning()
	p := &Player{Speed: 1.0}
	pu := &PowerUp{Kind: PowerUpSpeed}

	for i := 0; i < 20; i++ {
		pu.apply(p, cfg)
	}
	if p.Speed != cfg.SpeedCap {
		t.Errorf("speed should cap at %v, got %v", cfg.SpeedCap, p.Speed)
	}
}

// TestNoPickupWhileBlocked verifies a blocked move collects nothing
func TestNoPickupWhileBlocked(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	p, _ := e.Join("c1", "alice")
	activate(t, e, clk)

	// Pickup on the player's own cell: unreachable without a successful move.
	plantPowerUp(e, 1, 1, PowerUpBombCount)

	e.Move("c1", DirUp) // blocked by the border
	if p.BombsMax != 1 {
		t.Error("blocked move must not collect a power-up")
	}
	if e.Stats().PowerUps != 1 {
		t.Error("power-up should remain")
	}
}
