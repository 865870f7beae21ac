package game

import (
	"testing"
	"time"
)

// killAllBut marks every player dead except the survivors given by conn ID.
func killAllBut(e *Engine, survivors ...string) {
	keep := make(map[string]bool, len(survivors))
	for _, s := range survivors {
		keep[s] = true
	}
	for id, p := range e.players {
		if !keep[id] {
			p.Alive = false
		}
	}
}

// TestCountdownSequence verifies the pre-round countdown diff stream
func TestCountdownSequence(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	e.Join("c1", "alice")

	var seen []int
	for i := 0; i < e.cfg.CountdownTicks; i++ {
		clk.Advance(time.Second)
		batch := e.Step(clk.now)
		if d, ok := findDiff(batch, DiffCountdown); ok {
			seen = append(seen, d.Payload.(CountdownPayload).Remaining)
		}
	}

	want := []int{5, 4, 3, 2, 1}
	if len(seen) != len(want) {
		t.Fatalf("expected %d countdown diffs, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("countdown step %d: got %d, want %d", i, seen[i], want[i])
		}
	}
	if e.Stats().GameOver {
		t.Error("round should be active after the countdown reaches zero")
	}
}

// TestWinDetection verifies the sole survivor wins in the tick the
// second-to-last death lands.
func TestWinDetection(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	e.Join("c1", "alice")
	bob, _ := e.Join("c2", "bob")
	alice := e.players["c1"]
	activate(t, e, clk)

	// Alice bombs her corner and walks clear; Bob stands in the blast.
	e.PlaceBomb("c1")
	alice.X, alice.Y = 9, 9
	bob.X, bob.Y = 1, 2

	clk.Advance(e.cfg.BombFuse)
	batch := e.Step(clk.now)

	if bob.Alive {
		t.Fatal("bob should be dead")
	}
	d, ok := findDiff(batch, DiffGameOver)
	if !ok {
		t.Fatal("expected gameOver diff in the same tick as the death")
	}
	payload := d.Payload.(GameOverPayload)
	if payload.Winner != "alice" || payload.Draw {
		t.Errorf("expected alice to win, got %+v", payload)
	}

	// Death must precede gameOver within the batch.
	diedIdx, overIdx := -1, -1
	for i, diff := range batch {
		switch diff.Type {
		case DiffPlayerDied:
			diedIdx = i
		case DiffGameOver:
			overIdx = i
		}
	}
	if diedIdx < 0 || overIdx < diedIdx {
		t.Error("playerDied must be ordered before gameOver")
	}

	if e.Scores().Rounds() != 1 {
		t.Error("scoreboard should record the finished round")
	}
	top := e.Scores().Top(1)
	if len(top) != 1 || top[0].Nickname != "alice" || top[0].Wins != 1 {
		t.Errorf("scoreboard should credit alice, got %+v", top)
	}
}

// TestDrawWhenNobodySurvives verifies the draw marker on simultaneous death
func TestDrawWhenNobodySurvives(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	alice, _ := e.Join("c1", "alice")
	bob, _ := e.Join("c2", "bob")
	activate(t, e, clk)

	e.PlaceBomb("c1")
	alice.X, alice.Y = 1, 2 // both inside the blast
	bob.X, bob.Y = 1, 3

	clk.Advance(e.cfg.BombFuse)
	batch := e.Step(clk.now)

	d, ok := findDiff(batch, DiffGameOver)
	if !ok {
		t.Fatal("expected gameOver diff")
	}
	payload := d.Payload.(GameOverPayload)
	if payload.Winner != DrawMarker || !payload.Draw {
		t.Errorf("expected a draw, got %+v", payload)
	}
	if e.Scores().Draws() != 1 {
		t.Error("scoreboard should record the draw")
	}
}

// TestSimulationSuspendedWhileGameOver verifies bombs stop burning after a win
func TestSimulationSuspendedWhileGameOver(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	e.Join("c1", "alice")
	e.Join("c2", "bob")
	activate(t, e, clk)

	e.PlaceBomb("c2") // bob's bomb burns when the round ends
	killAllBut(e, "c1")
	e.Step(clk.now) // win detected

	if !e.Stats().GameOver {
		t.Fatal("round should be over")
	}

	clk.Advance(e.cfg.BombFuse) // past the fuse, still inside the restart delay
	e.Step(clk.now)
	if e.Stats().Bombs != 1 {
		t.Error("bomb deadlines must not fire while the round is over")
	}
}

// TestRoundRestart verifies the full reset after the restart delay
func TestRoundRestart(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	alice, _ := e.Join("c1", "alice")
	bob, _ := e.Join("c2", "bob")
	activate(t, e, clk)

	e.PlaceBomb("c1")
	killAllBut(e, "c1")
	e.Step(clk.now) // alice wins
	if e.Stats().Winner != "alice" {
		t.Fatalf("expected alice as winner, got %q", e.Stats().Winner)
	}

	clk.Advance(e.cfg.RestartDelay)
	batch := e.Step(clk.now)

	if _, ok := findDiff(batch, DiffFullState); !ok {
		t.Error("reset should emit a fullState diff")
	}
	if !alice.Alive || !bob.Alive {
		t.Error("all connected players should respawn alive")
	}
	if e.Stats().Winner != "" {
		t.Error("winner should be cleared on reset")
	}
	if e.Stats().Bombs != 0 || e.Stats().Explosions != 0 || e.Stats().PowerUps != 0 {
		t.Error("reset should clear bombs, explosions and power-ups")
	}

	corners := CornerSpawns(21, 21)
	if alice.X != corners[0].X || alice.Y != corners[0].Y {
		t.Errorf("alice should respawn at her seat, got (%d,%d)", alice.X, alice.Y)
	}
	if bob.X != corners[1].X || bob.Y != corners[1].Y {
		t.Errorf("bob should respawn at his seat, got (%d,%d)", bob.X, bob.Y)
	}
	if alice.BombsMax != 1 || alice.Radius != 2 || alice.Speed != 1.0 {
		t.Error("stats should reset to defaults")
	}

	// The next countdown runs before play resumes.
	if !e.Stats().GameOver {
		t.Error("round should be paused for the countdown after reset")
	}
	activate(t, e, clk)
}

// TestWinRequiresTwoEverJoined verifies a lone player never triggers game over
func TestWinRequiresTwoEverJoined(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	e.Join("c1", "alice")
	activate(t, e, clk)

	e.Step(clk.now)
	if e.Stats().GameOver {
		t.Error("a single-player arena must not end the round")
	}
}

// TestDisconnectCanEndRound verifies a leave can leave one survivor standing
func TestDisconnectCanEndRound(t *testing.T) {
	e, clk := newTestEngine(t, noSoft())
	e.Join("c1", "alice")
	e.Join("c2", "bob")
	activate(t, e, clk)

	e.Leave("c2")
	batch := e.Step(clk.now)

	d, ok := findDiff(batch, DiffGameOver)
	if !ok {
		t.Fatal("expected gameOver after the opponent disconnects")
	}
	if d.Payload.(GameOverPayload).Winner != "alice" {
		t.Error("the remaining player should win")
	}
}
