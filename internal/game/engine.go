package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// DrawMarker is the winner value broadcast when the last survivors died in
// the same resolution pass.
const DrawMarker = "draw"

// ErrGameFull is returned by Join when the player ceiling is reached. The
// transport answers the rejected connection with a gameFull message; no
// player entity is created.
var ErrGameFull = errors.New("game full")

// Engine owns all authoritative arena state and advances it with a
// fixed-rate tick. Intent handlers (Join/Leave/Move/PlaceBomb) mutate the
// same state synchronously; one mutex serializes every mutation, since
// chain detonation, win detection and movement all read-then-write the
// shared collections.
//
// Every timer (bomb fuse, blast lifetime, countdown, restart delay) is a
// deadline checked each tick against the injectable clock, never a blocking
// sleep. A bomb removed by a chain reaction simply never reaches its
// deadline check.
type Engine struct {
	mu  sync.Mutex
	cfg Tuning

	now func() time.Time

	// Deterministic RNG: grid generation and power-up rolls draw from here,
	// so a seeded engine replays identically.
	rng     *rand.Rand
	rngSeed int64

	grid       *Grid
	players    map[string]*Player
	order      []string // connection IDs in join order
	bombs      map[string]*Bomb
	explosions map[string]*Explosion
	powerUps   map[string]*PowerUp

	everJoined int
	nextEntity uint64

	gameOver        bool
	winner          string
	draw            bool
	countdownLeft   int
	nextCountdownAt time.Time
	restartAt       time.Time

	diffs  *DiffLog
	scores *Scoreboard

	tickCount   int64
	totalDeaths int

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	onFlush func([]Diff)
	onTick  func(elapsed time.Duration)
}

// NewEngine creates an engine seeded from the wall clock. The first round
// begins with its countdown immediately; Start launches the tick loop.
func NewEngine(cfg Tuning) *Engine {
	return NewEngineSeeded(cfg, time.Now().UnixNano())
}

// NewEngineSeeded creates an engine with an explicit RNG seed for
// reproducible grids and power-up rolls.
func NewEngineSeeded(cfg Tuning, seed int64) *Engine {
	e := &Engine{
		cfg:        cfg,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(seed)),
		rngSeed:    seed,
		players:    make(map[string]*Player),
		bombs:      make(map[string]*Bomb),
		explosions: make(map[string]*Explosion),
		powerUps:   make(map[string]*PowerUp),
		stopChan:   make(chan struct{}),
		diffs:      NewDiffLog(),
		scores:     NewScoreboard(),
	}
	e.mu.Lock()
	e.resetLocked(e.now())
	e.mu.Unlock()
	return e
}

// SetFlushHandler registers the transport callback that receives each
// tick's drained diff batch. Must be set before Start.
func (e *Engine) SetFlushHandler(fn func([]Diff)) {
	e.onFlush = fn
}

// SetTickObserver registers a hook that receives each tick's duration,
// used for the metrics histogram. Must be set before Start.
func (e *Engine) SetTickObserver(fn func(time.Duration)) {
	e.onTick = fn
}

// Start begins the fixed-rate tick loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.runTick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("arena engine started at %d TPS (%dx%d grid, seed %d)",
		e.cfg.TickRate, e.cfg.GridWidth, e.cfg.GridHeight, e.rngSeed)
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Printf("arena engine stopped after %d ticks", e.tickCount)
}

func (e *Engine) runTick() {
	start := time.Now()
	batch := e.Step(e.now())
	if e.onTick != nil {
		e.onTick(time.Since(start))
	}
	if len(batch) > 0 && e.onFlush != nil {
		e.onFlush(batch)
	}
}

// Step advances the simulation one tick at the given instant and returns
// the drained diff batch. It is the single tick entry point; tests call it
// directly with a simulated clock.
func (e *Engine) Step(now time.Time) []Diff {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickCount++
	if e.gameOver {
		e.stepPausedLocked(now)
	} else {
		e.detonateExpiredLocked(now)
		e.resolveExplosionsLocked()
		e.expireExplosionsLocked(now)
		e.checkWinLocked(now)
	}
	return e.diffs.Drain()
}

// stepPausedLocked handles the two suspended phases: the pre-round
// countdown and the post-round restart delay.
func (e *Engine) stepPausedLocked(now time.Time) {
	if e.countdownLeft > 0 {
		if now.Before(e.nextCountdownAt) {
			return
		}
		e.emit(DiffCountdown, CountdownPayload{Remaining: e.countdownLeft})
		e.countdownLeft--
		e.nextCountdownAt = e.nextCountdownAt.Add(time.Second)
		if e.countdownLeft == 0 {
			e.gameOver = false
		}
		return
	}
	if !e.restartAt.IsZero() && !now.Before(e.restartAt) {
		e.resetLocked(now)
	}
}

// =============================================================================
// INTENTS
// =============================================================================

// Join registers a connection as a participant. The connection ID doubles
// as the player ID; joining twice returns the existing player.
func (e *Engine) Join(connID, nickname string) (*Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.players[connID]; ok {
		return p, nil
	}
	if len(e.players) >= e.cfg.MaxPlayers {
		return nil, ErrGameFull
	}

	if nickname == "" {
		nickname = fmt.Sprintf("player-%d", e.everJoined+1)
	}
	color := playerColors[e.everJoined%len(playerColors)]
	seat := e.freeSeatLocked()
	spawn := allocateSpawn(seat, e.grid, e.playerList())

	p := newPlayer(connID, nickname, color, seat, spawn, e.cfg)
	e.players[connID] = p
	e.order = append(e.order, connID)
	e.everJoined++

	e.emit(DiffPlayerJoined, playerPayload(p))
	log.Printf("player joined: %s (%s) at (%d,%d)", nickname, connID, spawn.X, spawn.Y)
	return p, nil
}

// Leave removes a disconnected participant. Bombs they placed keep burning;
// ownership of the freed bomb slots dies with them.
func (e *Engine) Leave(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[connID]
	if !ok {
		return
	}
	delete(e.players, connID)
	for i, id := range e.order {
		if id == connID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.emit(DiffPlayerLeft, PlayerLeftPayload{ID: connID})
	log.Printf("player left: %s (%s)", p.Nickname, connID)
}

// Move applies a directional step. Facing updates even when the step is
// blocked so viewers can animate the turn; the position only changes onto
// an in-bounds empty cell holding no live bomb. A successful step is
// followed by the power-up pickup check at the new cell.
func (e *Engine) Move(connID string, dir Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gameOver {
		return
	}
	p, ok := e.players[connID]
	if !ok || !p.Alive {
		return
	}

	p.Facing = dir
	dx, dy, ok := dir.Delta()
	if !ok {
		e.emit(DiffPlayerFaced, FacePayload{ID: p.ID, Facing: p.Facing})
		return
	}

	nx, ny := p.X+dx, p.Y+dy
	if !e.grid.Walkable(nx, ny) || e.bombAt(nx, ny) != nil {
		e.emit(DiffPlayerFaced, FacePayload{ID: p.ID, Facing: p.Facing})
		return
	}

	p.X, p.Y = nx, ny
	e.emit(DiffPlayerMoved, MovePayload{ID: p.ID, X: nx, Y: ny, Facing: p.Facing})
	e.collectPowerUpLocked(p)
}

// PlaceBomb drops a bomb at the player's cell with the fuse deadline and
// the player's current radius captured by value.
func (e *Engine) PlaceBomb(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gameOver {
		return
	}
	p, ok := e.players[connID]
	if !ok || !p.Alive {
		return
	}
	if p.BombsPlaced >= p.BombsMax {
		return
	}
	if e.bombAt(p.X, p.Y) != nil {
		return // one bomb per cell
	}

	b := &Bomb{
		ID:       e.nextID("bomb"),
		OwnerID:  p.ID,
		X:        p.X,
		Y:        p.Y,
		Radius:   p.Radius,
		Deadline: e.now().Add(e.cfg.BombFuse),
	}
	e.bombs[b.ID] = b
	p.BombsPlaced++

	e.emit(DiffBombPlaced, BombPayload{
		ID:      b.ID,
		OwnerID: b.OwnerID,
		X:       b.X,
		Y:       b.Y,
		FuseMs:  e.cfg.BombFuse.Milliseconds(),
	})
}

// =============================================================================
// DETONATION
// =============================================================================

// detonateExpiredLocked removes every bomb whose deadline has elapsed and
// runs the detonation worklist on it. Bombs consumed by a chain reaction
// are already gone by the time their ID comes up.
func (e *Engine) detonateExpiredLocked(now time.Time) {
	for _, id := range sortedKeys(e.bombs) {
		b, ok := e.bombs[id]
		if !ok || now.Before(b.Deadline) {
			continue
		}
		delete(e.bombs, id)
		e.detonateLocked(b, now)
	}
}

var blastDirs = [4]struct{ dx, dy int }{
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
}

// detonateLocked runs the blast worklist starting from one bomb. Each bomb
// produces its own Explosion entity; bombs met by a ray are removed from
// the live set before being enqueued, which is what prevents
// double-detonation and loops under cyclic layouts.
func (e *Engine) detonateLocked(first *Bomb, now time.Time) {
	queue := []*Bomb{first}

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		ex := &Explosion{
			ID:        e.nextID("blast"),
			CreatedAt: now,
			Tiles:     []Cell{{X: b.X, Y: b.Y}},
		}

		for _, d := range blastDirs {
			for step := 1; step <= b.Radius; step++ {
				x, y := b.X+d.dx*step, b.Y+d.dy*step
				if e.grid.At(x, y) == TileSolid {
					break // solid blocks; the cell is never part of the blast
				}
				ex.Tiles = append(ex.Tiles, Cell{X: x, Y: y})

				if other := e.bombAt(x, y); other != nil {
					delete(e.bombs, other.ID)
					queue = append(queue, other)
				}
				if e.grid.At(x, y) == TileSoft {
					e.grid.Clear(x, y)
					e.emit(DiffTileChanged, TileChangedPayload{X: x, Y: y, Tile: TileEmpty})
					e.trySpawnPowerUpLocked(x, y)
					break // destructible terrain absorbs the blast
				}
			}
		}

		e.explosions[ex.ID] = ex
		e.emit(DiffExplosion, ExplosionPayload{ID: ex.ID, Tiles: ex.Tiles})

		// Free the owner's bomb slot even if the owner is already dead.
		if owner, ok := e.players[b.OwnerID]; ok && owner.BombsPlaced > 0 {
			owner.BombsPlaced--
		}
	}
}

// resolveExplosionsLocked kills every alive player standing on a blast
// tile. Death is idempotent: a player already dead is skipped.
func (e *Engine) resolveExplosionsLocked() {
	for _, id := range sortedKeys(e.explosions) {
		ex := e.explosions[id]
		for _, pid := range e.order {
			p := e.players[pid]
			if p == nil || !p.Alive {
				continue
			}
			if ex.Contains(p.X, p.Y) {
				p.Alive = false
				e.totalDeaths++
				e.emit(DiffPlayerDied, PlayerDiedPayload{ID: p.ID, ExplosionID: ex.ID})
				log.Printf("player died: %s", p.Nickname)
			}
		}
	}
}

// expireExplosionsLocked drops blasts past their lifetime. Clients run
// their own timers, so no diff is required.
func (e *Engine) expireExplosionsLocked(now time.Time) {
	for id, ex := range e.explosions {
		if now.Sub(ex.CreatedAt) >= e.cfg.BlastLifetime {
			delete(e.explosions, id)
		}
	}
}

// =============================================================================
// POWER-UPS
// =============================================================================

// trySpawnPowerUpLocked rolls a pickup on a just-vacated soft cell.
func (e *Engine) trySpawnPowerUpLocked(x, y int) {
	if e.rng.Float64() >= e.cfg.PowerUpChance {
		return
	}
	pu := &PowerUp{
		ID:   powerUpID(x, y),
		X:    x,
		Y:    y,
		Kind: powerUpKinds[e.rng.Intn(len(powerUpKinds))],
	}
	e.powerUps[pu.ID] = pu
	e.emit(DiffPowerUpSpawned, PowerUpPayload{ID: pu.ID, X: x, Y: y, Kind: pu.Kind})
}

// collectPowerUpLocked consumes the pickup under the player, if any.
// Runs only after a successful move, never on spawn placement.
func (e *Engine) collectPowerUpLocked(p *Player) {
	pu, ok := e.powerUps[powerUpID(p.X, p.Y)]
	if !ok {
		return
	}
	pu.apply(p, e.cfg)
	delete(e.powerUps, pu.ID)
	e.emit(DiffPowerUpCollected, PowerUpCollectedPayload{ID: pu.ID, PlayerID: p.ID, Kind: pu.Kind})
}

// =============================================================================
// ROUND LIFECYCLE
// =============================================================================

// checkWinLocked ends the round once at most one player remains alive,
// provided at least two have ever joined.
func (e *Engine) checkWinLocked(now time.Time) {
	if e.everJoined < 2 {
		return
	}
	var survivor *Player
	alive := 0
	for _, p := range e.players {
		if p.Alive {
			alive++
			survivor = p
		}
	}
	if alive > 1 {
		return
	}

	e.gameOver = true
	if alive == 1 {
		e.winner = survivor.Nickname
		e.draw = false
		e.scores.RecordWin(survivor.Nickname)
		log.Printf("round over: %s wins", survivor.Nickname)
	} else {
		e.winner = DrawMarker
		e.draw = true
		e.scores.RecordDraw()
		log.Printf("round over: draw")
	}
	e.emit(DiffGameOver, GameOverPayload{Winner: e.winner, Draw: e.draw})
	e.restartAt = now.Add(e.cfg.RestartDelay)
}

// resetLocked starts a fresh round: new grid, everything cleared, all
// connected players respawned with default stats, then the countdown.
// Identity, nickname and color persist; nothing else survives the reset.
func (e *Engine) resetLocked(now time.Time) {
	e.gameOver = true
	e.winner = ""
	e.draw = false
	e.restartAt = time.Time{}

	e.bombs = make(map[string]*Bomb)
	e.explosions = make(map[string]*Explosion)
	e.powerUps = make(map[string]*PowerUp)

	corners := CornerSpawns(e.cfg.GridWidth, e.cfg.GridHeight)
	e.grid = GenerateGrid(e.cfg.GridWidth, e.cfg.GridHeight, corners, e.cfg.SoftTileChance, e.rng)

	for _, id := range e.order {
		p := e.players[id]
		if p == nil {
			continue
		}
		p.Alive = false // exclude from the farthest-point scan until placed
		p.respawn(allocateSpawn(p.Seat, e.grid, e.playerList()), e.cfg)
	}

	e.emit(DiffFullState, e.snapshotLocked(now))

	e.countdownLeft = e.cfg.CountdownTicks
	e.nextCountdownAt = now.Add(time.Second)
}

// =============================================================================
// HELPERS & INTROSPECTION
// =============================================================================

func (e *Engine) emit(t DiffType, payload any) {
	e.diffs.Append(e.tickCount, Diff{Type: t, Payload: payload})
}

func (e *Engine) bombAt(x, y int) *Bomb {
	for _, b := range e.bombs {
		if b.X == x && b.Y == y {
			return b
		}
	}
	return nil
}

// freeSeatLocked returns the lowest corner seat not held by any connected
// player, or the first post-corner value when all corners are taken. A
// disconnect frees its corner for the next join.
func (e *Engine) freeSeatLocked() int {
	corners := len(CornerSpawns(e.cfg.GridWidth, e.cfg.GridHeight))
	taken := make([]bool, corners)
	for _, p := range e.players {
		if p.Seat < corners {
			taken[p.Seat] = true
		}
	}
	for seat, held := range taken {
		if !held {
			return seat
		}
	}
	return corners
}

func (e *Engine) nextID(kind string) string {
	e.nextEntity++
	return fmt.Sprintf("%s_%06d", kind, e.nextEntity)
}

// playerList returns players in join order.
func (e *Engine) playerList() []*Player {
	out := make([]*Player, 0, len(e.players))
	for _, id := range e.order {
		if p, ok := e.players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Scores returns the cross-round win tally.
func (e *Engine) Scores() *Scoreboard {
	return e.scores
}

// StartDiffLog enables the JSONL audit mirror of the change log.
func (e *Engine) StartDiffLog(filePath string) error {
	return e.diffs.Start(filePath)
}

// StopDiffLog flushes and closes the audit mirror.
func (e *Engine) StopDiffLog() {
	e.diffs.Stop()
}

// DiffLogStats returns audit counters for monitoring.
func (e *Engine) DiffLogStats() map[string]any {
	return e.diffs.Stats()
}

// EngineStats is a point-in-time counter snapshot for the stats endpoint
// and the metrics gauges.
type EngineStats struct {
	Tick        int64  `json:"tick"`
	Players     int    `json:"players"`
	Alive       int    `json:"alive"`
	Bombs       int    `json:"bombs"`
	Explosions  int    `json:"explosions"`
	PowerUps    int    `json:"powerUps"`
	Rounds      int    `json:"rounds"`
	TotalDeaths int    `json:"totalDeaths"`
	GameOver    bool   `json:"gameOver"`
	Winner      string `json:"winner,omitempty"`
}

// Stats returns current counters.
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	alive := 0
	for _, p := range e.players {
		if p.Alive {
			alive++
		}
	}
	return EngineStats{
		Tick:        e.tickCount,
		Players:     len(e.players),
		Alive:       alive,
		Bombs:       len(e.bombs),
		Explosions:  len(e.explosions),
		PowerUps:    len(e.powerUps),
		Rounds:      e.scores.Rounds(),
		TotalDeaths: e.totalDeaths,
		GameOver:    e.gameOver,
		Winner:      e.winner,
	}
}
