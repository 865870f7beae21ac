package game

// Direction is a cardinal facing/movement direction.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Delta returns the unit step for the direction. Unrecognized values
// return (0,0, false) so bad input degrades to a facing-only update.
func (d Direction) Delta() (dx, dy int, ok bool) {
	switch d {
	case DirUp:
		return 0, -1, true
	case DirDown:
		return 0, 1, true
	case DirLeft:
		return -1, 0, true
	case DirRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// Player is one connected participant. Identity (ID, nickname, color)
// persists across rounds; position and stats are reset by each round start.
type Player struct {
	ID       string
	Nickname string
	Color    string

	// Seat is the spawn slot held for the whole connection: a corner index,
	// or the first post-corner value for farthest-point placement.
	Seat int

	X, Y   int
	Facing Direction
	Alive  bool

	BombsMax    int
	BombsPlaced int
	Radius      int
	Speed       float64
}

var playerColors = []string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4",
	"#ffeaa7", "#fd79a8", "#00b894", "#6c5ce7",
	"#fdcb6e", "#e17055", "#00cec9", "#dfe6e9",
}

// newPlayer creates a participant with default round stats at the given cell.
func newPlayer(id, nickname, color string, seat int, at Cell, cfg Tuning) *Player {
	return &Player{
		ID:       id,
		Nickname: nickname,
		Color:    color,
		Seat:     seat,
		X:        at.X,
		Y:        at.Y,
		Facing:   DirDown,
		Alive:    true,
		BombsMax: cfg.DefaultBombsMax,
		Radius:   cfg.DefaultRadius,
		Speed:    1.0,
	}
}

// respawn resets round state while keeping identity.
func (p *Player) respawn(at Cell, cfg Tuning) {
	p.X, p.Y = at.X, at.Y
	p.Facing = DirDown
	p.Alive = true
	p.BombsMax = cfg.DefaultBombsMax
	p.BombsPlaced = 0
	p.Radius = cfg.DefaultRadius
	p.Speed = 1.0
}
