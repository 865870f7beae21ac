package game

import "time"

// Bomb is a placed, not-yet-detonated bomb. Radius is captured from the
// owner at placement time and never updated, so range pickups collected
// while the fuse burns do not retroactively grow the blast.
type Bomb struct {
	ID       string
	OwnerID  string
	X, Y     int
	Radius   int
	Deadline time.Time // Absolute detonation time; chain reactions fire earlier
}

// Explosion is the immutable result of one bomb detonating. Tiles never
// change after creation; the engine only checks membership and age.
type Explosion struct {
	ID        string
	Tiles     []Cell
	CreatedAt time.Time
}

// Contains reports whether (x,y) is inside the blast.
func (ex *Explosion) Contains(x, y int) bool {
	for _, c := range ex.Tiles {
		if c.X == x && c.Y == y {
			return true
		}
	}
	return false
}
