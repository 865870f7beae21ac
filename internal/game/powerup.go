package game

import "fmt"

// PowerUpKind enumerates the pickup effects.
type PowerUpKind string

const (
	PowerUpSpeed     PowerUpKind = "speed"      // +SpeedStep to the move multiplier, capped
	PowerUpBombCount PowerUpKind = "bomb_count" // +1 simultaneous bomb
	PowerUpBombRange PowerUpKind = "bomb_range" // +1 blast radius
)

// SpeedStep is the additive bonus per speed pickup.
const SpeedStep = 0.25

var powerUpKinds = []PowerUpKind{PowerUpSpeed, PowerUpBombCount, PowerUpBombRange}

// PowerUp sits on a vacated soft-tile cell until a player walks onto it.
// The ID is derived from the coordinates, which is unique by construction
// since power-ups only spawn where a soft tile just vanished.
type PowerUp struct {
	ID   string
	X, Y int
	Kind PowerUpKind
}

func powerUpID(x, y int) string {
	return fmt.Sprintf("powerup_%d_%d", x, y)
}

// apply mutates the player with the pickup effect.
func (pu *PowerUp) apply(p *Player, cfg Tuning) {
	switch pu.Kind {
	case PowerUpSpeed:
		p.Speed += SpeedStep
		if p.Speed > cfg.SpeedCap {
			p.Speed = cfg.SpeedCap
		}
	case PowerUpBombCount:
		p.BombsMax++
	case PowerUpBombRange:
		p.Radius++
	}
}
