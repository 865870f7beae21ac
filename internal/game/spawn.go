package game

// allocateSpawn picks a starting cell for the seat-th participant.
//
// The first len(CornerSpawns) seats get the pre-defined corners in join
// order. Later seats get the EMPTY interior cell that maximizes the minimum
// squared distance to any currently-alive player (farthest-point heuristic).
// Row-major scan order makes ties stable and reproducible.
func allocateSpawn(seat int, grid *Grid, players []*Player) Cell {
	corners := CornerSpawns(grid.Width, grid.Height)
	if seat < len(corners) {
		return corners[seat]
	}

	best := Cell{X: -1, Y: -1}
	bestDist := -1
	for y := 1; y < grid.Height-1; y++ {
		for x := 1; x < grid.Width-1; x++ {
			if !grid.Walkable(x, y) {
				continue
			}
			if best.X < 0 {
				best = Cell{X: x, Y: y} // fallback when nobody is alive
			}
			d := nearestAliveDist(x, y, players)
			if d > bestDist {
				bestDist = d
				best = Cell{X: x, Y: y}
			}
		}
	}
	return best
}

// nearestAliveDist returns the squared distance from (x,y) to the closest
// alive player, or -1 when there is none. Squared distance preserves the
// max-min ordering without the sqrt.
func nearestAliveDist(x, y int, players []*Player) int {
	nearest := -1
	for _, p := range players {
		if !p.Alive {
			continue
		}
		dx, dy := p.X-x, p.Y-y
		d := dx*dx + dy*dy
		if nearest < 0 || d < nearest {
			nearest = d
		}
	}
	return nearest
}
