package game

import "math/rand"

// Tile is the terrain kind of a single grid cell.
type Tile uint8

const (
	TileEmpty Tile = iota
	TileSolid      // Indestructible: border and pillar cells, never changes
	TileSoft       // Destructible: converts to TileEmpty exactly once when blasted
)

// Cell is a grid coordinate.
type Cell struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Grid is the arena tile map. Solid cells are fixed at generation time;
// the only mutation ever applied afterwards is TileSoft -> TileEmpty.
type Grid struct {
	Width  int
	Height int
	tiles  [][]Tile
}

// GenerateGrid produces a classic maze layout:
// solid border, solid pillars at even-even coordinates, spawn zones kept
// clear, and the remaining interior seeded with soft tiles at softChance.
// Deterministic for a given rng.
func GenerateGrid(width, height int, spawns []Cell, softChance float64, rng *rand.Rand) *Grid {
	g := &Grid{Width: width, Height: height}
	g.tiles = make([][]Tile, height)
	for y := 0; y < height; y++ {
		g.tiles[y] = make([]Tile, width)
		for x := 0; x < width; x++ {
			switch {
			case x == 0 || y == 0 || x == width-1 || y == height-1:
				g.tiles[y][x] = TileSolid
			case x%2 == 0 && y%2 == 0:
				g.tiles[y][x] = TileSolid
			}
		}
	}

	safe := spawnZone(spawns)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			if g.tiles[y][x] != TileEmpty {
				continue
			}
			if safe[Cell{X: x, Y: y}] {
				continue
			}
			if rng.Float64() < softChance {
				g.tiles[y][x] = TileSoft
			}
		}
	}

	return g
}

// spawnZone returns the set of cells guaranteed clear of soft tiles:
// each spawn point plus its 8 neighbors.
func spawnZone(spawns []Cell) map[Cell]bool {
	zone := make(map[Cell]bool, len(spawns)*9)
	for _, sp := range spawns {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				zone[Cell{X: sp.X + dx, Y: sp.Y + dy}] = true
			}
		}
	}
	return zone
}

// InBounds reports whether (x,y) is a valid grid coordinate.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the tile at (x,y). Out-of-range coordinates read as solid,
// so callers that forget a bounds check cannot walk off the map.
func (g *Grid) At(x, y int) Tile {
	if !g.InBounds(x, y) {
		return TileSolid
	}
	return g.tiles[y][x]
}

// Clear converts a soft tile to empty. Reports whether a conversion happened;
// solid and already-empty cells are left untouched.
func (g *Grid) Clear(x, y int) bool {
	if !g.InBounds(x, y) || g.tiles[y][x] != TileSoft {
		return false
	}
	g.tiles[y][x] = TileEmpty
	return true
}

// Walkable reports whether a player can occupy (x,y) as far as terrain
// is concerned. Bombs are checked separately by the engine.
func (g *Grid) Walkable(x, y int) bool {
	return g.At(x, y) == TileEmpty
}

// Tiles returns a deep copy of the tile rows for snapshots.
func (g *Grid) Tiles() [][]Tile {
	out := make([][]Tile, g.Height)
	for y := range g.tiles {
		out[y] = make([]Tile, g.Width)
		copy(out[y], g.tiles[y])
	}
	return out
}

// CornerSpawns returns the fixed seat coordinates in join order:
// top-left, top-right, bottom-left, bottom-right.
func CornerSpawns(width, height int) []Cell {
	return []Cell{
		{X: 1, Y: 1},
		{X: width - 2, Y: 1},
		{X: 1, Y: height - 2},
		{X: width - 2, Y: height - 2},
	}
}
