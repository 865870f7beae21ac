package game

import (
	"math/rand"
	"testing"
)

func testGrid(t *testing.T, softChance float64, seed int64) *Grid {
	t.Helper()
	spawns := CornerSpawns(21, 21)
	return GenerateGrid(21, 21, spawns, softChance, rand.New(rand.NewSource(seed)))
}

// TestGenerateGridStructure verifies border and pillar placement
func TestGenerateGridStructure(t *testing.T) {
	g := testGrid(t, 0.75, 1)

	for x := 0; x < g.Width; x++ {
		if g.At(x, 0) != TileSolid || g.At(x, g.Height-1) != TileSolid {
			t.Errorf("border row cell (%d) not solid", x)
		}
	}
	for y := 0; y < g.Height; y++ {
		if g.At(0, y) != TileSolid || g.At(g.Width-1, y) != TileSolid {
			t.Errorf("border column cell (%d) not solid", y)
		}
	}
	for y := 2; y < g.Height-1; y += 2 {
		for x := 2; x < g.Width-1; x += 2 {
			if g.At(x, y) != TileSolid {
				t.Errorf("pillar at (%d,%d) not solid", x, y)
			}
		}
	}
}

// TestGenerateGridSpawnZones verifies spawn points and their neighbors stay clear
func TestGenerateGridSpawnZones(t *testing.T) {
	g := testGrid(t, 1.0, 2) // maximum soft density

	for _, sp := range CornerSpawns(21, 21) {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				x, y := sp.X+dx, sp.Y+dy
				if !g.InBounds(x, y) || x == 0 || y == 0 || x == g.Width-1 || y == g.Height-1 {
					continue // border cells stay solid
				}
				if x%2 == 0 && y%2 == 0 {
					continue // pillars stay solid
				}
				if g.At(x, y) != TileEmpty {
					t.Errorf("spawn zone cell (%d,%d) is %v, want empty", x, y, g.At(x, y))
				}
			}
		}
	}
}

// TestGenerateGridDeterministic verifies identical seeds produce identical maps
func TestGenerateGridDeterministic(t *testing.T) {
	a := testGrid(t, 0.75, 42)
	b := testGrid(t, 0.75, 42)

	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("grids diverge at (%d,%d)", x, y)
			}
		}
	}
}

// TestGenerateGridSoftFill verifies soft tiles appear at high density
func TestGenerateGridSoftFill(t *testing.T) {
	g := testGrid(t, 1.0, 3)

	soft := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.At(x, y) == TileSoft {
				soft++
			}
		}
	}
	if soft == 0 {
		t.Error("expected soft tiles at density 1.0")
	}
}

// TestGridClear verifies soft tiles convert exactly once and solid never does
func TestGridClear(t *testing.T) {
	g := testGrid(t, 1.0, 4)

	// Find a soft tile
	var sx, sy int
	found := false
	for y := 1; y < g.Height-1 && !found; y++ {
		for x := 1; x < g.Width-1 && !found; x++ {
			if g.At(x, y) == TileSoft {
				sx, sy = x, y
				found = true
			}
		}
	}
	if !found {
		t.Fatal("no soft tile in dense grid")
	}

	if !g.Clear(sx, sy) {
		t.Error("first Clear on soft tile should succeed")
	}
	if g.At(sx, sy) != TileEmpty {
		t.Error("cleared tile should be empty")
	}
	if g.Clear(sx, sy) {
		t.Error("second Clear on same tile should be a no-op")
	}
	if g.Clear(0, 0) {
		t.Error("Clear on solid border must never succeed")
	}
	if g.Clear(-1, 5) {
		t.Error("Clear out of bounds must never succeed")
	}
}

// TestGridAtOutOfBounds verifies out-of-range reads behave as solid
func TestGridAtOutOfBounds(t *testing.T) {
	g := testGrid(t, 0, 5)

	if g.At(-1, 0) != TileSolid || g.At(0, -1) != TileSolid {
		t.Error("negative coordinates should read solid")
	}
	if g.At(g.Width, 0) != TileSolid || g.At(0, g.Height) != TileSolid {
		t.Error("past-edge coordinates should read solid")
	}
}
