package rules

import (
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Rule is a single structural check on a half map
type Rule interface {
	Name() string
	Validate(g *core.Grid) error
}

// HalfMapExistsRule rejects a missing map
type HalfMapExistsRule struct{}

func (HalfMapExistsRule) Name() string { return "half_map_exists" }

func (HalfMapExistsRule) Validate(g *core.Grid) error {
	if g == nil || len(g.Cells) == 0 {
		return core.NewMapViolation(core.ViolationMissingMap, "the half map must not be empty")
	}
	return nil
}

// MapSizeRule checks the half map dimensions
type MapSizeRule struct {
	Width, Height int
}

func (MapSizeRule) Name() string { return "map_size" }

func (r MapSizeRule) Validate(g *core.Grid) error {
	if g.W != r.Width || g.H != r.Height || len(g.Cells) != r.Width*r.Height {
		return core.NewMapViolation(core.ViolationSizeMismatch,
			"expected %dx%d cells, got %dx%d", r.Width, r.Height, g.W, g.H)
	}
	return nil
}

// FortExistsRule requires at least MinForts forts, as terrain or as a marker
type FortExistsRule struct {
	MinForts int
}

func (FortExistsRule) Name() string { return "fort_exists" }

func (r FortExistsRule) Validate(g *core.Grid) error {
	forts := 0
	for i := range g.Cells {
		if g.Cells[i].IsFort() {
			forts++
		}
	}
	if forts < r.MinForts {
		return core.NewMapViolation(core.ViolationMissingFort,
			"the half map needs at least %d fort, found %d", r.MinForts, forts)
	}
	return nil
}

// TerrainCountRule enforces the minimum share of every terrain type.
// A fort counts as grass.
type TerrainCountRule struct {
	MinGrass, MinMountain, MinWater int
}

func (TerrainCountRule) Name() string { return "terrain_count" }

func (r TerrainCountRule) Validate(g *core.Grid) error {
	var grass, mountain, water int
	for i := range g.Cells {
		switch t := g.Cells[i].Terrain; {
		case t.IsWater():
			water++
		case t.IsMountain():
			mountain++
		case t.IsGrass():
			grass++
		}
	}

	if water < r.MinWater {
		return core.NewMapViolation(core.ViolationTerrainCountShortfall,
			"not enough water: required %d, found %d", r.MinWater, water)
	}
	if mountain < r.MinMountain {
		return core.NewMapViolation(core.ViolationTerrainCountShortfall,
			"not enough mountains: required %d, found %d", r.MinMountain, mountain)
	}
	if grass < r.MinGrass {
		return core.NewMapViolation(core.ViolationTerrainCountShortfall,
			"not enough grass: required %d, found %d", r.MinGrass, grass)
	}
	return nil
}

// EdgeWaterRule keeps every border line mostly walkable so the half map can
// be joined to the other one along any of its edges.
type EdgeWaterRule struct {
	Limits Limits
}

func (EdgeWaterRule) Name() string { return "edge_water" }

func (r EdgeWaterRule) Validate(g *core.Grid) error {
	var left, right, top, bottom int
	for y := 0; y < g.H; y++ {
		if g.Cells[g.Idx(0, y)].IsWater() {
			left++
		}
		if g.Cells[g.Idx(g.W-1, y)].IsWater() {
			right++
		}
	}
	for x := 0; x < g.W; x++ {
		if g.Cells[g.Idx(x, 0)].IsWater() {
			top++
		}
		if g.Cells[g.Idx(x, g.H-1)].IsWater() {
			bottom++
		}
	}

	maxVertical := r.Limits.MaxEdgeWater(g.H)
	maxHorizontal := r.Limits.MaxEdgeWater(g.W)
	edges := []struct {
		name  string
		water int
		max   int
	}{
		{"left", left, maxVertical},
		{"right", right, maxVertical},
		{"top", top, maxHorizontal},
		{"bottom", bottom, maxHorizontal},
	}
	for _, e := range edges {
		if e.water > e.max {
			return core.NewMapViolation(core.ViolationEdgeWaterExcess,
				"%s edge has %d water cells, at most %d allowed", e.name, e.water, e.max)
		}
	}
	return nil
}

// IslandRule requires every non-water cell to be reachable from every other one
type IslandRule struct{}

func (IslandRule) Name() string { return "island_check" }

func (IslandRule) Validate(g *core.Grid) error {
	start := -1
	for i := range g.Cells {
		if !g.Cells[i].IsWater() {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	reached := FloodFill(g, core.FromIndex(start, g.W))
	for i := range g.Cells {
		if !g.Cells[i].IsWater() && !reached[i] {
			return core.NewMapViolation(core.ViolationIslandDetected,
				"cell %s cannot be reached from %s", core.FromIndex(i, g.W), core.FromIndex(start, g.W))
		}
	}
	return nil
}

// FloodFill marks every non-water cell orthogonally connected to origin.
// The returned slice is indexed like g.Cells.
func FloodFill(g *core.Grid, origin core.Coordinate) []bool {
	reached := make([]bool, len(g.Cells))
	if cell := g.At(origin); cell == nil || cell.IsWater() {
		return reached
	}

	queue := []core.Coordinate{origin}
	reached[origin.ToIndex(g.W)] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range current.Neighbors() {
			cell := g.At(n)
			if cell == nil || cell.IsWater() || reached[n.ToIndex(g.W)] {
				continue
			}
			reached[n.ToIndex(g.W)] = true
			queue = append(queue, n)
		}
	}
	return reached
}
