package testutil

import (
	"fmt"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// ParseGrid builds a grid from rows of terrain letters:
// G grass, M mountain, W water, F fort, . unset.
// Spaces are ignored so rows can be aligned. Panics on malformed input.
func ParseGrid(rows ...string) *core.Grid {
	var parsed [][]core.Terrain
	for _, row := range rows {
		var line []core.Terrain
		for _, r := range row {
			switch r {
			case ' ':
				continue
			case 'G':
				line = append(line, core.TerrainGrass)
			case 'M':
				line = append(line, core.TerrainMountain)
			case 'W':
				line = append(line, core.TerrainWater)
			case 'F':
				line = append(line, core.TerrainFort)
			case '.':
				line = append(line, core.TerrainUnset)
			default:
				panic(fmt.Sprintf("testutil: unknown terrain letter %q", r))
			}
		}
		if len(parsed) > 0 && len(line) != len(parsed[0]) {
			panic("testutil: rows must have equal width")
		}
		parsed = append(parsed, line)
	}
	if len(parsed) == 0 {
		panic("testutil: no rows")
	}

	g := core.NewGrid(len(parsed[0]), len(parsed))
	for y, line := range parsed {
		for x, t := range line {
			g.Set(core.NewCoordinate(x, y), t)
		}
	}
	return g
}

// FilledGrid returns a w x h grid of a single terrain
func FilledGrid(w, h int, t core.Terrain) *core.Grid {
	g := core.NewGrid(w, h)
	for i := range g.Cells {
		g.Cells[i].Terrain = t
	}
	return g
}

// MarkArea flags every cell of g whose coordinate satisfies mine as in the own area
func MarkArea(g *core.Grid, mine func(c core.Coordinate) bool) {
	for i := range g.Cells {
		g.Cells[i].InMyArea = mine(core.FromIndex(i, g.W))
	}
}

// ValidHalfMap is a hand-checked half map that passes every rule:
// 26 grass, 1 fort, 7 water with no diagonal water pairs, 16 mountains.
func ValidHalfMap() *core.Grid {
	return ParseGrid(
		"G M G M W G M G G M",
		"G G M G G F G M W G",
		"M W G M G G W G M G",
		"G M G G W M G M M G",
		"M G W G G M G W G M",
	)
}
