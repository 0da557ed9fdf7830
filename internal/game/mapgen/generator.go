package mapgen

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/treasurehunt/TreasureHuntAI/internal/config"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/rules"
)

// MapConfig holds configuration for half map generation
type MapConfig struct {
	Width  int
	Height int
	Grass  int
	Water  int // net water cells after diagonal removal
	Forts  int
}

// DefaultMapConfig returns the standard 10x5 layout: 26 grass, 7 water, 1 fort,
// and mountains everywhere else.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Width:  core.HalfMapWidth,
		Height: core.HalfMapHeight,
		Grass:  26,
		Water:  7,
		Forts:  1,
	}
}

// MapConfigFrom converts the game.map configuration section
func MapConfigFrom(c config.MapConfig) MapConfig {
	return MapConfig{
		Width:  c.Width,
		Height: c.Height,
		Grass:  c.Grass,
		Water:  c.Water,
		Forts:  c.Forts,
	}
}

// Mountains returns how many cells are left for mountains
func (c MapConfig) Mountains() int {
	return c.Width*c.Height - c.Grass - c.Water - c.Forts
}

// Stats counts generation attempts since the generator was created
type Stats struct {
	Maps       int
	Attempts   int
	Rejections map[core.ViolationKind]int
}

// Generator produces half maps with a caller supplied RNG so runs are reproducible
type Generator struct {
	config    MapConfig
	rng       *rand.Rand
	validator *rules.Validator
	logger    zerolog.Logger
	stats     Stats
}

// NewGenerator creates a new half map generator
func NewGenerator(config MapConfig, rng *rand.Rand, validator *rules.Validator, logger zerolog.Logger) *Generator {
	return &Generator{
		config:    config,
		rng:       rng,
		validator: validator,
		logger:    logger.With().Str("component", "HalfMapGenerator").Logger(),
		stats:     Stats{Rejections: make(map[core.ViolationKind]int)},
	}
}

// Generate places grass, water, the fort and mountains, and starts over from
// an empty map until the validator accepts the result.
func (g *Generator) Generate() *core.Grid {
	grid := core.NewGrid(g.config.Width, g.config.Height)
	for {
		g.stats.Attempts++
		g.fill(grid)

		err := g.validator.Validate(grid)
		if err == nil {
			break
		}
		kind := core.ViolationKindOf(err)
		g.stats.Rejections[kind]++
		g.logger.Debug().
			Int("attempt", g.stats.Attempts).
			Str("kind", string(kind)).
			Msg("Generated half map rejected, regenerating")
		grid.Reset()
	}

	g.stats.Maps++
	g.logger.Debug().
		Int("attempts", g.stats.Attempts).
		Msg("Half map generated")
	return grid
}

// Stats returns a copy of the generation counters
func (g *Generator) Stats() Stats {
	out := Stats{
		Maps:       g.stats.Maps,
		Attempts:   g.stats.Attempts,
		Rejections: make(map[core.ViolationKind]int, len(g.stats.Rejections)),
	}
	for k, v := range g.stats.Rejections {
		out.Rejections[k] = v
	}
	return out
}

func (g *Generator) fill(grid *core.Grid) {
	g.placeGrass(grid)
	g.placeWater(grid)
	g.placeForts(grid)
	g.placeMountains(grid)
}

func (g *Generator) placeGrass(grid *core.Grid) {
	for i := 0; i < g.config.Grass; i++ {
		grid.Set(g.randomFreeCell(grid), core.TerrainGrass)
	}
}

// placeWater keeps drawing until the net count is reached; every placement
// may wash away earlier water that touches it diagonally.
func (g *Generator) placeWater(grid *core.Grid) {
	placed := 0
	for placed < g.config.Water {
		c := g.randomFreeCell(grid)
		grid.Set(c, core.TerrainWater)
		placed++
		placed -= RemoveDiagonalWater(grid, c)
	}
}

func (g *Generator) placeForts(grid *core.Grid) {
	for i := 0; i < g.config.Forts; i++ {
		grid.Set(g.randomFreeCell(grid), core.TerrainFort)
	}
}

func (g *Generator) placeMountains(grid *core.Grid) {
	for i := range grid.Cells {
		if grid.Cells[i].Terrain == core.TerrainUnset {
			grid.Cells[i].Terrain = core.TerrainMountain
		}
	}
}

// randomFreeCell draws uniformly until it hits an unset cell.
// Placement counts never exceed the cell count, so a free cell always exists.
func (g *Generator) randomFreeCell(grid *core.Grid) core.Coordinate {
	for {
		c := core.NewCoordinate(g.rng.Intn(grid.W), g.rng.Intn(grid.H))
		if grid.TerrainAt(c) == core.TerrainUnset {
			return c
		}
	}
}

// RemoveDiagonalWater turns every water cell diagonally touching c back into
// an unset cell and returns how many were removed. It does nothing unless c
// itself is water.
func RemoveDiagonalWater(grid *core.Grid, c core.Coordinate) int {
	if grid.TerrainAt(c) != core.TerrainWater {
		return 0
	}
	removed := 0
	for _, d := range c.Diagonals() {
		if grid.TerrainAt(d) == core.TerrainWater {
			grid.Set(d, core.TerrainUnset)
			removed++
		}
	}
	return removed
}
