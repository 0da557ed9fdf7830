package rules

import (
	"github.com/treasurehunt/TreasureHuntAI/internal/config"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Limits holds the structural thresholds a half map must satisfy
type Limits struct {
	Width  int
	Height int

	MinGrass    int
	MinMountain int
	MinWater    int
	MinForts    int

	// Share of every border line that must be walkable, in percent
	MinEdgeWalkablePercent int
}

// DefaultLimits returns the official half map rules: a 10x5 map with at least
// 48% grass, 10% mountain, 14% water, one fort, and 51% walkable edges.
func DefaultLimits() Limits {
	return Limits{
		Width:                  core.HalfMapWidth,
		Height:                 core.HalfMapHeight,
		MinGrass:               24,
		MinMountain:            5,
		MinWater:               7,
		MinForts:               1,
		MinEdgeWalkablePercent: 51,
	}
}

// LimitsFromConfig builds limits from the game.map size and game.rules thresholds
func LimitsFromConfig(m config.MapConfig, r config.RulesConfig) Limits {
	return Limits{
		Width:                  m.Width,
		Height:                 m.Height,
		MinGrass:               r.MinGrass,
		MinMountain:            r.MinMountain,
		MinWater:               r.MinWater,
		MinForts:               r.MinForts,
		MinEdgeWalkablePercent: r.MinEdgeWalkablePercent,
	}
}

// MaxEdgeWater returns how many water cells a border line of the given
// length may carry: 2 for the short edges and 4 for the long ones by default.
func (l Limits) MaxEdgeWater(length int) int {
	walkable := (length*l.MinEdgeWalkablePercent + 99) / 100
	return length - walkable
}
