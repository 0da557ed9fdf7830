package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/pathfind"
	"github.com/treasurehunt/TreasureHuntAI/internal/testutil"
)

func newTestPlanner(opts ...PlannerOption) *Planner {
	return NewPlanner(testutil.NopLogger(), opts...)
}

// knowledgeOn builds knowledge for a side standing at pos on g where every
// cell satisfying mine belongs to the own area
func knowledgeOn(g *core.Grid, pos core.Coordinate, mine func(core.Coordinate) bool) *Knowledge {
	testutil.MarkArea(g, mine)
	return &Knowledge{Grid: g, Position: pos}
}

func everywhere(core.Coordinate) bool { return true }

func visitedCount(g *core.Grid) int {
	n := 0
	for i := range g.Cells {
		if g.Cells[i].Visited {
			n++
		}
	}
	return n
}

func TestUpdateExploration(t *testing.T) {
	p := newTestPlanner()

	t.Run("grass marks only the current cell", func(t *testing.T) {
		k := knowledgeOn(testutil.FilledGrid(5, 5, core.TerrainGrass), c(2, 2), everywhere)
		p.UpdateExploration(k)
		assert.True(t, k.Grid.At(c(2, 2)).Visited)
		assert.Equal(t, 1, visitedCount(k.Grid))
	})

	t.Run("mountain marks the surrounding cells", func(t *testing.T) {
		g := testutil.FilledGrid(5, 5, core.TerrainGrass)
		g.Set(c(2, 2), core.TerrainMountain)
		k := knowledgeOn(g, c(2, 2), everywhere)
		p.UpdateExploration(k)
		for _, n := range c(2, 2).Surrounding() {
			assert.True(t, g.At(n).Visited, "neighbour %s", n)
		}
		assert.Equal(t, 9, visitedCount(g))
	})

	t.Run("mountain on the border stays in bounds", func(t *testing.T) {
		g := testutil.FilledGrid(5, 5, core.TerrainGrass)
		g.Set(c(0, 0), core.TerrainMountain)
		k := knowledgeOn(g, c(0, 0), everywhere)
		p.UpdateExploration(k)
		assert.Equal(t, 4, visitedCount(g))
	})

	t.Run("before collecting only the own area is marked", func(t *testing.T) {
		g := testutil.FilledGrid(5, 5, core.TerrainGrass)
		g.Set(c(2, 2), core.TerrainMountain)
		k := knowledgeOn(g, c(2, 2), func(at core.Coordinate) bool { return at.X <= 2 })
		p.UpdateExploration(k)
		assert.False(t, g.At(c(3, 2)).Visited)
		assert.True(t, g.At(c(1, 2)).Visited)
		assert.Equal(t, 6, visitedCount(g))

		k.Collected = true
		p.UpdateExploration(k)
		assert.True(t, g.At(c(3, 2)).Visited)
		assert.Equal(t, 9, visitedCount(g))
	})
}

func TestLegalMoves(t *testing.T) {
	p := newTestPlanner()
	leftHalf := func(at core.Coordinate) bool { return at.X < 3 }

	tests := []struct {
		name      string
		pos       core.Coordinate
		collected bool
		want      []core.Direction
	}{
		{"open field in enumeration order", c(1, 2), false, []core.Direction{core.Left, core.Down, core.Right, core.Up}},
		{"corner", c(0, 0), false, []core.Direction{core.Down, core.Right}},
		{"own area border before collecting", c(2, 2), false, []core.Direction{core.Left, core.Down, core.Up}},
		{"own area border after collecting", c(2, 2), true, []core.Direction{core.Left, core.Down, core.Right, core.Up}},
		{"enemy area after collecting", c(3, 3), true, []core.Direction{core.Down, core.Right, core.Up}},
		{"water is never legal", c(4, 1), true, []core.Direction{core.Left}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.ParseGrid(
				"G G G G G",
				"G G G G G",
				"G G G G W",
				"G G G G G",
				"G G G G G",
			)
			g.Set(c(4, 0), core.TerrainWater)
			k := knowledgeOn(g, tt.pos, leftHalf)
			k.Collected = tt.collected
			assert.Equal(t, tt.want, p.LegalMoves(k))
		})
	}
}

func TestPlan_FrontierMountain(t *testing.T) {
	g := testutil.FilledGrid(5, 5, core.TerrainGrass)
	g.Set(c(3, 2), core.TerrainMountain)
	k := knowledgeOn(g, c(2, 2), everywhere)

	p := newTestPlanner()
	p.UpdateExploration(k)

	// Plain distance prefers the cheaper grass step to the left
	assert.Equal(t, 2, p.Score(k, c(1, 2)))
	assert.Equal(t, 3, p.Score(k, c(3, 2)))
	assert.True(t, p.IsFrontier(k, c(3, 2)))

	dir, err := p.Plan(k)
	require.NoError(t, err)
	assert.Equal(t, core.Right, dir, "a frontier mountain wins while the goal is unknown")

	t.Run("known goal disables the frontier rule", func(t *testing.T) {
		k.Treasure, k.TreasureKnown = c(0, 2), true
		defer func() { k.TreasureKnown = false }()

		assert.Equal(t, 4, p.Score(k, c(1, 2)))
		dir, err := p.Plan(k)
		require.NoError(t, err)
		assert.Equal(t, core.Left, dir)
	})

	t.Run("threshold above the unexplored count", func(t *testing.T) {
		strict := newTestPlanner(WithFrontierThreshold(8))
		assert.False(t, strict.IsFrontier(k, c(3, 2)))
		dir, err := strict.Plan(k)
		require.NoError(t, err)
		assert.Equal(t, core.Left, dir, "ties keep the first direction")
	})
}

func TestPlanner_Options(t *testing.T) {
	assert.Equal(t, DefaultFrontierThreshold, newTestPlanner().FrontierThreshold())
	assert.Equal(t, 5, newTestPlanner(WithFrontierThreshold(5)).FrontierThreshold())
	assert.Equal(t, DefaultFrontierThreshold, newTestPlanner(WithFrontierThreshold(0)).FrontierThreshold())
}

func TestIsFrontier_IgnoresForbiddenCells(t *testing.T) {
	g := testutil.FilledGrid(5, 5, core.TerrainGrass)
	g.Set(c(2, 2), core.TerrainMountain)
	// Only the column left of the mountain is in the own area
	k := knowledgeOn(g, c(0, 2), func(at core.Coordinate) bool { return at.X <= 1 })

	p := newTestPlanner()
	assert.True(t, p.IsFrontier(k, c(2, 2)), "three own-area grass cells at x=1")

	g.At(c(1, 1)).Visited = true
	assert.False(t, p.IsFrontier(k, c(2, 2)))

	k.Collected = true
	assert.True(t, p.IsFrontier(k, c(2, 2)), "after collecting every grass cell counts")
}

func TestScore_SkipsExploredMountains(t *testing.T) {
	g := testutil.ParseGrid("G G M")
	k := knowledgeOn(g, c(0, 0), everywhere)
	g.At(c(0, 0)).Visited = true
	g.At(c(1, 0)).Visited = true

	p := newTestPlanner()
	assert.Equal(t, pathfind.Unreachable, p.Score(k, c(1, 0)), "the mountain has no unexplored grass left")

	g.At(c(1, 0)).Visited = false
	assert.Equal(t, 2, p.Score(k, c(1, 0)))
}

func TestScore_AreaAfterCollecting(t *testing.T) {
	g := testutil.FilledGrid(6, 1, core.TerrainGrass)
	k := knowledgeOn(g, c(2, 0), func(at core.Coordinate) bool { return at.X < 3 })
	k.Collected = true
	for x := 0; x < 3; x++ {
		g.At(c(x, 0)).Visited = true
	}

	p := newTestPlanner()
	// From (1,0) the nearest enemy cell (3,0) is two grass steps away after the seed step
	assert.Equal(t, 6, p.Score(k, c(1, 0)))
	assert.Equal(t, 2, p.Score(k, c(3, 0)))

	dir, err := p.Plan(k)
	require.NoError(t, err)
	assert.Equal(t, core.Right, dir)
}

func TestPlan_Fallbacks(t *testing.T) {
	p := newTestPlanner()

	t.Run("nothing left to explore takes the first legal move", func(t *testing.T) {
		g := testutil.FilledGrid(3, 3, core.TerrainGrass)
		k := knowledgeOn(g, c(1, 1), everywhere)
		for i := range g.Cells {
			g.Cells[i].Visited = true
		}
		dir, err := p.Plan(k)
		require.NoError(t, err)
		assert.Equal(t, core.Left, dir)
	})

	t.Run("surrounded by water", func(t *testing.T) {
		g := testutil.ParseGrid(
			"W W W",
			"W G W",
			"W W W",
		)
		k := knowledgeOn(g, c(1, 1), everywhere)
		_, err := p.Plan(k)
		assert.ErrorIs(t, err, core.ErrNoLegalMove)
	})
}

func TestStepsToSend(t *testing.T) {
	g := testutil.ParseGrid(
		"G M M",
		"G G W",
	)

	tests := []struct {
		name string
		from core.Coordinate
		dir  core.Direction
		want int
	}{
		{"grass to mountain", c(0, 0), core.Right, 3},
		{"mountain to grass", c(1, 0), core.Down, 3},
		{"grass to grass", c(0, 0), core.Down, 2},
		{"mountain to mountain", c(1, 0), core.Right, 4},
		{"into water", c(1, 1), core.Right, 1},
		{"off the map", c(0, 0), core.Up, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepsToSend(g, tt.from, tt.dir))
		})
	}
}
