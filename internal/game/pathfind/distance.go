// Package pathfind computes terrain weighted travel costs on a known map.
package pathfind

import (
	"math"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Unreachable is returned by Distance when no water free path exists
const Unreachable = math.MaxInt

const (
	costGrassToGrass       = 2
	costGrassMountain      = 3
	costMountainToMountain = 4
)

// StepCost returns how many turns one orthogonal step from one terrain to
// another takes. The second result is false when the step is impossible:
// water and unset cells can never be entered or left. A fort costs like grass.
func StepCost(from, to core.Terrain) (int, bool) {
	from, to = from.Base(), to.Base()
	switch {
	case from == core.TerrainGrass && to == core.TerrainGrass:
		return costGrassToGrass, true
	case from == core.TerrainGrass && to == core.TerrainMountain,
		from == core.TerrainMountain && to == core.TerrainGrass:
		return costGrassMountain, true
	case from == core.TerrainMountain && to == core.TerrainMountain:
		return costMountainToMountain, true
	}
	return 0, false
}

// Distance returns the cheapest accumulated step cost from start to target.
// The search is seeded with the cost of stepping from current onto start, so
// the result is what reaching target through start costs from where the agent
// stands now.
func Distance(g *core.Grid, start, target, current core.Coordinate) int {
	if !g.InBounds(target) {
		return Unreachable
	}
	costs := Costs(g, start, current)
	if costs == nil {
		return Unreachable
	}
	return costs[target.ToIndex(g.W)]
}

// Costs runs the same search as Distance once and returns the cost of every
// cell in row-major order, Unreachable where no path exists. It returns nil
// when start cannot be entered from current. Cells are re-enqueued whenever
// a strictly cheaper cost is found.
func Costs(g *core.Grid, start, current core.Coordinate) []int {
	if !g.InBounds(start) || !g.InBounds(current) {
		return nil
	}
	seed, ok := StepCost(g.TerrainAt(current), g.TerrainAt(start))
	if !ok {
		return nil
	}

	dist := make([]int, len(g.Cells))
	for i := range dist {
		dist[i] = Unreachable
	}
	dist[start.ToIndex(g.W)] = seed

	queue := []core.Coordinate{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curCost := dist[cur.ToIndex(g.W)]
		curTerrain := g.TerrainAt(cur)

		for _, n := range cur.Neighbors() {
			if !g.InBounds(n) {
				continue
			}
			step, ok := StepCost(curTerrain, g.TerrainAt(n))
			if !ok {
				continue
			}
			idx := n.ToIndex(g.W)
			if next := curCost + step; next < dist[idx] {
				dist[idx] = next
				queue = append(queue, n)
			}
		}
	}
	return dist
}
