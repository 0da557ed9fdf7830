package agent

import (
	"github.com/rs/zerolog"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/pathfind"
)

// DefaultFrontierThreshold is how many unexplored grass cells around a
// mountain make climbing it worth more than walking the shortest path
const DefaultFrontierThreshold = 3

// Planner chooses one step per decision from a side's knowledge
type Planner struct {
	frontierThreshold int
	logger            zerolog.Logger
}

// PlannerOption customizes a Planner
type PlannerOption func(*Planner)

// WithFrontierThreshold sets the unexplored grass count that makes a mountain a frontier
func WithFrontierThreshold(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.frontierThreshold = n
		}
	}
}

// NewPlanner creates a planner
func NewPlanner(logger zerolog.Logger, opts ...PlannerOption) *Planner {
	p := &Planner{
		frontierThreshold: DefaultFrontierThreshold,
		logger:            logger.With().Str("component", "Planner").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FrontierThreshold returns the configured frontier size
func (p *Planner) FrontierThreshold() int { return p.frontierThreshold }

// permitted reports whether exploring c is allowed: the own area before the
// treasure is collected, anywhere afterwards.
func permitted(k *Knowledge, c *core.Cell) bool {
	return k.Collected || c.InMyArea
}

// UpdateExploration marks the current cell visited. Standing on a mountain
// also marks the eight surrounding cells that exploration may cover.
func (p *Planner) UpdateExploration(k *Knowledge) {
	here := k.Grid.At(k.Position)
	if here == nil {
		return
	}
	here.Visited = true
	if !here.IsMountain() {
		return
	}
	for _, n := range k.Position.Surrounding() {
		if cell := k.Grid.At(n); cell != nil && permitted(k, cell) {
			cell.Visited = true
		}
	}
}

// LegalMoves lists the steps the side may take in Left, Down, Right, Up order.
// Water and the map border are never legal. Before collecting the treasure a
// step must stay in the own area; afterwards a side in its own area may go
// anywhere, and a side in the enemy area must stay there.
func (p *Planner) LegalMoves(k *Knowledge) []core.Direction {
	here := k.Grid.At(k.Position)
	if here == nil {
		return nil
	}

	moves := make([]core.Direction, 0, len(core.Directions))
	for _, d := range core.Directions {
		dest := k.Grid.At(k.Position.Move(d))
		if dest == nil || dest.IsWater() {
			continue
		}
		switch {
		case !k.Collected && !dest.InMyArea:
			continue
		case k.Collected && !here.InMyArea && dest.InMyArea:
			continue
		}
		moves = append(moves, d)
	}
	return moves
}

// Plan picks the next step. While the current goal is unknown, the first
// legal step onto a frontier mountain wins outright. Otherwise the step with
// the lowest Score wins, ties going to the earlier direction. When no step
// can reach anything, the first legal step is returned.
func (p *Planner) Plan(k *Knowledge) (core.Direction, error) {
	moves := p.LegalMoves(k)
	if len(moves) == 0 {
		p.logger.Warn().Str("position", k.Position.String()).Msg("No legal move")
		return 0, core.ErrNoLegalMove
	}

	exploring := !k.GoalKnown()
	best, bestScore := moves[0], pathfind.Unreachable
	for _, d := range moves {
		dest := k.Position.Move(d)
		if exploring && k.Grid.TerrainAt(dest).IsMountain() && p.IsFrontier(k, dest) {
			p.logger.Debug().
				Str("direction", d.String()).
				Str("mountain", dest.String()).
				Msg("Climbing frontier mountain")
			return d, nil
		}

		if score := p.Score(k, dest); score < bestScore {
			best, bestScore = d, score
		}
	}

	if bestScore == pathfind.Unreachable {
		p.logger.Debug().Str("direction", best.String()).Msg("Nothing reachable, taking first legal move")
	} else {
		p.logger.Debug().Str("direction", best.String()).Int("score", bestScore).Msg("Planned move")
	}
	return best, nil
}

// IsFrontier reports whether at least the threshold of cells around c are
// unexplored grass the side may explore.
func (p *Planner) IsFrontier(k *Knowledge, c core.Coordinate) bool {
	count := 0
	for _, n := range c.Surrounding() {
		cell := k.Grid.At(n)
		if cell == nil || !cell.IsGrass() || cell.Visited || !permitted(k, cell) {
			continue
		}
		count++
	}
	return count >= p.frontierThreshold
}

// Score rates stepping onto dest: the travel cost from dest to the known goal,
// or else to the nearest unvisited non-water cell of the right area (own area
// before collecting, enemy area after). Mountains whose surrounding grass is
// all visited are not worth reaching and are skipped.
func (p *Planner) Score(k *Knowledge, dest core.Coordinate) int {
	if goal, ok := k.Goal(); ok {
		return pathfind.Distance(k.Grid, dest, goal, k.Position)
	}

	costs := pathfind.Costs(k.Grid, dest, k.Position)
	if costs == nil {
		return pathfind.Unreachable
	}

	best := pathfind.Unreachable
	for i := range k.Grid.Cells {
		cell := &k.Grid.Cells[i]
		if cell.Visited || cell.IsWater() || cell.InMyArea == k.Collected {
			continue
		}
		if cell.IsMountain() && surroundingGrassExplored(k.Grid, core.FromIndex(i, k.Grid.W)) {
			continue
		}
		if costs[i] < best {
			best = costs[i]
		}
	}
	return best
}

// surroundingGrassExplored reports whether every grass cell around c is visited
func surroundingGrassExplored(g *core.Grid, c core.Coordinate) bool {
	for _, n := range c.Surrounding() {
		if cell := g.At(n); cell != nil && cell.IsGrass() && !cell.Visited {
			return false
		}
	}
	return true
}

// StepsToSend returns how many times a step from from in dir must be sent
// before it completes. It mirrors pathfind.StepCost and is 1 for steps the
// cost table does not cover.
func StepsToSend(g *core.Grid, from core.Coordinate, dir core.Direction) int {
	cost, ok := pathfind.StepCost(g.TerrainAt(from), g.TerrainAt(from.Move(dir)))
	if !ok {
		return 1
	}
	return cost
}
