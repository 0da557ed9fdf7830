package game

import (
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/events"
)

// This file contains the discovery rules: what a side sees from where it stands.

type visibility struct {
	w, h         int
	seen         [2][]bool
	treasureSeen [2]bool
	fortSeen     [2]bool
}

func newVisibility(g *core.Grid) *visibility {
	v := &visibility{w: g.W, h: g.H}
	for _, s := range Sides {
		v.seen[s] = make([]bool, g.W*g.H)
	}
	return v
}

// VisibleFrom returns the cells a side standing on at can see: the cell
// itself, plus its eight surrounding cells when standing on a mountain.
func VisibleFrom(g *core.Grid, at core.Coordinate) []core.Coordinate {
	if !g.InBounds(at) {
		return nil
	}
	cells := []core.Coordinate{at}
	if !g.TerrainAt(at).IsMountain() {
		return cells
	}
	for _, n := range at.Surrounding() {
		if g.InBounds(n) {
			cells = append(cells, n)
		}
	}
	return cells
}

// reveal marks what side sees from at and publishes first sightings of its
// treasure and of the enemy fort.
func (e *Engine) reveal(side Side, at core.Coordinate) {
	enemyFort := e.assembly.Forts[side.Other()]
	for _, c := range VisibleFrom(e.grid, at) {
		idx := c.ToIndex(e.grid.W)
		if !e.vis.seen[side][idx] {
			e.vis.seen[side][idx] = true
			e.stats[side].CellsSeen++
		}

		if c == e.treasures[side] && !e.vis.treasureSeen[side] {
			e.vis.treasureSeen[side] = true
			e.publish(events.NewTreasureRevealedEvent(e.gameID, int(side), e.turn, c))
			e.logger.Debug().Str("side", side.String()).Str("at", c.String()).Msg("Treasure revealed")
		}
		if c == enemyFort && !e.vis.fortSeen[side] {
			e.vis.fortSeen[side] = true
			e.publish(events.NewFortRevealedEvent(e.gameID, int(side), e.turn, c))
			e.logger.Debug().Str("side", side.String()).Str("at", c.String()).Msg("Enemy fort revealed")
		}
	}
}

// SeenBy reports whether side has ever seen c
func (e *Engine) SeenBy(side Side, c core.Coordinate) bool {
	if !side.Valid() || !e.grid.InBounds(c) {
		return false
	}
	return e.vis.seen[side][c.ToIndex(e.grid.W)]
}

// TreasureSeen reports whether side has spotted its own treasure
func (e *Engine) TreasureSeen(side Side) bool { return side.Valid() && e.vis.treasureSeen[side] }

// FortSeen reports whether side has spotted the enemy fort
func (e *Engine) FortSeen(side Side) bool { return side.Valid() && e.vis.fortSeen[side] }
