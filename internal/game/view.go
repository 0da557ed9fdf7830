package game

import (
	"fmt"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Status is a match outcome seen from one side
type Status int

const (
	StatusRunning Status = iota
	StatusWon
	StatusLost
	StatusDraw
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	case StatusDraw:
		return "draw"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsFinal reports whether the match is over
func (s Status) IsFinal() bool { return s != StatusRunning }

// View is the side-relative game state a client receives each turn
type View struct {
	// Grid is a copy of the full map carrying the markers this side may see
	Grid *core.Grid

	Turn     int
	MaxTurns int
	MyTurn   bool

	// Collected is set once this side picked up its treasure
	Collected bool
	Status    Status
}

// View builds the snapshot for side. The enemy position is always shown;
// the treasure only once seen and until collected; the enemy fort once seen.
func (e *Engine) View(side Side) (View, error) {
	if !side.Valid() {
		return View{}, core.ErrInvalidPlayer
	}

	g := e.grid.Clone()
	g.ClearAttrs()
	marks := []struct {
		at   core.Coordinate
		attr core.Attribute
		show bool
	}{
		{e.assembly.Forts[side], core.AttrMyFort, true},
		{e.positions[side], core.AttrMyPosition, true},
		{e.positions[side.Other()], core.AttrEnemyPosition, true},
		{e.treasures[side], core.AttrMyTreasure, e.vis.treasureSeen[side] && !e.collected[side]},
		{e.assembly.Forts[side.Other()], core.AttrEnemyFort, e.vis.fortSeen[side]},
	}
	for _, m := range marks {
		if !m.show {
			continue
		}
		cell := g.At(m.at)
		if cell == nil {
			return View{}, fmt.Errorf("view for %s side: %s: %w", side, m.at, core.ErrOutOfBounds)
		}
		if err := cell.SetAttr(m.attr); err != nil {
			e.logger.Error().Err(err).Str("at", m.at.String()).Msg("Failed to mark view cell")
			return View{}, fmt.Errorf("view for %s side: %w", side, err)
		}
	}

	return View{
		Grid:      g,
		Turn:      e.turn,
		MaxTurns:  e.maxTurns,
		MyTurn:    !e.gameOver && e.toAct == side,
		Collected: e.collected[side],
		Status:    e.statusFor(side),
	}, nil
}

func (e *Engine) statusFor(side Side) Status {
	switch {
	case !e.gameOver:
		return StatusRunning
	case e.winner == NoSide:
		return StatusDraw
	case e.winner == side:
		return StatusWon
	default:
		return StatusLost
	}
}
