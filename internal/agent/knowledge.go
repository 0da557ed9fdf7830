// Package agent plans moves for one side from the fog-of-war view it receives each turn.
package agent

import (
	"errors"
	"fmt"

	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

var (
	ErrNoView       = errors.New("view carries no map")
	ErrGridChanged  = errors.New("map dimensions changed between observations")
	ErrNoOwnMarkers = errors.New("view does not mark own position")
)

// Update is the difference one observation made to the knowledge
type Update struct {
	Moved    bool
	From, To core.Coordinate

	EnemyMoved bool

	TreasureFound     bool
	EnemyFortFound    bool
	TreasureCollected bool
}

// Empty reports whether nothing changed
func (u Update) Empty() bool {
	return !u.Moved && !u.EnemyMoved && !u.TreasureFound && !u.EnemyFortFound && !u.TreasureCollected
}

// Knowledge is what one side knows about the match. Terrain and markers are
// refreshed from every view; Visited and InMyArea accumulate across turns.
type Knowledge struct {
	Grid *core.Grid

	Position      core.Coordinate
	EnemyPosition core.Coordinate
	Fort          core.Coordinate
	Area          game.Area

	Treasure       core.Coordinate
	TreasureKnown  bool
	EnemyFort      core.Coordinate
	EnemyFortKnown bool
	Collected      bool

	Turn     int
	MaxTurns int
}

// NewKnowledge returns empty knowledge; the first Observe sizes it
func NewKnowledge() *Knowledge {
	return &Knowledge{}
}

// Observe folds a view into the knowledge and reports what changed. The first
// observation also fixes the own area: the half of the map that contains the
// own fort.
func (k *Knowledge) Observe(view game.View) (Update, error) {
	if view.Grid == nil {
		return Update{}, ErrNoView
	}

	first := k.Grid == nil
	if first {
		k.Grid = view.Grid.Clone()
		for i := range k.Grid.Cells {
			k.Grid.Cells[i].Visited = false
			k.Grid.Cells[i].InMyArea = false
		}
	} else {
		if view.Grid.W != k.Grid.W || view.Grid.H != k.Grid.H {
			return Update{}, fmt.Errorf("%w: %dx%d to %dx%d", ErrGridChanged, k.Grid.W, k.Grid.H, view.Grid.W, view.Grid.H)
		}
		for i := range k.Grid.Cells {
			k.Grid.Cells[i].Terrain = view.Grid.Cells[i].Terrain
			k.Grid.Cells[i].Attrs = view.Grid.Cells[i].Attrs
		}
	}

	pos, ok := k.Grid.Find(core.AttrMyPosition)
	if !ok {
		return Update{}, ErrNoOwnMarkers
	}

	var u Update
	if !first && pos != k.Position {
		u.Moved, u.From, u.To = true, k.Position, pos
	}
	k.Position = pos

	if enemy, ok := k.Grid.Find(core.AttrEnemyPosition); ok {
		u.EnemyMoved = !first && enemy != k.EnemyPosition
		k.EnemyPosition = enemy
	}

	if first {
		k.Fort = pos
		if fort, ok := k.Grid.Find(core.AttrMyFort); ok {
			k.Fort = fort
		}
		k.Area = ownArea(k.Grid, k.Fort)
		for i := range k.Grid.Cells {
			k.Grid.Cells[i].InMyArea = k.Area.Contains(core.FromIndex(i, k.Grid.W))
		}
	}

	if t, ok := k.Grid.Find(core.AttrMyTreasure); ok && !k.TreasureKnown {
		k.Treasure, k.TreasureKnown = t, true
		u.TreasureFound = true
	}
	if f, ok := k.Grid.Find(core.AttrEnemyFort); ok && !k.EnemyFortKnown {
		k.EnemyFort, k.EnemyFortKnown = f, true
		u.EnemyFortFound = true
	}
	if view.Collected && !k.Collected {
		k.Collected = true
		u.TreasureCollected = true
		if !k.TreasureKnown {
			// Walked onto it without seeing it first
			k.Treasure, k.TreasureKnown = pos, true
		}
	}

	k.Turn = view.Turn
	k.MaxTurns = view.MaxTurns
	return u, nil
}

// ownArea returns the half of g that contains fort. A 20x5 map splits into
// left and right halves, a 10x10 map into top and bottom.
func ownArea(g *core.Grid, fort core.Coordinate) game.Area {
	if g.W > g.H {
		half := g.W / 2
		if fort.X < half {
			return game.Area{X: 0, Y: 0, W: half, H: g.H}
		}
		return game.Area{X: half, Y: 0, W: g.W - half, H: g.H}
	}
	half := g.H / 2
	if fort.Y < half {
		return game.Area{X: 0, Y: 0, W: g.W, H: half}
	}
	return game.Area{X: 0, Y: half, W: g.W, H: g.H - half}
}

// GoalKnown reports whether the current target is known: the treasure before
// collecting it and the enemy fort afterwards.
func (k *Knowledge) GoalKnown() bool {
	if k.Collected {
		return k.EnemyFortKnown
	}
	return k.TreasureKnown
}

// Goal returns the current target when GoalKnown
func (k *Knowledge) Goal() (core.Coordinate, bool) {
	if k.Collected {
		return k.EnemyFort, k.EnemyFortKnown
	}
	return k.Treasure, k.TreasureKnown
}
