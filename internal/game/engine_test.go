package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/events"
	"github.com/treasurehunt/TreasureHuntAI/internal/testutil"
)

var (
	firstFort  = core.NewCoordinate(8, 2)
	secondFort = core.NewCoordinate(11, 2)
)

// newTestAssembly returns a horizontal 20x5 map with the first side on the left
func newTestAssembly() *Assembly {
	return &Assembly{
		Grid: testutil.ParseGrid(
			"G G G G G G G G G G  G G G G G G G G G G",
			"G G G G G G G M G G  G G G G G G G G G G",
			"G G G G G G G G G G  G G G G G G G G G W",
			"W G G G G G G G G G  G G G G G G G G G G",
			"G G G G G G G G G G  G G G G G G G G G G",
		),
		Forts: [2]core.Coordinate{firstFort, secondFort},
		Areas: [2]Area{{X: 0, Y: 0, W: 10, H: 5}, {X: 10, Y: 0, W: 10, H: 5}},
	}
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(newTestAssembly(), SideFirst, testutil.NewTestRNG(12345), zerolog.Nop(), opts...)
	require.NoError(t, err)
	return e
}

// stall makes side send a move that never completes: it alternates Up and
// Down so the same-direction counter keeps restarting.
func stall(t *testing.T, e *Engine, side Side) {
	t.Helper()
	dir := core.Up
	if p := e.pending[side]; p != nil && p.dir == core.Up {
		dir = core.Down
	}
	res, err := e.Move(side, dir)
	require.NoError(t, err)
	require.False(t, res.Arrived, "stall must not complete a step")
}

// send makes side send dir n times, stalling the other side in between
func send(t *testing.T, e *Engine, side Side, dir core.Direction, n int) MoveResult {
	t.Helper()
	var res MoveResult
	for i := 0; i < n; i++ {
		if e.ToAct() != side {
			stall(t, e, side.Other())
		}
		var err error
		res, err = e.Move(side, dir)
		require.NoError(t, err)
	}
	return res
}

func TestSide(t *testing.T) {
	assert.Equal(t, SideSecond, SideFirst.Other())
	assert.Equal(t, SideFirst, SideSecond.Other())
	assert.Equal(t, NoSide, NoSide.Other())
	assert.False(t, NoSide.Valid())
	assert.Equal(t, "first", SideFirst.String())
	assert.Equal(t, "side(7)", Side(7).String())
}

func TestAssemble(t *testing.T) {
	half := testutil.ValidHalfMap()
	localFort := core.NewCoordinate(5, 1)

	layouts := make(map[[2]bool]int)
	for seed := int64(0); seed < 64; seed++ {
		a, err := Assemble(half, half.Clone(), testutil.NewTestRNG(seed))
		require.NoError(t, err)
		layouts[[2]bool{a.Vertical, a.Swapped}]++

		if a.Vertical {
			assert.Equal(t, 10, a.Grid.W)
			assert.Equal(t, 10, a.Grid.H)
		} else {
			assert.Equal(t, 20, a.Grid.W)
			assert.Equal(t, 5, a.Grid.H)
		}

		for _, s := range Sides {
			area := a.Areas[s]
			assert.Equal(t, localFort.Add(area.Origin()), a.Forts[s])
			assert.Equal(t, s, a.SideAt(a.Forts[s]))
			assert.Equal(t, core.TerrainGrass, a.Grid.TerrainAt(a.Forts[s]), "fort becomes plain grass")
		}

		topLeft := a.Areas[SideFirst].Origin() == core.NewCoordinate(0, 0)
		assert.Equal(t, a.Swapped, !topLeft)
		assert.Zero(t, a.Grid.Count(core.TerrainFort))
		assert.Zero(t, a.Grid.Count(core.TerrainUnset))
		assert.Equal(t, 2*half.Count(core.TerrainWater), a.Grid.Count(core.TerrainWater))
	}
	assert.Len(t, layouts, 4, "every orientation and order should occur")
}

func TestAssemble_RejectsMalformedHalves(t *testing.T) {
	valid := testutil.ValidHalfMap()
	twoForts := testutil.ValidHalfMap()
	twoForts.Set(core.NewCoordinate(0, 0), core.TerrainFort)
	noFort := testutil.ValidHalfMap()
	noFort.Set(core.NewCoordinate(5, 1), core.TerrainGrass)

	tests := []struct {
		name   string
		first  *core.Grid
		second *core.Grid
		kind   core.ViolationKind
	}{
		{"missing first", nil, valid, core.ViolationMissingMap},
		{"wrong size", valid, core.NewGrid(5, 10), core.ViolationSizeMismatch},
		{"two forts", twoForts, valid, core.ViolationMissingFort},
		{"no fort", valid, noFort, core.ViolationMissingFort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.first, tt.second, testutil.NewTestRNG(1))
			require.Error(t, err)
			assert.Equal(t, tt.kind, core.ViolationKindOf(err))
			assert.True(t, errors.Is(err, core.ErrMapViolation))
		})
	}
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, firstFort, e.Position(SideFirst))
	assert.Equal(t, secondFort, e.Position(SideSecond))
	assert.Equal(t, SideFirst, e.ToAct())
	assert.Equal(t, DefaultMaxTurns, e.MaxTurns())
	assert.Zero(t, e.Turn())
	assert.False(t, e.IsGameOver())
	assert.Equal(t, NoSide, e.GetWinner())

	for _, s := range Sides {
		treasure := e.Treasure(s)
		assert.Equal(t, s, e.Assembly().SideAt(treasure), "treasure lies in the side's own half")
		assert.NotEqual(t, e.Assembly().Forts[s], treasure)
		assert.True(t, e.Grid().TerrainAt(treasure).IsGrass())
		assert.False(t, e.Collected(s))
		assert.True(t, e.SeenBy(s, e.Assembly().Forts[s]))
		assert.Equal(t, 1, e.Stats(s).CellsSeen)
	}
}

func TestNewEngine_InvalidArguments(t *testing.T) {
	_, err := NewEngine(nil, SideFirst, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewEngine(newTestAssembly(), NoSide, nil, zerolog.Nop())
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)
}

func TestEngine_MoveAccumulates(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Move(SideFirst, core.Left)
	require.NoError(t, err)
	assert.False(t, res.Arrived)
	assert.Equal(t, 1, res.Pending)
	assert.Equal(t, firstFort, res.Position)
	assert.Equal(t, SideSecond, e.ToAct(), "every send hands the turn over")

	stall(t, e, SideSecond)

	res, err = e.Move(SideFirst, core.Left)
	require.NoError(t, err)
	assert.True(t, res.Arrived)
	assert.Equal(t, core.NewCoordinate(7, 2), res.Position)
	assert.Equal(t, core.NewCoordinate(7, 2), e.Position(SideFirst))
	assert.Equal(t, 3, e.Turn())

	stats := e.Stats(SideFirst)
	assert.Equal(t, 2, stats.Moves)
	assert.Equal(t, 1, stats.Steps)
	assert.InDelta(t, 0.5, stats.Efficiency(), 1e-9)
}

func TestEngine_DirectionChangeRestartsCounter(t *testing.T) {
	e := newTestEngine(t)

	send(t, e, SideFirst, core.Left, 1)
	res := send(t, e, SideFirst, core.Down, 1)
	assert.False(t, res.Arrived)
	assert.Equal(t, 1, res.Pending)

	res = send(t, e, SideFirst, core.Down, 1)
	assert.True(t, res.Arrived)
	assert.Equal(t, core.NewCoordinate(8, 3), res.Position)
}

func TestEngine_MountainCosts(t *testing.T) {
	e := newTestEngine(t)

	send(t, e, SideFirst, core.Up, 2)
	require.Equal(t, core.NewCoordinate(8, 1), e.Position(SideFirst))

	res := send(t, e, SideFirst, core.Left, 2)
	assert.False(t, res.Arrived, "grass to mountain takes three sends")
	assert.Equal(t, 1, res.Pending)

	res = send(t, e, SideFirst, core.Left, 1)
	assert.True(t, res.Arrived)
	assert.Equal(t, core.NewCoordinate(7, 1), e.Position(SideFirst))
}

func TestEngine_LosingMoves(t *testing.T) {
	t.Run("off the map", func(t *testing.T) {
		e := newTestEngine(t)
		e.positions[SideFirst] = core.NewCoordinate(0, 0)

		res, err := e.Move(SideFirst, core.Up)
		require.NoError(t, err)
		assert.False(t, res.Arrived)
		assert.True(t, e.IsGameOver())
		assert.Equal(t, SideSecond, e.GetWinner())
		assert.Equal(t, ReasonLeftMap, e.EndReason())
	})

	t.Run("into water", func(t *testing.T) {
		e := newTestEngine(t)
		e.positions[SideFirst] = core.NewCoordinate(0, 2)

		_, err := e.Move(SideFirst, core.Down)
		require.NoError(t, err)
		assert.True(t, e.IsGameOver())
		assert.Equal(t, SideSecond, e.GetWinner())
		assert.Equal(t, ReasonDrowned, e.EndReason())
	})

	t.Run("rule violation", func(t *testing.T) {
		e := newTestEngine(t)
		e.Lose(SideSecond, "sent an unreadable move")
		assert.Equal(t, SideFirst, e.GetWinner())

		e.Lose(SideFirst, "ignored once over")
		assert.Equal(t, SideFirst, e.GetWinner())
	})
}

func TestEngine_MoveErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Move(SideSecond, core.Left)
	assert.ErrorIs(t, err, core.ErrNotYourTurn)

	_, err = e.Move(NoSide, core.Left)
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)

	_, err = e.Move(SideFirst, core.Direction(9))
	assert.ErrorIs(t, err, core.ErrInvalidDirection)
	assert.Zero(t, e.Turn(), "rejected sends do not use up a turn")

	e.Lose(SideFirst, "test")
	_, err = e.Move(SideSecond, core.Left)
	assert.ErrorIs(t, err, core.ErrGameOver)
}

func TestEngine_CollectAndWin(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())
	var seen []string
	for _, typ := range []string{
		events.TypeGameStarted, events.TypeTreasureRevealed, events.TypeTreasureCollected,
		events.TypeFortRevealed, events.TypeGameEnded,
	} {
		bus.SubscribeFunc(typ, func(ev events.Event) { seen = append(seen, ev.Type()) })
	}

	e := newTestEngine(t, WithEvents("g1", bus))
	e.treasures[SideFirst] = core.NewCoordinate(9, 2)

	send(t, e, SideFirst, core.Right, 2)
	assert.True(t, e.Collected(SideFirst))

	send(t, e, SideFirst, core.Right, 2)
	assert.False(t, e.IsGameOver())

	send(t, e, SideFirst, core.Right, 2)
	require.True(t, e.IsGameOver())
	assert.Equal(t, SideFirst, e.GetWinner())
	assert.Equal(t, ReasonFortReached, e.EndReason())

	assert.Equal(t, []string{
		events.TypeGameStarted,
		events.TypeTreasureRevealed,
		events.TypeTreasureCollected,
		events.TypeFortRevealed,
		events.TypeGameEnded,
	}, seen)

	won, err := e.View(SideFirst)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, won.Status)
	lost, err := e.View(SideSecond)
	require.NoError(t, err)
	assert.Equal(t, StatusLost, lost.Status)
	assert.False(t, lost.MyTurn)
}

func TestEngine_EnemyFortWithoutTreasure(t *testing.T) {
	e := newTestEngine(t)
	e.treasures[SideFirst] = core.NewCoordinate(0, 0)

	send(t, e, SideFirst, core.Right, 6)
	assert.Equal(t, secondFort, e.Position(SideFirst))
	assert.False(t, e.IsGameOver())
	assert.True(t, e.FortSeen(SideFirst))
}

func TestEngine_MountainReveal(t *testing.T) {
	e := newTestEngine(t)
	e.treasures[SideFirst] = core.NewCoordinate(6, 0)

	send(t, e, SideFirst, core.Up, 2)
	assert.False(t, e.TreasureSeen(SideFirst))

	view, err := e.View(SideFirst)
	require.NoError(t, err)
	_, ok := view.Grid.Find(core.AttrMyTreasure)
	assert.False(t, ok)

	send(t, e, SideFirst, core.Left, 3)
	assert.True(t, e.TreasureSeen(SideFirst), "a mountain shows the surrounding cells")
	assert.Equal(t, 9, e.Stats(SideFirst).CellsSeen)

	view, err = e.View(SideFirst)
	require.NoError(t, err)
	at, ok := view.Grid.Find(core.AttrMyTreasure)
	require.True(t, ok)
	assert.Equal(t, core.NewCoordinate(6, 0), at)
	assert.False(t, view.Collected)
}

func TestEngine_View(t *testing.T) {
	e := newTestEngine(t)

	view, err := e.View(SideFirst)
	require.NoError(t, err)
	assert.True(t, view.MyTurn)
	assert.Equal(t, StatusRunning, view.Status)
	assert.Equal(t, DefaultMaxTurns, view.MaxTurns)

	mine, ok := view.Grid.Find(core.AttrMyPosition)
	require.True(t, ok)
	assert.Equal(t, firstFort, mine)
	enemy, ok := view.Grid.Find(core.AttrEnemyPosition)
	require.True(t, ok)
	assert.Equal(t, secondFort, enemy)
	fort, ok := view.Grid.Find(core.AttrMyFort)
	require.True(t, ok)
	assert.Equal(t, firstFort, fort)
	_, ok = view.Grid.Find(core.AttrEnemyFort)
	assert.False(t, ok, "enemy fort stays hidden until seen")

	other, err := e.View(SideSecond)
	require.NoError(t, err)
	assert.False(t, other.MyTurn)
	mine, _ = other.Grid.Find(core.AttrMyPosition)
	assert.Equal(t, secondFort, mine)

	assert.False(t, e.Grid().At(firstFort).Has(core.AttrMyPosition), "views never mark the engine grid")

	_, err = e.View(NoSide)
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)
}

func TestEngine_DrawAtTurnLimit(t *testing.T) {
	e := newTestEngine(t, WithMaxTurns(4))

	for i := 0; i < 4; i++ {
		stall(t, e, e.ToAct())
	}
	require.True(t, e.IsGameOver())
	assert.Equal(t, NoSide, e.GetWinner())
	assert.Equal(t, ReasonTurnLimit, e.EndReason())

	for _, s := range Sides {
		view, err := e.View(s)
		require.NoError(t, err)
		assert.Equal(t, StatusDraw, view.Status)
		assert.True(t, view.Status.IsFinal())
	}
}

func TestEngine_Board(t *testing.T) {
	e := newTestEngine(t)

	full := e.Board(NoSide)
	assert.Contains(t, full, "A")
	assert.Contains(t, full, "B")
	assert.Contains(t, full, waterSymbol)
	assert.Contains(t, full, treasureSymbol)

	fogged := e.Board(SideFirst)
	assert.NotContains(t, fogged, waterSymbol+ColorReset, "unseen water is drawn as fog")
	assert.Equal(t, e.Grid().H+3, strings.Count(fogged, "\n"))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "draw", StatusDraw.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
