package gameserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/states"
	"github.com/treasurehunt/TreasureHuntAI/internal/testutil"
)

func halfMapRequest(t *testing.T) *structpb.Struct {
	t.Helper()
	req, err := HalfMapToStruct("AbC12", "player", testutil.ValidHalfMap())
	require.NoError(t, err)
	return req
}

func nodeFields(req *structpb.Struct, i int) map[string]*structpb.Value {
	return req.GetFields()[fieldNodes].GetListValue().GetValues()[i].GetStructValue().GetFields()
}

func TestHalfMap_RoundTrip(t *testing.T) {
	req := halfMapRequest(t)
	assert.Equal(t, "AbC12", stringValue(req, fieldGameID))
	assert.Len(t, req.GetFields()[fieldNodes].GetListValue().GetValues(), core.HalfMapWidth*core.HalfMapHeight)

	got, err := halfMapFromStruct(req)
	require.NoError(t, err)
	assert.Equal(t, testutil.ValidHalfMap(), got)
}

func TestHalfMapFromStruct_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *structpb.Struct)
		check  func(t *testing.T, err error)
	}{
		{
			name: "fractional coordinate",
			mutate: func(req *structpb.Struct) {
				nodeFields(req, 3)[fieldX] = structpb.NewNumberValue(1.5)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, errMalformedRequest) },
		},
		{
			name: "unknown terrain",
			mutate: func(req *structpb.Struct) {
				nodeFields(req, 0)[fieldTerrain] = structpb.NewStringValue("lava")
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, core.ErrInvalidTerrainType) },
		},
		{
			name: "missing terrain",
			mutate: func(req *structpb.Struct) {
				delete(nodeFields(req, 0), fieldTerrain)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, core.ErrInvalidTerrainType) },
		},
		{
			name: "fort on water",
			mutate: func(req *structpb.Struct) {
				// (4,0) is water in the valid half map
				nodeFields(req, 4)[fieldFort] = structpb.NewBoolValue(true)
			},
			check: func(t *testing.T, err error) {
				assert.Equal(t, core.ViolationMissingFort, core.ViolationKindOf(err))
			},
		},
		{
			name: "gap",
			mutate: func(req *structpb.Struct) {
				list := req.GetFields()[fieldNodes].GetListValue()
				list.Values = list.Values[1:]
			},
			check: func(t *testing.T, err error) {
				assert.Equal(t, core.ViolationSizeMismatch, core.ViolationKindOf(err))
			},
		},
		{
			name: "coordinate beyond any covering map",
			mutate: func(req *structpb.Struct) {
				nodeFields(req, 3)[fieldX] = structpb.NewNumberValue(50)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, errMalformedRequest) },
		},
		{
			name: "coordinate beyond int32",
			mutate: func(req *structpb.Struct) {
				nodeFields(req, 3)[fieldY] = structpb.NewNumberValue(1 << 62)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, errMalformedRequest) },
		},
		{
			name: "duplicate node",
			mutate: func(req *structpb.Struct) {
				nodeFields(req, 1)[fieldX] = structpb.NewNumberValue(0)
				nodeFields(req, 1)[fieldY] = structpb.NewNumberValue(0)
			},
			check: func(t *testing.T, err error) {
				assert.Equal(t, core.ViolationSizeMismatch, core.ViolationKindOf(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := halfMapRequest(t)
			tt.mutate(req)
			g, err := halfMapFromStruct(req)
			require.Error(t, err)
			assert.Nil(t, g)
			tt.check(t, err)
		})
	}
}

func TestHalfMapFromStruct_HugeSpanDoesNotWrap(t *testing.T) {
	// 2^62+1 columns times 4 rows wraps to 4 in int64
	node := func(x, y float64) interface{} {
		return map[string]interface{}{fieldX: x, fieldY: y, fieldTerrain: "grass", fieldFort: false}
	}
	req, err := structpb.NewStruct(map[string]interface{}{
		fieldGameID: "AbC12",
		fieldNodes:  []interface{}{node(1<<62, 0), node(0, 3), node(0, 0), node(0, 1)},
	})
	require.NoError(t, err)

	var g *core.Grid
	require.NotPanics(t, func() { g, err = halfMapFromStruct(req) })
	assert.Nil(t, g)
	assert.ErrorIs(t, err, errMalformedRequest)
	assert.NotErrorIs(t, err, core.ErrMapViolation, "a malformed request costs no game")
}

func TestHalfMapFromStruct_EmptyIsMissingMap(t *testing.T) {
	g, err := halfMapFromStruct(&structpb.Struct{})
	assert.NoError(t, err)
	assert.Nil(t, g, "the validator reports the missing map")
}

func TestState_RoundTrip(t *testing.T) {
	g := testutil.FilledGrid(4, 2, core.TerrainGrass)
	g.Set(core.NewCoordinate(1, 0), core.TerrainMountain)
	g.Set(core.NewCoordinate(3, 1), core.TerrainWater)
	// Forts travel as markers on grass
	require.NoError(t, g.At(core.NewCoordinate(0, 1)).SetAttr(core.AttrMyFort))
	require.NoError(t, g.At(core.NewCoordinate(2, 0)).SetAttr(core.AttrMyPosition|core.AttrMyTreasure))
	require.NoError(t, g.At(core.NewCoordinate(2, 1)).SetAttr(core.AttrEnemyPosition))

	view := &game.View{Grid: g, Turn: 7, MaxTurns: 320, Status: game.StatusRunning}
	resp, err := stateToStruct(playerState{
		gameID:  "AbC12",
		stateID: "state-1",
		phase:   states.PhaseRunning,
		status:  StatusMustAct,
		view:    view,
	})
	require.NoError(t, err)

	st, err := StateFromStruct(resp)
	require.NoError(t, err)
	assert.Equal(t, "AbC12", st.GameID)
	assert.Equal(t, "state-1", st.StateID)
	assert.Equal(t, states.PhaseRunning.String(), st.Phase)
	assert.Equal(t, StatusMustAct, st.Status)
	require.NotNil(t, st.View)
	assert.Equal(t, g, st.View.Grid)
	assert.Equal(t, 7, st.View.Turn)
	assert.Equal(t, 320, st.View.MaxTurns)
	assert.True(t, st.View.MyTurn)
	assert.False(t, st.View.Collected)
}

func TestState_WithoutMap(t *testing.T) {
	resp, err := stateToStruct(playerState{
		gameID: "AbC12",
		phase:  states.PhaseEnded,
		status: StatusWon,
	})
	require.NoError(t, err)

	st, err := StateFromStruct(resp)
	require.NoError(t, err)
	assert.Nil(t, st.View)
	assert.True(t, st.Status.IsFinal())
	assert.Equal(t, game.StatusWon, st.Status.gameStatus())
}
