package gameserver

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/treasurehunt/TreasureHuntAI/internal/common"
	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/states"
)

// Wire field names shared by requests and responses
const (
	fieldGameID     = "game_id"
	fieldPlayerID   = "player_id"
	fieldPlayerName = "player_name"
	fieldRequestID  = "request_id"
	fieldNodes      = "nodes"
	fieldX          = "x"
	fieldY          = "y"
	fieldTerrain    = "terrain"
	fieldFort       = "fort"
	fieldAttrs      = "attrs"
	fieldDirection  = "direction"
	fieldStateID    = "state_id"
	fieldPhase      = "phase"
	fieldStatus     = "status"
	fieldCollected  = "collected"
	fieldTurn       = "turn"
	fieldMaxTurns   = "max_turns"
	fieldMap        = "map"
	fieldWidth      = "width"
	fieldHeight     = "height"
	fieldArrived    = "arrived"
	fieldPending    = "pending"
)

// PlayerStatus is what a player is expected to do next
type PlayerStatus string

const (
	StatusMustAct  PlayerStatus = "must_act"
	StatusMustWait PlayerStatus = "must_wait"
	StatusWon      PlayerStatus = "won"
	StatusLost     PlayerStatus = "lost"
	StatusDraw     PlayerStatus = "draw"
)

// IsFinal reports whether the game is over for the player
func (s PlayerStatus) IsFinal() bool {
	return s == StatusWon || s == StatusLost || s == StatusDraw
}

func (s PlayerStatus) gameStatus() game.Status {
	switch s {
	case StatusWon:
		return game.StatusWon
	case StatusLost:
		return game.StatusLost
	case StatusDraw:
		return game.StatusDraw
	default:
		return game.StatusRunning
	}
}

// playerState is the server side snapshot sent in a GetState response
type playerState struct {
	gameID    string
	stateID   string
	phase     states.GamePhase
	status    PlayerStatus
	view      *game.View
	collected bool
}

func stringValue(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// intValue accepts only whole numbers within int32 range
func intValue(v *structpb.Value) (int, bool) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) ||
		n.NumberValue < math.MinInt32 || n.NumberValue > math.MaxInt32 {
		return 0, false
	}
	return int(n.NumberValue), true
}

// encodeNodes lists every cell of g, with markers when withAttrs is set
func encodeNodes(g *core.Grid, withAttrs bool) []interface{} {
	nodes := make([]interface{}, 0, len(g.Cells))
	for i := range g.Cells {
		at := core.FromIndex(i, g.W)
		cell := &g.Cells[i]
		node := map[string]interface{}{
			fieldX:       at.X,
			fieldY:       at.Y,
			fieldTerrain: cell.Terrain.Base().String(),
		}
		if withAttrs {
			attrs := make([]interface{}, 0, 2)
			for _, name := range cell.Attrs.Names() {
				attrs = append(attrs, name)
			}
			node[fieldAttrs] = attrs
		} else {
			node[fieldFort] = cell.IsFort()
		}
		nodes = append(nodes, node)
	}
	return nodes
}

type decodedNode struct {
	at      core.Coordinate
	terrain core.Terrain
	attrs   core.Attribute
}

// decodeNodes parses a node list and returns the nodes with the grid size
// they span. Malformed nodes are protocol errors, not map violations. A
// coordinate no smaller than the node count cannot belong to any gap free
// grid of those nodes, so both spans stay at most len(nodes).
func decodeNodes(list *structpb.ListValue, withAttrs bool) ([]decodedNode, int, int, error) {
	count := len(list.GetValues())
	nodes := make([]decodedNode, 0, count)
	w, h := 0, 0
	for i, v := range list.GetValues() {
		fields := v.GetStructValue().GetFields()
		x, okX := intValue(fields[fieldX])
		y, okY := intValue(fields[fieldY])
		if !okX || !okY || x < 0 || y < 0 {
			return nil, 0, 0, malformed("node %d: coordinates must be non-negative integers", i)
		}
		if x >= count || y >= count {
			return nil, 0, 0, malformed("node %d: (%d,%d) lies outside any map %d nodes can cover", i, x, y, count)
		}

		t, err := core.TerrainFromString(fields[fieldTerrain].GetStringValue())
		if err != nil {
			return nil, 0, 0, fmt.Errorf("node %d: %w", i, err)
		}
		if t == core.TerrainUnset {
			return nil, 0, 0, malformed("node %d: terrain must be set", i)
		}

		n := decodedNode{at: core.NewCoordinate(x, y), terrain: t}
		if withAttrs {
			for _, a := range fields[fieldAttrs].GetListValue().GetValues() {
				attr, err := core.AttributeFromString(a.GetStringValue())
				if err != nil {
					return nil, 0, 0, malformed("node %d: %v", i, err)
				}
				n.attrs |= attr
			}
			if err := n.attrs.Check(); err != nil {
				return nil, 0, 0, fmt.Errorf("node %d: %w", i, err)
			}
		} else if fields[fieldFort].GetBoolValue() {
			if t.Base() != core.TerrainGrass {
				return nil, 0, 0, core.NewMapViolation(core.ViolationMissingFort,
					"fort at %s must stand on grass, not %s", n.at, t)
			}
			n.terrain = core.TerrainFort
		}

		nodes = append(nodes, n)
		w = common.Max(w, x+1)
		h = common.Max(h, y+1)
	}
	return nodes, w, h, nil
}

// HalfMapToStruct encodes a half map submission
func HalfMapToStruct(gameID, playerID string, g *core.Grid) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		fieldGameID:   gameID,
		fieldPlayerID: playerID,
		fieldNodes:    encodeNodes(g, false),
	})
}

// halfMapFromStruct decodes a half map submission. An empty node list yields
// a nil grid so the validator reports the missing map. Gaps and duplicates
// are size violations.
func halfMapFromStruct(req *structpb.Struct) (*core.Grid, error) {
	list := req.GetFields()[fieldNodes].GetListValue()
	if len(list.GetValues()) == 0 {
		return nil, nil
	}

	nodes, w, h, err := decodeNodes(list, false)
	if err != nil {
		return nil, err
	}
	if w*h != len(nodes) {
		return nil, core.NewMapViolation(core.ViolationSizeMismatch,
			"%d nodes cannot cover a %dx%d map", len(nodes), w, h)
	}

	g := core.NewGrid(w, h)
	for _, n := range nodes {
		if g.TerrainAt(n.at) != core.TerrainUnset {
			return nil, core.NewMapViolation(core.ViolationSizeMismatch, "node %s sent twice", n.at)
		}
		g.Set(n.at, n.terrain)
	}
	return g, nil
}

// stateToStruct encodes a GetState response. The map is only included once
// both half maps are assembled.
func stateToStruct(st playerState) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		fieldGameID:    st.gameID,
		fieldStateID:   st.stateID,
		fieldPhase:     st.phase.String(),
		fieldStatus:    string(st.status),
		fieldCollected: st.collected,
	}
	if v := st.view; v != nil {
		fields[fieldTurn] = v.Turn
		fields[fieldMaxTurns] = v.MaxTurns
		fields[fieldMap] = map[string]interface{}{
			fieldWidth:  v.Grid.W,
			fieldHeight: v.Grid.H,
			fieldNodes:  encodeNodes(v.Grid, true),
		}
	}
	return structpb.NewStruct(fields)
}

// State is the client side decoding of a GetState response
type State struct {
	GameID  string
	StateID string
	Phase   string
	Status  PlayerStatus

	// View is nil until the full map exists
	View *game.View
}

// StateFromStruct decodes a GetState response into a view the agent understands
func StateFromStruct(resp *structpb.Struct) (State, error) {
	st := State{
		GameID:  stringValue(resp, fieldGameID),
		StateID: stringValue(resp, fieldStateID),
		Phase:   stringValue(resp, fieldPhase),
		Status:  PlayerStatus(stringValue(resp, fieldStatus)),
	}

	m := resp.GetFields()[fieldMap].GetStructValue()
	if m == nil {
		return st, nil
	}

	w, okW := intValue(m.GetFields()[fieldWidth])
	h, okH := intValue(m.GetFields()[fieldHeight])
	if !okW || !okH || w <= 0 || h <= 0 {
		return st, fmt.Errorf("state map: invalid dimensions")
	}
	nodes, _, _, err := decodeNodes(m.GetFields()[fieldNodes].GetListValue(), true)
	if err != nil {
		return st, fmt.Errorf("state map: %w", err)
	}

	g := core.NewGrid(w, h)
	for _, n := range nodes {
		cell := g.At(n.at)
		if cell == nil {
			return st, fmt.Errorf("state map: node %s: %w", n.at, core.ErrOutOfBounds)
		}
		cell.Terrain = n.terrain
		cell.Attrs = n.attrs
	}

	turn, _ := intValue(resp.GetFields()[fieldTurn])
	maxTurns, _ := intValue(resp.GetFields()[fieldMaxTurns])
	st.View = &game.View{
		Grid:      g,
		Turn:      turn,
		MaxTurns:  maxTurns,
		MyTurn:    st.Status == StatusMustAct,
		Collected: resp.GetFields()[fieldCollected].GetBoolValue(),
		Status:    st.Status.gameStatus(),
	}
	return st, nil
}
