package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/events"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/pathfind"
)

// Loss reasons reported through EndReason and player.lost events
const (
	ReasonLeftMap     = "moved off the map"
	ReasonDrowned     = "moved into water"
	ReasonTurnLimit   = "turn limit reached"
	ReasonFortReached = "reached the enemy fort with the treasure"
)

// pendingMove counts consecutive sends of one direction
type pendingMove struct {
	dir   core.Direction
	count int
}

// MoveResult describes what a single accepted move did
type MoveResult struct {
	// Arrived is set when the move completed a step onto a new cell
	Arrived bool

	// Position is the mover's cell after the move
	Position core.Coordinate

	// Pending is how many more sends of the same direction the step still needs
	Pending int
}

// Engine referees one match on an assembled map. It is not safe for
// concurrent use; callers serialize access per game.
type Engine struct {
	assembly *Assembly
	grid     *core.Grid
	rng      *rand.Rand
	logger   zerolog.Logger

	gameID    string
	publisher events.Publisher
	maxTurns  int

	turn      int
	toAct     Side
	positions [2]core.Coordinate
	treasures [2]core.Coordinate
	collected [2]bool
	pending   [2]*pendingMove
	stats     [2]SideStats
	vis       *visibility

	gameOver  bool
	winner    Side
	endReason string
	startTime time.Time
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithMaxTurns ends the game in a draw after n accepted moves in total
func WithMaxTurns(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithEvents publishes game events tagged with gameID
func WithEvents(gameID string, publisher events.Publisher) EngineOption {
	return func(e *Engine) {
		e.gameID = gameID
		e.publisher = publisher
	}
}

// NewEngine starts a match: both sides stand on their forts and each side's
// treasure is hidden on a random grass cell of its own half.
func NewEngine(assembly *Assembly, firstToAct Side, rng *rand.Rand, logger zerolog.Logger, opts ...EngineOption) (*Engine, error) {
	if assembly == nil || assembly.Grid == nil {
		return nil, fmt.Errorf("new engine: %w", core.ErrMapViolation)
	}
	if !firstToAct.Valid() {
		return nil, fmt.Errorf("new engine: first to act %s: %w", firstToAct, core.ErrInvalidPlayer)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		assembly:  assembly,
		grid:      assembly.Grid,
		rng:       rng,
		maxTurns:  DefaultMaxTurns,
		toAct:     firstToAct,
		winner:    NoSide,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logger.With().Str("component", "Engine").Str("game_id", e.gameID).Logger()
	e.vis = newVisibility(e.grid)

	for _, s := range Sides {
		treasure, err := e.hideTreasure(s)
		if err != nil {
			return nil, err
		}
		e.treasures[s] = treasure
		e.positions[s] = assembly.Forts[s]
	}

	e.publish(events.NewGameStartedEvent(e.gameID, int(firstToAct), e.grid.W, e.grid.H))
	for _, s := range Sides {
		e.reveal(s, e.positions[s])
	}

	e.logger.Info().
		Int("width", e.grid.W).
		Int("height", e.grid.H).
		Bool("vertical", assembly.Vertical).
		Str("first_to_act", firstToAct.String()).
		Int("max_turns", e.maxTurns).
		Msg("Match started")
	return e, nil
}

// hideTreasure picks a grass cell in the side's half other than its fort
func (e *Engine) hideTreasure(s Side) (core.Coordinate, error) {
	area := e.assembly.Areas[s]
	var candidates []core.Coordinate
	for y := area.Y; y < area.Y+area.H; y++ {
		for x := area.X; x < area.X+area.W; x++ {
			c := core.NewCoordinate(x, y)
			if c == e.assembly.Forts[s] || !e.grid.TerrainAt(c).IsGrass() {
				continue
			}
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return core.Coordinate{}, fmt.Errorf("hide treasure for %s side: no free grass: %w", s, core.ErrMapViolation)
	}
	return candidates[e.rng.Intn(len(candidates))], nil
}

// Move applies one directional send for side. A step completes once the same
// direction has been sent as many times as the terrain pair costs.
func (e *Engine) Move(side Side, dir core.Direction) (MoveResult, error) {
	if !side.Valid() {
		return MoveResult{}, core.ErrInvalidPlayer
	}
	if e.gameOver {
		return MoveResult{}, core.ErrGameOver
	}
	if side != e.toAct {
		return MoveResult{}, core.ErrNotYourTurn
	}
	if !dir.IsValid() {
		return MoveResult{}, fmt.Errorf("%w: %d", core.ErrInvalidDirection, int(dir))
	}

	e.turn++
	e.stats[side].Moves++

	from := e.positions[side]
	to := from.Move(dir)
	result := MoveResult{Position: from}

	if !e.grid.InBounds(to) {
		e.Lose(side, ReasonLeftMap)
		return result, nil
	}
	if e.grid.TerrainAt(to).IsWater() {
		e.Lose(side, ReasonDrowned)
		return result, nil
	}

	cost, _ := pathfind.StepCost(e.grid.TerrainAt(from), e.grid.TerrainAt(to))
	p := e.pending[side]
	if p == nil || p.dir != dir {
		p = &pendingMove{dir: dir}
		e.pending[side] = p
	}
	p.count++

	if p.count < cost {
		result.Pending = cost - p.count
		e.logger.Debug().
			Str("side", side.String()).
			Str("direction", dir.String()).
			Int("pending", result.Pending).
			Msg("Move accumulating")
	} else {
		e.pending[side] = nil
		e.positions[side] = to
		e.stats[side].Steps++
		result.Arrived = true
		result.Position = to

		e.publish(events.NewMoveExecutedEvent(e.gameID, int(side), e.turn, from, to))
		e.arrive(side, to)
	}

	if !e.gameOver {
		e.toAct = side.Other()
		if e.turn >= e.maxTurns {
			e.end(NoSide, ReasonTurnLimit)
		}
	}
	return result, nil
}

// arrive handles discovery, collection and the win condition for a completed step
func (e *Engine) arrive(side Side, at core.Coordinate) {
	e.reveal(side, at)

	if !e.collected[side] && at == e.treasures[side] {
		e.collected[side] = true
		e.publish(events.NewTreasureCollectedEvent(e.gameID, int(side), e.turn, at))
		e.logger.Info().Str("side", side.String()).Int("turn", e.turn).Msg("Treasure collected")
	}

	if e.collected[side] && at == e.assembly.Forts[side.Other()] {
		e.end(side, ReasonFortReached)
	}
}

// Lose ends the game with side as the loser
func (e *Engine) Lose(side Side, reason string) {
	if e.gameOver || !side.Valid() {
		return
	}
	e.publish(events.NewPlayerLostEvent(e.gameID, int(side), e.turn, reason))
	e.logger.Info().Str("side", side.String()).Str("reason", reason).Int("turn", e.turn).Msg("Player lost")
	e.end(side.Other(), reason)
}

func (e *Engine) end(winner Side, reason string) {
	e.gameOver = true
	e.winner = winner
	e.endReason = reason
	e.publish(events.NewGameEndedEvent(e.gameID, int(winner), time.Since(e.startTime), e.turn))
	e.logger.Info().
		Str("winner", winner.String()).
		Str("reason", reason).
		Int("turn", e.turn).
		Msg("Match ended")
}

func (e *Engine) publish(ev events.Event) {
	if e.publisher != nil {
		e.publisher.Publish(ev)
	}
}

// Public accessors
func (e *Engine) Turn() int           { return e.turn }
func (e *Engine) MaxTurns() int       { return e.maxTurns }
func (e *Engine) ToAct() Side         { return e.toAct }
func (e *Engine) IsGameOver() bool    { return e.gameOver }
func (e *Engine) EndReason() string   { return e.endReason }
func (e *Engine) Assembly() *Assembly { return e.assembly }
func (e *Engine) Grid() *core.Grid    { return e.grid }

// Stats returns the counters collected for side
func (e *Engine) Stats(side Side) SideStats { return e.stats[side] }

// GetWinner returns the winning side, or NoSide while running or after a draw
func (e *Engine) GetWinner() Side {
	if !e.gameOver {
		return NoSide
	}
	return e.winner
}

// Position returns where side currently stands
func (e *Engine) Position(side Side) core.Coordinate { return e.positions[side] }

// Treasure returns where side's treasure is hidden
func (e *Engine) Treasure(side Side) core.Coordinate { return e.treasures[side] }

// Collected reports whether side picked up its treasure
func (e *Engine) Collected(side Side) bool { return e.collected[side] }
