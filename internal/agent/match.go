package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// ReasonNoLegalMove is the loss reason for a side left without a legal step
const ReasonNoLegalMove = "no legal move"

// Match drives two agents against one engine in the same process
type Match struct {
	engine *game.Engine
	agents [2]*Agent
	logger zerolog.Logger

	// OnTurn, when set, is called after every accepted move
	OnTurn func(e *game.Engine)
}

// NewMatch pairs one agent per side with engine
func NewMatch(engine *game.Engine, first, second *Agent, logger zerolog.Logger) *Match {
	return &Match{
		engine: engine,
		agents: [2]*Agent{first, second},
		logger: logger.With().Str("component", "Match").Logger(),
	}
}

// Engine returns the refereeing engine
func (m *Match) Engine() *game.Engine { return m.engine }

// Agent returns the agent playing side
func (m *Match) Agent(side game.Side) *Agent { return m.agents[side] }

// Run plays until the engine declares the game over and returns the winner,
// NoSide for a draw. A side whose agent has no legal move loses.
func (m *Match) Run(ctx context.Context) (game.Side, error) {
	for !m.engine.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return game.NoSide, err
		}

		side := m.engine.ToAct()
		view, err := m.engine.View(side)
		if err != nil {
			return game.NoSide, fmt.Errorf("view for %s: %w", side, err)
		}

		dir, _, err := m.agents[side].Next(view)
		if errors.Is(err, core.ErrNoLegalMove) {
			m.engine.Lose(side, ReasonNoLegalMove)
			break
		}
		if err != nil {
			return game.NoSide, fmt.Errorf("agent %s: %w", side, err)
		}

		if _, err := m.engine.Move(side, dir); err != nil {
			return game.NoSide, fmt.Errorf("move %s %s: %w", side, dir, err)
		}
		if m.OnTurn != nil {
			m.OnTurn(m.engine)
		}
	}

	winner := m.engine.GetWinner()
	m.logger.Info().
		Str("winner", winner.String()).
		Str("reason", m.engine.EndReason()).
		Int("turns", m.engine.Turn()).
		Int("first_decisions", m.agents[game.SideFirst].Decisions()).
		Int("second_decisions", m.agents[game.SideSecond].Decisions()).
		Msg("Match finished")
	return winner, nil
}
