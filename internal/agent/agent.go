package agent

import (
	"github.com/rs/zerolog"

	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Agent is the client loop for one side: observe, update exploration, plan,
// then repeat the planned direction until the step completes.
type Agent struct {
	knowledge *Knowledge
	planner   *Planner
	logger    zerolog.Logger

	queued    core.Direction
	remaining int
	decisions int
}

// New creates an agent with fresh knowledge
func New(planner *Planner, logger zerolog.Logger) *Agent {
	return &Agent{
		knowledge: NewKnowledge(),
		planner:   planner,
		logger:    logger.With().Str("component", "Agent").Logger(),
	}
}

// Knowledge exposes what the agent has learned so far
func (a *Agent) Knowledge() *Knowledge { return a.knowledge }

// Decisions counts how often the agent planned a new step
func (a *Agent) Decisions() int { return a.decisions }

// Next returns the direction to send for the turn described by view
func (a *Agent) Next(view game.View) (core.Direction, Update, error) {
	u, err := a.knowledge.Observe(view)
	if err != nil {
		return 0, u, err
	}
	a.logUpdate(u)

	if a.remaining > 0 && !u.Moved {
		a.remaining--
		return a.queued, u, nil
	}

	a.planner.UpdateExploration(a.knowledge)
	dir, err := a.planner.Plan(a.knowledge)
	if err != nil {
		a.remaining = 0
		return 0, u, err
	}

	a.decisions++
	a.queued = dir
	a.remaining = StepsToSend(a.knowledge.Grid, a.knowledge.Position, dir) - 1
	return dir, u, nil
}

func (a *Agent) logUpdate(u Update) {
	k := a.knowledge
	if u.TreasureFound {
		a.logger.Info().Str("at", k.Treasure.String()).Int("turn", k.Turn).Msg("Treasure found")
	}
	if u.TreasureCollected {
		a.logger.Info().Int("turn", k.Turn).Msg("Treasure collected")
	}
	if u.EnemyFortFound {
		a.logger.Info().Str("at", k.EnemyFort.String()).Int("turn", k.Turn).Msg("Enemy fort found")
	}
}
