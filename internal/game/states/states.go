package states

import (
	"fmt"
	"time"
)

// RegisteringState waits for both players
type RegisteringState struct{}

func NewRegisteringState() State {
	return &RegisteringState{}
}

func (s *RegisteringState) Phase() GamePhase {
	return PhaseRegistering
}

func (s *RegisteringState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().Msg("Game created, waiting for players")
	return nil
}

func (s *RegisteringState) Exit(ctx *GameContext) error {
	ctx.Logger.Info().
		Int("player_count", ctx.PlayerCount).
		Msg("Registration closed")
	return nil
}

func (s *RegisteringState) Validate(ctx *GameContext) error {
	if ctx.MaxPlayers < 1 {
		return fmt.Errorf("max players must be at least 1, got %d", ctx.MaxPlayers)
	}
	return nil
}

// MapExchangeState collects one half map per player
type MapExchangeState struct{}

func NewMapExchangeState() State {
	return &MapExchangeState{}
}

func (s *MapExchangeState) Phase() GamePhase {
	return PhaseMapExchange
}

func (s *MapExchangeState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().Msg("Waiting for half maps")
	return nil
}

func (s *MapExchangeState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().
		Int("half_maps", ctx.HalfMaps).
		Msg("Map exchange finished")
	return nil
}

func (s *MapExchangeState) Validate(ctx *GameContext) error {
	if !ctx.IsReady() {
		return fmt.Errorf("not enough players to exchange maps: have %d, need %d", ctx.PlayerCount, ctx.MaxPlayers)
	}
	return nil
}

// RunningState represents active gameplay
type RunningState struct{}

func NewRunningState() State {
	return &RunningState{}
}

func (s *RunningState) Phase() GamePhase {
	return PhaseRunning
}

func (s *RunningState) Enter(ctx *GameContext) error {
	ctx.StartTime = time.Now()
	ctx.Logger.Info().
		Time("start_time", ctx.StartTime).
		Msg("Game started")
	return nil
}

func (s *RunningState) Exit(ctx *GameContext) error {
	ctx.Logger.Info().
		Dur("elapsed", ctx.GetElapsedTime()).
		Msg("Exiting running state")
	return nil
}

func (s *RunningState) Validate(ctx *GameContext) error {
	if !ctx.HasFullMap() {
		return fmt.Errorf("cannot start without a full map: have %d of %d half maps", ctx.HalfMaps, ctx.MaxPlayers)
	}
	return nil
}

// EndedState is final
type EndedState struct{}

func NewEndedState() State {
	return &EndedState{}
}

func (s *EndedState) Phase() GamePhase {
	return PhaseEnded
}

func (s *EndedState) Enter(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Info().
		Int("winner", ctx.Winner).
		Dur("duration", ctx.GetElapsedTime()).
		Msg("Game ended")
	return nil
}

func (s *EndedState) Exit(ctx *GameContext) error {
	return nil
}

func (s *EndedState) Validate(ctx *GameContext) error {
	return nil
}

// ErrorState is entered when the server cannot continue a game
type ErrorState struct{}

func NewErrorState() State {
	return &ErrorState{}
}

func (s *ErrorState) Phase() GamePhase {
	return PhaseError
}

func (s *ErrorState) Enter(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Error().
		Err(ctx.Error).
		Msg("Game entered error state")
	return nil
}

func (s *ErrorState) Exit(ctx *GameContext) error {
	return nil
}

func (s *ErrorState) Validate(ctx *GameContext) error {
	return nil
}
