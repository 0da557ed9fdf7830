package states

import (
	"time"

	"github.com/rs/zerolog"
)

// NoWinner marks a game without a winner, either still running or drawn
const NoWinner = -1

// GameContext provides game-specific information to states for making decisions
type GameContext struct {
	// GameID uniquely identifies this game instance
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// PlayerCount is the number of registered players
	PlayerCount int

	// MaxPlayers is the number of seats, always two for a treasure hunt
	MaxPlayers int

	// HalfMaps counts the accepted half map submissions
	HalfMaps int

	// StartTime is when the game started (PhaseRunning entered)
	StartTime time.Time

	// EndTime is when PhaseEnded was entered
	EndTime time.Time

	// Winner is the side that won, or NoWinner
	Winner int

	// Error holds any error that caused transition to PhaseError
	Error error
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, maxPlayers int, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:     gameID,
		MaxPlayers: maxPlayers,
		Logger:     logger.With().Str("game_id", gameID).Logger(),
		Winner:     NoWinner,
	}
}

// IsReady returns true if every seat is taken
func (gc *GameContext) IsReady() bool {
	return gc.MaxPlayers > 0 && gc.PlayerCount == gc.MaxPlayers
}

// HasFullMap returns true once every player submitted a half map
func (gc *GameContext) HasFullMap() bool {
	return gc.HalfMaps == gc.MaxPlayers
}

// GetElapsedTime returns the time elapsed since game start
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	if !gc.EndTime.IsZero() {
		return gc.EndTime.Sub(gc.StartTime)
	}
	return time.Since(gc.StartTime)
}
