package gameserver

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/states"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrTooManyPlayers = errors.New("game already has two players")
	ErrGameNotReady   = errors.New("game is waiting for players or half maps")
)

// RequestRule is one precondition a request must satisfy. Rules are checked
// with the game lock held.
type RequestRule interface {
	Name() string
	Check(g *gameInstance, side game.Side) error
}

// PlayerCountRule keeps a game at MaxPlayers registrations
type PlayerCountRule struct {
	MaxPlayers int
}

func (PlayerCountRule) Name() string { return "player_count" }

func (r PlayerCountRule) Check(g *gameInstance, _ game.Side) error {
	if len(g.players) >= r.MaxPlayers {
		return fmt.Errorf("%w: game %s", ErrTooManyPlayers, g.id)
	}
	return nil
}

// GameReadyRule rejects requests while the game still waits for a phase
type GameReadyRule struct {
	Allowed func(states.GamePhase) bool
}

func (GameReadyRule) Name() string { return "game_ready" }

func (r GameReadyRule) Check(g *gameInstance, _ game.Side) error {
	phase := g.stateMachine.CurrentPhase()
	switch {
	case r.Allowed(phase):
		return nil
	case phase.IsTerminal():
		return fmt.Errorf("%w: game %s", core.ErrGameOver, g.id)
	default:
		return fmt.Errorf("%w: game %s is in %s phase", ErrGameNotReady, g.id, phase)
	}
}

// HalfMapOnceRule allows one half map per player
type HalfMapOnceRule struct{}

func (HalfMapOnceRule) Name() string { return "half_map_once" }

func (HalfMapOnceRule) Check(g *gameInstance, side game.Side) error {
	if g.halfMaps[side] != nil {
		return fmt.Errorf("%w: %s side in game %s", core.ErrTooManyHalfMaps, side, g.id)
	}
	return nil
}

// PlayerTurnRule lets only the player whose turn it is act
type PlayerTurnRule struct{}

func (PlayerTurnRule) Name() string { return "player_turn" }

func (PlayerTurnRule) Check(g *gameInstance, side game.Side) error {
	if g.toActUnlocked() != side {
		return fmt.Errorf("%w: %s side in game %s", core.ErrNotYourTurn, side, g.id)
	}
	return nil
}

// checkRules stops at the first failing rule
func checkRules(g *gameInstance, side game.Side, rules ...RequestRule) error {
	for _, r := range rules {
		if err := r.Check(g, side); err != nil {
			g.logger.Debug().
				Str("rule", r.Name()).
				Str("side", side.String()).
				Err(err).
				Msg("Request rejected")
			return err
		}
	}
	return nil
}

// toStatus maps domain errors to gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrPlayerNotFound):
		code = codes.NotFound
	case errors.Is(err, ErrTooManyPlayers):
		code = codes.ResourceExhausted
	case errors.Is(err, core.ErrTooManyHalfMaps):
		code = codes.AlreadyExists
	case errors.Is(err, ErrGameNotReady), errors.Is(err, core.ErrNotYourTurn), errors.Is(err, core.ErrGameOver):
		code = codes.FailedPrecondition
	case errors.Is(err, core.ErrMapViolation), errors.Is(err, core.ErrInvalidDirection),
		errors.Is(err, core.ErrInvalidTerrainType), errors.Is(err, core.ErrConflictingAttributes),
		errors.Is(err, errMalformedRequest):
		code = codes.InvalidArgument
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

var errMalformedRequest = errors.New("malformed request")

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errMalformedRequest, fmt.Sprintf(format, args...))
}
