package agent

import (
	"context"
	"fmt"

	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Remote is a game played through a server, seen from one side
type Remote interface {
	// WaitForTurn blocks until this side must move or the game is over
	WaitForTurn(ctx context.Context) (game.View, error)
	Move(ctx context.Context, dir core.Direction) error
}

// Play runs the agent against r until the game is over and returns the
// final status for this side. A side without a legal move stops with
// core.ErrNoLegalMove since the server offers no way to resign.
func (a *Agent) Play(ctx context.Context, r Remote) (game.Status, error) {
	for {
		view, err := r.WaitForTurn(ctx)
		if err != nil {
			return game.StatusRunning, err
		}
		if view.Status.IsFinal() {
			a.logger.Info().
				Str("status", view.Status.String()).
				Int("turn", view.Turn).
				Int("decisions", a.decisions).
				Msg("Game over")
			return view.Status, nil
		}

		dir, _, err := a.Next(view)
		if err != nil {
			return game.StatusRunning, fmt.Errorf("turn %d: %w", view.Turn, err)
		}
		if err := r.Move(ctx, dir); err != nil {
			return game.StatusRunning, err
		}
	}
}
