package gameserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/treasurehunt/TreasureHuntAI/internal/common"
	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	moveAttempts        = 3
	maxRetryDelay       = 2 * time.Second
)

// ErrNotJoined is returned by calls that need a registered player
var ErrNotJoined = errors.New("client has not joined a game")

// Client plays one side of a game on a remote server
type Client struct {
	rpc    GameServiceClient
	logger zerolog.Logger

	// PollInterval is the pause between state polls while waiting
	PollInterval time.Duration

	gameID   string
	playerID string
}

// NewClient creates a client talking over cc
func NewClient(cc grpc.ClientConnInterface, logger zerolog.Logger) *Client {
	return &Client{
		rpc:          NewGameServiceClient(cc),
		logger:       logger.With().Str("component", "game_client").Logger(),
		PollInterval: defaultPollInterval,
	}
}

func (c *Client) GameID() string   { return c.gameID }
func (c *Client) PlayerID() string { return c.playerID }

// CreateGame asks the server for a new game and returns its id
func (c *Client) CreateGame(ctx context.Context) (string, error) {
	resp, err := c.rpc.CreateGame(ctx, &structpb.Struct{})
	if err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}
	return stringValue(resp, fieldGameID), nil
}

// Join registers this client as a player of gameID
func (c *Client) Join(ctx context.Context, gameID, name string) error {
	req, err := structpb.NewStruct(map[string]interface{}{
		fieldGameID:     gameID,
		fieldPlayerName: name,
	})
	if err != nil {
		return err
	}
	resp, err := c.rpc.RegisterPlayer(ctx, req)
	if err != nil {
		return fmt.Errorf("register in game %s: %w", gameID, err)
	}

	c.gameID = gameID
	c.playerID = stringValue(resp, fieldPlayerID)
	c.logger = c.logger.With().Str("game_id", gameID).Logger()
	c.logger.Info().Str("player_name", name).Msg("Joined game")
	return nil
}

func (c *Client) request(fields map[string]interface{}) (*structpb.Struct, error) {
	if c.playerID == "" {
		return nil, ErrNotJoined
	}
	if fields == nil {
		fields = make(map[string]interface{}, 2)
	}
	fields[fieldGameID] = c.gameID
	fields[fieldPlayerID] = c.playerID
	return structpb.NewStruct(fields)
}

// SubmitHalfMap sends this player's half map
func (c *Client) SubmitHalfMap(ctx context.Context, half *core.Grid) error {
	if c.playerID == "" {
		return ErrNotJoined
	}
	req, err := HalfMapToStruct(c.gameID, c.playerID, half)
	if err != nil {
		return err
	}
	if _, err := c.rpc.SubmitHalfMap(ctx, req); err != nil {
		return fmt.Errorf("submit half map: %w", err)
	}
	return nil
}

// FetchState polls the server once
func (c *Client) FetchState(ctx context.Context) (State, error) {
	req, err := c.request(nil)
	if err != nil {
		return State{}, err
	}
	resp, err := c.rpc.GetState(ctx, req)
	if err != nil {
		return State{}, fmt.Errorf("get state: %w", err)
	}
	return StateFromStruct(resp)
}

// WaitForHalfMapTurn blocks until this player may send its half map or the
// game is over
func (c *Client) WaitForHalfMapTurn(ctx context.Context) (State, error) {
	return c.waitFor(ctx, func(st State) bool {
		return st.Status == StatusMustAct || st.Status.IsFinal()
	})
}

// WaitForTurn blocks until this player must move or the game is over and
// returns the view to decide on. A game that ended before the map was
// assembled yields a view without a grid.
func (c *Client) WaitForTurn(ctx context.Context) (game.View, error) {
	st, err := c.waitFor(ctx, func(st State) bool {
		return st.Status.IsFinal() || (st.Status == StatusMustAct && st.View != nil)
	})
	if err != nil {
		return game.View{}, err
	}
	if st.View == nil {
		return game.View{Status: st.Status.gameStatus()}, nil
	}
	return *st.View, nil
}

func (c *Client) waitFor(ctx context.Context, ready func(State) bool) (State, error) {
	for {
		st, err := c.FetchState(ctx)
		if err != nil {
			return State{}, err
		}
		if ready(st) {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return State{}, ctx.Err()
		case <-time.After(c.PollInterval):
		}
	}
}

// Move sends one move. Unavailable errors are retried with the same request
// id, so the server applies the move at most once. Retries back off from
// PollInterval, doubling up to maxRetryDelay.
func (c *Client) Move(ctx context.Context, dir core.Direction) error {
	req, err := c.request(map[string]interface{}{
		fieldDirection: dir.String(),
		fieldRequestID: uuid.NewString(),
	})
	if err != nil {
		return err
	}

	delay := c.PollInterval
	for attempt := 1; ; attempt++ {
		_, err = c.rpc.SubmitMove(ctx, req)
		if err == nil || status.Code(err) != codes.Unavailable || attempt == moveAttempts {
			break
		}
		c.logger.Warn().
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("Retrying move")

		select {
		case <-ctx.Done():
			return fmt.Errorf("move %s: %w", dir, ctx.Err())
		case <-time.After(delay):
		}
		delay = common.Min(delay*2, maxRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("move %s: %w", dir, err)
	}
	return nil
}
