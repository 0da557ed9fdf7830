package gameserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/treasurehunt/TreasureHuntAI/internal/agent"
	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/states"
	"github.com/treasurehunt/TreasureHuntAI/internal/testutil"
)

const bufSize = 1024 * 1024

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	logger := testutil.NopLogger()

	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		UnaryLoggingInterceptor(logger),
		UnaryRecoveryInterceptor(logger),
	))
	gm := NewGameManager(10, logger, WithRand(testutil.NewTestRNG(5)))
	RegisterGameServiceServer(s, NewServer(gm, logger))

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		lis.Close()
		gm.Close()
	})
	return conn
}

func mustStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestServer_ErrorCodes(t *testing.T) {
	conn := setupTestServer(t)
	rpc := NewGameServiceClient(conn)
	ctx := context.Background()

	created, err := rpc.CreateGame(ctx, &structpb.Struct{})
	require.NoError(t, err)
	gameID := stringValue(created, fieldGameID)
	require.Len(t, gameID, gameIDLength)

	register := func() (*structpb.Struct, error) {
		return rpc.RegisterPlayer(ctx, mustStruct(t, map[string]interface{}{
			fieldGameID:     gameID,
			fieldPlayerName: "player",
		}))
	}
	// playerID ends up as the player that sends the first half map
	var playerID string
	for i := 0; i < 2; i++ {
		resp, err := register()
		require.NoError(t, err)
		st, err := rpc.GetState(ctx, mustStruct(t, map[string]interface{}{
			fieldGameID:   gameID,
			fieldPlayerID: stringValue(resp, fieldPlayerID),
		}))
		require.NoError(t, err)
		if i == 1 && stringValue(st, fieldStatus) == string(StatusMustAct) {
			playerID = stringValue(resp, fieldPlayerID)
		}
		if i == 0 {
			playerID = stringValue(resp, fieldPlayerID)
		}
	}

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"unknown game", func() error {
			_, err := rpc.RegisterPlayer(ctx, mustStruct(t, map[string]interface{}{fieldGameID: "zzzzz"}))
			return err
		}, codes.NotFound},
		{"missing game id", func() error {
			_, err := rpc.GetState(ctx, &structpb.Struct{})
			return err
		}, codes.InvalidArgument},
		{"third player", func() error {
			_, err := register()
			return err
		}, codes.ResourceExhausted},
		{"unknown player", func() error {
			_, err := rpc.GetState(ctx, mustStruct(t, map[string]interface{}{
				fieldGameID:   gameID,
				fieldPlayerID: "nobody",
			}))
			return err
		}, codes.NotFound},
		{"bad direction", func() error {
			_, err := rpc.SubmitMove(ctx, mustStruct(t, map[string]interface{}{
				fieldGameID:    gameID,
				fieldPlayerID:  playerID,
				fieldDirection: "north",
			}))
			return err
		}, codes.InvalidArgument},
		{"move before the map exists", func() error {
			_, err := rpc.SubmitMove(ctx, mustStruct(t, map[string]interface{}{
				fieldGameID:    gameID,
				fieldPlayerID:  playerID,
				fieldDirection: "left",
			}))
			return err
		}, codes.FailedPrecondition},
		{"malformed half map", func() error {
			req, err := HalfMapToStruct(gameID, playerID, testutil.ValidHalfMap())
			require.NoError(t, err)
			nodeFields(req, 0)[fieldY] = structpb.NewNumberValue(-1)
			_, err = rpc.SubmitHalfMap(ctx, req)
			return err
		}, codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(tt.call()))
		})
	}

	st, err := rpc.GetState(ctx, mustStruct(t, map[string]interface{}{
		fieldGameID:   gameID,
		fieldPlayerID: playerID,
	}))
	require.NoError(t, err)
	assert.Equal(t, states.PhaseMapExchange.String(), stringValue(st, fieldPhase),
		"malformed requests do not end the game")
}

func TestServer_InvalidHalfMapLosesOverGRPC(t *testing.T) {
	conn := setupTestServer(t)
	ctx := context.Background()

	host := NewClient(conn, testutil.NopLogger())
	gameID, err := host.CreateGame(ctx)
	require.NoError(t, err)

	clients := [2]*Client{host, NewClient(conn, testutil.NopLogger())}
	for i, c := range clients {
		require.NoError(t, c.Join(ctx, gameID, []string{"alice", "bob"}[i]))
		c.PollInterval = time.Millisecond
	}

	// Whoever acts first sends a map without a fort
	var submitter, other *Client
	for _, c := range clients {
		st, err := c.FetchState(ctx)
		require.NoError(t, err)
		if st.Status == StatusMustAct {
			submitter = c
		} else {
			other = c
		}
	}
	require.NotNil(t, submitter)
	require.NotNil(t, other)

	half := testutil.ValidHalfMap()
	half.Set(core.NewCoordinate(5, 1), core.TerrainGrass)
	err = submitter.SubmitHalfMap(ctx, half)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	view, err := submitter.WaitForTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.StatusLost, view.Status)
	assert.Nil(t, view.Grid)

	view, err = other.WaitForTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, view.Status)
}

func TestServer_AgentsPlayOverGRPC(t *testing.T) {
	conn := setupTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	host := NewClient(conn, testutil.NopLogger())
	gameID, err := host.CreateGame(ctx)
	require.NoError(t, err)

	clients := [2]*Client{host, NewClient(conn, testutil.NopLogger())}
	var results [2]game.Status

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range clients {
		i, c := i, c
		require.NoError(t, c.Join(ctx, gameID, []string{"alice", "bob"}[i]))
		c.PollInterval = time.Millisecond

		g.Go(func() error {
			if _, err := c.WaitForHalfMapTurn(gctx); err != nil {
				return err
			}
			if err := c.SubmitHalfMap(gctx, testutil.ValidHalfMap()); err != nil {
				return err
			}
			a := agent.New(agent.NewPlanner(testutil.NopLogger()), testutil.NopLogger())
			final, err := a.Play(gctx, c)
			results[i] = final
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, s := range results {
		assert.True(t, s.IsFinal())
	}
	switch results[0] {
	case game.StatusWon:
		assert.Equal(t, game.StatusLost, results[1])
	case game.StatusLost:
		assert.Equal(t, game.StatusWon, results[1])
	default:
		assert.Equal(t, game.StatusDraw, results[1])
	}
}

func TestUnaryRecoveryInterceptor(t *testing.T) {
	interceptor := UnaryRecoveryInterceptor(testutil.NopLogger())
	info := &grpc.UnaryServerInfo{FullMethod: GameService_GetState_FullMethodName}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		panic("handler bug")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
