package gameserver

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Server implements the GameService gRPC server
type Server struct {
	UnimplementedGameServiceServer

	// Game manager for handling all game instances
	gameManager *GameManager

	logger zerolog.Logger
}

// NewServer creates a game server on top of gameManager
func NewServer(gameManager *GameManager, logger zerolog.Logger) *Server {
	return &Server{
		gameManager: gameManager,
		logger:      logger.With().Str("component", "game_server").Logger(),
	}
}

// GameManager exposes the manager for health and admin endpoints
func (s *Server) GameManager() *GameManager {
	return s.gameManager
}

// CreateGame creates a new game instance
func (s *Server) CreateGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g := s.gameManager.CreateGame()
	return structpb.NewStruct(map[string]interface{}{
		fieldGameID: g.ID(),
	})
}

// RegisterPlayer seats a player and returns its secret player id
func (s *Server) RegisterPlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookupGame(req)
	if err != nil {
		return nil, toStatus(err)
	}

	p, err := g.Register(stringValue(req, fieldPlayerName))
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		fieldGameID:   g.ID(),
		fieldPlayerID: p.id,
	})
}

// SubmitHalfMap validates a half map and stores it. An invalid map ends the
// game with a loss for the submitter.
func (s *Server) SubmitHalfMap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookupGame(req)
	if err != nil {
		return nil, toStatus(err)
	}

	half, decodeErr := halfMapFromStruct(req)
	if err := g.SubmitHalfMap(stringValue(req, fieldPlayerID), half, decodeErr, s.gameManager.Validator()); err != nil {
		s.logger.Warn().
			Str("game_id", g.ID()).
			Err(err).
			Msg("Half map refused")
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		fieldGameID: g.ID(),
	})
}

// GetState returns the game as seen by the requesting player
func (s *Server) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookupGame(req)
	if err != nil {
		return nil, toStatus(err)
	}

	st, err := g.State(stringValue(req, fieldPlayerID))
	if err != nil {
		return nil, toStatus(err)
	}

	resp, err := stateToStruct(st)
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

// SubmitMove sends one move for the requesting player
func (s *Server) SubmitMove(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	g, err := s.lookupGame(req)
	if err != nil {
		return nil, toStatus(err)
	}

	dir, err := core.ParseDirection(stringValue(req, fieldDirection))
	if err != nil {
		return nil, toStatus(err)
	}

	resp, err := g.Move(stringValue(req, fieldPlayerID), dir, stringValue(req, fieldRequestID))
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

func (s *Server) lookupGame(req *structpb.Struct) (*gameInstance, error) {
	id := stringValue(req, fieldGameID)
	if id == "" {
		return nil, malformed("missing %s", fieldGameID)
	}
	return s.gameManager.GetGame(id)
}
