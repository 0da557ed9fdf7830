package events

import (
	"time"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Event type constants
const (
	TypeGameCreated       = "game.created"
	TypePlayerRegistered  = "player.registered"
	TypeHalfMapAccepted   = "halfmap.accepted"
	TypeHalfMapRejected   = "halfmap.rejected"
	TypeMapAssembled      = "map.assembled"
	TypeGameStarted       = "game.started"
	TypeMoveExecuted      = "move.executed"
	TypeTreasureRevealed  = "treasure.revealed"
	TypeTreasureCollected = "treasure.collected"
	TypeFortRevealed      = "fort.revealed"
	TypePlayerLost        = "player.lost"
	TypeGameEnded         = "game.ended"
	TypeStateTransition   = "state.transition"
)

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
	}
}

// GameCreatedEvent is published when a game id is handed out
type GameCreatedEvent struct {
	BaseEvent
}

// NewGameCreatedEvent creates a new GameCreatedEvent
func NewGameCreatedEvent(gameID string) *GameCreatedEvent {
	return &GameCreatedEvent{BaseEvent: newBase(TypeGameCreated, gameID)}
}

// PlayerRegisteredEvent is published when a player joins a game
type PlayerRegisteredEvent struct {
	BaseEvent
	Metadata EventMetadata
}

// NewPlayerRegisteredEvent creates a new PlayerRegisteredEvent
func NewPlayerRegisteredEvent(gameID, playerID string, side int) *PlayerRegisteredEvent {
	return &PlayerRegisteredEvent{
		BaseEvent: newBase(TypePlayerRegistered, gameID),
		Metadata:  EventMetadata{Side: side, PlayerID: playerID},
	}
}

// HalfMapAcceptedEvent is published when a submitted half map passes validation
type HalfMapAcceptedEvent struct {
	BaseEvent
	Metadata EventMetadata
}

// NewHalfMapAcceptedEvent creates a new HalfMapAcceptedEvent
func NewHalfMapAcceptedEvent(gameID, playerID string, side int) *HalfMapAcceptedEvent {
	return &HalfMapAcceptedEvent{
		BaseEvent: newBase(TypeHalfMapAccepted, gameID),
		Metadata:  EventMetadata{Side: side, PlayerID: playerID},
	}
}

// HalfMapRejectedEvent is published when a submitted half map breaks a rule
type HalfMapRejectedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Kind     core.ViolationKind
	Message  string
}

// NewHalfMapRejectedEvent creates a new HalfMapRejectedEvent
func NewHalfMapRejectedEvent(gameID, playerID string, side int, violation *core.MapViolation) *HalfMapRejectedEvent {
	return &HalfMapRejectedEvent{
		BaseEvent: newBase(TypeHalfMapRejected, gameID),
		Metadata:  EventMetadata{Side: side, PlayerID: playerID},
		Kind:      violation.Kind,
		Message:   violation.Message,
	}
}

// MapAssembledEvent is published once both half maps are joined
type MapAssembledEvent struct {
	BaseEvent
	MapWidth  int
	MapHeight int
	Swapped   bool
}

// NewMapAssembledEvent creates a new MapAssembledEvent
func NewMapAssembledEvent(gameID string, width, height int, swapped bool) *MapAssembledEvent {
	return &MapAssembledEvent{
		BaseEvent: newBase(TypeMapAssembled, gameID),
		MapWidth:  width,
		MapHeight: height,
		Swapped:   swapped,
	}
}

// GameStartedEvent is published when the first move may be sent
type GameStartedEvent struct {
	BaseEvent
	FirstToAct int
	MapWidth   int
	MapHeight  int
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, firstToAct, width, height int) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:  newBase(TypeGameStarted, gameID),
		FirstToAct: firstToAct,
		MapWidth:   width,
		MapHeight:  height,
	}
}

// MoveExecutedEvent is published when a side completes a step onto a new cell
type MoveExecutedEvent struct {
	BaseEvent
	Metadata EventMetadata
	From     core.Coordinate
	To       core.Coordinate
}

// NewMoveExecutedEvent creates a new MoveExecutedEvent
func NewMoveExecutedEvent(gameID string, side, turn int, from, to core.Coordinate) *MoveExecutedEvent {
	return &MoveExecutedEvent{
		BaseEvent: newBase(TypeMoveExecuted, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		From:      from,
		To:        to,
	}
}

// DiscoveryEvent is published when a side reveals or collects something.
// The event type tells which: treasure.revealed, treasure.collected or fort.revealed.
type DiscoveryEvent struct {
	BaseEvent
	Metadata EventMetadata
	Location core.Coordinate
}

// NewTreasureRevealedEvent creates a DiscoveryEvent for a side spotting its treasure
func NewTreasureRevealedEvent(gameID string, side, turn int, at core.Coordinate) *DiscoveryEvent {
	return newDiscovery(TypeTreasureRevealed, gameID, side, turn, at)
}

// NewTreasureCollectedEvent creates a DiscoveryEvent for a side picking up its treasure
func NewTreasureCollectedEvent(gameID string, side, turn int, at core.Coordinate) *DiscoveryEvent {
	return newDiscovery(TypeTreasureCollected, gameID, side, turn, at)
}

// NewFortRevealedEvent creates a DiscoveryEvent for a side spotting the enemy fort
func NewFortRevealedEvent(gameID string, side, turn int, at core.Coordinate) *DiscoveryEvent {
	return newDiscovery(TypeFortRevealed, gameID, side, turn, at)
}

func newDiscovery(eventType, gameID string, side, turn int, at core.Coordinate) *DiscoveryEvent {
	return &DiscoveryEvent{
		BaseEvent: newBase(eventType, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		Location:  at,
	}
}

// PlayerLostEvent is published when a side loses by breaking a rule
type PlayerLostEvent struct {
	BaseEvent
	Metadata EventMetadata
	Reason   string
}

// NewPlayerLostEvent creates a new PlayerLostEvent
func NewPlayerLostEvent(gameID string, side, turn int, reason string) *PlayerLostEvent {
	return &PlayerLostEvent{
		BaseEvent: newBase(TypePlayerLost, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		Reason:    reason,
	}
}

// GameEndedEvent is published when a game ends. Winner is -1 for a draw.
type GameEndedEvent struct {
	BaseEvent
	Winner    int
	Duration  time.Duration
	FinalTurn int
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner int, duration time.Duration, finalTurn int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winner:    winner,
		Duration:  duration,
		FinalTurn: finalTurn,
	}
}

// StateTransitionEvent is published when the game state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
