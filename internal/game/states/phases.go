package states

import "fmt"

// GamePhase represents the current phase of a game
type GamePhase int

const (
	// PhaseRegistering - Players joining until both seats are taken
	PhaseRegistering GamePhase = iota

	// PhaseMapExchange - Each player submits one half map, taking turns
	PhaseMapExchange

	// PhaseRunning - Full map assembled, moves are accepted
	PhaseRunning

	// PhaseEnded - A side won, lost by a rule violation, or the turn limit was hit
	PhaseEnded

	// PhaseError - The server could not continue the game
	PhaseError
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseRegistering:
		return "Registering"
	case PhaseMapExchange:
		return "MapExchange"
	case PhaseRunning:
		return "Running"
	case PhaseEnded:
		return "Ended"
	case PhaseError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseEnded || p == PhaseError
}

// CanReceiveMoves returns true if the game can process player moves in this phase
func (p GamePhase) CanReceiveMoves() bool {
	return p == PhaseRunning
}

// CanReceiveHalfMaps returns true if half maps may be submitted in this phase
func (p GamePhase) CanReceiveHalfMaps() bool {
	return p == PhaseMapExchange
}

// CanAddPlayers returns true if players can join in this phase
func (p GamePhase) CanAddPlayers() bool {
	return p == PhaseRegistering
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseRegistering:
		return []GamePhase{PhaseMapExchange, PhaseError}
	case PhaseMapExchange:
		return []GamePhase{PhaseRunning, PhaseEnded, PhaseError}
	case PhaseRunning:
		return []GamePhase{PhaseEnded, PhaseError}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	for p := PhaseRegistering; p <= PhaseError; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return PhaseError, fmt.Errorf("unknown game phase %q", s)
}
