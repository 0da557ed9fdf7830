package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTerrainType    = errors.New("invalid terrain type")
	ErrConflictingAttributes = errors.New("conflicting cell attributes")
	ErrOutOfBounds           = errors.New("coordinate out of bounds")
	ErrMapViolation          = errors.New("map structure violation")
	ErrNoLegalMove           = errors.New("no legal move available")
	ErrInvalidDirection      = errors.New("invalid direction")
	ErrNotYourTurn           = errors.New("not this player's turn")
	ErrGameOver              = errors.New("game is over")
	ErrInvalidPlayer         = errors.New("invalid player")
	ErrTooManyHalfMaps       = errors.New("half map already submitted")
)

// ViolationKind names the structural rule a half map broke
type ViolationKind string

const (
	ViolationMissingMap            ViolationKind = "missing_map"
	ViolationSizeMismatch          ViolationKind = "size_mismatch"
	ViolationMissingFort           ViolationKind = "missing_fort"
	ViolationTerrainCountShortfall ViolationKind = "terrain_count_shortfall"
	ViolationEdgeWaterExcess       ViolationKind = "edge_water_excess"
	ViolationIslandDetected        ViolationKind = "island_detected"
)

// MapViolation is the single failure a half map validation reports
type MapViolation struct {
	Kind    ViolationKind
	Message string
}

// NewMapViolation builds a violation with a formatted message
func NewMapViolation(kind ViolationKind, format string, args ...interface{}) *MapViolation {
	return &MapViolation{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (v *MapViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// Is lets errors.Is(err, ErrMapViolation) match any violation
func (v *MapViolation) Is(target error) bool {
	return target == ErrMapViolation
}

// ViolationKindOf extracts the kind from err, or "" when err is not a violation
func ViolationKindOf(err error) ViolationKind {
	var v *MapViolation
	if errors.As(err, &v) {
		return v.Kind
	}
	return ""
}
