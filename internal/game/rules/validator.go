package rules

import (
	"github.com/rs/zerolog"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Validator applies the half map rules in a fixed order and stops at the
// first violation: existence, size, fort, terrain counts, edge water, islands.
type Validator struct {
	limits Limits
	rules  []Rule
	logger zerolog.Logger
}

// NewValidator creates a validator for the given limits
func NewValidator(limits Limits, logger zerolog.Logger) *Validator {
	return &Validator{
		limits: limits,
		rules: []Rule{
			HalfMapExistsRule{},
			MapSizeRule{Width: limits.Width, Height: limits.Height},
			FortExistsRule{MinForts: limits.MinForts},
			TerrainCountRule{MinGrass: limits.MinGrass, MinMountain: limits.MinMountain, MinWater: limits.MinWater},
			EdgeWaterRule{Limits: limits},
			IslandRule{},
		},
		logger: logger.With().Str("component", "HalfMapValidator").Logger(),
	}
}

// Validate returns nil for a valid half map and otherwise exactly one *core.MapViolation
func (v *Validator) Validate(g *core.Grid) error {
	for _, rule := range v.rules {
		if err := rule.Validate(g); err != nil {
			v.logger.Debug().
				Str("rule", rule.Name()).
				Str("kind", string(core.ViolationKindOf(err))).
				Err(err).
				Msg("Half map rejected")
			return err
		}
	}
	return nil
}

// Limits returns the thresholds this validator enforces
func (v *Validator) Limits() Limits {
	return v.limits
}

// Rules returns the rule chain in evaluation order
func (v *Validator) Rules() []Rule {
	out := make([]Rule, len(v.rules))
	copy(out, v.rules)
	return out
}
