package game

import (
	"fmt"
	"math/rand"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// Side identifies a player by the order its half map was submitted in
type Side int

const (
	NoSide     Side = -1
	SideFirst  Side = 0
	SideSecond Side = 1
)

// Sides lists both sides in submission order
var Sides = [2]Side{SideFirst, SideSecond}

func (s Side) Valid() bool { return s == SideFirst || s == SideSecond }

// Other returns the opposing side
func (s Side) Other() Side {
	switch s {
	case SideFirst:
		return SideSecond
	case SideSecond:
		return SideFirst
	}
	return NoSide
}

func (s Side) String() string {
	switch s {
	case SideFirst:
		return "first"
	case SideSecond:
		return "second"
	case NoSide:
		return "none"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Area is the rectangle a half map occupies on the full map
type Area struct {
	X, Y, W, H int
}

// Contains reports whether c lies inside the area
func (a Area) Contains(c core.Coordinate) bool {
	return c.X >= a.X && c.X < a.X+a.W && c.Y >= a.Y && c.Y < a.Y+a.H
}

// Origin returns the top left cell of the area
func (a Area) Origin() core.Coordinate {
	return core.NewCoordinate(a.X, a.Y)
}

// Assembly is a full map built from two half maps
type Assembly struct {
	// Grid holds terrain only; forts are plain grass here
	Grid *core.Grid

	// Vertical maps stack the halves into 10x10, horizontal ones place them side by side as 20x5
	Vertical bool

	// Swapped is set when the second submission occupies the top or left slot
	Swapped bool

	Forts [2]core.Coordinate
	Areas [2]Area
}

// SideAt returns the side whose half contains c
func (a *Assembly) SideAt(c core.Coordinate) Side {
	for _, s := range Sides {
		if a.Areas[s].Contains(c) {
			return s
		}
	}
	return NoSide
}

// Assemble joins two half maps along one shared edge. Orientation and order
// are drawn independently from rng, so each of the four layouts is equally likely.
func Assemble(first, second *core.Grid, rng *rand.Rand) (*Assembly, error) {
	halves := [2]*core.Grid{first, second}
	var localForts [2]core.Coordinate
	for _, s := range Sides {
		fort, err := CheckHalf(halves[s])
		if err != nil {
			return nil, fmt.Errorf("%s half map: %w", s, err)
		}
		localForts[s] = fort
	}

	a := &Assembly{
		Vertical: rng.Intn(2) == 1,
		Swapped:  rng.Intn(2) == 1,
	}

	slot := [2]Side{SideFirst, SideSecond}
	if a.Swapped {
		slot = [2]Side{SideSecond, SideFirst}
	}

	if a.Vertical {
		a.Grid = core.NewGrid(core.HalfMapWidth, core.HalfMapHeight*2)
	} else {
		a.Grid = core.NewGrid(core.HalfMapWidth*2, core.HalfMapHeight)
	}

	for i, s := range slot {
		origin := core.NewCoordinate(0, 0)
		if i == 1 {
			if a.Vertical {
				origin = core.NewCoordinate(0, core.HalfMapHeight)
			} else {
				origin = core.NewCoordinate(core.HalfMapWidth, 0)
			}
		}
		a.Areas[s] = Area{X: origin.X, Y: origin.Y, W: core.HalfMapWidth, H: core.HalfMapHeight}
		a.Forts[s] = localForts[s].Add(a.Areas[s].Origin())

		half := halves[s]
		for idx := range half.Cells {
			local := core.FromIndex(idx, half.W)
			a.Grid.Set(local.Add(origin), half.Cells[idx].Terrain.Base())
		}
	}
	return a, nil
}

// CheckHalf verifies the shape assembly depends on and returns the fort location
func CheckHalf(g *core.Grid) (core.Coordinate, error) {
	if g == nil {
		return core.Coordinate{}, core.NewMapViolation(core.ViolationMissingMap, "no half map")
	}
	if g.W != core.HalfMapWidth || g.H != core.HalfMapHeight || len(g.Cells) != g.W*g.H {
		return core.Coordinate{}, core.NewMapViolation(core.ViolationSizeMismatch,
			"expected %dx%d cells, got %dx%d", core.HalfMapWidth, core.HalfMapHeight, g.W, g.H)
	}

	var fort core.Coordinate
	forts := 0
	for idx := range g.Cells {
		if g.Cells[idx].IsFort() {
			fort = core.FromIndex(idx, g.W)
			forts++
		}
	}
	if forts != 1 {
		return core.Coordinate{}, core.NewMapViolation(core.ViolationMissingFort,
			"expected exactly one fort, found %d", forts)
	}
	return fort, nil
}
