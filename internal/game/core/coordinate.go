package core

import (
	"fmt"

	"github.com/treasurehunt/TreasureHuntAI/internal/common"
)

// Coordinate represents a position on a grid; Y grows downwards
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a row-major grid index
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return common.IsValidCoordinate(c.X, c.Y, width, height)
}

// ToIndex converts the coordinate to a row-major grid index
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// DistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) DistanceTo(other Coordinate) int {
	return common.ManhattanDistance(c.X, c.Y, other.X, other.Y)
}

// IsAdjacentTo checks if this coordinate is orthogonally adjacent to another
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return common.IsAdjacent(c.X, c.Y, other.X, other.Y)
}

// Neighbors returns the four orthogonal neighbors in Directions order
func (c Coordinate) Neighbors() []Coordinate {
	out := make([]Coordinate, 0, len(Directions))
	for _, d := range Directions {
		out = append(out, c.Move(d))
	}
	return out
}

// Surrounding returns the eight cells touching c, diagonals included
func (c Coordinate) Surrounding() []Coordinate {
	out := make([]Coordinate, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, Coordinate{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}

// Diagonals returns the four diagonal neighbours
func (c Coordinate) Diagonals() []Coordinate {
	return []Coordinate{
		{X: c.X + 1, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y + 1},
		{X: c.X + 1, Y: c.Y - 1},
		{X: c.X - 1, Y: c.Y - 1},
	}
}

// Add returns the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{X: c.X + other.X, Y: c.Y + other.Y}
}

func (c Coordinate) Equal(other Coordinate) bool {
	return c.X == other.X && c.Y == other.Y
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is one grid step
type Direction int

const (
	Left Direction = iota
	Down
	Right
	Up
)

// Directions is the enumeration order candidate moves are considered in
var Directions = []Direction{Left, Down, Right, Up}

var directionVectors = map[Direction]Coordinate{
	Left:  {X: -1, Y: 0},
	Down:  {X: 0, Y: 1},
	Right: {X: 1, Y: 0},
	Up:    {X: 0, Y: -1},
}

// Offset returns the coordinate delta of one step in d
func (d Direction) Offset() Coordinate {
	return directionVectors[d]
}

func (d Direction) IsValid() bool {
	_, ok := directionVectors[d]
	return ok
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Down:
		return "down"
	case Right:
		return "right"
	case Up:
		return "up"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection is the inverse of Direction.String
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if d.String() == s {
			return d, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Move returns a new coordinate moved one step in the given direction
func (c Coordinate) Move(direction Direction) Coordinate {
	if offset, ok := directionVectors[direction]; ok {
		return c.Add(offset)
	}
	return c
}

// DirectionTo returns the direction from this coordinate to an adjacent one.
// Returns -1 if the coordinates are not adjacent.
func (c Coordinate) DirectionTo(other Coordinate) Direction {
	if !c.IsAdjacentTo(other) {
		return -1
	}
	delta := Coordinate{X: other.X - c.X, Y: other.Y - c.Y}
	for d, v := range directionVectors {
		if v == delta {
			return d
		}
	}
	return -1
}
