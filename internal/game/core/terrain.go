package core

import "fmt"

// Terrain is the immutable ground type of a cell.
// TerrainUnset only exists while a half map is being generated.
// TerrainFort only exists in half maps; assembly turns it into grass plus a fort marker.
type Terrain int

const (
	TerrainUnset Terrain = iota
	TerrainMountain
	TerrainGrass
	TerrainWater
	TerrainFort
)

// ParseTerrain converts a numeric terrain code into a Terrain
func ParseTerrain(code int) (Terrain, error) {
	if code < int(TerrainUnset) || code > int(TerrainFort) {
		return TerrainUnset, fmt.Errorf("%w: %d", ErrInvalidTerrainType, code)
	}
	return Terrain(code), nil
}

// MustTerrain is ParseTerrain for codes that come from our own code.
// An invalid code here is a programming error and panics.
func MustTerrain(code int) Terrain {
	t, err := ParseTerrain(code)
	if err != nil {
		panic(err)
	}
	return t
}

// Base returns the terrain used for movement purposes; a fort stands on grass.
func (t Terrain) Base() Terrain {
	if t == TerrainFort {
		return TerrainGrass
	}
	return t
}

func (t Terrain) IsWater() bool    { return t == TerrainWater }
func (t Terrain) IsMountain() bool { return t == TerrainMountain }
func (t Terrain) IsGrass() bool    { return t.Base() == TerrainGrass }

// IsWalkable reports whether an agent may stand on the terrain
func (t Terrain) IsWalkable() bool {
	return t != TerrainUnset && t != TerrainWater
}

func (t Terrain) String() string {
	switch t {
	case TerrainUnset:
		return "unset"
	case TerrainMountain:
		return "mountain"
	case TerrainGrass:
		return "grass"
	case TerrainWater:
		return "water"
	case TerrainFort:
		return "fort"
	default:
		return fmt.Sprintf("terrain(%d)", int(t))
	}
}

// TerrainFromString is the inverse of Terrain.String
func TerrainFromString(s string) (Terrain, error) {
	switch s {
	case "mountain":
		return TerrainMountain, nil
	case "grass":
		return TerrainGrass, nil
	case "water":
		return TerrainWater, nil
	case "fort":
		return TerrainFort, nil
	case "unset":
		return TerrainUnset, nil
	}
	return TerrainUnset, fmt.Errorf("%w: %q", ErrInvalidTerrainType, s)
}
