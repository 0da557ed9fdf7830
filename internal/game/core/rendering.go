package core

import (
	"fmt"
	"strings"
)

// This file contains the text rendering of grids for logs and the CLI.

const (
	symbolUnset         = "?"
	symbolMountain      = "▲"
	symbolGrass         = "·"
	symbolWater         = "≈"
	symbolFort          = "■"
	symbolEnemyFort     = "□"
	symbolMyPosition    = "@"
	symbolEnemyPosition = "E"
	symbolTreasure      = "$"
)

// Symbol returns the single glyph used to draw a cell. Markers win over terrain,
// with positions drawn above forts and treasure.
func (c *Cell) Symbol() string {
	switch {
	case c.Has(AttrMyPosition):
		return symbolMyPosition
	case c.Has(AttrEnemyPosition):
		return symbolEnemyPosition
	case c.Has(AttrMyTreasure):
		return symbolTreasure
	case c.Has(AttrMyFort):
		return symbolFort
	case c.Has(AttrEnemyFort):
		return symbolEnemyFort
	}
	switch c.Terrain {
	case TerrainMountain:
		return symbolMountain
	case TerrainGrass:
		return symbolGrass
	case TerrainWater:
		return symbolWater
	case TerrainFort:
		return symbolFort
	default:
		return symbolUnset
	}
}

// String draws the grid with column and row headers
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.W*2 + 6) * (g.H + 1))

	sb.WriteString("   ")
	for x := 0; x < g.W; x++ {
		sb.WriteString(fmt.Sprintf("%2d", x%100))
	}
	sb.WriteString("\n")

	for y := 0; y < g.H; y++ {
		sb.WriteString(fmt.Sprintf("%2d ", y))
		for x := 0; x < g.W; x++ {
			cell := &g.Cells[g.Idx(x, y)]
			sb.WriteString(" ")
			sb.WriteString(cell.Symbol())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
