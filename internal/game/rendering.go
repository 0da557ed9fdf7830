package game

import (
	"fmt"
	"strings"

	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
)

// This file contains all board rendering functionality for the match engine.

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var sideColors = [2]string{ColorRed, ColorBlue}

const (
	fogSymbol      = " "
	grassSymbol    = "·"
	mountainSymbol = "▲"
	waterSymbol    = "≈"
	fortSymbol     = "■"
	treasureSymbol = "$"
	sideSymbols    = "AB"
)

// Board renders the match. With a valid side, cells that side has never seen
// are drawn as fog and only its own treasure is shown; NoSide shows everything.
func (e *Engine) Board(viewer Side) string {
	width := e.grid.W
	height := e.grid.H

	// Each cell takes roughly 2 chars for the symbol plus ~10 for ANSI codes
	var sb strings.Builder
	sb.Grow((width*12+10)*(height+3) + 100)

	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		sb.WriteString(fmt.Sprintf("%2d", x))
	}
	sb.WriteString("\n")

	for y := 0; y < height; y++ {
		sb.WriteString(fmt.Sprintf("%2d ", y))
		for x := 0; x < width; x++ {
			color, symbol := e.cellDisplay(core.NewCoordinate(x, y), viewer)
			sb.WriteString(color)
			sb.WriteString(" ")
			sb.WriteString(symbol)
			sb.WriteString(ColorReset)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(grassSymbol + "=grass " + mountainSymbol + "=mountain " + waterSymbol + "=water ")
	sb.WriteString(fortSymbol + "=fort " + treasureSymbol + "=treasure A/B=sides\n")
	return sb.String()
}

// cellDisplay picks the color and glyph for one cell. Positions win over
// forts and treasures, which win over terrain.
func (e *Engine) cellDisplay(c core.Coordinate, viewer Side) (string, string) {
	for _, s := range Sides {
		if e.positions[s] == c {
			return getSideColor(s), string(sideSymbols[s])
		}
	}

	if viewer.Valid() && !e.SeenBy(viewer, c) {
		return ColorGray, fogSymbol
	}

	for _, s := range Sides {
		if e.assembly.Forts[s] == c {
			return getSideColor(s), fortSymbol
		}
		if e.treasures[s] == c && !e.collected[s] && (!viewer.Valid() || viewer == s) {
			return ColorYellow, treasureSymbol
		}
	}

	switch e.grid.TerrainAt(c) {
	case core.TerrainMountain:
		return ColorGray, mountainSymbol
	case core.TerrainWater:
		return ColorCyan, waterSymbol
	default:
		return ColorGreen, grassSymbol
	}
}

// getSideColor returns the color for the given side
func getSideColor(s Side) string {
	if !s.Valid() {
		return ColorWhite
	}
	return sideColors[s]
}
