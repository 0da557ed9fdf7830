package game

// SideStats holds per side counters for one match
type SideStats struct {
	// Moves counts accepted sends, including partial steps
	Moves int
	// Steps counts completed moves onto a new cell
	Steps int
	// CellsSeen counts distinct cells the side has seen
	CellsSeen int
}

// Efficiency returns completed steps per send, or 0 before the first send
func (s SideStats) Efficiency() float64 {
	if s.Moves == 0 {
		return 0
	}
	return float64(s.Steps) / float64(s.Moves)
}
