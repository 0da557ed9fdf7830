package core

// Cell represents a single position on a map.
// Terrain never changes once a map is final; Attrs are refreshed from each
// game state snapshot; Visited and InMyArea only accumulate during a game.
type Cell struct {
	Terrain  Terrain
	Attrs    Attribute
	Visited  bool
	InMyArea bool
}

// SetAttr adds a marker, refusing combinations that cannot exist
func (c *Cell) SetAttr(attr Attribute) error {
	next := c.Attrs | attr
	if err := next.Check(); err != nil {
		return err
	}
	c.Attrs = next
	return nil
}

func (c *Cell) Has(attr Attribute) bool { return c.Attrs.Has(attr) }
func (c *Cell) IsWater() bool           { return c.Terrain.IsWater() }
func (c *Cell) IsMountain() bool        { return c.Terrain.IsMountain() }
func (c *Cell) IsGrass() bool           { return c.Terrain.IsGrass() }

// IsFort reports a fort either as generation-time terrain or as a marker
func (c *Cell) IsFort() bool {
	return c.Terrain == TerrainFort || c.Attrs.HasFort()
}

// Grid is a row-major rectangle of cells. Half maps are 10x5, full maps 20x5 or 10x10.
type Grid struct {
	W, H  int
	Cells []Cell // length = W*H
}

const (
	HalfMapWidth  = 10
	HalfMapHeight = 5
)

// NewGrid returns a grid with every cell unset
func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, Cells: make([]Cell, w*h)}
}

// NewHalfMap returns an empty grid with half map dimensions
func NewHalfMap() *Grid {
	return NewGrid(HalfMapWidth, HalfMapHeight)
}

func (g *Grid) Idx(x, y int) int      { return y*g.W + x }
func (g *Grid) XY(idx int) (int, int) { return idx % g.W, idx / g.W }

// InBounds checks if coordinates are within grid boundaries
func (g *Grid) InBounds(c Coordinate) bool {
	return c.IsValid(g.W, g.H)
}

// At safely returns a cell pointer if the coordinate is valid, nil otherwise
func (g *Grid) At(c Coordinate) *Cell {
	if !g.InBounds(c) {
		return nil
	}
	return &g.Cells[c.ToIndex(g.W)]
}

// TerrainAt returns the terrain at c, or TerrainUnset when c is off the grid
func (g *Grid) TerrainAt(c Coordinate) Terrain {
	if cell := g.At(c); cell != nil {
		return cell.Terrain
	}
	return TerrainUnset
}

// Set places terrain at c, dropping whatever markers were there
func (g *Grid) Set(c Coordinate, t Terrain) {
	if cell := g.At(c); cell != nil {
		*cell = Cell{Terrain: t, Visited: cell.Visited, InMyArea: cell.InMyArea}
	}
}

// Reset returns every cell to the unset state
func (g *Grid) Reset() {
	for i := range g.Cells {
		g.Cells[i] = Cell{}
	}
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, Cells: make([]Cell, len(g.Cells))}
	copy(c.Cells, g.Cells)
	return c
}

// Count returns how many cells carry the given terrain
func (g *Grid) Count(t Terrain) int {
	n := 0
	for i := range g.Cells {
		if g.Cells[i].Terrain == t {
			n++
		}
	}
	return n
}

// Find returns the first coordinate whose cell carries attr
func (g *Grid) Find(attr Attribute) (Coordinate, bool) {
	for i := range g.Cells {
		if g.Cells[i].Has(attr) {
			return FromIndex(i, g.W), true
		}
	}
	return Coordinate{}, false
}

// ClearAttrs removes every dynamic marker while keeping exploration state
func (g *Grid) ClearAttrs() {
	for i := range g.Cells {
		g.Cells[i].Attrs = AttrNone
	}
}

// Coordinates iterates the grid in row-major order
func (g *Grid) Coordinates() []Coordinate {
	coords := make([]Coordinate, 0, len(g.Cells))
	for i := range g.Cells {
		coords = append(coords, FromIndex(i, g.W))
	}
	return coords
}
