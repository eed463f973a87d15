// Package maze holds the topology types shared by generation, live mutation
// and presentation: cells, edge weights and the neighbourhood queries the
// algorithms are written against.
package maze

import "fmt"

// CellType identifies what a cell is made of.
type CellType uint8

const (
	Undefined CellType = iota
	Ground
	Wall
)

func (t CellType) String() string {
	switch t {
	case Ground:
		return "ground"
	case Wall:
		return "wall"
	default:
		return "undefined"
	}
}

// Vec3 is a world-space position. Y is up; layers stack along Y.
type Vec3 struct {
	X, Y, Z float64
}

// Lerp interpolates between a and b; t=0 yields a and t=1 yields b.
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// Cell is the payload of one grid node.
type Cell struct {
	Name   string
	X, Y   int
	World  Vec3
	Weight float64 // generation priority tie-breaker in [0,1)
	Type   CellType

	Preview   bool // speculative wall, not yet confirmed
	Final     bool // visited and exhausted
	IsDeadEnd bool
	IsPortal  bool
	IsSpawn   bool
	IsExit    bool
	IsEdge    bool // outer ring, permanent wall
	IsPath    bool // on the spawn→exit path

	Rotation float64 // forwarded to presentation untouched
}

// NewCell returns an undefined cell at grid position (x, y).
func NewCell(x, y int, weight float64) Cell {
	return Cell{
		Name:   fmt.Sprintf("%d,%d", x, y),
		X:      x,
		Y:      y,
		Weight: weight,
	}
}

// IsGround reports whether the cell is carved open.
func (c *Cell) IsGround() bool { return c.Type == Ground }

// IsWall reports whether the cell is solid.
func (c *Cell) IsWall() bool { return c.Type == Wall }

// SetGround turns the cell into open floor and drops the preview mark.
func (c *Cell) SetGround() {
	c.Type = Ground
	c.Preview = false
}

// SetWall turns the cell solid.
func (c *Cell) SetWall() {
	c.Type = Wall
}

// Seal makes the cell a permanent boundary wall.
func (c *Cell) Seal() {
	c.Type = Wall
	c.Final = true
	c.IsEdge = true
	c.Preview = false
}
