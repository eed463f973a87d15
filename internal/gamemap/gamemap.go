// Package gamemap holds immutable snapshots of one maze layer for
// renderers and exporters. A snapshot never aliases the live graph.
package gamemap

import "shifting-labyrinth/internal/maze"

// GameMap holds the tile grid of one maze layer.
type GameMap struct {
	Width, Height int
	Layer         int
	Tiles         [][]Tile
}

// New creates a GameMap filled with walls.
func New(width, height int) *GameMap {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = MakeWall()
		}
	}
	return &GameMap{Width: width, Height: height, Tiles: tiles}
}

// FromGraph copies the cell states of a row-major width×height layer.
// The caller must hold whatever lock guards g.
func FromGraph(g *maze.Graph, width, height, layer int) *GameMap {
	m := New(width, height)
	m.Layer = layer
	for _, id := range g.Nodes() {
		c := g.Node(id)
		if !m.InBounds(c.X, c.Y) {
			continue
		}
		m.Tiles[c.Y][c.X] = tileOf(c)
	}
	return m
}

func tileOf(c *maze.Cell) Tile {
	t := Tile{DeadEnd: c.IsDeadEnd, Path: c.IsPath, Edge: c.IsEdge}
	switch {
	case c.Type == maze.Undefined:
		t.Kind = TileUndefined
	case c.IsWall():
		t.Kind = TileWall
	case c.IsSpawn:
		t.Kind = TileSpawn
	case c.IsExit:
		t.Kind = TileExit
	case c.IsPortal:
		t.Kind = TilePortal
	default:
		t.Kind = TileGround
	}
	t.Walkable = c.IsGround()
	return t
}

// InBounds reports whether (x, y) is within the map boundaries.
func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At returns a pointer to the tile at (x, y). Panics if out of bounds.
func (m *GameMap) At(x, y int) *Tile {
	return &m.Tiles[y][x]
}

// Set replaces the tile at (x, y).
func (m *GameMap) Set(x, y int, t Tile) {
	m.Tiles[y][x] = t
}

// IsWalkable returns true when (x, y) is in bounds and walkable.
func (m *GameMap) IsWalkable(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.Tiles[y][x].Walkable
}

// Count returns the number of tiles of kind k.
func (m *GameMap) Count(k TileKind) int {
	n := 0
	for _, row := range m.Tiles {
		for _, t := range row {
			if t.Kind == k {
				n++
			}
		}
	}
	return n
}

// Find returns the first tile of kind k in row-major order.
func (m *GameMap) Find(k TileKind) (x, y int, ok bool) {
	for y, row := range m.Tiles {
		for x, t := range row {
			if t.Kind == k {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}
