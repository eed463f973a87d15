package generate

import (
	"fmt"
	"math/rand"

	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
)

// MinGridSize is the smallest width or height that still leaves an interior
// even edge between two non-edge cells.
const MinGridSize = 4

// fullDegree is the edge count of a cell with a complete 3×3 neighbourhood:
// four even edges plus one diagonal from each surrounding 2×2 block.
const fullDegree = 8

// BuildGrid lays out a width×height grid of cells joined by even edges to
// their orthogonal neighbours and diagonal edges across every 2×2 block.
// Cells on the outer ring are sealed as permanent wall.
func BuildGrid(width, height int, scale float64, layer int, rng *rand.Rand) (*maze.Graph, error) {
	if width < MinGridSize || height < MinGridSize {
		return nil, fmt.Errorf("build grid %dx%d: %w", width, height, ErrGridTooSmall)
	}
	g := maze.NewGraph()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := maze.NewCell(x, y, rng.Float64())
			c.World = maze.Vec3{X: float64(x) * scale, Y: float64(layer) * scale, Z: float64(y) * scale}
			id := g.AddNode(c)

			up := maze.Index(width, x, y-1)
			left := maze.Index(width, x-1, y)
			if y > 0 {
				link(g, id, up, maze.EdgeWeight{Even: true, Direction: maze.Vertical})
			}
			if x > 0 {
				link(g, id, left, maze.EdgeWeight{Even: true, Direction: maze.Horizontal})
			}
			if x > 0 && y > 0 {
				upLeft := maze.Index(width, x-1, y-1)
				link(g, id, upLeft, maze.EdgeWeight{Direction: maze.Diagonal})
				link(g, up, left, maze.EdgeWeight{Direction: maze.Diagonal})
			}
		}
	}
	for _, id := range g.Nodes() {
		if g.Degree(id) < fullDegree {
			g.Node(id).Seal()
		}
	}
	return g, nil
}

// link adds an edge between two ids the layout loop has already created.
func link(g *maze.Graph, a, b graph.NodeID, w maze.EdgeWeight) {
	if _, err := g.AddEdge(a, b, w); err != nil {
		panic(err) // ids come from the loop above
	}
}
