package maze

import "shifting-labyrinth/internal/graph"

// Direction is the axis an edge runs along.
type Direction uint8

const (
	Horizontal Direction = iota
	Vertical
	Diagonal
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "diagonal"
	}
}

// EdgeWeight is the payload of one grid edge.
type EdgeWeight struct {
	// Even edges join orthogonal neighbours and carry walkability.
	// Diagonal edges only exist for local adjacency checks.
	Even      bool
	Direction Direction

	// IsNextGenerationStep marks edges the carve extended along.
	IsNextGenerationStep bool
}

// Graph is the cell graph of one maze layer.
type Graph = graph.Graph[Cell, EdgeWeight]

// NewGraph returns an empty cell graph.
func NewGraph() *Graph {
	return graph.New[Cell, EdgeWeight]()
}
