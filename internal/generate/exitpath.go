package generate

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
)

// CalculateExitPath walks depth-first from the spawn to the exit over even
// Ground edges and marks the cells on the resulting path. The walk keeps its
// own visited set, so stale Final flags left by carving cannot steer it.
//
// Afterwards every Ground cell is settled: Final set, Preview cleared.
func CalculateExitPath(g *maze.Graph) ([]graph.NodeID, error) {
	spawn := maze.Find(g, func(c *maze.Cell) bool { return c.IsSpawn })
	if spawn == graph.NilNode {
		return nil, fmt.Errorf("exit path: %w", ErrNoSpawn)
	}
	if maze.Find(g, func(c *maze.Cell) bool { return c.IsExit }) == graph.NilNode {
		return nil, fmt.Errorf("exit path: %w", ErrNoExit)
	}

	visited := mapset.New[graph.NodeID]()
	visited.Put(spawn)
	stack := []graph.NodeID{spawn}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if g.Node(cur).IsExit {
			break
		}
		next := graph.NilNode
		for _, nb := range maze.EvenNeighbors(g, cur) {
			if !visited.Has(nb) && g.Node(nb).IsGround() {
				next = nb
				break
			}
		}
		if next == graph.NilNode {
			stack = stack[:len(stack)-1]
			continue
		}
		visited.Put(next)
		stack = append(stack, next)
	}

	for _, id := range g.Nodes() {
		cell := g.Node(id)
		cell.IsPath = false
		if cell.IsGround() {
			cell.Final = true
			cell.Preview = false
		}
	}
	if len(stack) == 0 {
		return nil, fmt.Errorf("exit path: %w", ErrExitUnreachable)
	}
	for _, id := range stack {
		g.Node(id).IsPath = true
	}
	return stack, nil
}
