package maze

import (
	"github.com/zyedidia/generic/mapset"

	"shifting-labyrinth/internal/graph"
)

// EvenEdges returns the orthogonal edges touching id.
func EvenEdges(g *Graph, id graph.NodeID) []graph.EdgeID {
	var out []graph.EdgeID
	for _, eid := range g.EdgesOf(id) {
		if g.Edge(eid).Weight.Even {
			out = append(out, eid)
		}
	}
	return out
}

// EvenNeighbors returns the orthogonal neighbours of id.
func EvenNeighbors(g *Graph, id graph.NodeID) []graph.NodeID {
	var out []graph.NodeID
	for _, eid := range g.EdgesOf(id) {
		e := g.Edge(eid)
		if e.Weight.Even {
			out = append(out, e.Other(id))
		}
	}
	return out
}

// GroundNeighbors counts the orthogonal Ground neighbours of id.
func GroundNeighbors(g *Graph, id graph.NodeID) int {
	n := 0
	for _, nb := range EvenNeighbors(g, id) {
		if g.Node(nb).IsGround() {
			n++
		}
	}
	return n
}

// TouchesUndefined reports whether any neighbour of id, diagonal included,
// is still undefined.
func TouchesUndefined(g *Graph, id graph.NodeID) bool {
	for _, nb := range g.Neighbors(id) {
		if g.Node(nb).Type == Undefined {
			return true
		}
	}
	return false
}

// CountType returns how many cells have type t.
func CountType(g *Graph, t CellType) int {
	n := 0
	for _, id := range g.Nodes() {
		if g.Node(id).Type == t {
			n++
		}
	}
	return n
}

// Find returns the first node, in id order, matching pred, or graph.NilNode.
func Find(g *Graph, pred func(*Cell) bool) graph.NodeID {
	for _, id := range g.Nodes() {
		if pred(g.Node(id)) {
			return id
		}
	}
	return graph.NilNode
}

// FindAll returns every node matching pred in id order.
func FindAll(g *Graph, pred func(*Cell) bool) []graph.NodeID {
	var out []graph.NodeID
	for _, id := range g.Nodes() {
		if pred(g.Node(id)) {
			out = append(out, id)
		}
	}
	return out
}

// Index returns the node id of grid position (x, y) in a graph laid out
// row-major with the given width.
func Index(width, x, y int) graph.NodeID {
	return graph.NodeID(y*width + x)
}

// Reachable returns the set of Ground nodes reachable from start over even
// edges, including start itself when it is Ground.
func Reachable(g *Graph, start graph.NodeID) mapset.Set[graph.NodeID] {
	seen := mapset.New[graph.NodeID]()
	if !g.Has(start) || !g.Node(start).IsGround() {
		return seen
	}
	queue := []graph.NodeID{start}
	seen.Put(start)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range EvenNeighbors(g, cur) {
			if seen.Has(nb) || !g.Node(nb).IsGround() {
				continue
			}
			seen.Put(nb)
			queue = append(queue, nb)
		}
	}
	return seen
}
