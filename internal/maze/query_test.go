package maze

import (
	"testing"

	"shifting-labyrinth/internal/graph"
)

// line builds a 1×n strip joined by even horizontal edges.
func line(n int) *Graph {
	g := NewGraph()
	for x := 0; x < n; x++ {
		g.AddNode(NewCell(x, 0, 0))
		if x > 0 {
			g.AddEdge(graph.NodeID(x-1), graph.NodeID(x), EdgeWeight{Even: true, Direction: Horizontal})
		}
	}
	return g
}

func TestGroundNeighborsAndReachable(t *testing.T) {
	g := line(5)
	for _, id := range []graph.NodeID{0, 1, 3, 4} {
		g.Node(id).SetGround()
	}
	g.Node(2).SetWall()

	if n := GroundNeighbors(g, 1); n != 1 {
		t.Errorf("GroundNeighbors(1) = %d, want 1", n)
	}
	if n := GroundNeighbors(g, 2); n != 2 {
		t.Errorf("GroundNeighbors(2) = %d, want 2", n)
	}
	reach := Reachable(g, 0)
	if reach.Size() != 2 || !reach.Has(1) || reach.Has(3) {
		t.Errorf("Reachable(0) has %d cells, want {0,1}", reach.Size())
	}
	if Reachable(g, 2).Size() != 0 {
		t.Error("walls reach nothing")
	}
}

func TestTouchesUndefinedSeesDiagonals(t *testing.T) {
	g := line(2)
	g.AddNode(NewCell(1, 1, 0))
	g.AddEdge(0, 2, EdgeWeight{Direction: Diagonal})
	g.Node(0).SetWall()
	g.Node(1).SetWall()
	if !TouchesUndefined(g, 0) {
		t.Fatal("diagonal undefined neighbour missed")
	}
	g.Node(2).SetGround()
	if TouchesUndefined(g, 0) {
		t.Fatal("no undefined neighbour left")
	}
	if len(EvenNeighbors(g, 0)) != 1 {
		t.Fatal("diagonal counted as even neighbour")
	}
}

func TestFindAndCount(t *testing.T) {
	g := line(4)
	g.Node(2).SetGround()
	g.Node(3).SetGround()
	if id := Find(g, (*Cell).IsGround); id != 2 {
		t.Errorf("Find = %d, want 2", id)
	}
	if Find(g, func(c *Cell) bool { return c.IsExit }) != graph.NilNode {
		t.Error("Find on no match must return NilNode")
	}
	if CountType(g, Ground) != 2 || CountType(g, Undefined) != 2 {
		t.Error("CountType mismatch")
	}
	if len(FindAll(g, (*Cell).IsGround)) != 2 {
		t.Error("FindAll mismatch")
	}
	if Index(7, 3, 2) != 17 {
		t.Errorf("Index(7,3,2) = %d", Index(7, 3, 2))
	}
}

func TestLerp(t *testing.T) {
	got := Lerp(Vec3{0, 0, 0}, Vec3{2, 4, -2}, 0.5)
	if got != (Vec3{1, 2, -1}) {
		t.Fatalf("Lerp = %+v", got)
	}
}
