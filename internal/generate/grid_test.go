package generate

import (
	"errors"
	"math/rand"
	"testing"

	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
)

func TestBuildGridRejectsTinySizes(t *testing.T) {
	cases := []struct{ w, h int }{{3, 10}, {10, 3}, {0, 0}, {1, 1}}
	for _, c := range cases {
		_, err := BuildGrid(c.w, c.h, 1, 0, rand.New(rand.NewSource(1)))
		if !errors.Is(err, ErrGridTooSmall) {
			t.Errorf("BuildGrid(%d,%d) err = %v, want ErrGridTooSmall", c.w, c.h, err)
		}
	}
}

func TestBuildGridEdgeLayout(t *testing.T) {
	const w, h = 6, 5
	g, err := BuildGrid(w, h, 2, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != w*h {
		t.Fatalf("Len = %d, want %d", g.Len(), w*h)
	}

	even, diag := 0, 0
	for _, eid := range g.Edges() {
		e := g.Edge(eid)
		if e.Weight.Even {
			even++
			if e.Weight.Direction == maze.Diagonal {
				t.Errorf("even edge %d marked diagonal", eid)
			}
		} else {
			diag++
			if e.Weight.Direction != maze.Diagonal {
				t.Errorf("diagonal edge %d has direction %v", eid, e.Weight.Direction)
			}
		}
	}
	if want := (w-1)*h + w*(h-1); even != want {
		t.Errorf("even edges = %d, want %d", even, want)
	}
	if want := 2 * (w - 1) * (h - 1); diag != want {
		t.Errorf("diagonal edges = %d, want %d", diag, want)
	}
}

func TestBuildGridBlocksFullyConnected(t *testing.T) {
	const w, h = 5, 5
	g, _ := BuildGrid(w, h, 1, 0, rand.New(rand.NewSource(2)))

	adjacent := func(a, b graph.NodeID) bool {
		for _, nb := range g.Neighbors(a) {
			if nb == b {
				return true
			}
		}
		return false
	}
	for y := 1; y < h; y++ {
		for x := 1; x < w; x++ {
			block := []graph.NodeID{
				maze.Index(w, x-1, y-1), maze.Index(w, x, y-1),
				maze.Index(w, x-1, y), maze.Index(w, x, y),
			}
			for i := range block {
				for j := i + 1; j < len(block); j++ {
					if !adjacent(block[i], block[j]) {
						t.Errorf("block at (%d,%d): %d and %d not adjacent", x, y, block[i], block[j])
					}
				}
			}
		}
	}
}

func TestBuildGridSealsOuterRing(t *testing.T) {
	const w, h = 7, 6
	g, _ := BuildGrid(w, h, 1, 0, rand.New(rand.NewSource(3)))
	for _, id := range g.Nodes() {
		c := g.Node(id)
		ring := c.X == 0 || c.Y == 0 || c.X == w-1 || c.Y == h-1
		if ring != c.IsEdge {
			t.Errorf("cell %s: ring=%v IsEdge=%v", c.Name, ring, c.IsEdge)
		}
		if ring && (!c.IsWall() || !c.Final) {
			t.Errorf("ring cell %s should be final wall; type=%v final=%v", c.Name, c.Type, c.Final)
		}
		if !ring && c.Type != maze.Undefined {
			t.Errorf("interior cell %s should start undefined; got %v", c.Name, c.Type)
		}
	}
}

func TestBuildGridWorldPosition(t *testing.T) {
	g, _ := BuildGrid(4, 4, 2.5, 3, rand.New(rand.NewSource(4)))
	c := g.Node(maze.Index(4, 2, 1))
	want := maze.Vec3{X: 5, Y: 7.5, Z: 2.5}
	if c.World != want {
		t.Fatalf("World = %+v, want %+v", c.World, want)
	}
	if c.Name != "2,1" {
		t.Fatalf("Name = %q, want 2,1", c.Name)
	}
}
