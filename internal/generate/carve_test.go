package generate

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"shifting-labyrinth/internal/maze"
)

// carved builds and carves a w×h layer from seed.
func carved(t testing.TB, seed int64, w, h int, turbulence float64, maxLen int) (*maze.Graph, CarveResult) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g, err := BuildGrid(w, h, 1, 0, rng)
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	res, err := Carve(g, &Config{Turbulence: turbulence, MaxContinuousPathLength: maxLen, Rand: rng})
	if err != nil {
		t.Fatalf("seed=%d %dx%d: Carve: %v", seed, w, h, err)
	}
	return g, res
}

func countCells(g *maze.Graph, pred func(*maze.Cell) bool) int {
	return len(maze.FindAll(g, pred))
}

func TestCarveInvariants(t *testing.T) {
	sizes := []struct{ w, h int }{{5, 5}, {10, 10}, {17, 11}, {30, 30}}
	for _, sz := range sizes {
		for seed := int64(0); seed < 20; seed++ {
			g, res := carved(t, seed, sz.w, sz.h, 2, 20)

			if n := maze.CountType(g, maze.Undefined); n != 0 {
				t.Errorf("seed=%d %dx%d: %d undefined cells remain", seed, sz.w, sz.h, n)
			}
			if n := countCells(g, func(c *maze.Cell) bool { return c.IsSpawn }); n != 1 {
				t.Errorf("seed=%d %dx%d: %d spawn cells, want 1", seed, sz.w, sz.h, n)
			}
			if n := countCells(g, func(c *maze.Cell) bool { return c.IsExit }); n != 1 {
				t.Errorf("seed=%d %dx%d: %d exit cells, want 1", seed, sz.w, sz.h, n)
			}
			if !g.Node(res.Spawn).IsSpawn || !g.Node(res.Exit).IsExit {
				t.Errorf("seed=%d: result ids do not match flagged cells", seed)
			}
			if !maze.Reachable(g, res.Spawn).Has(res.Exit) {
				t.Errorf("seed=%d %dx%d: exit not reachable from spawn", seed, sz.w, sz.h)
			}
		}
	}
}

func TestCarveKeepsOuterRingSealed(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		g, _ := carved(t, seed, 12, 9, 1.5, 15)
		for _, id := range g.Nodes() {
			c := g.Node(id)
			if c.X != 0 && c.Y != 0 && c.X != 11 && c.Y != 8 {
				continue
			}
			if !c.IsEdge || !c.IsWall() || !c.Final {
				t.Errorf("seed=%d: ring cell %s edge=%v type=%v final=%v", seed, c.Name, c.IsEdge, c.Type, c.Final)
			}
			if c.IsSpawn || c.IsExit {
				t.Errorf("seed=%d: ring cell %s is spawn or exit", seed, c.Name)
			}
		}
	}
}

func TestCarveAllGroundConnected(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		g, res := carved(t, seed, 15, 15, 2, 20)
		reach := maze.Reachable(g, res.Spawn)
		if ground := maze.CountType(g, maze.Ground); reach.Size() != ground {
			t.Errorf("seed=%d: reached %d of %d ground cells", seed, reach.Size(), ground)
		}
	}
}

func TestCarveIsDeterministic(t *testing.T) {
	// seed=1, 10×10, turbulence=2, maximumContinuousPathLength=20.
	a, ra := carved(t, 1, 10, 10, 2, 20)
	b, rb := carved(t, 1, 10, 10, 2, 20)
	if ra.Spawn != rb.Spawn || ra.Exit != rb.Exit {
		t.Fatalf("spawn/exit differ: %+v vs %+v", ra, rb)
	}
	for _, id := range a.Nodes() {
		ca, cb := a.Node(id), b.Node(id)
		if ca.Type != cb.Type || ca.IsSpawn != cb.IsSpawn || ca.IsExit != cb.IsExit {
			t.Fatalf("cell %s differs: %v/%v", ca.Name, ca.Type, cb.Type)
		}
	}
	if maze.CountType(a, maze.Undefined) != 0 {
		t.Fatal("undefined cells left")
	}
}

func TestCarveMarksGenerationSteps(t *testing.T) {
	g, _ := carved(t, 7, 10, 10, 2, 0)
	steps := 0
	for _, eid := range g.Edges() {
		e := g.Edge(eid)
		if !e.Weight.IsNextGenerationStep {
			continue
		}
		steps++
		if !e.Weight.Even {
			t.Errorf("diagonal edge %d marked as generation step", eid)
		}
	}
	if steps == 0 {
		t.Fatal("no edge marked as generation step")
	}
}

func TestCarveRejectsBadConfig(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero turbulence", Config{Turbulence: 0, Rand: rng}, ErrBadTurbulence},
		{"negative turbulence", Config{Turbulence: -1, Rand: rng}, ErrBadTurbulence},
		{"nan turbulence", Config{Turbulence: math.NaN(), Rand: rng}, ErrBadTurbulence},
		{"infinite turbulence", Config{Turbulence: math.Inf(1), Rand: rng}, ErrBadTurbulence},
		{"negative path length", Config{Turbulence: 1, MaxContinuousPathLength: -1, Rand: rng}, ErrBadPathLength},
		{"nil rand", Config{Turbulence: 1}, ErrNilRand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := BuildGrid(6, 6, 1, 0, rand.New(rand.NewSource(1)))
			if _, err := Carve(g, &tc.cfg); !errors.Is(err, tc.want) {
				t.Errorf("Carve err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCarveWithoutStartingEdge(t *testing.T) {
	g, _ := BuildGrid(4, 4, 1, 0, rand.New(rand.NewSource(1)))
	for _, id := range g.Nodes() {
		g.Node(id).Seal()
	}
	_, err := Carve(g, &Config{Turbulence: 1, Rand: rand.New(rand.NewSource(1))})
	if !errors.Is(err, ErrGridTooSmall) {
		t.Fatalf("err = %v, want ErrGridTooSmall", err)
	}
}

func TestCarveSmallestGrid(t *testing.T) {
	g, res := carved(t, 3, 4, 4, 1, 0)
	if !g.Node(res.Spawn).IsGround() || !g.Node(res.Exit).IsGround() {
		t.Fatal("spawn and exit must be ground on a 4×4 grid")
	}
}

func TestCarveShortestCorridorLimit(t *testing.T) {
	for size := 5; size <= 12; size++ {
		for seed := range int64(8) {
			g, res := carved(t, seed, size, size, 2, 1)
			if n := countCells(g, func(c *maze.Cell) bool { return c.IsExit }); n != 1 {
				t.Fatalf("%dx%d seed=%d: %d exits, want 1", size, size, seed, n)
			}
			open := countCells(g, func(c *maze.Cell) bool { return c.IsGround() && !c.IsDeadEnd && !c.IsExit })
			if open == 0 {
				t.Errorf("%dx%d seed=%d: every Ground cell is a dead end", size, size, seed)
			}
			if !maze.Reachable(g, res.Spawn).Has(res.Exit) {
				t.Errorf("%dx%d seed=%d: exit unreachable", size, size, seed)
			}
		}
	}
}

// TestCarveTerminatesAcrossParameterSpace sweeps extreme turbulence values
// against short and long corridor limits.
func TestCarveTerminatesAcrossParameterSpace(t *testing.T) {
	turbulences := []float64{1e-9, 0.01, 0.5, 1, 2, 50, 1e9}
	lengths := []int{0, 1, 2, 3, 20, 1000}
	for _, tu := range turbulences {
		for _, ml := range lengths {
			for seed := int64(0); seed < 3; seed++ {
				g, res := carved(t, seed, 14, 12, tu, ml)
				if maze.CountType(g, maze.Undefined) != 0 || !maze.Reachable(g, res.Spawn).Has(res.Exit) {
					t.Errorf("turbulence=%g len=%d seed=%d: broken maze", tu, ml, seed)
				}
			}
		}
	}
}

func FuzzCarve(f *testing.F) {
	f.Add(int64(1), 10, 10, 2.0, 20)
	f.Add(int64(99), 5, 31, 0.001, 1)
	f.Add(int64(-4), 40, 6, 1e6, 0)
	f.Fuzz(func(t *testing.T, seed int64, w, h int, turbulence float64, maxLen int) {
		if w < MinGridSize || h < MinGridSize || w > 48 || h > 48 {
			t.Skip()
		}
		if turbulence <= 0 || math.IsInf(turbulence, 0) || math.IsNaN(turbulence) || maxLen < 0 {
			t.Skip()
		}
		rng := rand.New(rand.NewSource(seed))
		g, err := BuildGrid(w, h, 1, 0, rng)
		if err != nil {
			t.Fatal(err)
		}
		res, err := Carve(g, &Config{Turbulence: turbulence, MaxContinuousPathLength: maxLen, Rand: rng})
		if err != nil {
			t.Fatalf("Carve: %v", err)
		}
		if !maze.Reachable(g, res.Spawn).Has(res.Exit) {
			t.Fatal("exit unreachable")
		}
	})
}
