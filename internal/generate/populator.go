package generate

import (
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
)

// SpawnPoint holds a grid cell where an entity should appear.
type SpawnPoint struct {
	Cell graph.NodeID
	X, Y int
}

// PopulateConfig drives entity placement on a finished layer.
type PopulateConfig struct {
	Count int
	// SpawnClearance keeps entities at least this many cells (Chebyshev)
	// away from the spawn cell.
	SpawnClearance int
	Rand           *rand.Rand
}

// Populate picks up to cfg.Count distinct Ground cells for entities, never
// the spawn or the exit. Dead ends are preferred so wanderers start at the
// far ends of corridors, and no two entities start side by side while there
// is room to keep them apart.
func Populate(g *maze.Graph, cfg *PopulateConfig) []SpawnPoint {
	if cfg.Count <= 0 || cfg.Rand == nil {
		return nil
	}
	spawn := maze.Find(g, func(c *maze.Cell) bool { return c.IsSpawn })

	var deadEnds, corridors []graph.NodeID
	for _, id := range g.Nodes() {
		c := g.Node(id)
		if !c.IsGround() || c.IsSpawn || c.IsExit || c.IsPortal {
			continue
		}
		if spawn != graph.NilNode && chebyshev(c, g.Node(spawn)) < cfg.SpawnClearance {
			continue
		}
		if c.IsDeadEnd {
			deadEnds = append(deadEnds, id)
		} else {
			corridors = append(corridors, id)
		}
	}
	cfg.Rand.Shuffle(len(deadEnds), func(i, j int) { deadEnds[i], deadEnds[j] = deadEnds[j], deadEnds[i] })
	cfg.Rand.Shuffle(len(corridors), func(i, j int) { corridors[i], corridors[j] = corridors[j], corridors[i] })

	candidates := append(deadEnds, corridors...)
	taken := mapset.New[graph.NodeID]()
	// crowded holds the placed cells and their even neighbours. The first
	// pass keeps entities out of each other's reach; the second fills what
	// is left of Count with any unused cell.
	crowded := mapset.New[graph.NodeID]()
	var out []SpawnPoint
	for _, spaced := range []bool{true, false} {
		for _, id := range candidates {
			if len(out) == cfg.Count {
				return out
			}
			if taken.Has(id) || (spaced && crowded.Has(id)) {
				continue
			}
			taken.Put(id)
			crowded.Put(id)
			for _, nb := range maze.EvenNeighbors(g, id) {
				crowded.Put(nb)
			}
			c := g.Node(id)
			out = append(out, SpawnPoint{Cell: id, X: c.X, Y: c.Y})
		}
	}
	return out
}

func chebyshev(a, b *maze.Cell) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
