package generate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
)

var (
	ErrGridTooSmall    = errors.New("grid too small for a starting edge")
	ErrBadTurbulence   = errors.New("turbulence must be finite and positive")
	ErrBadPathLength   = errors.New("maximum continuous path length must not be negative")
	ErrNilRand         = errors.New("nil random source")
	ErrStalled         = errors.New("carve exceeded its step limit")
	ErrNoExit          = errors.New("no cell qualifies as exit")
	ErrNoSpawn         = errors.New("maze has no spawn")
	ErrExitUnreachable = errors.New("exit unreachable from spawn")
)

// stepsPerNode bounds the carve loop. Every iteration either carves a new
// cell or finalises one, so a healthy run stays far below it.
const stepsPerNode = 64

// Config drives carving for one layer.
type Config struct {
	// Turbulence biases the walk: values above 1 favour straight runs,
	// values below 1 favour turning.
	Turbulence float64
	// MaxContinuousPathLength forces branching once a corridor grows this
	// long. Zero disables the limit.
	MaxContinuousPathLength int
	Rand                    *rand.Rand
}

func (cfg *Config) validate() error {
	if cfg.Rand == nil {
		return ErrNilRand
	}
	if cfg.Turbulence <= 0 || math.IsInf(cfg.Turbulence, 0) || math.IsNaN(cfg.Turbulence) {
		return fmt.Errorf("turbulence %v: %w", cfg.Turbulence, ErrBadTurbulence)
	}
	if cfg.MaxContinuousPathLength < 0 {
		return fmt.Errorf("path length %d: %w", cfg.MaxContinuousPathLength, ErrBadPathLength)
	}
	return nil
}

// CarveResult summarises one carve.
type CarveResult struct {
	Spawn, Exit graph.NodeID
	DeadEnds    int
	Steps       int
}

// carver holds the walk state of one Carve call.
type carver struct {
	g   *maze.Graph
	cfg *Config

	cur        graph.NodeID
	lastDir    maze.Direction
	hasDir     bool
	pathLength int
	soft       int // remaining soft backtrack steps
	recovering bool
	reopened   graph.NodeID
	spawn      graph.NodeID
	steps      int
}

// Carve turns the undefined interior of g into a single connected corridor
// network, marks the spawn and dead ends, then selects the exit.
func Carve(g *maze.Graph, cfg *Config) (CarveResult, error) {
	if err := cfg.validate(); err != nil {
		return CarveResult{}, fmt.Errorf("carve: %w", err)
	}
	start, err := pickStartEdge(g, cfg.Rand)
	if err != nil {
		return CarveResult{}, fmt.Errorf("carve: %w", err)
	}

	c := &carver{
		g:        g,
		cfg:      cfg,
		cur:      g.Edge(start).A,
		reopened: graph.NilNode,
		spawn:    graph.NilNode,
	}
	c.advance(start)

	limit := stepsPerNode * g.Len()
	for {
		c.steps++
		if c.steps > limit {
			return CarveResult{}, fmt.Errorf("carve after %d steps: %w", c.steps, ErrStalled)
		}
		if maxLen := cfg.MaxContinuousPathLength; maxLen > 0 && c.pathLength >= maxLen {
			c.soft = maxLen / 3
			if !c.backtrack(false) {
				break
			}
			continue
		}
		if eid, ok := c.nextEdge(); ok {
			c.advance(eid)
			continue
		}
		if !c.backtrack(true) {
			break
		}
	}

	for _, id := range g.Nodes() {
		if cell := g.Node(id); cell.Type == maze.Undefined {
			cell.SetWall()
		}
	}

	exit, err := selectExit(g, c.spawn)
	if err != nil {
		return CarveResult{}, fmt.Errorf("carve: %w", err)
	}
	return CarveResult{
		Spawn:    c.spawn,
		Exit:     exit,
		DeadEnds: len(maze.FindAll(g, func(c *maze.Cell) bool { return c.IsDeadEnd })),
		Steps:    c.steps,
	}, nil
}

// pickStartEdge returns a uniformly chosen even edge between two non-edge cells.
func pickStartEdge(g *maze.Graph, rng *rand.Rand) (graph.EdgeID, error) {
	var candidates []graph.EdgeID
	for _, eid := range g.Edges() {
		e := g.Edge(eid)
		if e.Weight.Even && !g.Node(e.A).IsEdge && !g.Node(e.B).IsEdge {
			candidates = append(candidates, eid)
		}
	}
	if len(candidates) == 0 {
		return -1, ErrGridTooSmall
	}
	return candidates[rng.Intn(len(candidates))], nil
}

// advance moves across eid to the far node, carving it open, and surrounds
// it with speculative walls.
func (c *carver) advance(eid graph.EdgeID) {
	e := c.g.Edge(eid)
	to := e.Other(c.cur)
	e.Weight.IsNextGenerationStep = true
	c.lastDir, c.hasDir = e.Weight.Direction, true
	c.cur = to

	cell := c.g.Node(to)
	if !cell.IsGround() {
		cell.SetGround()
		c.pathLength++
		if c.spawn == graph.NilNode {
			cell.IsSpawn = true
			c.spawn = to
		}
	}
	c.recovering = false
	c.reopened = graph.NilNode

	for _, nb := range maze.EvenNeighbors(c.g, to) {
		if n := c.g.Node(nb); n.Type == maze.Undefined {
			n.SetWall()
			n.Preview = true
		}
	}
}

// nextEdge scores every eligible even edge out of the current node and
// returns the best one. Ties keep the first edge found.
func (c *carver) nextEdge() (graph.EdgeID, bool) {
	best := graph.EdgeID(-1)
	bestScore := math.Inf(-1)
	for _, eid := range maze.EvenEdges(c.g, c.cur) {
		e := c.g.Edge(eid)
		nb := e.Other(c.cur)
		if !c.carvable(nb) {
			continue
		}
		score := c.score(c.g.Node(nb).Weight, e.Weight.Direction)
		if best < 0 || score > bestScore {
			best, bestScore = eid, score
		}
	}
	return best, best >= 0
}

// carvable reports whether the walk may extend into nb. A cell touching
// Ground other than the current node would widen a corridor, except for the
// wall the last backtrack deliberately re-opened.
func (c *carver) carvable(nb graph.NodeID) bool {
	n := c.g.Node(nb)
	if n.Final || n.IsEdge {
		return false
	}
	if n.Type != maze.Undefined && !(n.IsWall() && n.Preview) {
		return false
	}
	limit := 1
	if nb == c.reopened {
		limit = 2
	}
	return maze.GroundNeighbors(c.g, nb) <= limit
}

func (c *carver) score(weight float64, dir maze.Direction) float64 {
	if c.hasDir && dir == c.lastDir {
		return weight * c.cfg.Turbulence
	}
	return weight / c.cfg.Turbulence
}

// backtrack retreats from the current node. Only a node left with no
// carvable edge on the forward walk becomes a dead end; a retreat forced by
// the corridor length limit does not. It returns false once no unfinished
// Ground remains.
func (c *carver) backtrack(exhausted bool) bool {
	for {
		cell := c.g.Node(c.cur)
		if exhausted && !c.recovering {
			cell.IsDeadEnd = true
		}
		to := c.openNeighbor(c.cur)
		cell.Final = true
		from := c.cur
		if to == graph.NilNode {
			to = maze.Find(c.g, func(n *maze.Cell) bool { return n.IsGround() && !n.Final })
			if to == graph.NilNode {
				return false
			}
		}
		c.cur = to
		c.recovering = true
		c.hasDir = false
		c.pathLength = 0
		c.clearStalePreviews(from)
		c.clearStalePreviews(to)

		if c.soft > 0 {
			c.soft--
			continue
		}
		c.reopenWall()
		return true
	}
}

// openNeighbor returns the first even Ground neighbour of id that is not final.
func (c *carver) openNeighbor(id graph.NodeID) graph.NodeID {
	for _, nb := range maze.EvenNeighbors(c.g, id) {
		if n := c.g.Node(nb); n.IsGround() && !n.Final {
			return nb
		}
	}
	return graph.NilNode
}

// clearStalePreviews confirms the speculative walls around id that no
// longer border any undefined cell.
func (c *carver) clearStalePreviews(id graph.NodeID) {
	for _, nb := range append(c.g.Neighbors(id), id) {
		n := c.g.Node(nb)
		if n.IsWall() && n.Preview && !maze.TouchesUndefined(c.g, nb) {
			n.Preview = false
		}
	}
}

// reopenWall flags a wall next to the current node as carvable again when it
// still borders undefined space and opening it keeps corridors narrow.
func (c *carver) reopenWall() {
	for _, nb := range maze.EvenNeighbors(c.g, c.cur) {
		n := c.g.Node(nb)
		if !n.IsWall() || n.IsEdge || n.Final {
			continue
		}
		if maze.TouchesUndefined(c.g, nb) && maze.GroundNeighbors(c.g, nb) <= 2 {
			n.Preview = true
			c.reopened = nb
			return
		}
	}
}

// selectExit picks the non-edge cell farthest from spawn that borders a
// Ground cell which is not a dead end. When every Ground cell is a dead end
// any Ground neighbour qualifies.
func selectExit(g *maze.Graph, spawn graph.NodeID) (graph.NodeID, error) {
	if spawn == graph.NilNode {
		return graph.NilNode, ErrNoSpawn
	}
	best := farthestFrom(g, spawn, bordersOpenGround)
	if best == graph.NilNode {
		best = farthestFrom(g, spawn, bordersGround)
	}
	if best == graph.NilNode {
		return graph.NilNode, ErrNoExit
	}
	exit := g.Node(best)
	exit.SetGround()
	exit.IsExit = true
	return best, nil
}

func farthestFrom(g *maze.Graph, spawn graph.NodeID, ok func(*maze.Graph, graph.NodeID) bool) graph.NodeID {
	sp := g.Node(spawn)
	best := graph.NilNode
	bestDist := -1.0
	for _, id := range g.Nodes() {
		cell := g.Node(id)
		if cell.IsEdge || cell.IsSpawn || !ok(g, id) {
			continue
		}
		d := math.Hypot(float64(cell.X-sp.X), float64(cell.Y-sp.Y))
		if d > bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

func bordersGround(g *maze.Graph, id graph.NodeID) bool {
	for _, nb := range maze.EvenNeighbors(g, id) {
		if g.Node(nb).IsGround() {
			return true
		}
	}
	return false
}

func bordersOpenGround(g *maze.Graph, id graph.NodeID) bool {
	for _, nb := range maze.EvenNeighbors(g, id) {
		if n := g.Node(nb); n.IsGround() && !n.IsDeadEnd {
			return true
		}
	}
	return false
}
