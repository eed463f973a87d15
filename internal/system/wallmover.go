package system

import (
	"log/slog"
	"math/rand"
	"sync"

	"github.com/zyedidia/generic/mapset"

	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
)

// DefaultSlideFrames is the length of a wall slide in Update calls.
const DefaultSlideFrames = 24

// mutationChance is the 1-in-n chance that a dead end is tried per Step.
const mutationChance = 5

// Prop is the presentation object standing on a wall cell.
type Prop interface {
	Movable() bool
	SetMovable(bool)
	SetPosition(maze.Vec3)
}

// Stage maps wall cells to their props.
type Stage interface {
	// WallAt returns the prop bound to cell, or nil.
	WallAt(cell graph.NodeID) Prop
	// Bind makes p the prop of cell.
	Bind(cell graph.NodeID, p Prop)
	// Placeholder creates a temporary wall prop on cell and binds it.
	Placeholder(cell graph.NodeID) Prop
	// Discard removes p and any binding that still points at it.
	Discard(p Prop)
}

type slide struct {
	prop        Prop
	placeholder Prop
	from, to    maze.Vec3
	frame       int
}

// WallMover re-routes dead ends of a settled maze at play time. Each
// accepted mutation opens one wall next to a dead end and closes one
// corridor cell elsewhere, so the Ground count never changes.
//
// Step and Update must be called from the same goroutine, normally the
// frame loop. Step takes the maze write lock while it mutates the graph.
type WallMover struct {
	g      *maze.Graph
	mu     *sync.RWMutex
	stage  Stage
	rng    *rand.Rand
	logger *slog.Logger

	// SlideFrames is the number of Update calls a wall slide takes.
	SlideFrames int

	slides []*slide
}

// NewWallMover binds a mover to g. stage may be nil for headless use, in
// which case every wall counts as movable.
func NewWallMover(g *maze.Graph, mu *sync.RWMutex, stage Stage, rng *rand.Rand, logger *slog.Logger) *WallMover {
	if logger == nil {
		logger = slog.Default()
	}
	return &WallMover{
		g:           g,
		mu:          mu,
		stage:       stage,
		rng:         rng,
		logger:      logger,
		SlideFrames: DefaultSlideFrames,
	}
}

// mutation is one accepted wall/ground swap.
type mutation struct {
	deadEnd, opened, conn, closed graph.NodeID
}

// Step tries every dead end that is not a portal with probability 1/5 and
// applies the mutations that pass. It returns the number applied.
func (m *WallMover) Step() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := maze.FindAll(m.g, func(c *maze.Cell) bool { return c.IsDeadEnd && !c.IsPortal })
	applied := 0
	for _, d := range candidates {
		if m.rng.Intn(mutationChance) != 0 {
			continue
		}
		if cell := m.g.Node(d); !cell.IsDeadEnd || !cell.IsGround() {
			continue
		}
		mut, ok := m.find(d)
		if !ok {
			continue
		}
		m.apply(mut)
		applied++
	}
	return applied
}

// find looks for an acceptable mutation around dead end d.
func (m *WallMover) find(d graph.NodeID) (mutation, bool) {
	for _, w := range maze.EvenNeighbors(m.g, d) {
		wall := m.g.Node(w)
		if !wall.IsWall() || wall.IsEdge || !m.movable(w) {
			continue
		}
		// Opening w must join exactly d and one connection.
		if maze.GroundNeighbors(m.g, w) != 2 {
			continue
		}
		for _, c := range maze.EvenNeighbors(m.g, w) {
			if c == d {
				continue
			}
			conn := m.g.Node(c)
			// conn inherits the dead-end flag, so it must be able to carry it.
			if !conn.IsGround() || conn.IsDeadEnd || conn.IsPortal || conn.IsSpawn || conn.IsExit {
				continue
			}
			closed, ok := m.farNode(c)
			if !ok || closed == d || closed == w {
				continue
			}
			mut := mutation{deadEnd: d, opened: w, conn: c, closed: closed}
			if !m.keepsConnected(mut) {
				continue
			}
			return mut, true
		}
	}
	return mutation{}, false
}

// farNode checks that c sits in a straight corridor and returns the cell on
// the far side of the edge opposite c's generation step edge.
func (m *WallMover) farNode(c graph.NodeID) (graph.NodeID, bool) {
	var groundDirs []maze.Direction
	step := graph.EdgeID(-1)
	for _, eid := range maze.EvenEdges(m.g, c) {
		e := m.g.Edge(eid)
		if m.g.Node(e.Other(c)).IsGround() {
			groundDirs = append(groundDirs, e.Weight.Direction)
		}
		if e.Weight.IsNextGenerationStep && step < 0 {
			step = eid
		}
	}
	if len(groundDirs) == 0 || len(groundDirs) > 2 || step < 0 {
		return graph.NilNode, false
	}
	for _, dir := range groundDirs[1:] {
		if dir != groundDirs[0] {
			return graph.NilNode, false
		}
	}

	dir := m.g.Edge(step).Weight.Direction
	for _, eid := range maze.EvenEdges(m.g, c) {
		e := m.g.Edge(eid)
		if eid == step || e.Weight.Direction != dir {
			continue
		}
		far := e.Other(c)
		cell := m.g.Node(far)
		if !cell.IsGround() || cell.IsSpawn || cell.IsExit || cell.IsPortal || cell.IsEdge {
			return graph.NilNode, false
		}
		if m.stage != nil && m.stage.WallAt(far) != nil {
			return graph.NilNode, false
		}
		return far, true
	}
	return graph.NilNode, false
}

// keepsConnected reports whether every Ground cell stays reachable once
// mut is applied.
func (m *WallMover) keepsConnected(mut mutation) bool {
	ground := func(id graph.NodeID) bool {
		switch id {
		case mut.opened:
			return true
		case mut.closed:
			return false
		}
		return m.g.Node(id).IsGround()
	}
	total := maze.CountType(m.g, maze.Ground)

	seen := mapset.New[graph.NodeID]()
	seen.Put(mut.opened)
	queue := []graph.NodeID{mut.opened}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range maze.EvenNeighbors(m.g, cur) {
			if seen.Has(nb) || !ground(nb) {
				continue
			}
			seen.Put(nb)
			queue = append(queue, nb)
		}
	}
	return seen.Size() == total
}

func (m *WallMover) movable(cell graph.NodeID) bool {
	if m.stage == nil {
		return true
	}
	p := m.stage.WallAt(cell)
	return p != nil && p.Movable()
}

func (m *WallMover) apply(mut mutation) {
	closed := m.g.Node(mut.closed)
	closed.SetWall()
	closed.IsDeadEnd = false
	closed.IsPath = false

	opened := m.g.Node(mut.opened)
	opened.SetGround()
	opened.Final = true

	m.g.Node(mut.deadEnd).IsDeadEnd = false
	for _, eid := range maze.EvenEdges(m.g, mut.opened) {
		if e := m.g.Edge(eid); e.Other(mut.opened) == mut.conn {
			e.Weight.IsNextGenerationStep = true
		}
	}
	m.markDeadEnd(mut)

	m.logger.Debug("wall moved", "opened", opened.Name, "closed", closed.Name)
	if m.stage != nil {
		m.startSlide(mut.opened, mut.closed)
	}
}

// markDeadEnd hands the dead-end flag to one Ground neighbour of the opened
// cell other than the old dead end, the one with the fewest Ground
// neighbours.
func (m *WallMover) markDeadEnd(mut mutation) {
	best, bestCount := graph.NilNode, 0
	for _, nb := range maze.EvenNeighbors(m.g, mut.opened) {
		cell := m.g.Node(nb)
		if nb == mut.deadEnd || !cell.IsGround() || cell.IsSpawn || cell.IsExit {
			continue
		}
		if n := maze.GroundNeighbors(m.g, nb); best == graph.NilNode || n < bestCount {
			best, bestCount = nb, n
		}
	}
	if best != graph.NilNode {
		m.g.Node(best).IsDeadEnd = true
	}
}

func (m *WallMover) startSlide(from, to graph.NodeID) {
	prop := m.stage.WallAt(from)
	if prop == nil {
		return
	}
	prop.SetMovable(false)
	placeholder := m.stage.Placeholder(from)
	m.stage.Bind(to, prop)
	m.slides = append(m.slides, &slide{
		prop:        prop,
		placeholder: placeholder,
		from:        m.g.Node(from).World,
		to:          m.g.Node(to).World,
	})
}

// Update advances every running slide by one frame. Finished slides drop
// their placeholder and release the prop.
func (m *WallMover) Update() {
	frames := max(m.SlideFrames, 1)
	live := m.slides[:0]
	for _, s := range m.slides {
		s.frame++
		if s.frame < frames {
			s.prop.SetPosition(maze.Lerp(s.from, s.to, float64(s.frame)/float64(frames)))
			live = append(live, s)
			continue
		}
		s.prop.SetPosition(s.to)
		s.prop.SetMovable(true)
		if s.placeholder != nil {
			m.stage.Discard(s.placeholder)
		}
	}
	clear(m.slides[len(live):])
	m.slides = live
}

// Sliding returns the number of slides in progress.
func (m *WallMover) Sliding() int { return len(m.slides) }
