package render

import (
	"maps"
	"slices"

	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
	"shifting-labyrinth/internal/system"
)

// WallProp is the drawable wall standing on one cell.
type WallProp struct {
	pos         maze.Vec3
	movable     bool
	placeholder bool
}

func (p *WallProp) Movable() bool           { return p.movable }
func (p *WallProp) SetMovable(v bool)       { p.movable = v }
func (p *WallProp) SetPosition(v maze.Vec3) { p.pos = v }
func (p *WallProp) Position() maze.Vec3     { return p.pos }

// IsPlaceholder reports whether p only fills a cell a wall is leaving.
func (p *WallProp) IsPlaceholder() bool { return p.placeholder }

// Stage binds one WallProp to every wall cell of a layer and lets a
// WallMover slide them around. It is not safe for concurrent use; the
// frame loop owns it.
type Stage struct {
	cells []maze.Vec3 // world position per node id
	props map[graph.NodeID]*WallProp
}

var _ system.Stage = (*Stage)(nil)

// NewStage creates a movable prop on every wall cell of g.
func NewStage(g *maze.Graph) *Stage {
	s := &Stage{
		cells: make([]maze.Vec3, g.Len()),
		props: make(map[graph.NodeID]*WallProp),
	}
	for _, id := range g.Nodes() {
		c := g.Node(id)
		s.cells[id] = c.World
		if c.IsWall() {
			s.props[id] = &WallProp{pos: c.World, movable: true}
		}
	}
	return s
}

func (s *Stage) WallAt(cell graph.NodeID) system.Prop {
	if p, ok := s.props[cell]; ok {
		return p
	}
	return nil
}

func (s *Stage) Bind(cell graph.NodeID, p system.Prop) {
	if wp, ok := p.(*WallProp); ok {
		s.props[cell] = wp
	}
}

func (s *Stage) Placeholder(cell graph.NodeID) system.Prop {
	p := &WallProp{placeholder: true}
	if int(cell) >= 0 && int(cell) < len(s.cells) {
		p.pos = s.cells[cell]
	}
	s.props[cell] = p
	return p
}

func (s *Stage) Discard(p system.Prop) {
	maps.DeleteFunc(s.props, func(_ graph.NodeID, wp *WallProp) bool { return system.Prop(wp) == p })
}

// Props returns the bound props ordered by cell.
func (s *Stage) Props() []*WallProp {
	out := make([]*WallProp, 0, len(s.props))
	for _, id := range slices.Sorted(maps.Keys(s.props)) {
		out = append(out, s.props[id])
	}
	return out
}

// Len returns the number of bound props.
func (s *Stage) Len() int { return len(s.props) }
