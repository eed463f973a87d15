package component

import (
	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/maze"
)

const CPosition ecs.ComponentType = 1

// Position is a world-space location. Grid cells sit at integer multiples
// of the maze scale.
type Position struct {
	X, Y, Z float64
}

func (Position) Type() ecs.ComponentType { return CPosition }

// Vec returns p as a maze vector.
func (p Position) Vec() maze.Vec3 { return maze.Vec3{X: p.X, Y: p.Y, Z: p.Z} }

// At returns the Position of v.
func At(v maze.Vec3) Position { return Position{X: v.X, Y: v.Y, Z: v.Z} }
