package system

import (
	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/maze"
)

// MoveResult describes the outcome of a TryMove call.
type MoveResult uint8

const (
	MoveOK      MoveResult = iota // position updated
	MoveBlocked                   // wall or out-of-bounds
	MoveOccupied                  // a blocking entity stands there
)

// Grid is the walkability view of one maze layer.
type Grid interface {
	IsWalkable(x, y int) bool
	GridPos(v maze.Vec3) (x, y int)
	WorldPos(x, y int) maze.Vec3
}

// TryMove attempts to move entity id by (dx, dy) cells on grid.
// Returns the outcome and, for MoveOccupied, the entity in the way.
func TryMove(w *ecs.World, grid Grid, id ecs.EntityID, dx, dy int) (MoveResult, ecs.EntityID) {
	posComp := w.Get(id, component.CPosition)
	if posComp == nil {
		return MoveBlocked, ecs.NilEntity
	}
	x, y := grid.GridPos(posComp.(component.Position).Vec())
	nx, ny := x+dx, y+dy

	// Check map walkability.
	if !grid.IsWalkable(nx, ny) {
		return MoveBlocked, ecs.NilEntity
	}

	// Check for blocking entities at destination.
	for _, other := range w.Query(component.CTagBlocking, component.CPosition) {
		if other == id {
			continue
		}
		ox, oy := grid.GridPos(w.Get(other, component.CPosition).(component.Position).Vec())
		if ox == nx && oy == ny {
			return MoveOccupied, other
		}
	}

	// Move.
	w.Add(id, component.At(grid.WorldPos(nx, ny)))
	return MoveOK, ecs.NilEntity
}
