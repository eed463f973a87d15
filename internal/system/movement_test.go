package system

import (
	"math"
	"testing"

	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/maze"
)

// boxGrid is a w×h grid with walls on the border and a scale of 2.
type boxGrid struct{ w, h int }

func (g boxGrid) IsWalkable(x, y int) bool { return x > 0 && y > 0 && x < g.w-1 && y < g.h-1 }

func (g boxGrid) GridPos(v maze.Vec3) (int, int) {
	return int(math.Round(v.X / 2)), int(math.Round(v.Z / 2))
}

func (g boxGrid) WorldPos(x, y int) maze.Vec3 { return maze.Vec3{X: float64(x) * 2, Z: float64(y) * 2} }

func setupMoveWorld() (*ecs.World, boxGrid, ecs.EntityID) {
	w := ecs.NewWorld()
	grid := boxGrid{10, 10}
	player := w.CreateEntity()
	w.Add(player, component.At(grid.WorldPos(3, 3)))
	w.Add(player, component.TagBlocking{})
	return w, grid, player
}

func gridPos(w *ecs.World, grid boxGrid, id ecs.EntityID) (int, int) {
	return grid.GridPos(w.Get(id, component.CPosition).(component.Position).Vec())
}

func TestTryMoveSucceeds(t *testing.T) {
	w, grid, player := setupMoveWorld()
	result, _ := TryMove(w, grid, player, 1, 0)
	if result != MoveOK {
		t.Fatalf("expected MoveOK, got %v", result)
	}
	if x, y := gridPos(w, grid, player); x != 4 || y != 3 {
		t.Fatalf("expected position (4,3), got (%d,%d)", x, y)
	}
}

func TestTryMoveBlockedByWall(t *testing.T) {
	w, grid, player := setupMoveWorld()
	// Move up into wall row (y=0).
	w.Add(player, component.At(grid.WorldPos(3, 1)))
	result, _ := TryMove(w, grid, player, 0, -1)
	if result != MoveBlocked {
		t.Fatalf("expected MoveBlocked, got %v", result)
	}
	if _, y := gridPos(w, grid, player); y != 1 {
		t.Fatalf("position should be unchanged, got y=%d", y)
	}
}

func TestTryMoveIntoEntityReturnsOccupied(t *testing.T) {
	w, grid, player := setupMoveWorld()
	other := w.CreateEntity()
	w.Add(other, component.At(grid.WorldPos(4, 3)))
	w.Add(other, component.TagBlocking{})

	result, target := TryMove(w, grid, player, 1, 0)
	if result != MoveOccupied {
		t.Fatalf("expected MoveOccupied, got %v", result)
	}
	if target != other {
		t.Fatalf("expected target=%v, got %v", other, target)
	}
	if x, _ := gridPos(w, grid, player); x != 3 {
		t.Fatalf("player should not have moved, got x=%d", x)
	}
}

func TestTryMoveWithoutPosition(t *testing.T) {
	w, grid, _ := setupMoveWorld()
	ghost := w.CreateEntity()
	if r, _ := TryMove(w, grid, ghost, 1, 0); r != MoveBlocked {
		t.Fatalf("expected MoveBlocked, got %v", r)
	}
}
