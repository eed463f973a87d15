package factory

import (
	"math/rand"

	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/system"

	"github.com/gdamore/tcell/v2"
)

// WandererDef describes one kind of corridor wanderer.
type WandererDef struct {
	Glyph  string
	Color  tcell.Color
	MaxHP  int
	Radius float64 // proximity radius for avoiding other wanderers
}

// NewWanderer creates a wanderer on grid cell (x, y). Its brain walks the
// Ground cells of grid and steers away from wanderers it can sense. rng is
// owned by the brain from here on.
func NewWanderer(w *ecs.World, grid system.Grid, def WandererDef, x, y int, rng *rand.Rand) ecs.EntityID {
	id := w.CreateEntity()
	w.Add(id, component.At(grid.WorldPos(x, y)))
	w.Add(id, component.Health{Current: def.MaxHP, Max: def.MaxHP})
	w.Add(id, component.Renderable{
		Glyph:       def.Glyph,
		FGColor:     def.Color,
		BGColor:     tcell.ColorDefault,
		RenderOrder: 5,
	})
	w.Add(id, component.Brain{Thinker: NewWanderBrain(grid, rng), Radius: def.Radius})
	w.Add(id, component.TagWanderer{})
	w.Add(id, component.TagBlocking{})
	return id
}

// NewMarker creates a static glyph on grid cell (x, y), used for spawn and
// exit markers.
func NewMarker(w *ecs.World, grid system.Grid, glyph string, fg tcell.Color, x, y int) ecs.EntityID {
	id := w.CreateEntity()
	w.Add(id, component.At(grid.WorldPos(x, y)))
	w.Add(id, component.Renderable{
		Glyph:       glyph,
		FGColor:     fg,
		BGColor:     tcell.ColorDefault,
		RenderOrder: 1,
	})
	return id
}
