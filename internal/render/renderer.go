package render

import (
	"slices"

	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/gamemap"
	"shifting-labyrinth/internal/maze"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// HUDRows is the number of screen rows reserved below the map.
const HUDRows = 5

// Layer is the view of one maze layer the renderer draws from.
type Layer interface {
	GridPos(v maze.Vec3) (x, y int)
	Snapshot() *gamemap.GameMap
	World() *ecs.World
}

// Renderer draws maze layers onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	camera *Camera
	tiles  TileSet
}

// NewRenderer creates a Renderer for the given screen.
func NewRenderer(screen tcell.Screen, tiles TileSet) *Renderer {
	w, h := screen.Size()
	return &Renderer{
		screen: screen,
		camera: NewCamera(0, 0, w, max(h-HUDRows, 1)),
		tiles:  tiles,
	}
}

// SetTiles switches the glyph set, e.g. when changing layers.
func (r *Renderer) SetTiles(t TileSet) { r.tiles = t }

// Camera exposes the viewport for panning.
func (r *Renderer) Camera() *Camera { return r.camera }

// Resize adapts the viewport to the current screen size.
func (r *Renderer) Resize() {
	w, h := r.screen.Size()
	r.camera.ViewWidth = w
	r.camera.ViewHeight = max(h-HUDRows, 1)
}

// DrawFrame renders the layer's cells, its wall props and its entities.
// stage may be nil while the layer is still generating.
func (r *Renderer) DrawFrame(layer Layer, stage *Stage) {
	r.screen.Clear()
	gmap := layer.Snapshot()
	r.camera.Fit(gmap.Width, gmap.Height)
	r.drawMap(gmap, stage)
	if stage != nil {
		r.drawProps(layer, stage)
	}
	r.drawEntities(layer)
}

func (r *Renderer) style() tcell.Style {
	return tcell.StyleDefault.Background(r.tiles.Background)
}

func (r *Renderer) drawMap(gmap *gamemap.GameMap, stage *Stage) {
	style := r.style()
	for y := 0; y < gmap.Height; y++ {
		for x := 0; x < gmap.Width; x++ {
			sx, sy, onScreen := r.camera.WorldToScreen(x, y)
			if !onScreen {
				continue
			}
			tile := gmap.At(x, y)
			var glyph string
			switch tile.Kind {
			case gamemap.TileWall:
				// Walls with a prop are drawn where the prop stands.
				if stage != nil && stage.WallAt(maze.Index(gmap.Width, x, y)) != nil {
					continue
				}
				glyph = r.tiles.Wall
			case gamemap.TileGround:
				glyph = r.tiles.Ground
				if tile.Path {
					glyph = r.tiles.Path
				}
			case gamemap.TileSpawn:
				glyph = r.tiles.Spawn
			case gamemap.TileExit:
				glyph = r.tiles.Exit
			case gamemap.TilePortal:
				glyph = r.tiles.Portal
			default:
				continue
			}
			r.putGlyph(sx, sy, glyph, style)
		}
	}
}

func (r *Renderer) drawProps(layer Layer, stage *Stage) {
	style := r.style()
	for _, p := range stage.Props() {
		x, y := layer.GridPos(p.Position())
		sx, sy, onScreen := r.camera.WorldToScreen(x, y)
		if !onScreen {
			continue
		}
		glyph := r.tiles.Wall
		switch {
		case p.IsPlaceholder():
			glyph = r.tiles.Placeholder
		case !p.Movable():
			glyph = r.tiles.Sliding
		}
		r.putGlyph(sx, sy, glyph, style)
	}
}

// renderableEntity holds sorting info for entity rendering.
type renderableEntity struct {
	x, y int
	rend component.Renderable
}

// drawEntities renders all entities with Renderable + Position, ordered by RenderOrder.
func (r *Renderer) drawEntities(layer Layer) {
	w := layer.World()
	if w == nil {
		return
	}
	ids := w.Query(component.CRenderable, component.CPosition)
	entities := make([]renderableEntity, 0, len(ids))
	for _, id := range ids {
		posComp := w.Get(id, component.CPosition)
		rendComp := w.Get(id, component.CRenderable)
		if posComp == nil || rendComp == nil {
			continue
		}
		x, y := layer.GridPos(posComp.(component.Position).Vec())
		entities = append(entities, renderableEntity{x: x, y: y, rend: rendComp.(component.Renderable)})
	}

	// Lower render order is drawn first, i.e. behind.
	slices.SortStableFunc(entities, func(a, b renderableEntity) int {
		return a.rend.RenderOrder - b.rend.RenderOrder
	})

	for _, e := range entities {
		sx, sy, onScreen := r.camera.WorldToScreen(e.x, e.y)
		if !onScreen {
			continue
		}
		style := tcell.StyleDefault.Foreground(e.rend.FGColor).Background(r.tiles.Background)
		r.putGlyph(sx, sy, e.rend.Glyph, style)
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen position (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	mainc := runes[0]
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, mainc, combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}
