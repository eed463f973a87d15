// Package assets holds the built-in maze themes: their tile sets, the
// wanderers they populate a layer with and their flavour text.
package assets

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/gdamore/tcell/v2"

	"shifting-labyrinth/internal/factory"
	"shifting-labyrinth/internal/game"
	"shifting-labyrinth/internal/generate"
	"shifting-labyrinth/internal/maze"
	"shifting-labyrinth/internal/render"
)

// Emoji constants used as wanderer glyphs.
const (
	GlyphCrystalCrawl = "🦀"
	GlyphNeonSpecter  = "👻"
	GlyphThoughtLeech = "🧠"
	GlyphVoidTendril  = "🪱"
	GlyphFractalGolem = "🗿"
	GlyphPrismDrake   = "🐉"
)

// DefaultSpawnClearance keeps wanderers this many cells from the spawn.
const DefaultSpawnClearance = 2

var ErrNoExitPath = errors.New("layer has no exit path")

// Theme is a maze theme. The zero Count populates nothing.
type Theme struct {
	ID        string
	Title     string
	Tiles     render.TileSet
	Roster    []factory.WandererDef
	Lore      []string
	Count     int // wanderers per layer
	Clearance int // 0 means DefaultSpawnClearance
}

var _ game.Theme = Theme{}

func (t Theme) Name() string { return t.ID }

// Populate drops Count wanderers on the layer, preferring dead ends, and
// registers them with the layer's AI manager. Placement is seeded from the
// maze seed and layer, so a stack replays identically.
func (t Theme) Populate(ctx context.Context, m *game.Maze) error {
	if t.Count <= 0 || len(t.Roster) == 0 {
		return nil
	}
	clearance := t.Clearance
	if clearance == 0 {
		clearance = DefaultSpawnClearance
	}
	rng := rand.New(rand.NewSource(m.Seed() + int64(m.Layer())*7919))

	var pts []generate.SpawnPoint
	m.Read(func(g *maze.Graph) {
		pts = generate.Populate(g, &generate.PopulateConfig{Count: t.Count, SpawnClearance: clearance, Rand: rng})
	})
	for i, p := range pts {
		if err := ctx.Err(); err != nil {
			return err
		}
		def := t.Roster[i%len(t.Roster)]
		id := factory.NewWanderer(m.World(), m, def, p.X, p.Y, rand.New(rand.NewSource(rng.Int63())))
		m.AI().Register(id)
	}
	m.Logger().Debug("layer populated", "theme", t.ID, "wanderers", len(pts), "wanted", t.Count)
	return nil
}

// PostGenerate checks the layer can be crossed and logs a line of lore.
func (t Theme) PostGenerate(_ context.Context, m *game.Maze) error {
	if m.PathLength() == 0 {
		return fmt.Errorf("%s: %w", m, ErrNoExitPath)
	}
	if line := t.LoreFor(m.Layer()); line != "" {
		m.Logger().Info("layer ready", "theme", t.ID, "lore", line)
	}
	return nil
}

// LoreFor returns the theme's flavour line for layer.
func (t Theme) LoreFor(layer int) string {
	if len(t.Lore) == 0 {
		return ""
	}
	if layer < 0 {
		layer = -layer
	}
	return t.Lore[layer%len(t.Lore)]
}

// Themes lists the built-in themes.
var Themes = []Theme{
	{
		ID:    "stone",
		Title: "Shifting Stone",
		Tiles: render.DefaultTiles,
		Roster: []factory.WandererDef{
			{Glyph: GlyphCrystalCrawl, Color: tcell.ColorOrange, MaxHP: 8, Radius: 3},
			{Glyph: GlyphNeonSpecter, Color: tcell.ColorTeal, MaxHP: 6, Radius: 4},
		},
		Lore: StoneLore,
	},
	{
		ID:    "ice",
		Title: "Crystalline Labs",
		Tiles: render.LayerTiles[1],
		Roster: []factory.WandererDef{
			{Glyph: GlyphCrystalCrawl, Color: tcell.ColorLightCyan, MaxHP: 8, Radius: 3},
			{Glyph: GlyphPrismDrake, Color: tcell.ColorAqua, MaxHP: 14, Radius: 5},
		},
		Lore: IceLore,
	},
	{
		ID:    "moss",
		Title: "Bioluminescent Warrens",
		Tiles: render.LayerTiles[2],
		Roster: []factory.WandererDef{
			{Glyph: GlyphThoughtLeech, Color: tcell.ColorPink, MaxHP: 10, Radius: 4},
			{Glyph: GlyphVoidTendril, Color: tcell.ColorPurple, MaxHP: 7, Radius: 2},
		},
		Lore: MossLore,
	},
	{
		ID:    "brass",
		Title: "Resonance Engine",
		Tiles: render.LayerTiles[3],
		Roster: []factory.WandererDef{
			{Glyph: GlyphFractalGolem, Color: tcell.ColorGold, MaxHP: 20, Radius: 2},
		},
		Lore: BrassLore,
	},
}

// ThemeByName looks a built-in theme up by ID.
func ThemeByName(id string) (Theme, bool) {
	i := slices.IndexFunc(Themes, func(t Theme) bool { return t.ID == id })
	if i < 0 {
		return Theme{}, false
	}
	return Themes[i], true
}

// ThemeNames returns the IDs of the built-in themes.
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.ID
	}
	return names
}
