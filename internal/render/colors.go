package render

import "github.com/gdamore/tcell/v2"

// TileSet holds the glyphs used to draw one maze layer. Emoji are rendered
// by the terminal with their own colors, so states get distinct glyphs
// instead of a tint.
type TileSet struct {
	Wall        string
	Ground      string
	Path        string // ground on the spawn→exit path
	Placeholder string // wall cell vacated by a sliding wall
	Sliding     string // wall in motion
	Spawn       string
	Exit        string
	Portal      string
	Background  tcell.Color
}

// DefaultTiles is used when a theme brings no tile set of its own.
var DefaultTiles = TileSet{
	Wall:        "🧱",
	Ground:      "🟫",
	Path:        "🟨",
	Placeholder: "🔲",
	Sliding:     "🪨",
	Spawn:       "🟢",
	Exit:        "🚪",
	Portal:      "🌀",
	Background:  tcell.ColorBlack,
}

// LayerTiles gives each layer of a stack its own look. Index with
// layer % len(LayerTiles).
var LayerTiles = []TileSet{
	DefaultTiles,
	{
		// ice and frost
		Wall:        "🧊",
		Ground:      "⬜",
		Path:        "❄️",
		Placeholder: "🔲",
		Sliding:     "💠",
		Spawn:       "🟢",
		Exit:        "🚪",
		Portal:      "🌀",
		Background:  tcell.ColorBlack,
	},
	{
		// fungal growth, living walls
		Wall:        "🍄",
		Ground:      "🟩",
		Path:        "🌿",
		Placeholder: "🔲",
		Sliding:     "🌱",
		Spawn:       "🟢",
		Exit:        "🚪",
		Portal:      "🌀",
		Background:  tcell.ColorBlack,
	},
	{
		// brass gears
		Wall:        "⚙️",
		Ground:      "🟧",
		Path:        "✨",
		Placeholder: "🔲",
		Sliding:     "🔩",
		Spawn:       "🟢",
		Exit:        "🚪",
		Portal:      "🌀",
		Background:  tcell.ColorBlack,
	},
}

// TilesForLayer returns the tile set of layer, cycling through LayerTiles.
func TilesForLayer(layer int) TileSet {
	if layer < 0 {
		layer = -layer
	}
	return LayerTiles[layer%len(LayerTiles)]
}
