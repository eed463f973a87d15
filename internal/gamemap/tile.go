package gamemap

// TileKind identifies the type of a map tile.
type TileKind uint8

const (
	TileUndefined TileKind = iota
	TileWall
	TileGround
	TileSpawn
	TileExit
	TilePortal
)

func (k TileKind) String() string {
	switch k {
	case TileWall:
		return "wall"
	case TileGround:
		return "ground"
	case TileSpawn:
		return "spawn"
	case TileExit:
		return "exit"
	case TilePortal:
		return "portal"
	default:
		return "undefined"
	}
}

// Tile is the presentation state of one maze cell.
type Tile struct {
	Kind     TileKind
	Walkable bool
	DeadEnd  bool
	Path     bool // on the spawn→exit path
	Edge     bool // outer ring
}

// MakeWall returns a blocking wall tile.
func MakeWall() Tile {
	return Tile{Kind: TileWall}
}

// MakeGround returns a passable corridor tile.
func MakeGround() Tile {
	return Tile{Kind: TileGround, Walkable: true}
}
