// Package export renders a maze layer as one pixel per cell for debugging.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"shifting-labyrinth/internal/gamemap"
)

var ErrUnknownFormat = errors.New("unknown image format")

// Format selects the encoder.
type Format uint8

const (
	PNG Format = iota
	BMP
)

// Fixed state colours.
var (
	ColorUndefined = color.RGBA{0x80, 0x80, 0x80, 0xff}
	ColorWall      = color.RGBA{0x00, 0x00, 0x00, 0xff}
	ColorGround    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ColorSpawn     = color.RGBA{0x00, 0xff, 0x00, 0xff}
	ColorExit      = color.RGBA{0xff, 0x00, 0x00, 0xff}
	ColorPortal    = color.RGBA{0x00, 0x00, 0xff, 0xff}
	ColorDeadEnd   = color.RGBA{0xff, 0xff, 0x00, 0xff}
	ColorPath      = color.RGBA{0x00, 0xff, 0xff, 0xff}
)

// ColorOf returns the palette colour of t. Spawn, exit and portal win over
// the path mark, which wins over the dead-end mark.
func ColorOf(t gamemap.Tile) color.RGBA {
	switch t.Kind {
	case gamemap.TileUndefined:
		return ColorUndefined
	case gamemap.TileWall:
		return ColorWall
	case gamemap.TileSpawn:
		return ColorSpawn
	case gamemap.TileExit:
		return ColorExit
	case gamemap.TilePortal:
		return ColorPortal
	}
	switch {
	case t.Path:
		return ColorPath
	case t.DeadEnd:
		return ColorDeadEnd
	}
	return ColorGround
}

// Image draws m with one pixel per cell.
func Image(m *gamemap.GameMap) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetRGBA(x, y, ColorOf(*m.At(x, y)))
		}
	}
	return img
}

// Encode writes m to w in the given format.
func Encode(w io.Writer, m *gamemap.GameMap, f Format) error {
	img := Image(m)
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("format %d: %w", f, ErrUnknownFormat)
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// WriteFile encodes m into path, choosing the format by extension.
func WriteFile(path string, m *gamemap.GameMap) (err error) {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	if err := Encode(out, m, f); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// LayerPath returns the file name used for one exported layer.
func LayerPath(dir, prefix string, layer int, f Format) string {
	ext := ".png"
	if f == BMP {
		ext = ".bmp"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-layer%d%s", prefix, layer, ext))
}
