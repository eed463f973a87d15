package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Status is what the HUD shows about the current layer.
type Status struct {
	Layer, Layers int
	Seed          int64
	Theme         string
	Progress      float64 // 0..1
	Message       string  // last progress message
	Mutations     int     // accepted wall moves so far
	Sliding       int
	Wanderers     int
	Log           []string
}

// DrawHUD renders the status bar and message log at the bottom of the screen.
func (r *Renderer) DrawHUD(s Status) {
	_, screenH := r.screen.Size()
	hudY := screenH - HUDRows

	r.drawHLine(hudY, tcell.ColorGray)

	status := fmt.Sprintf("Layer %d/%d  Seed %d  [%s]", s.Layer+1, s.Layers, s.Seed, s.Theme)
	r.drawText(0, hudY+1, status, tcell.StyleDefault.Foreground(tcell.ColorWhite))

	var state string
	if s.Progress < 1 {
		state = fmt.Sprintf("%3.0f%% %s", s.Progress*100, s.Message)
	} else {
		state = fmt.Sprintf("Walls moved: %d  Sliding: %d  Wanderers: %d", s.Mutations, s.Sliding, s.Wanderers)
	}
	r.drawText(0, hudY+2, state, tcell.StyleDefault.Foreground(tcell.ColorLightGreen))

	// Message log (last 2 messages).
	start := max(len(s.Log)-2, 0)
	for i, msg := range s.Log[start:] {
		r.drawText(0, hudY+3+i, msg, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
	}

	r.screen.Show()
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col += max(runewidth.RuneWidth(ch), 1)
	}
}
