package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/export"
	"shifting-labyrinth/internal/maze"
	"shifting-labyrinth/internal/render"
	"shifting-labyrinth/internal/system"
)

// DefaultFrameTime paces the frame loop at roughly 30 frames per second.
const DefaultFrameTime = 33 * time.Millisecond

const maxMessages = 50

// Options configure a viewing Session.
type Options struct {
	Params []Params
	Theme  Theme
	// Tiles picks the glyph set of a layer. Nil uses render.TilesForLayer.
	Tiles func(layer int) render.TileSet

	MutateEvery int // frames between wall mover steps; 0 disables mutation
	SlideFrames int // 0 keeps system.DefaultSlideFrames
	FrameTime   time.Duration
	ExportDir   string
	// SaveLog appends a SessionLog line when Run returns.
	SaveLog bool

	Logger *slog.Logger
}

// layerView is the frame loop's state for one layer. stage and mover stay
// nil until the stack is linked.
type layerView struct {
	stage *render.Stage
	mover *system.WallMover
	moved int

	progress float64 // guarded by Session.mu
	status   string  // guarded by Session.mu
}

// Session drives one terminal: it generates a stack of layers, runs their
// wall movers from the frame loop and draws the selected layer.
type Session struct {
	screen   tcell.Screen
	opts     Options
	logger   *slog.Logger
	stack    *Stack
	renderer *render.Renderer
	views    []*layerView
	current  int
	frame    int
	paused   bool
	help     bool
	exports  int
	started  time.Time

	mu       sync.Mutex
	messages []string
}

// NewSession prepares a session on screen. The screen must already be
// initialised; Run takes care of generation.
func NewSession(screen tcell.Screen, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tiles == nil {
		opts.Tiles = render.TilesForLayer
	}
	if opts.FrameTime <= 0 {
		opts.FrameTime = DefaultFrameTime
	}
	s := &Session{
		screen:   screen,
		opts:     opts,
		logger:   opts.Logger,
		stack:    NewStack(opts.Params, opts.Theme, opts.Logger),
		renderer: render.NewRenderer(screen, opts.Tiles(0)),
	}
	for i, m := range s.stack.Layers {
		v := &layerView{status: "Waiting..."}
		s.views = append(s.views, v)
		layer := i
		m.OnProgress(func(fraction float64, status string) {
			s.mu.Lock()
			v.progress, v.status = fraction, status
			s.mu.Unlock()
			s.addMessage(fmt.Sprintf("Layer %d: %s", layer+1, status))
		})
	}
	return s
}

// Stack returns the layers driven by the session.
func (s *Session) Stack() *Stack { return s.stack }

// Current returns the index of the displayed layer.
func (s *Session) Current() int { return s.current }

// Run generates the stack and runs the frame loop until the viewer quits,
// the screen closes or ctx is cancelled. The caller owns the screen.
func (s *Session) Run(ctx context.Context) error {
	s.started = time.Now()
	defer s.close()

	// Start an async input reader goroutine.
	eventCh := make(chan tcell.Event, 32)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(eventCh)
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventCh <- ev:
			case <-done:
				return
			}
		}
	}()

	s.stack.Generate()
	ticker := time.NewTicker(s.opts.FrameTime)
	defer ticker.Stop()
	s.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventCh:
			if !ok {
				return nil // screen closed / disconnected
			}
			if s.handle(ev) {
				return nil
			}
			s.Draw()
		case <-ticker.C:
			s.Tick()
			s.Draw()
		}
	}
}

// Tick advances the session by one frame: it links the stack once every
// layer has settled, steps the wall movers every MutateEvery frames and
// advances running slides. Walls first move on the frame after linking.
func (s *Session) Tick() {
	s.frame++
	if !s.stack.Linked() {
		if s.stack.Settled() {
			s.attach()
		}
		return
	}
	step := !s.paused && s.opts.MutateEvery > 0 && s.frame%s.opts.MutateEvery == 0
	for i, v := range s.views {
		if v.mover == nil {
			continue
		}
		if step {
			if n := v.mover.Step(); n > 0 {
				v.moved += n
				s.logger.Debug("walls moved", "layer", i, "count", n)
			}
		}
		v.mover.Update()
	}
}

// attach links the stack and binds a stage and a wall mover to every
// finished layer.
func (s *Session) attach() {
	portals := s.stack.Link()
	s.addMessage(fmt.Sprintf("Layers linked by %d portals", portals))
	for i, m := range s.stack.Layers {
		if !m.HasFinished() {
			s.addMessage(fmt.Sprintf("Layer %d failed to generate", i+1))
			continue
		}
		v := s.views[i]
		m.Read(func(g *maze.Graph) { v.stage = render.NewStage(g) })
		v.mover = m.NewWallMover(v.stage)
		if v.mover != nil && s.opts.SlideFrames > 0 {
			v.mover.SlideFrames = s.opts.SlideFrames
		}
	}
}

// handle applies one input event. It returns true when the session should end.
func (s *Session) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
		s.renderer.Resize()
	case *tcell.EventKey:
		if s.help {
			s.help = false
			return false
		}
		action := keyToAction(ev)
		switch action {
		case ActionQuit:
			return true
		case ActionPrevLayer:
			s.current = (s.current - 1 + len(s.views)) % len(s.views)
		case ActionNextLayer:
			s.current = (s.current + 1) % len(s.views)
		case ActionPause:
			s.paused = !s.paused
			if s.paused {
				s.addMessage("Walls frozen")
			} else {
				s.addMessage("Walls moving")
			}
		case ActionExport:
			s.export()
		case ActionHelp:
			s.help = true
		case ActionPanN, ActionPanS, ActionPanE, ActionPanW:
			dx, dy := actionToDelta(action)
			s.renderer.Camera().Pan(dx, dy)
		}
	}
	return false
}

// export writes the displayed layer as a PNG into ExportDir.
func (s *Session) export() {
	m := s.stack.Layers[s.current]
	path := export.LayerPath(s.opts.ExportDir, fmt.Sprintf("labyrinth-%d", m.Seed()), m.Layer(), export.PNG)
	if err := export.WriteFile(path, m.Snapshot()); err != nil {
		s.logger.Error("export layer", "layer", m.Layer(), "error", err)
		s.addMessage(fmt.Sprintf("Export failed: %v", err))
		return
	}
	s.exports++
	s.logger.Info("layer exported", "layer", m.Layer(), "path", path)
	s.addMessage("Saved " + path)
}

// Draw renders the current layer and the HUD.
func (s *Session) Draw() {
	if s.help {
		drawHelp(s.screen)
		return
	}
	m := s.stack.Layers[s.current]
	v := s.views[s.current]
	s.renderer.SetTiles(s.opts.Tiles(s.current))
	s.renderer.DrawFrame(m, v.stage)

	st := render.Status{
		Layer:     s.current,
		Layers:    len(s.views),
		Seed:      m.Seed(),
		Mutations: v.moved,
		Wanderers: m.World().Count(component.CTagWanderer),
	}
	if s.opts.Theme != nil {
		st.Theme = s.opts.Theme.Name()
	}
	if v.mover != nil {
		st.Sliding = v.mover.Sliding()
	}
	s.mu.Lock()
	st.Progress, st.Message = v.progress, v.status
	st.Log = append([]string(nil), s.messages...)
	s.mu.Unlock()
	if m.Failed() {
		st.Progress, st.Message = 0, "Generation failed"
	}
	s.renderer.DrawHUD(st)
}

// Messages returns a copy of the message log.
func (s *Session) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func (s *Session) addMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
}

// Log summarises the session so far.
func (s *Session) Log() SessionLog {
	log := SessionLog{
		Layers:  len(s.views),
		Portals: s.stack.Portals(),
		Frames:  s.frame,
		Exports: s.exports,
		Started: s.started,
	}
	if len(s.stack.Layers) > 0 {
		log.Seed = s.stack.Layers[0].Seed()
	}
	if s.opts.Theme != nil {
		log.Theme = s.opts.Theme.Name()
	}
	for i, v := range s.views {
		log.WallsMoved = append(log.WallsMoved, v.moved)
		if s.stack.Layers[i].Failed() {
			log.Failed = append(log.Failed, i)
		}
	}
	if !s.started.IsZero() {
		log.Duration = time.Since(s.started).Round(time.Second).String()
	}
	return log
}

func (s *Session) close() {
	s.stack.Close()
	if !s.opts.SaveLog {
		return
	}
	if err := saveSessionLog(s.Log()); err != nil {
		s.logger.Warn("save session log", "error", err)
	}
}

// drawHelp shows a keybinding reference overlay. Any key dismisses it.
func drawHelp(screen tcell.Screen) {
	lines := []string{
		"── Layers ────────────────────────────",
		"  [ / ] or PgDn/PgUp  Previous / next",
		"",
		"── View ──────────────────────────────",
		"  Arrow keys / hjkl   Pan",
		"  Space / p           Freeze walls",
		"  e                   Export layer PNG",
		"",
		"── Session ───────────────────────────",
		"  q / Esc             Quit",
		"  ?                   This help",
		"",
		"  [any key to close]",
	}

	header := " Controls "
	width := 42
	hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	bodyStyle := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	screen.Clear()
	sw, sh := screen.Size()
	boxH := len(lines) + 3
	x0 := (sw - width) / 2
	y0 := (sh - boxH) / 2

	for col := x0; col < x0+width; col++ {
		screen.SetContent(col, y0, '─', nil, borderStyle)
		screen.SetContent(col, y0+boxH-1, '─', nil, borderStyle)
	}
	for row := y0; row < y0+boxH; row++ {
		screen.SetContent(x0, row, '│', nil, borderStyle)
		screen.SetContent(x0+width-1, row, '│', nil, borderStyle)
	}
	screen.SetContent(x0, y0, '┌', nil, borderStyle)
	screen.SetContent(x0+width-1, y0, '┐', nil, borderStyle)
	screen.SetContent(x0, y0+boxH-1, '└', nil, borderStyle)
	screen.SetContent(x0+width-1, y0+boxH-1, '┘', nil, borderStyle)

	hx := x0 + (width-len([]rune(header)))/2
	for i, r := range []rune(header) {
		screen.SetContent(hx+i, y0, r, nil, hdrStyle)
	}
	for i, line := range lines {
		x := x0 + 2
		for _, r := range line {
			screen.SetContent(x, y0+1+i, r, nil, bodyStyle)
			x++
		}
	}
	screen.Show()
}
