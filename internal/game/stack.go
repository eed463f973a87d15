package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shifting-labyrinth/internal/config"
	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/event"
	"shifting-labyrinth/internal/random"
)

// ParamsFromStack turns a stack description into per-layer maze
// parameters. Layer i is seeded with the stack seed plus i; a zero stack
// seed draws one at random first.
func ParamsFromStack(st *config.Stack) []Params {
	seed := st.Seed
	if seed == 0 {
		seed = random.NewSeed()
	}
	out := make([]Params, len(st.Layers))
	for i, l := range st.Layers {
		out[i] = Params{
			Seed:                    seed + int64(i),
			Width:                   l.Width,
			Height:                  l.Height,
			Scale:                   l.Scale,
			Turbulence:              l.Turbulence,
			MaxContinuousPathLength: l.MaxContinuousPathLength,
			PortalSpawnFactor:       l.PortalSpawnFactor,
			Layer:                   i,
		}
	}
	return out
}

// Stack generates a pile of maze layers concurrently and links them with
// portals once every layer has settled. Each layer gets its own ECS world
// and AI manager; progress events of all layers share one pump.
type Stack struct {
	Layers []*Maze

	pump    *event.Pump
	logger  *slog.Logger
	portals int
	linked  bool
	started bool
	closed  bool
}

// NewStack creates one maze per params entry.
func NewStack(params []Params, theme Theme, logger *slog.Logger) *Stack {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stack{pump: event.New(logger, 0), logger: logger}
	for _, p := range params {
		s.Layers = append(s.Layers, NewMaze(p, theme, ecs.NewWorld(), s.pump, logger))
	}
	return s
}

// Generate initialises every layer and starts their generation goroutines.
// Progress callbacks must be registered on the layers before this call.
func (s *Stack) Generate() {
	if s.started {
		s.logger.Warn("stack already generated")
		return
	}
	s.started = true
	s.pump.Start()
	for _, m := range s.Layers {
		m.Init()
		m.Generate()
	}
}

// Settled reports whether every layer has finished or failed.
func (s *Stack) Settled() bool {
	for _, m := range s.Layers {
		if !m.HasFinished() && !m.Failed() {
			return false
		}
	}
	return true
}

// Wait blocks until every layer has settled, then links the layers. The
// error joins the failures of individual layers.
func (s *Stack) Wait(ctx context.Context) error {
	var errs []error
	for _, m := range s.Layers {
		if err := m.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errs = append(errs, fmt.Errorf("layer %d: %w", m.Layer(), err))
		}
	}
	s.Link()
	return errors.Join(errs...)
}

// Link places portals on every finished layer against its neighbours. It
// runs once; later calls return the portal count of the first.
func (s *Stack) Link() int {
	if s.linked {
		return s.portals
	}
	s.linked = true
	for i, m := range s.Layers {
		if !m.HasFinished() {
			continue
		}
		s.portals += m.SpawnFeatures(s.at(i-1), s.at(i+1))
	}
	s.logger.Info("stack linked", "layers", len(s.Layers), "portals", s.portals)
	return s.portals
}

// Linked reports whether Link has run.
func (s *Stack) Linked() bool { return s.linked }

// Portals returns the number of portals placed by Link.
func (s *Stack) Portals() int { return s.portals }

func (s *Stack) at(i int) *Maze {
	if i < 0 || i >= len(s.Layers) {
		return nil
	}
	return s.Layers[i]
}

// Close destroys every layer and stops the shared pump.
func (s *Stack) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, m := range s.Layers {
		m.Destroy()
	}
	if s.pump.Running() {
		s.pump.Stop()
	}
}
