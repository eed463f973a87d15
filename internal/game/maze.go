package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/event"
	"shifting-labyrinth/internal/gamemap"
	"shifting-labyrinth/internal/generate"
	"shifting-labyrinth/internal/graph"
	"shifting-labyrinth/internal/maze"
	"shifting-labyrinth/internal/random"
	"shifting-labyrinth/internal/system"
	"shifting-labyrinth/internal/telemetry"
)

var (
	ErrNotStarted       = errors.New("generation not started")
	ErrGenerationFailed = errors.New("maze generation failed")
)

// Progress messages, in the order they are reported.
const (
	MsgGenerating = "Generating maze..."
	MsgPopulating = "Adding maze to scene..."
	MsgPostHooks  = "Running post generation hooks..."
	MsgFinished   = "Finished!"
)

// Params are the construction parameters of one maze layer.
type Params struct {
	Seed                    int64 // 0 draws a random seed
	Width, Height           int
	Scale                   float64
	Turbulence              float64
	MaxContinuousPathLength int
	PortalSpawnFactor       int
	Layer                   int
}

// Theme supplies the scene-specific generation phases of a maze.
type Theme interface {
	Name() string
	// Populate adds the theme's entities once the topology is settled.
	Populate(ctx context.Context, m *Maze) error
	// PostGenerate runs after population, before the maze reports finished.
	PostGenerate(ctx context.Context, m *Maze) error
}

// Maze owns one layer's cell graph and sequences its generation phases.
// Phases are one-shot: calling one out of order or twice logs a warning and
// does nothing.
type Maze struct {
	id     uuid.UUID
	params Params
	theme  Theme
	world  *ecs.World
	logger *slog.Logger
	tracer trace.Tracer
	pump   *event.Pump

	// mu guards g and the cells in it once generation has finished.
	mu    sync.RWMutex
	g     *maze.Graph
	rng   *rand.Rand
	spawn graph.NodeID
	exit  graph.NodeID
	path  []graph.NodeID

	ai *system.AIManager

	initialized atomic.Bool
	started     atomic.Bool
	generated   atomic.Bool
	exitPath    atomic.Bool
	features    atomic.Bool
	finished    atomic.Bool
	failed      atomic.Bool
	destroyed   atomic.Bool
	done        chan struct{}

	progressMu sync.Mutex
	onProgress func(float64, string)
}

// NewMaze creates a maze in the constructed state. A nil pump gets a
// private one; a nil world gets a fresh one.
func NewMaze(p Params, theme Theme, world *ecs.World, pump *event.Pump, logger *slog.Logger) *Maze {
	if p.Seed == 0 {
		p.Seed = random.NewSeed()
	}
	if p.Scale == 0 {
		p.Scale = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	if world == nil {
		world = ecs.NewWorld()
	}
	id := uuid.New()
	logger = logger.With("maze", id.String(), "layer", p.Layer)
	if pump == nil {
		pump = event.New(logger, 0)
	}
	return &Maze{
		id:     id,
		params: p,
		theme:  theme,
		world:  world,
		logger: logger,
		tracer: telemetry.Tracer(),
		pump:   pump,
		rng:    rand.New(rand.NewSource(p.Seed)),
		spawn:  graph.NilNode,
		exit:   graph.NilNode,
		done:   make(chan struct{}),
	}
}

func (m *Maze) ID() uuid.UUID              { return m.id }
func (m *Maze) Params() Params             { return m.params }
func (m *Maze) Seed() int64                { return m.params.Seed }
func (m *Maze) Layer() int                 { return m.params.Layer }
func (m *Maze) World() *ecs.World          { return m.world }
func (m *Maze) AI() *system.AIManager      { return m.ai }
func (m *Maze) Logger() *slog.Logger       { return m.logger }
func (m *Maze) IsInitialized() bool        { return m.initialized.Load() }
func (m *Maze) IsGenerated() bool          { return m.generated.Load() }
func (m *Maze) IsExitPathCalculated() bool { return m.exitPath.Load() }
func (m *Maze) AreFeaturesPlaced() bool    { return m.features.Load() }
func (m *Maze) HasFinished() bool          { return m.finished.Load() }

// Failed reports whether a generation fault made the maze unusable.
func (m *Maze) Failed() bool { return m.failed.Load() }

// OnProgress sets the progress listener. It is called on the event pump's
// goroutine with a fraction in [0,1] and a status message.
func (m *Maze) OnProgress(fn func(fraction float64, status string)) {
	m.progressMu.Lock()
	defer m.progressMu.Unlock()
	m.onProgress = fn
}

func (m *Maze) progress(fraction float64, status string) {
	m.progressMu.Lock()
	fn := m.onProgress
	m.progressMu.Unlock()
	m.logger.Info("maze progress", "fraction", fraction, "status", status)
	if fn == nil {
		return
	}
	m.pump.Post(func() { fn(fraction, status) })
}

// Init builds the grid graph and the AI manager bound to this maze.
func (m *Maze) Init() {
	if m.initialized.Load() {
		m.logger.Warn("maze already initialized")
		return
	}
	if m.destroyed.Load() {
		m.logger.Warn("init on destroyed maze")
		return
	}
	_, span := m.tracer.Start(context.Background(), "maze.init", trace.WithAttributes(
		attribute.Int("width", m.params.Width),
		attribute.Int("height", m.params.Height),
		attribute.Int("layer", m.params.Layer),
	))
	defer span.End()

	g, err := generate.BuildGrid(m.params.Width, m.params.Height, m.params.Scale, m.params.Layer, m.rng)
	if err != nil {
		m.fail(span, "build grid", err)
		return
	}
	m.mu.Lock()
	m.g = g
	m.mu.Unlock()
	m.ai = system.NewAIManager(m.world, m.logger)
	m.initialized.Store(true)
}

// Generate carves the maze, computes the exit path and runs the theme
// phases on a dedicated goroutine. Use Wait to block until it is done.
func (m *Maze) Generate() {
	switch {
	case !m.initialized.Load():
		m.logger.Warn("generate before init")
		return
	case m.failed.Load():
		m.logger.Warn("generate on failed maze")
		return
	case m.destroyed.Load():
		m.logger.Warn("generate on destroyed maze")
		return
	}
	if !m.started.CompareAndSwap(false, true) {
		m.logger.Warn("maze already generated")
		return
	}
	go m.run(context.Background())
}

// Wait blocks until the generation goroutine ends.
func (m *Maze) Wait(ctx context.Context) error {
	if !m.started.Load() {
		return ErrNotStarted
	}
	select {
	case <-m.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if m.failed.Load() {
		return ErrGenerationFailed
	}
	return nil
}

func (m *Maze) run(ctx context.Context) {
	defer close(m.done)

	ownPump := !m.pump.Running()
	if ownPump {
		m.pump.Start()
	}
	defer func() {
		if !ownPump {
			return
		}
		if err := m.pump.Flush(ctx); err != nil {
			m.logger.Warn("flush progress events", "error", err)
		}
		m.pump.Stop()
	}()

	ctx, span := m.tracer.Start(ctx, "maze.generate", trace.WithAttributes(
		attribute.String("maze", m.id.String()),
		attribute.Int64("seed", m.params.Seed),
	))
	defer span.End()

	m.progress(0, MsgGenerating)
	if !m.carve(ctx) || !m.calculateExitPath(ctx) {
		return
	}

	m.progress(1.0/3, MsgPopulating)
	m.runHook(ctx, "maze.populate", func(ctx context.Context, t Theme) error { return t.Populate(ctx, m) })

	m.progress(2.0/3, MsgPostHooks)
	m.runHook(ctx, "maze.post_generate", func(ctx context.Context, t Theme) error { return t.PostGenerate(ctx, m) })

	m.finished.Store(true)
	m.ai.Start()
	m.progress(1, MsgFinished)
}

func (m *Maze) carve(ctx context.Context) bool {
	_, span := m.tracer.Start(ctx, "maze.carve")
	defer span.End()

	m.mu.Lock()
	res, err := generate.Carve(m.g, &generate.Config{
		Turbulence:              m.params.Turbulence,
		MaxContinuousPathLength: m.params.MaxContinuousPathLength,
		Rand:                    m.rng,
	})
	if err == nil {
		m.spawn, m.exit = res.Spawn, res.Exit
	}
	m.mu.Unlock()
	if err != nil {
		m.fail(span, "carve", err)
		return false
	}
	span.SetAttributes(attribute.Int("dead_ends", res.DeadEnds), attribute.Int("steps", res.Steps))
	m.generated.Store(true)
	return true
}

func (m *Maze) calculateExitPath(ctx context.Context) bool {
	_, span := m.tracer.Start(ctx, "maze.exit_path")
	defer span.End()

	m.mu.Lock()
	path, err := generate.CalculateExitPath(m.g)
	m.path = path
	m.mu.Unlock()
	if err != nil {
		m.fail(span, "exit path", err)
		return false
	}
	span.SetAttributes(attribute.Int("length", len(path)))
	m.exitPath.Store(true)
	return true
}

// runHook calls one theme phase. Hook failures are logged; the topology
// is already valid, so the maze still finishes.
func (m *Maze) runHook(ctx context.Context, name string, fn func(context.Context, Theme) error) {
	if m.theme == nil {
		m.logger.Warn("no theme set, skipping phase", "phase", name)
		return
	}
	ctx, span := m.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("theme", m.theme.Name())))
	defer span.End()
	if err := fn(ctx, m.theme); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Error("theme phase failed", "phase", name, "theme", m.theme.Name(), "error", err)
	}
}

func (m *Maze) fail(span trace.Span, phase string, err error) {
	m.failed.Store(true)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	m.logger.Error("maze generation failed", "phase", phase, "error", err)
}

// SpawnFeatures places portals against the neighbouring layers. Either
// neighbour may be nil; a neighbour that has not finished generating is
// treated as absent. It returns the number of portals placed.
func (m *Maze) SpawnFeatures(prev, next *Maze) int {
	switch {
	case !m.exitPath.Load():
		m.logger.Warn("spawn features before exit path")
		return 0
	case m.destroyed.Load():
		m.logger.Warn("spawn features on destroyed maze")
		return 0
	}
	if !m.features.CompareAndSwap(false, true) {
		m.logger.Warn("features already placed")
		return 0
	}
	_, span := m.tracer.Start(context.Background(), "maze.spawn_features")
	defer span.End()

	// Neighbours are cloned under their own locks so two layers never hold
	// each other's lock.
	pg, ng := m.neighbourGraph(prev), m.neighbourGraph(next)

	m.mu.Lock()
	placed, err := generate.PlacePortals(pg, m.g, ng, m.params.PortalSpawnFactor, m.rng)
	m.mu.Unlock()
	if err != nil {
		// Bad factors and mismatched shapes are configuration errors.
		m.features.Store(false)
		span.RecordError(err)
		m.logger.Warn("spawn features rejected", "error", err)
		return 0
	}
	span.SetAttributes(attribute.Int("portals", placed))
	m.logger.Info("features placed", "portals", placed)
	return placed
}

func (m *Maze) neighbourGraph(n *Maze) *maze.Graph {
	if n == nil || n == m || !n.IsGenerated() {
		return nil
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.g.Clone()
}

// NewWallMover returns a live mover bound to this maze, or nil when the
// maze has not finished generating.
func (m *Maze) NewWallMover(stage system.Stage) *system.WallMover {
	if !m.finished.Load() {
		m.logger.Warn("wall mover requested before maze finished")
		return nil
	}
	m.mu.Lock()
	rng := rand.New(rand.NewSource(m.rng.Int63()))
	m.mu.Unlock()
	return system.NewWallMover(m.g, &m.mu, stage, rng, m.logger)
}

// Destroy waits for a running generation to end, then stops the AI manager.
func (m *Maze) Destroy() {
	if !m.destroyed.CompareAndSwap(false, true) {
		m.logger.Warn("maze already destroyed")
		return
	}
	if m.started.Load() {
		<-m.done
	}
	if m.ai != nil {
		m.ai.Stop()
	}
}

// Read runs fn with the graph under the read lock. fn must not retain g.
func (m *Maze) Read(fn func(g *maze.Graph)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.g == nil {
		return
	}
	fn(m.g)
}

// Snapshot copies the current cell states into a GameMap.
func (m *Maze) Snapshot() *gamemap.GameMap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.g == nil {
		return gamemap.New(m.params.Width, m.params.Height)
	}
	return gamemap.FromGraph(m.g, m.params.Width, m.params.Height, m.params.Layer)
}

// Spawn returns the grid position of the spawn cell.
func (m *Maze) Spawn() (x, y int, ok bool) { return m.cellPos(m.spawn) }

// Exit returns the grid position of the exit cell.
func (m *Maze) Exit() (x, y int, ok bool) { return m.cellPos(m.exit) }

func (m *Maze) cellPos(id graph.NodeID) (int, int, bool) {
	if !m.generated.Load() || id == graph.NilNode {
		return 0, 0, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.g.Node(id)
	return c.X, c.Y, true
}

// PathLength returns the number of cells on the spawn→exit path.
func (m *Maze) PathLength() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.path)
}

// IsWalkable reports whether grid cell (x, y) is Ground.
func (m *Maze) IsWalkable(x, y int) bool {
	if x < 0 || y < 0 || x >= m.params.Width || y >= m.params.Height {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.g == nil {
		return false
	}
	return m.g.Node(maze.Index(m.params.Width, x, y)).IsGround()
}

// GridPos maps a world position to the nearest grid cell.
func (m *Maze) GridPos(v maze.Vec3) (x, y int) {
	s := m.params.Scale
	return int(math.Round(v.X / s)), int(math.Round(v.Z / s))
}

// WorldPos returns the world position of grid cell (x, y).
func (m *Maze) WorldPos(x, y int) maze.Vec3 {
	s := m.params.Scale
	return maze.Vec3{X: float64(x) * s, Y: float64(m.params.Layer) * s, Z: float64(y) * s}
}

func (m *Maze) String() string {
	return fmt.Sprintf("maze %s layer %d (%dx%d seed %d)", m.id, m.params.Layer, m.params.Width, m.params.Height, m.params.Seed)
}
