package game

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/ecs"
	"shifting-labyrinth/internal/event"
	"shifting-labyrinth/internal/gamemap"
	"shifting-labyrinth/internal/maze"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger() (*slog.Logger, *syncBuffer) {
	b := &syncBuffer{}
	return slog.New(slog.NewTextHandler(b, &slog.HandlerOptions{Level: slog.LevelDebug})), b
}

// recordingTheme counts its phase calls and optionally fails or populates.
type recordingTheme struct {
	populated, posted atomic.Int32
	populateErr       error
	populate          func(m *Maze) error
}

func (t *recordingTheme) Name() string { return "recording" }

func (t *recordingTheme) Populate(_ context.Context, m *Maze) error {
	t.populated.Add(1)
	if t.populate != nil {
		if err := t.populate(m); err != nil {
			return err
		}
	}
	return t.populateErr
}

func (t *recordingTheme) PostGenerate(context.Context, *Maze) error {
	t.posted.Add(1)
	return nil
}

func params(seed int64) Params {
	return Params{
		Seed:                    seed,
		Width:                   10,
		Height:                  10,
		Scale:                   1,
		Turbulence:              2,
		MaxContinuousPathLength: 20,
		PortalSpawnFactor:       1,
	}
}

// generated builds, generates and waits for a maze.
func generated(t *testing.T, p Params, theme Theme) (*Maze, *syncBuffer) {
	t.Helper()
	logger, logs := testLogger()
	m := NewMaze(p, theme, nil, nil, logger)
	t.Cleanup(m.Destroy)
	m.Init()
	m.Generate()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v\n%s", err, logs.String())
	}
	return m, logs
}

func TestMazeLifecycle(t *testing.T) {
	theme := &recordingTheme{}
	logger, _ := testLogger()
	m := NewMaze(params(1), theme, nil, nil, logger)
	defer m.Destroy()

	type update struct {
		fraction float64
		status   string
	}
	var mu sync.Mutex
	var updates []update
	m.OnProgress(func(f float64, s string) {
		mu.Lock()
		updates = append(updates, update{f, s})
		mu.Unlock()
	})

	if m.IsInitialized() {
		t.Fatal("initialized before Init")
	}
	m.Init()
	if !m.IsInitialized() || m.IsGenerated() {
		t.Fatal("Init flags wrong")
	}
	m.Generate()
	if err := m.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !m.IsGenerated() || !m.IsExitPathCalculated() || !m.HasFinished() || m.Failed() {
		t.Fatal("lifecycle flags not set after Wait")
	}
	if m.AreFeaturesPlaced() {
		t.Fatal("features placed without SpawnFeatures")
	}
	if theme.populated.Load() != 1 || theme.posted.Load() != 1 {
		t.Fatalf("theme phases ran %d/%d times", theme.populated.Load(), theme.posted.Load())
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{MsgGenerating, MsgPopulating, MsgPostHooks, MsgFinished}
	if len(updates) != len(want) {
		t.Fatalf("got %d progress updates, want %d: %v", len(updates), len(want), updates)
	}
	for i, u := range updates {
		if u.status != want[i] {
			t.Errorf("update %d = %q, want %q", i, u.status, want[i])
		}
		if i > 0 && u.fraction <= updates[i-1].fraction {
			t.Errorf("fraction not increasing at %d: %v", i, updates)
		}
	}
	if updates[len(updates)-1].fraction != 1 {
		t.Errorf("final fraction = %v", updates[len(updates)-1].fraction)
	}
}

func TestSnapshotInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m, _ := generated(t, params(seed), nil)
		snap := m.Snapshot()
		if n := snap.Count(gamemap.TileUndefined); n != 0 {
			t.Errorf("seed=%d: %d undefined tiles", seed, n)
		}
		if snap.Count(gamemap.TileSpawn) != 1 || snap.Count(gamemap.TileExit) != 1 {
			t.Errorf("seed=%d: want one spawn and one exit", seed)
		}
		sx, sy, ok := m.Spawn()
		if !ok || !m.IsWalkable(sx, sy) {
			t.Errorf("seed=%d: spawn not walkable", seed)
		}
		if m.PathLength() < 2 {
			t.Errorf("seed=%d: path length %d", seed, m.PathLength())
		}
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	a, _ := generated(t, params(1), nil)
	b, _ := generated(t, params(1), nil)
	sa, sb := a.Snapshot(), b.Snapshot()
	for y := 0; y < sa.Height; y++ {
		for x := 0; x < sa.Width; x++ {
			if sa.At(x, y).Kind != sb.At(x, y).Kind {
				t.Fatalf("tile (%d,%d) differs: %v vs %v", x, y, sa.At(x, y).Kind, sb.At(x, y).Kind)
			}
		}
	}
}

func TestGenerateTwiceWarnsAndChangesNothing(t *testing.T) {
	theme := &recordingTheme{}
	m, logs := generated(t, params(3), theme)
	before := m.Snapshot()

	m.Generate()
	if err := m.Wait(context.Background()); err != nil {
		t.Fatalf("Wait after second Generate: %v", err)
	}
	if !strings.Contains(logs.String(), "maze already generated") {
		t.Fatalf("no warning logged:\n%s", logs.String())
	}
	after := m.Snapshot()
	for y := range before.Tiles {
		for x := range before.Tiles[y] {
			if before.Tiles[y][x] != after.Tiles[y][x] {
				t.Fatalf("tile (%d,%d) changed", x, y)
			}
		}
	}
	if theme.populated.Load() != 1 {
		t.Fatalf("Populate ran %d times", theme.populated.Load())
	}
}

func TestPhasesOutOfOrderAreNoops(t *testing.T) {
	logger, logs := testLogger()
	m := NewMaze(params(1), nil, nil, nil, logger)
	defer m.Destroy()

	m.Generate()
	if err := m.Wait(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Wait = %v, want ErrNotStarted", err)
	}
	if n := m.SpawnFeatures(nil, nil); n != 0 || m.AreFeaturesPlaced() {
		t.Fatal("SpawnFeatures ran before generation")
	}
	if m.NewWallMover(nil) != nil {
		t.Fatal("wall mover handed out before generation")
	}
	m.Init()
	m.Init()

	out := logs.String()
	for _, msg := range []string{"generate before init", "spawn features before exit path", "wall mover requested before maze finished", "maze already initialized"} {
		if !strings.Contains(out, msg) {
			t.Errorf("missing warning %q", msg)
		}
	}
}

func TestTinyGridFailsInit(t *testing.T) {
	p := params(1)
	p.Width = 3
	logger, logs := testLogger()
	m := NewMaze(p, nil, nil, nil, logger)
	defer m.Destroy()
	m.Init()
	if !m.Failed() || m.IsInitialized() {
		t.Fatal("3-wide maze should fail to initialize")
	}
	m.Generate()
	if err := m.Wait(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Wait = %v, want ErrNotStarted", err)
	}
	if !strings.Contains(logs.String(), "maze generation failed") {
		t.Fatalf("failure not logged:\n%s", logs.String())
	}
}

func TestBadTurbulenceFailsGeneration(t *testing.T) {
	p := params(1)
	p.Turbulence = 0
	theme := &recordingTheme{}
	m := NewMaze(p, theme, nil, nil, nil)
	defer m.Destroy()
	m.Init()
	m.Generate()
	if err := m.Wait(context.Background()); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Wait = %v, want ErrGenerationFailed", err)
	}
	if !m.Failed() || m.HasFinished() || theme.populated.Load() != 0 {
		t.Fatal("failed maze must not run later phases")
	}
}

func TestThemeErrorIsLoggedAndMazeFinishes(t *testing.T) {
	theme := &recordingTheme{populateErr: errors.New("no props")}
	m, logs := generated(t, params(2), theme)
	if !m.HasFinished() || m.Failed() {
		t.Fatal("theme failure must not fail the maze")
	}
	if !strings.Contains(logs.String(), "no props") {
		t.Fatalf("hook error not logged:\n%s", logs.String())
	}
}

func TestSpawnFeaturesAcrossLayers(t *testing.T) {
	var layers []*Maze
	for i := 0; i < 3; i++ {
		p := params(int64(10 + i))
		p.Width, p.Height, p.Layer = 21, 21, i
		m, _ := generated(t, p, nil)
		layers = append(layers, m)
	}
	mid := layers[1]
	placed := mid.SpawnFeatures(layers[0], layers[2])
	if !mid.AreFeaturesPlaced() {
		t.Fatal("features flag not set")
	}

	below, above := layers[0].Snapshot(), layers[2].Snapshot()
	snap := mid.Snapshot()
	count := 0
	mid.Read(func(g *maze.Graph) {
		for _, id := range g.Nodes() {
			c := g.Node(id)
			if !c.IsPortal {
				continue
			}
			count++
			if !c.IsDeadEnd || !below.IsWalkable(c.X, c.Y) || !above.IsWalkable(c.X, c.Y) {
				t.Errorf("portal %s violates shaft rule", c.Name)
			}
		}
	})
	if count != placed {
		t.Fatalf("placed=%d but %d portal cells", placed, count)
	}
	if snap.Count(gamemap.TileUndefined) != 0 {
		t.Fatal("undefined tiles after features")
	}
	if n := mid.SpawnFeatures(layers[0], layers[2]); n != 0 {
		t.Fatalf("second SpawnFeatures placed %d", n)
	}
}

func TestAIStartsAfterGenerationAndThinks(t *testing.T) {
	var thinks atomic.Int32
	theme := &recordingTheme{populate: func(m *Maze) error {
		if m.AI().Running() {
			t.Error("AI manager running during population")
		}
		x, y, _ := m.Spawn()
		id := m.World().CreateEntity()
		m.World().Add(id, component.At(m.WorldPos(x, y)))
		m.World().Add(id, component.Brain{Radius: 3, Thinker: countingThinker{&thinks}})
		m.AI().Register(id)
		return nil
	}}
	m, _ := generated(t, params(4), theme)
	if !m.AI().Running() {
		t.Fatal("AI manager not started after generation")
	}
	deadline := time.Now().Add(2 * time.Second)
	for thinks.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("registered entity never thought")
		}
		time.Sleep(time.Millisecond)
	}
	m.Destroy()
	if m.AI().Running() {
		t.Fatal("Destroy left the AI manager running")
	}
}

type countingThinker struct{ n *atomic.Int32 }

func (c countingThinker) Think(component.ThinkContext) error {
	c.n.Add(1)
	return nil
}

func TestWallMoverKeepsGroundCount(t *testing.T) {
	p := params(6)
	p.Width, p.Height = 25, 25
	m, _ := generated(t, p, nil)
	mover := m.NewWallMover(nil)
	if mover == nil {
		t.Fatal("no mover after generation")
	}
	ground := m.Snapshot().Count(gamemap.TileGround)
	special := func(s *gamemap.GameMap) int {
		return s.Count(gamemap.TileSpawn) + s.Count(gamemap.TileExit) + s.Count(gamemap.TilePortal)
	}
	base := special(m.Snapshot())
	for i := 0; i < 100; i++ {
		mover.Step()
		s := m.Snapshot()
		if got := s.Count(gamemap.TileGround) + special(s); got != ground+base {
			t.Fatalf("step %d: walkable cells %d, want %d", i, got, ground+base)
		}
	}
}

func TestSharedPumpStaysRunning(t *testing.T) {
	pump := event.New(nil, 0)
	pump.Start()
	defer pump.Stop()

	var statuses atomic.Int32
	m := NewMaze(params(8), nil, ecs.NewWorld(), pump, nil)
	defer m.Destroy()
	m.OnProgress(func(float64, string) { statuses.Add(1) })
	m.Init()
	m.Generate()
	if err := m.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !pump.Running() {
		t.Fatal("generation stopped a pump it did not start")
	}
	if err := pump.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if statuses.Load() != 4 {
		t.Fatalf("got %d progress updates, want 4", statuses.Load())
	}
}

func TestGridMapping(t *testing.T) {
	p := params(1)
	p.Scale, p.Layer = 2.5, 3
	m := NewMaze(p, nil, nil, nil, nil)
	v := m.WorldPos(4, 7)
	if v != (maze.Vec3{X: 10, Y: 7.5, Z: 17.5}) {
		t.Fatalf("WorldPos = %+v", v)
	}
	if x, y := m.GridPos(v); x != 4 || y != 7 {
		t.Fatalf("GridPos = %d,%d", x, y)
	}
	if m.IsWalkable(4, 7) {
		t.Fatal("uninitialised maze reported walkable cell")
	}
}
