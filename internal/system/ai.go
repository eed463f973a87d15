package system

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/ecs"
)

// ThinkBudget is the soft ceiling for one AI pass.
const ThinkBudget = 64 * time.Millisecond

type commandKind uint8

const (
	cmdRegister commandKind = iota
	cmdUnregister
	cmdSync
)

type command struct {
	kind commandKind
	id   ecs.EntityID
	ack  chan struct{}
}

// AIManager runs a time-boxed think pass over registered entities on one
// dedicated goroutine.
//
// The roster belongs to the loop goroutine while it runs. Register and
// Unregister queue commands that the loop applies at the start of each
// cycle; while stopped they apply at once. Proximity queries read the
// roster published after the last applied batch.
type AIManager struct {
	world  *ecs.World
	logger *slog.Logger

	// Budget is read by Start. Zero means ThinkBudget.
	Budget time.Duration

	mu      sync.Mutex
	pending []command
	roster  []ecs.EntityID
	running bool
	stop    atomic.Bool
	wake    chan struct{}
	done    chan struct{}

	published atomic.Pointer[[]ecs.EntityID]
	cycles    atomic.Uint64
}

// NewAIManager returns a stopped manager bound to world.
func NewAIManager(world *ecs.World, logger *slog.Logger) *AIManager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &AIManager{world: world, logger: logger}
	m.published.Store(&[]ecs.EntityID{})
	return m
}

// Register adds id to the roster. Registering twice is a no-op.
func (m *AIManager) Register(id ecs.EntityID) { m.enqueue(command{kind: cmdRegister, id: id}) }

// Unregister removes id from the roster.
func (m *AIManager) Unregister(id ecs.EntityID) { m.enqueue(command{kind: cmdUnregister, id: id}) }

func (m *AIManager) enqueue(c command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.pending = append(m.pending, c)
		return
	}
	m.roster = apply(m.roster, c)
	m.publish(m.roster)
}

// Sync blocks until every command queued before the call is applied and
// visible to CollectEntitiesNearby. It returns at once while stopped.
func (m *AIManager) Sync(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	ack := make(chan struct{})
	m.pending = append(m.pending, command{kind: cmdSync, ack: ack})
	m.signal()
	m.mu.Unlock()

	// The loop or, after it exits, Stop closes ack.
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Registered returns the published roster in registration order.
func (m *AIManager) Registered() []ecs.EntityID {
	r := *m.published.Load()
	out := make([]ecs.EntityID, len(r))
	copy(out, r)
	return out
}

// Cycles returns the number of completed think passes.
func (m *AIManager) Cycles() uint64 { return m.cycles.Load() }

// Running reports whether the loop goroutine is active.
func (m *AIManager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Start launches the loop goroutine. It is a no-op when already running.
func (m *AIManager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	budget := m.Budget
	if budget <= 0 {
		budget = ThinkBudget
	}
	m.running = true
	m.stop.Store(false)
	m.wake = make(chan struct{}, 1)
	m.done = make(chan struct{})
	roster := m.roster
	m.roster = nil
	go m.loop(roster, budget, m.wake, m.done)
}

// Stop asks the loop to exit at the next cycle boundary and waits for it.
// A pass in progress runs to completion.
func (m *AIManager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.stop.Store(true)
	m.signal()
	done := m.done
	m.mu.Unlock()

	<-done

	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.roster = *m.published.Load()
	m.roster = append([]ecs.EntityID(nil), m.roster...)
	for _, c := range m.pending {
		m.roster = apply(m.roster, c)
	}
	m.pending = nil
	m.publish(m.roster)
}

// signal wakes a sleeping loop without blocking. Callers hold m.mu.
func (m *AIManager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *AIManager) loop(roster []ecs.EntityID, budget time.Duration, wake <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for !m.stop.Load() {
		start := time.Now()
		roster = m.drain(roster)

		timings := m.think(roster)

		elapsed := time.Since(start)
		m.cycles.Add(1)
		if elapsed > budget {
			m.logger.Warn("ai think pass over budget",
				"elapsed", elapsed, "budget", budget, "entities", len(roster))
			for _, t := range timings {
				m.logger.Debug("ai think timing", "entity", t.id, "elapsed", t.elapsed)
			}
			continue
		}

		select {
		case <-time.After(budget - elapsed):
		case <-wake:
		}
	}
	m.drain(roster)
}

// drain applies queued commands to the loop-owned roster, publishes it and
// acknowledges pending Sync calls.
func (m *AIManager) drain(roster []ecs.EntityID) []ecs.EntityID {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()
	if len(batch) == 0 {
		return roster
	}

	next := append([]ecs.EntityID(nil), roster...)
	var acks []chan struct{}
	for _, c := range batch {
		if c.kind == cmdSync {
			acks = append(acks, c.ack)
			continue
		}
		next = apply(next, c)
	}
	m.publish(next)
	for _, ack := range acks {
		close(ack)
	}
	return next
}

func apply(roster []ecs.EntityID, c command) []ecs.EntityID {
	switch c.kind {
	case cmdRegister:
		for _, id := range roster {
			if id == c.id {
				return roster
			}
		}
		return append(roster, c.id)
	case cmdUnregister:
		for i, id := range roster {
			if id == c.id {
				return append(roster[:i:i], roster[i+1:]...)
			}
		}
	case cmdSync:
		close(c.ack)
	}
	return roster
}

func (m *AIManager) publish(roster []ecs.EntityID) {
	snap := make([]ecs.EntityID, len(roster))
	copy(snap, roster)
	m.published.Store(&snap)
}

type entityTiming struct {
	id      ecs.EntityID
	elapsed time.Duration
}

// think runs one pass. Timings are collected only when debug logging is on.
func (m *AIManager) think(roster []ecs.EntityID) []entityTiming {
	detailed := m.logger.Enabled(context.Background(), slog.LevelDebug)
	var timings []entityTiming
	for _, id := range roster {
		bc := m.world.Get(id, component.CBrain)
		if bc == nil {
			continue
		}
		brain := bc.(component.Brain)
		if brain.Thinker == nil {
			continue
		}
		pc := m.world.Get(id, component.CPosition)
		if pc == nil {
			continue
		}
		tc := component.ThinkContext{
			Self:   id,
			Body:   pc.(component.Position),
			World:  m.world,
			Nearby: m.nearby(roster, id, pc.(component.Position), brain.Radius),
		}
		if hc := m.world.Get(id, component.CHealth); hc != nil {
			h := hc.(component.Health)
			tc.Health = &h
		}

		start := time.Now()
		if err := m.thinkOne(brain.Thinker, tc); err != nil {
			m.logger.Warn("entity think failed", "entity", id, "error", err)
		}
		if detailed {
			timings = append(timings, entityTiming{id: id, elapsed: time.Since(start)})
		}
	}
	return timings
}

func (m *AIManager) thinkOne(t component.Thinker, tc component.ThinkContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Think(tc)
}

// CollectEntitiesNearby returns the registered entities whose position lies
// within r of p, boundary included. Entities without a position are skipped.
// It is safe to call from any goroutine.
func (m *AIManager) CollectEntitiesNearby(p component.Position, r float64) []ecs.EntityID {
	return m.nearby(*m.published.Load(), ecs.NilEntity, p, r)
}

func (m *AIManager) nearby(roster []ecs.EntityID, self ecs.EntityID, p component.Position, r float64) []ecs.EntityID {
	if r < 0 || math.IsNaN(r) {
		return nil
	}
	var out []ecs.EntityID
	for _, id := range roster {
		if id == self {
			continue
		}
		pc := m.world.Get(id, component.CPosition)
		if pc == nil {
			continue
		}
		q := pc.(component.Position)
		dx, dy, dz := q.X-p.X, q.Y-p.Y, q.Z-p.Z
		if dx*dx+dy*dy+dz*dz <= r*r {
			out = append(out, id)
		}
	}
	return out
}
