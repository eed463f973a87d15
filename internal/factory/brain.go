package factory

import (
	"math/rand"
	"slices"

	"shifting-labyrinth/internal/component"
	"shifting-labyrinth/internal/system"
)

var dirs = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// WanderBrain walks corridors: it keeps its heading until blocked, never
// reverses unless cornered, and turns away from the nearest sensed entity.
// It is only ever driven by one AI goroutine.
type WanderBrain struct {
	grid    system.Grid
	rng     *rand.Rand
	heading int // index into dirs, -1 before the first step
}

func NewWanderBrain(grid system.Grid, rng *rand.Rand) *WanderBrain {
	return &WanderBrain{grid: grid, rng: rng, heading: -1}
}

// Heading returns the last direction moved as (dx, dy).
func (b *WanderBrain) Heading() (dx, dy int, ok bool) {
	if b.heading < 0 {
		return 0, 0, false
	}
	return dirs[b.heading][0], dirs[b.heading][1], true
}

func (b *WanderBrain) Think(tc component.ThinkContext) error {
	x, y := b.grid.GridPos(tc.Body.Vec())
	for _, d := range b.order(tc, x, y) {
		res, _ := system.TryMove(tc.World, b.grid, tc.Self, dirs[d][0], dirs[d][1])
		if res == system.MoveOK {
			b.heading = d
			return nil
		}
	}
	// Boxed in by walls or other wanderers; wait for the next cycle.
	return nil
}

// order ranks the four directions for this cycle.
func (b *WanderBrain) order(tc component.ThinkContext, x, y int) []int {
	var open []int
	for d := range dirs {
		if b.grid.IsWalkable(x+dirs[d][0], y+dirs[d][1]) {
			open = append(open, d)
		}
	}
	b.rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })

	away, hasThreat := b.awayFrom(tc, x, y)
	score := func(d int) int {
		s := 0
		if hasThreat {
			s += 4 * (dirs[d][0]*away[0] + dirs[d][1]*away[1])
		}
		if d == b.heading {
			s += 2
		}
		if b.heading >= 0 && d == (b.heading+2)%4 {
			s -= 3
		}
		return s
	}
	slices.SortStableFunc(open, func(a, c int) int { return score(c) - score(a) })
	return open
}

// awayFrom returns the unit step pointing from the nearest sensed entity
// towards (x, y).
func (b *WanderBrain) awayFrom(tc component.ThinkContext, x, y int) ([2]int, bool) {
	best, found := -1, false
	var away [2]int
	for _, other := range tc.Nearby {
		pc := tc.World.Get(other, component.CPosition)
		if pc == nil {
			continue
		}
		ox, oy := b.grid.GridPos(pc.(component.Position).Vec())
		dx, dy := x-ox, y-oy
		dist := dx*dx + dy*dy
		if found && dist >= best {
			continue
		}
		best, found = dist, true
		away = [2]int{sign(dx), sign(dy)}
	}
	return away, found
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
