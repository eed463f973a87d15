package generate

import (
	"errors"
	"fmt"
	"math/rand"

	"shifting-labyrinth/internal/maze"
)

var (
	ErrShapeMismatch = errors.New("layer graphs differ in shape")
	ErrBadFactor     = errors.New("portal spawn factor must be positive")
)

// PlacePortals flags vertical shaft cells on cur. A cell qualifies when it is
// a dead end and the same cell is Ground on every adjacent layer present;
// prev and next may be nil for the top and bottom layers. One candidate in
// factor becomes a portal. It returns the number of portals placed.
func PlacePortals(prev, cur, next *maze.Graph, factor int, rng *rand.Rand) (int, error) {
	if factor <= 0 {
		return 0, fmt.Errorf("place portals: factor %d: %w", factor, ErrBadFactor)
	}
	if rng == nil {
		return 0, fmt.Errorf("place portals: %w", ErrNilRand)
	}
	for _, other := range []*maze.Graph{prev, next} {
		if other != nil && other.Len() != cur.Len() {
			return 0, fmt.Errorf("place portals: %d vs %d cells: %w", other.Len(), cur.Len(), ErrShapeMismatch)
		}
	}

	placed := 0
	for _, id := range cur.Nodes() {
		cell := cur.Node(id)
		if !cell.IsDeadEnd {
			continue
		}
		if prev != nil && !prev.Node(id).IsGround() {
			continue
		}
		if next != nil && !next.Node(id).IsGround() {
			continue
		}
		if rng.Intn(factor) == 0 {
			cell.IsPortal = true
			placed++
		}
	}
	return placed, nil
}
