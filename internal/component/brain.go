package component

import "shifting-labyrinth/internal/ecs"

const CBrain ecs.ComponentType = 5

// ThinkContext is handed to a Thinker once per AI cycle. Body and Health
// are copies; write changes back through World.
type ThinkContext struct {
	Self   ecs.EntityID
	Body   Position
	Health *Health // nil when the entity has none
	World  *ecs.World
	Nearby []ecs.EntityID // registered entities within Brain.Radius, Self excluded
}

// Thinker is the per-entity behaviour run by the AI manager.
type Thinker interface {
	Think(ctx ThinkContext) error
}

// Brain marks an entity as thinking.
type Brain struct {
	Thinker Thinker
	Radius  float64 // proximity radius for Nearby, inclusive
}

func (Brain) Type() ecs.ComponentType { return CBrain }
