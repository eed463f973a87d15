package component

import "shifting-labyrinth/internal/ecs"

const (
	CTagWanderer ecs.ComponentType = 8
	CTagBlocking ecs.ComponentType = 9
)

// TagWanderer marks entities that roam the maze corridors.
type TagWanderer struct{}

func (TagWanderer) Type() ecs.ComponentType { return CTagWanderer }

// TagBlocking marks an entity that occupies its cell.
type TagBlocking struct{}

func (TagBlocking) Type() ecs.ComponentType { return CTagBlocking }
