// Package ecs is the small entity store behind a maze layer's wanderers
// and markers. The AI manager and the renderer read it concurrently.
package ecs

// EntityID identifies an entity within one World. IDs are never reused.
type EntityID uint64

// NilEntity is never handed out by CreateEntity.
const NilEntity EntityID = 0

// ComponentType keys a component store.
type ComponentType uint8

// Component is a data struct attached to an entity.
type Component interface {
	Type() ComponentType
}
