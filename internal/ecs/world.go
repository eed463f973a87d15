package ecs

import (
	"slices"
	"sync"

	"github.com/zyedidia/generic/mapset"
)

// World holds the entities of one maze layer. It is safe for use from the
// frame loop and the AI loop at the same time.
type World struct {
	mu     sync.RWMutex
	nextID EntityID
	live   mapset.Set[EntityID]
	stores map[ComponentType]map[EntityID]Component
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{
		nextID: 1,
		live:   mapset.New[EntityID](),
		stores: make(map[ComponentType]map[EntityID]Component),
	}
}

// CreateEntity mints a new live entity.
func (w *World) CreateEntity() EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.live.Put(id)
	return id
}

// DestroyEntity drops the entity and all of its components.
func (w *World) DestroyEntity(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.live.Has(id) {
		return
	}
	w.live.Remove(id)
	for _, store := range w.stores {
		delete(store, id)
	}
}

// Alive reports whether id was created and not yet destroyed.
func (w *World) Alive(id EntityID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.live.Has(id)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.live.Size()
}

// Add attaches c to id, replacing a component of the same type. Adding to a
// destroyed entity is a no-op.
func (w *World) Add(id EntityID, c Component) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.live.Has(id) {
		return
	}
	t := c.Type()
	store := w.stores[t]
	if store == nil {
		store = make(map[EntityID]Component)
		w.stores[t] = store
	}
	store[id] = c
}

// Get returns the component of type t on id, or nil.
func (w *World) Get(id EntityID, t ComponentType) Component {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stores[t][id]
}

// Remove detaches the component of type t from id.
func (w *World) Remove(id EntityID, t ComponentType) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.stores[t], id)
}

// Has reports whether id carries a component of type t.
func (w *World) Has(id EntityID, t ComponentType) bool {
	return w.Get(id, t) != nil
}

// Query returns the live entities carrying every listed type, in ascending
// id order.
func (w *World) Query(types ...ComponentType) []EntityID {
	if len(types) == 0 {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	// Scan the smallest store.
	base := slices.MinFunc(types, func(a, b ComponentType) int {
		return len(w.stores[a]) - len(w.stores[b])
	})
	var out []EntityID
	for id := range w.stores[base] {
		if w.matches(id, types) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Count is len(Query(types...)) without the allocation.
func (w *World) Count(types ...ComponentType) int {
	if len(types) == 0 {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for id := range w.stores[types[0]] {
		if w.matches(id, types) {
			n++
		}
	}
	return n
}

func (w *World) matches(id EntityID, types []ComponentType) bool {
	if !w.live.Has(id) {
		return false
	}
	for _, t := range types {
		if _, ok := w.stores[t][id]; !ok {
			return false
		}
	}
	return true
}
