// Package graph is a small undirected graph container with typed node and
// edge payloads. Node and edge ids are dense and assigned in insertion order,
// so two graphs built by the same loop share their id layout.
package graph

import (
	"errors"
	"fmt"
	"slices"
)

// NodeID identifies a node. Ids start at 0.
type NodeID int

// EdgeID identifies an edge. Ids start at 0.
type EdgeID int

// NilNode is returned where no node applies.
const NilNode NodeID = -1

var (
	ErrNodeNotFound = errors.New("graph: node not found")
	ErrSelfLoop     = errors.New("graph: self loop")
)

// Edge connects A and B and carries a payload.
type Edge[E any] struct {
	A, B   NodeID
	Weight E
}

// Other returns the endpoint of e that is not id.
func (e *Edge[E]) Other(id NodeID) NodeID {
	if e.A == id {
		return e.B
	}
	return e.A
}

// Graph holds nodes of payload N joined by edges of payload E.
type Graph[N, E any] struct {
	nodes []N
	edges []Edge[E]
	adj   [][]EdgeID
}

// New creates an empty Graph.
func New[N, E any]() *Graph[N, E] {
	return &Graph[N, E]{}
}

// AddNode appends a node and returns its id.
func (g *Graph[N, E]) AddNode(payload N) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, payload)
	g.adj = append(g.adj, nil)
	return id
}

// AddEdge joins a and b.
func (g *Graph[N, E]) AddEdge(a, b NodeID, w E) (EdgeID, error) {
	if !g.Has(a) || !g.Has(b) {
		return -1, fmt.Errorf("add edge %d-%d: %w", a, b, ErrNodeNotFound)
	}
	if a == b {
		return -1, fmt.Errorf("add edge %d-%d: %w", a, b, ErrSelfLoop)
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge[E]{A: a, B: b, Weight: w})
	g.adj[a] = append(g.adj[a], id)
	g.adj[b] = append(g.adj[b], id)
	return id, nil
}

// Has reports whether id names a node of g.
func (g *Graph[N, E]) Has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns a pointer to the payload of id. Panics if id is unknown.
func (g *Graph[N, E]) Node(id NodeID) *N {
	return &g.nodes[id]
}

// Edge returns a pointer to edge id. Panics if id is unknown.
func (g *Graph[N, E]) Edge(id EdgeID) *Edge[E] {
	return &g.edges[id]
}

// Len returns the number of nodes.
func (g *Graph[N, E]) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph[N, E]) EdgeCount() int { return len(g.edges) }

// Nodes returns every node id in insertion order.
func (g *Graph[N, E]) Nodes() []NodeID {
	ids := make([]NodeID, len(g.nodes))
	for i := range ids {
		ids[i] = NodeID(i)
	}
	return ids
}

// Edges returns every edge id in insertion order.
func (g *Graph[N, E]) Edges() []EdgeID {
	ids := make([]EdgeID, len(g.edges))
	for i := range ids {
		ids[i] = EdgeID(i)
	}
	return ids
}

// EdgesOf returns the edges touching id in insertion order. The slice is
// owned by the graph and must not be modified.
func (g *Graph[N, E]) EdgesOf(id NodeID) []EdgeID {
	return g.adj[id]
}

// Degree returns the number of edges touching id.
func (g *Graph[N, E]) Degree(id NodeID) int {
	return len(g.adj[id])
}

// Neighbors returns the nodes adjacent to id, one entry per edge.
func (g *Graph[N, E]) Neighbors(id NodeID) []NodeID {
	out := make([]NodeID, 0, len(g.adj[id]))
	for _, eid := range g.adj[id] {
		out = append(out, g.edges[eid].Other(id))
	}
	return out
}

// SortedEdges returns every edge id ordered by cmp on the edge payloads.
// Equal edges keep their insertion order.
func (g *Graph[N, E]) SortedEdges(cmp func(a, b *Edge[E]) int) []EdgeID {
	ids := g.Edges()
	slices.SortStableFunc(ids, func(a, b EdgeID) int {
		return cmp(&g.edges[a], &g.edges[b])
	})
	return ids
}

// Reset drops every node and edge while keeping allocated capacity.
func (g *Graph[N, E]) Reset() {
	clear(g.nodes)
	clear(g.edges)
	g.nodes = g.nodes[:0]
	g.edges = g.edges[:0]
	g.adj = g.adj[:0]
}

// Clone returns a deep copy of the graph structure. Payloads are copied by
// value.
func (g *Graph[N, E]) Clone() *Graph[N, E] {
	c := &Graph[N, E]{
		nodes: slices.Clone(g.nodes),
		edges: slices.Clone(g.edges),
		adj:   make([][]EdgeID, len(g.adj)),
	}
	for i, a := range g.adj {
		c.adj[i] = slices.Clone(a)
	}
	return c
}
