// Package depgraph holds the resolved dependency graph of a Cargo workspace.
//
// A [Graph] is a plain directed graph whose node IDs are opaque package ids
// (see package crate for their grammar). Node and edge order follow
// insertion order so that everything derived from a graph is deterministic.
// A subset of nodes is marked as workspace members.
//
// Graphs are produced by a metadata provider (`cargo metadata` or a
// Cargo.lock reader) and consumed read-only by package workspace.
package depgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] and
	// [Graph.AddMember] when the node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Node is one resolved package.
type Node struct {
	ID string // Package id, unique within the graph

	// ManifestPath is the Cargo.toml of the package on disk, when known.
	// Registry dependencies live under <cargo home>/registry/src/..., which
	// is how the local registry root is detected.
	ManifestPath string
}

// Graph is a dependency graph with workspace members.
//
// The zero value is not usable; use New. Graph is not safe for concurrent
// mutation, but concurrent reads of a fully built graph are fine.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	outgoing map[string][]string
	members  []string
	isMember map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		isMember: make(map[string]bool),
	}
}

// AddNode adds a node.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge records that from depends on to. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(g.outgoing[from], to) {
		return nil
	}
	g.outgoing[from] = append(g.outgoing[from], to)
	return nil
}

// AddMember marks an existing node as a workspace member.
func (g *Graph) AddMember(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return ErrUnknownSourceNode
	}
	if g.isMember[id] {
		return nil
	}
	g.isMember[id] = true
	g.members = append(g.members, id)
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Dependencies returns the IDs id depends on, in insertion order.
func (g *Graph) Dependencies(id string) []string {
	return slices.Clone(g.outgoing[id])
}

// Members returns the workspace member IDs in insertion order.
func (g *Graph) Members() []string {
	return slices.Clone(g.members)
}

// IsMember reports whether id is a workspace member.
func (g *Graph) IsMember(id string) bool { return g.isMember[id] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	var n int
	for _, deps := range g.outgoing {
		n += len(deps)
	}
	return n
}
