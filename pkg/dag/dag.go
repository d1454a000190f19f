// Package dag implements a small directed acyclic graph used to model
// manifest dependency relationships.
//
// Graphs are built by adding nodes and then edges between them. Node IDs
// must be unique and non-empty. Edges may only reference existing nodes.
// Cycles are rejected by [DAG.Validate], which callers should run after
// construction when the input is untrusted.
package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] and [DAG.RenameNode] when
	// the node ID is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] and [DAG.RenameNode] when
	// a node with the same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist, or by [DAG.RenameNode] when the old ID is not found.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil - they are automatically initialized to empty
// maps when needed.
type Metadata map[string]any

// Node represents a vertex in the dependency graph.
type Node struct {
	ID   string   // Unique identifier (also used as display label)
	Meta Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge represents a directed connection between two nodes.
type Edge struct {
	From string // Source node ID
	To   string // Target node ID
}

// DAG is a directed acyclic graph with string-identified nodes.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists. The node's Meta field is
// automatically initialized to an empty map if nil.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.nodes[n.ID] = &n
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if either endpoint
// does not exist. Duplicate edges are silently ignored.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return nil
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID, if it exists.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (d *DAG) Nodes() []*Node {
	ids := slices.Sorted(maps.Keys(d.nodes))
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = d.nodes[id]
	}
	return out
}

// Edges returns all edges in insertion order.
func (d *DAG) Edges() []Edge {
	return slices.Clone(d.edges)
}

// Children returns the IDs of nodes directly reachable from id.
func (d *DAG) Children(id string) []string {
	return slices.Clone(d.outgoing[id])
}

// Parents returns the IDs of nodes with an edge into id.
func (d *DAG) Parents(id string) []string {
	return slices.Clone(d.incoming[id])
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// RenameNode changes a node's ID, updating all edges that reference it.
// Returns ErrInvalidNodeID if newID is empty, ErrUnknownSourceNode if oldID
// does not exist, or ErrDuplicateNodeID if newID is already taken.
func (d *DAG) RenameNode(oldID, newID string) error {
	if newID == "" {
		return ErrInvalidNodeID
	}
	n, ok := d.nodes[oldID]
	if !ok {
		return ErrUnknownSourceNode
	}
	if oldID == newID {
		return nil
	}
	if _, exists := d.nodes[newID]; exists {
		return ErrDuplicateNodeID
	}

	delete(d.nodes, oldID)
	n.ID = newID
	d.nodes[newID] = n

	for i := range d.edges {
		if d.edges[i].From == oldID {
			d.edges[i].From = newID
		}
		if d.edges[i].To == oldID {
			d.edges[i].To = newID
		}
	}
	renameAdjacency(d.outgoing, oldID, newID)
	renameAdjacency(d.incoming, oldID, newID)
	return nil
}

func renameAdjacency(adj map[string][]string, oldID, newID string) {
	if ids, ok := adj[oldID]; ok {
		adj[newID] = ids
		delete(adj, oldID)
	}
	for _, ids := range adj {
		for i, id := range ids {
			if id == oldID {
				ids[i] = newID
			}
		}
	}
}

// Validate checks graph integrity, returning ErrGraphHasCycle if the graph
// contains a cycle.
func (d *DAG) Validate() error {
	const (
		white = iota // unvisited
		gray         // on the current DFS path
		black        // fully explored
	)
	color := make(map[string]int, len(d.nodes))

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case gray:
				return ErrGraphHasCycle
			case white:
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for id := range d.nodes {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Roots returns the IDs of nodes with no incoming edges, sorted.
func (d *DAG) Roots() []string {
	var roots []string
	for id := range d.nodes {
		if len(d.incoming[id]) == 0 {
			roots = append(roots, id)
		}
	}
	slices.Sort(roots)
	return roots
}
