// Package cfg implements a control-flow graph arena: integer-indexed
// nodes and an edge list, never pointer-linked structures, so that a
// function's graph (which may contain cycles) is cheap to reorder and
// requires no reference counting.
package cfg

import "github.com/gridforge/rreil/il"

// NodeIndex indexes into a Graph's Nodes slice.
type NodeIndex int

// Node is either a basic block (by its index in the owning function's
// block list) or an unresolved value — the target of an indirect jump that
// hasn't been resolved to a constant address yet.
type Node struct {
	// IsBlock is true when this node denotes a disassembled basic block.
	IsBlock bool
	// Block is valid iff IsBlock; it is an opaque index into the owning
	// function's BasicBlocks slice, kept here as a plain int so that cfg
	// does not import function.
	Block int
	// Unresolved is valid iff !IsBlock: the still-symbolic jump target.
	Unresolved il.Value
}

// Edge is a CFG transfer from Nodes[From] to Nodes[To], carrying the guard
// under which it's taken.
type Edge struct {
	From, To NodeIndex
	Guard    il.Value
}

// Graph is the arena: a flat node list plus an edge list, addressed only by
// integer index.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// New returns an empty graph.
func New() *Graph { return &Graph{} }

// AddBlockNode appends a basic-block node and returns its index.
func (g *Graph) AddBlockNode(blockIdx int) NodeIndex {
	g.Nodes = append(g.Nodes, Node{IsBlock: true, Block: blockIdx})
	return NodeIndex(len(g.Nodes) - 1)
}

// AddUnresolvedNode appends an unresolved-target node and returns its
// index.
func (g *Graph) AddUnresolvedNode(target il.Value) NodeIndex {
	g.Nodes = append(g.Nodes, Node{IsBlock: false, Unresolved: target})
	return NodeIndex(len(g.Nodes) - 1)
}

// AddEdge records a transfer from -> to under guard.
func (g *Graph) AddEdge(from, to NodeIndex, guard il.Value) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Guard: guard})
}

// Successors returns the edges leaving n, in insertion order.
func (g *Graph) Successors(n NodeIndex) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == n {
			out = append(out, e)
		}
	}
	return out
}

// BlockNodeOf returns the node index whose Block field equals blockIdx, if
// any such block node exists.
func (g *Graph) BlockNodeOf(blockIdx int) (NodeIndex, bool) {
	for i, n := range g.Nodes {
		if n.IsBlock && n.Block == blockIdx {
			return NodeIndex(i), true
		}
	}
	return 0, false
}
