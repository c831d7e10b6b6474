// Package causal builds and analyzes the polarised causal graph of spec
// §4.5: a directed graph over memory addresses, built incrementally from
// an epoch's present writes, whose strongly connected components identify
// the temporal core and whose parity-tagged cycles identify negative
// causal loops.
package causal

import (
	"fmt"

	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// Edge is one causal-graph edge: from an anamnesis source address to a
// present-write destination, tagged negating if the value's derivation
// passed through an odd number of logical negations.
type Edge struct {
	From, To uint16
	Negating bool
}

// Graph is an adjacency map keyed by address; no vertex owns another, so
// cycles in the data never require cycles in Go ownership (spec §9).
type Graph struct {
	// adj[v] lists outgoing edges from v.
	adj map[uint16][]Edge
	// vertices records every address that appears as either endpoint, so
	// isolated single-vertex SCCs are still discoverable.
	vertices map[uint16]struct{}
}

// NewGraph returns an empty causal graph.
func NewGraph() *Graph {
	return &Graph{adj: make(map[uint16][]Edge), vertices: make(map[uint16]struct{})}
}

// AddEdge records one causal dependency from -> to.
func (g *Graph) AddEdge(from, to uint16, negating bool) {
	g.adj[from] = append(g.adj[from], Edge{From: from, To: to, Negating: negating})
	g.vertices[from] = struct{}{}
	g.vertices[to] = struct{}{}
}

// Out returns the outgoing edges of v.
func (g *Graph) Out(v uint16) []Edge {
	return g.adj[v]
}

// Vertices returns every address that participates in the graph.
func (g *Graph) Vertices() []uint16 {
	out := make([]uint16, 0, len(g.vertices))
	for v := range g.vertices {
		out = append(out, v)
	}
	return out
}

// BuildFromWrites constructs a causal graph from one epoch's MemWrite
// events: for each write, one edge per contributing source address, tagged
// by that source's accumulated negation parity (spec §4.5).
func BuildFromWrites(writes []vm.MemWrite) *Graph {
	g := NewGraph()
	for _, w := range writes {
		if len(w.Sources) == 0 {
			// A write with no anamnesis dependency still contributes a
			// vertex (it may still be the target of other cells' edges).
			g.vertices[w.Addr] = struct{}{}
			continue
		}
		for _, src := range w.Sources {
			g.AddEdge(src.Addr, w.Addr, src.Neg)
		}
	}
	return g
}

// String renders the graph as a list of edges, for diagnostics.
func (g *Graph) String() string {
	s := ""
	for _, v := range g.Vertices() {
		for _, e := range g.Out(v) {
			sign := "+"
			if e.Negating {
				sign = "-"
			}
			s += fmt.Sprintf("%d %s-> %d\n", e.From, sign, e.To)
		}
	}
	return s
}
