// Package ch builds and queries a contraction hierarchy overlay on top of a
// graph.Graph: a vertex ordering plus shortcut edges that let bidirectional
// search explore only upward-ranked arcs.
package ch

import "github.com/azybler/waypoint/pkg/graph"

// shortcutDef records the two constituent arcs a shortcut replaces, so a
// query can expand it back into the original edge sequence without
// searching the overlay CSR for the pieces.
type shortcutDef struct {
	left, right arcComponent
}

type arcComponent struct {
	kind    arcKind
	payload uint32
}

// Graph is a contraction hierarchy built for one profile over one base
// graph.Graph: a rank per vertex plus forward/backward upward CSR overlays.
type Graph struct {
	base *graph.Graph

	rank []uint32

	fwdFirstOut []uint32
	fwdHead     []graph.VertexID
	fwdWord     []uint64

	bwdFirstOut []uint32
	bwdHead     []graph.VertexID
	bwdWord     []uint64

	shortcuts []shortcutDef
}

// NumVertices returns the number of vertices in the base graph.
func (g *Graph) NumVertices() uint32 { return g.base.NumVertices() }

// Base returns the original graph this hierarchy was built over.
func (g *Graph) Base() *graph.Graph { return g.base }

// Rank returns the contraction rank of a vertex: lower ranks were
// contracted earlier, so a query only follows arcs toward higher ranks.
func (g *Graph) Rank(v graph.VertexID) uint32 { return g.rank[v] }

// ForwardRange returns the [start, end) index range into the forward
// overlay for vertex v.
func (g *Graph) ForwardRange(v graph.VertexID) (start, end uint32) {
	return g.fwdFirstOut[v], g.fwdFirstOut[v+1]
}

// BackwardRange returns the [start, end) index range into the backward
// overlay for vertex v.
func (g *Graph) BackwardRange(v graph.VertexID) (start, end uint32) {
	return g.bwdFirstOut[v], g.bwdFirstOut[v+1]
}

// ForwardHead returns the head vertex of the forward overlay arc at index i.
func (g *Graph) ForwardHead(i uint32) graph.VertexID { return g.fwdHead[i] }

// BackwardHead returns the head vertex of the backward overlay arc at index i.
func (g *Graph) BackwardHead(i uint32) graph.VertexID { return g.bwdHead[i] }

// ForwardWeight returns the weight of the forward overlay arc at index i.
func (g *Graph) ForwardWeight(i uint32) float32 {
	w, _, _ := unpackArc(g.fwdWord[i])
	return w
}

// BackwardWeight returns the weight of the backward overlay arc at index i.
func (g *Graph) BackwardWeight(i uint32) float32 {
	w, _, _ := unpackArc(g.bwdWord[i])
	return w
}

// EdgeTraversal names one base-graph edge traversed in a particular
// direction: Forward true means from->to of graph.Graph.EdgeEndpoints,
// false means to->from.
type EdgeTraversal struct {
	Edge    graph.EdgeID
	Forward bool
}

// ExpandForward returns the base-edge sequence, in travel order, that the
// forward overlay arc at index i represents: a single traversal for an
// original edge, or the recursively expanded pair for a shortcut.
func (g *Graph) ExpandForward(i uint32) []EdgeTraversal {
	_, kind, payload := unpackArc(g.fwdWord[i])
	var out []EdgeTraversal
	g.expand(kind, payload, &out)
	return out
}

// ExpandBackward returns the base-edge sequence, in travel order, that the
// backward overlay arc at index i represents.
func (g *Graph) ExpandBackward(i uint32) []EdgeTraversal {
	_, kind, payload := unpackArc(g.bwdWord[i])
	var out []EdgeTraversal
	g.expand(kind, payload, &out)
	return out
}

// expand recursively unfolds a shortcut into its constituent base-edge
// traversals, in travel order. The kind of each component already encodes
// the absolute direction of the underlying edge, so expansion is identical
// regardless of whether the arc came from the forward or backward overlay.
func (g *Graph) expand(kind arcKind, payload uint32, out *[]EdgeTraversal) {
	if kind != arcShortcut {
		*out = append(*out, EdgeTraversal{Edge: graph.EdgeID(payload), Forward: kind == arcBaseForward})
		return
	}
	sc := g.shortcuts[payload]
	g.expand(sc.left.kind, sc.left.payload, out)
	g.expand(sc.right.kind, sc.right.payload, out)
}
