package ch

import (
	"container/heap"
	"log"

	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
)

// maxShortcutsPerNode is the limit on shortcuts a single contraction can
// create. The first vertex that would exceed it stops contraction: that
// vertex and every vertex not yet contracted form an uncontracted "core" at
// the top of the hierarchy rather than stalling preprocessing indefinitely.
const maxShortcutsPerNode = 1000

// adjEntry is an arc in the mutable adjacency lists used during contraction.
type adjEntry struct {
	to      graph.VertexID
	weight  float32
	kind    arcKind
	payload uint32
}

// Contract builds a contraction hierarchy for g under the given profile.
// Every edge is evaluated once via prof.Factor against its interned
// attributes to produce a directed view of the graph (oneway restrictions
// and impassable edges excluded), which is then contracted into forward
// and backward upward overlays plus a shortcut table.
func Contract(g *graph.Graph, reg *profile.Registry, prof profile.Profile) *Graph {
	n := g.NumVertices()
	if n == 0 {
		return &Graph{base: g}
	}

	outAdj := make([][]adjEntry, n)
	inAdj := make([][]adjEntry, n)

	for e := graph.EdgeID(0); e < graph.EdgeID(g.NumEdges()); e++ {
		from, to := g.EdgeEndpoints(e)
		dist, profileID := graph.UnpackEdgeData(g.EdgeData(e))
		factor, dir := prof.Factor(reg.Attributes(profileID))
		if factor <= 0 {
			continue
		}
		weight := float32(dist) * factor

		if dir.Allows(true) {
			outAdj[from] = append(outAdj[from], adjEntry{to: to, weight: weight, kind: arcBaseForward, payload: uint32(e)})
			inAdj[to] = append(inAdj[to], adjEntry{to: from, weight: weight, kind: arcBaseForward, payload: uint32(e)})
		}
		if dir.Allows(false) {
			outAdj[to] = append(outAdj[to], adjEntry{to: from, weight: weight, kind: arcBaseBackward, payload: uint32(e)})
			inAdj[from] = append(inAdj[from], adjEntry{to: to, weight: weight, kind: arcBaseBackward, payload: uint32(e)})
		}
	}

	contracted := make([]bool, n)
	rank := make([]uint32, n)
	contractedNeighbors := make([]int, n)
	level := make([]int, n)

	pq := make(priorityQueue, n)
	for i := uint32(0); i < n; i++ {
		pq[i] = &pqEntry{
			node:     graph.VertexID(i),
			priority: computePriority(outAdj, inAdj, graph.VertexID(i), contracted, 0, 0),
			index:    int(i),
		}
	}
	heap.Init(&pq)

	ws := newWitnessState(n)
	var shortcuts []shortcutDef

	log.Printf("ch: starting contraction of %d vertices", n)

	var totalShortcuts int
	order := uint32(0)
	logInterval := uint32(50000)

	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*pqEntry)
		node := entry.node

		if contracted[node] {
			continue
		}

		newPriority := computePriority(outAdj, inAdj, node, contracted, contractedNeighbors[node], level[node])
		if newPriority > entry.priority && pq.Len() > 0 && newPriority > pq[0].priority {
			entry.priority = newPriority
			heap.Push(&pq, entry)
			continue
		}

		found := findShortcuts(ws, outAdj, inAdj, node, contracted)
		if len(found) > maxShortcutsPerNode {
			log.Printf("ch: stopping contraction, vertex %d would create %d shortcuts (limit %d); %d vertices remain in core",
				node, len(found), maxShortcutsPerNode, n-order)
			break
		}

		contracted[node] = true
		rank[node] = order
		order++
		totalShortcuts += len(found)

		for _, sc := range found {
			idx := uint32(len(shortcuts))
			shortcuts = append(shortcuts, shortcutDef{left: sc.left, right: sc.right})
			outAdj[sc.from] = append(outAdj[sc.from], adjEntry{to: sc.to, weight: sc.weight, kind: arcShortcut, payload: idx})
			inAdj[sc.to] = append(inAdj[sc.to], adjEntry{to: sc.from, weight: sc.weight, kind: arcShortcut, payload: idx})
		}

		for _, e := range outAdj[node] {
			if !contracted[e.to] {
				contractedNeighbors[e.to]++
				if level[node]+1 > level[e.to] {
					level[e.to] = level[node] + 1
				}
			}
		}
		for _, e := range inAdj[node] {
			if !contracted[e.to] {
				contractedNeighbors[e.to]++
				if level[node]+1 > level[e.to] {
					level[e.to] = level[node] + 1
				}
			}
		}

		remaining := n - order
		switch {
		case remaining < 1000:
			logInterval = 100
		case remaining < 10000:
			logInterval = 1000
		case remaining < 100000:
			logInterval = 10000
		default:
			logInterval = 50000
		}
		if order%logInterval == 0 {
			log.Printf("ch: contracted %d/%d vertices, %d shortcuts so far", order, n, totalShortcuts)
		}
	}

	coreSize := uint32(0)
	for i := uint32(0); i < n; i++ {
		if !contracted[i] {
			contracted[i] = true
			rank[i] = order
			order++
			coreSize++
		}
	}

	log.Printf("ch: contraction complete, %d shortcuts created (%.1fx original edges), %d core vertices",
		totalShortcuts, float64(totalShortcuts)/float64(g.NumEdges()), coreSize)

	return buildOverlay(g, outAdj, inAdj, rank, shortcuts)
}

// shortcut is a candidate shortcut arc found while contracting a vertex.
type shortcut struct {
	from, to graph.VertexID
	weight   float32
	left     arcComponent
	right    arcComponent
}

// findShortcuts determines the shortcuts needed to contract node, using a
// batch witness search: one Dijkstra per incoming neighbor instead of one
// per (incoming, outgoing) pair, cutting search count from O(|in|*|out|) to
// O(|in|).
func findShortcuts(ws *witnessState, outAdj, inAdj [][]adjEntry, node graph.VertexID, contracted []bool) []shortcut {
	var incoming, outgoing []adjEntry
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			incoming = append(incoming, e)
		}
	}
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			outgoing = append(outgoing, e)
		}
	}
	if len(incoming) == 0 || len(outgoing) == 0 {
		return nil
	}

	var shortcuts []shortcut

	for _, in := range incoming {
		var maxOut float32
		for _, out := range outgoing {
			if out.to != in.to && out.weight > maxOut {
				maxOut = out.weight
			}
		}
		if maxOut == 0 {
			continue
		}
		maxWeight := in.weight + maxOut

		batchWitnessSearch(ws, outAdj, in.to, node, maxWeight, contracted)

		for _, out := range outgoing {
			if out.to == in.to {
				continue
			}
			scWeight := in.weight + out.weight
			if ws.dist[out.to] > scWeight {
				shortcuts = append(shortcuts, shortcut{
					from:   in.to,
					to:     out.to,
					weight: scWeight,
					left:   arcComponent{kind: in.kind, payload: in.payload},
					right:  arcComponent{kind: out.kind, payload: out.payload},
				})
			}
		}
	}

	return shortcuts
}

// computePriority scores a vertex for contraction ordering (lower
// contracts first): edge difference plus a bias toward vertices with more
// already-contracted neighbors and greater hierarchy depth.
func computePriority(outAdj, inAdj [][]adjEntry, node graph.VertexID, contracted []bool, contractedNeighbors, level int) int {
	activeIn := 0
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			activeIn++
		}
	}
	activeOut := 0
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			activeOut++
		}
	}
	edgeDifference := activeIn*activeOut - (activeIn + activeOut)
	return edgeDifference + 2*contractedNeighbors + level
}

// buildOverlay collects the forward and backward upward arcs implied by the
// final rank assignment and packs them into CSR overlays.
func buildOverlay(orig *graph.Graph, outAdj, inAdj [][]adjEntry, rank []uint32, shortcuts []shortcutDef) *Graph {
	n := orig.NumVertices()

	type csrArc struct {
		from, to graph.VertexID
		weight   float32
		kind     arcKind
		payload  uint32
	}

	var fwdArcs, bwdArcs []csrArc

	for u := graph.VertexID(0); u < graph.VertexID(n); u++ {
		for _, e := range outAdj[u] {
			if rank[u] < rank[e.to] {
				fwdArcs = append(fwdArcs, csrArc{from: u, to: e.to, weight: e.weight, kind: e.kind, payload: e.payload})
			}
		}
		for _, e := range inAdj[u] {
			if rank[u] < rank[e.to] {
				bwdArcs = append(bwdArcs, csrArc{from: u, to: e.to, weight: e.weight, kind: e.kind, payload: e.payload})
			}
		}
	}

	log.Printf("ch: overlay built with %d forward upward arcs, %d backward upward arcs", len(fwdArcs), len(bwdArcs))

	build := func(arcs []csrArc) (firstOut []uint32, head []graph.VertexID, word []uint64) {
		numArcs := uint32(len(arcs))
		firstOut = make([]uint32, n+1)
		head = make([]graph.VertexID, numArcs)
		word = make([]uint64, numArcs)

		for _, a := range arcs {
			firstOut[a.from+1]++
		}
		for i := uint32(1); i <= n; i++ {
			firstOut[i] += firstOut[i-1]
		}

		pos := make([]uint32, n)
		copy(pos, firstOut[:n])
		for _, a := range arcs {
			idx := pos[a.from]
			head[idx] = a.to
			word[idx] = packArc(a.weight, a.kind, a.payload)
			pos[a.from]++
		}
		return
	}

	fwdFirstOut, fwdHead, fwdWord := build(fwdArcs)
	bwdFirstOut, bwdHead, bwdWord := build(bwdArcs)

	return &Graph{
		base:        orig,
		rank:        rank,
		fwdFirstOut: fwdFirstOut,
		fwdHead:     fwdHead,
		fwdWord:     fwdWord,
		bwdFirstOut: bwdFirstOut,
		bwdHead:     bwdHead,
		bwdWord:     bwdWord,
		shortcuts:   shortcuts,
	}
}

// pqEntry is a contraction priority queue entry.
type pqEntry struct {
	node     graph.VertexID
	priority int
	index    int
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	entry := x.(*pqEntry)
	entry.index = len(*pq)
	*pq = append(*pq, entry)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*pq = old[:n-1]
	return entry
}
