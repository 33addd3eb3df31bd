package ch

import (
	"math"

	"github.com/azybler/waypoint/pkg/graph"
)

const (
	maxSettled = 500 // max vertices settled during a witness search
	maxHops    = 5   // max hops from source
)

// witnessHeapItem is an entry in the witness search min-heap.
type witnessHeapItem struct {
	node graph.VertexID
	dist float32
	hops int
}

// witnessHeap is a concrete-typed binary min-heap for witness search.
type witnessHeap struct {
	items []witnessHeapItem
}

func (h *witnessHeap) Len() int { return len(h.items) }

func (h *witnessHeap) Push(node graph.VertexID, dist float32, hops int) {
	h.items = append(h.items, witnessHeapItem{node, dist, hops})
	h.siftUp(len(h.items) - 1)
}

func (h *witnessHeap) Pop() witnessHeapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *witnessHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *witnessHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

func (h *witnessHeap) Reset() {
	h.items = h.items[:0]
}

// witnessState holds reusable state for batch witness searches, avoiding
// per-call allocation via a touched-list fast-reset pattern.
type witnessState struct {
	dist    []float32
	touched []graph.VertexID
	heap    witnessHeap
}

const infDist = float32(math.MaxFloat32)

func newWitnessState(numVertices uint32) *witnessState {
	dist := make([]float32, numVertices)
	for i := range dist {
		dist[i] = infDist
	}
	return &witnessState{
		dist: dist,
		heap: witnessHeap{items: make([]witnessHeapItem, 0, 256)},
	}
}

func (ws *witnessState) reset() {
	for _, n := range ws.touched {
		ws.dist[n] = infDist
	}
	ws.touched = ws.touched[:0]
	ws.heap.Reset()
}

// batchWitnessSearch runs a single Dijkstra from source, excluding the
// vertex currently being contracted, bounded by maxWeight and maxHops. The
// caller then checks ws.dist[target] for each outgoing neighbor of the
// contracted vertex to decide whether a shortcut is needed.
//
// This replaces a witness search per (incoming, outgoing) pair with one
// search per incoming neighbor, cutting search count from O(|in|*|out|) to
// O(|in|).
func batchWitnessSearch(ws *witnessState, outAdj [][]adjEntry, source, excluded graph.VertexID, maxWeight float32, contracted []bool) {
	ws.reset()

	ws.dist[source] = 0
	ws.touched = append(ws.touched, source)
	ws.heap.Push(source, 0, 0)

	settled := 0

	for ws.heap.Len() > 0 {
		cur := ws.heap.Pop()

		if cur.dist > ws.dist[cur.node] {
			continue
		}

		settled++
		if settled >= maxSettled {
			break
		}
		if cur.dist > maxWeight {
			continue
		}
		if cur.hops >= maxHops {
			continue
		}

		for _, e := range outAdj[cur.node] {
			if e.to == excluded || contracted[e.to] {
				continue
			}
			newDist := cur.dist + e.weight
			if newDist > maxWeight {
				continue
			}
			if newDist < ws.dist[e.to] {
				if ws.dist[e.to] == infDist {
					ws.touched = append(ws.touched, e.to)
				}
				ws.dist[e.to] = newDist
				ws.heap.Push(e.to, newDist, cur.hops+1)
			}
		}
	}
}
