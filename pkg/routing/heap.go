package routing

import "github.com/azybler/waypoint/pkg/graph"

// pqItem is a priority queue entry: cumulative weight plus the vertex it
// belongs to, tie-broken by vertex id for deterministic settlement order.
type pqItem struct {
	vertex graph.VertexID
	weight float32
}

func less(a, b pqItem) bool {
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.vertex < b.vertex
}

// minHeap is a concrete-typed binary min-heap keyed by (weight, vertex id).
type minHeap struct {
	items []pqItem
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(vertex graph.VertexID, weight float32) {
	h.items = append(h.items, pqItem{vertex, weight})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqItem {
	n := len(h.items) - 1
	top := h.items[0]
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *minHeap) Peek() (pqItem, bool) {
	if len(h.items) == 0 {
		return pqItem{}, false
	}
	return h.items[0], true
}

func (h *minHeap) Reset() { h.items = h.items[:0] }

func (h *minHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if !less(item, h.items[parent]) {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && less(h.items[right], h.items[child]) {
			child = right
		}
		if !less(h.items[child], item) {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}
