package routing

import (
	"context"

	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
)

// BidiResult is a completed bidirectional search: the meeting vertex, total
// weight, and the two directional states needed to reconstruct the path.
// Callers must call Release when done with it.
type BidiResult struct {
	Found  bool
	Meet   graph.VertexID
	Weight float32

	fwd, bwd *state
	engine   *PlainEngine
}

// Release returns the underlying search states to the engine's pool.
func (r *BidiResult) Release() {
	if r.engine == nil {
		return
	}
	r.engine.release(r.fwd)
	r.engine.release(r.bwd)
}

// BidirectionalSearch runs a forward search from sourceSeeds and a backward
// search from targetSeeds, interleaved by whichever side has the smaller
// current frontier minimum, stopping once the sum of both sides' minimums
// reaches or exceeds the best known meeting weight.
func (e *PlainEngine) BidirectionalSearch(ctx context.Context, prof profile.Profile, sourceSeeds, targetSeeds []Seed) (*BidiResult, error) {
	fwd := e.acquire()
	bwd := e.acquire()

	for _, sd := range sourceSeeds {
		fwd.push(sd.Vertex, sd.Weight, graph.NoVertex, graph.NoEdge)
	}
	for _, sd := range targetSeeds {
		bwd.push(sd.Vertex, sd.Weight, graph.NoVertex, graph.NoEdge)
	}

	res := &BidiResult{fwd: fwd, bwd: bwd, engine: e}
	mu := infWeight
	var meet graph.VertexID

	for fwd.heap.Len() > 0 || bwd.heap.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, ErrCanceled
		}

		fwdMin, fwdOK := fwd.heap.Peek()
		bwdMin, bwdOK := bwd.heap.Peek()
		if !fwdOK && !bwdOK {
			break
		}
		if fwdOK && bwdOK && fwdMin.weight+bwdMin.weight >= mu {
			break
		}
		if !fwdOK && bwdOK && bwdMin.weight >= mu {
			break
		}
		if !bwdOK && fwdOK && fwdMin.weight >= mu {
			break
		}

		advanceFwd := fwdOK && (!bwdOK || fwdMin.weight <= bwdMin.weight)
		if advanceFwd {
			item := fwd.heap.Pop()
			if item.weight > fwd.dist[item.vertex] {
				continue
			}
			if d := bwd.dist[item.vertex]; d != infWeight && item.weight+d < mu {
				mu = item.weight + d
				meet = item.vertex
			}
			e.relax(prof, item.vertex, true, func(edgeID graph.EdgeID, other graph.VertexID, weight float32) {
				fwd.push(other, item.weight+weight, item.vertex, edgeID)
			})
		} else {
			item := bwd.heap.Pop()
			if item.weight > bwd.dist[item.vertex] {
				continue
			}
			if d := fwd.dist[item.vertex]; d != infWeight && item.weight+d < mu {
				mu = item.weight + d
				meet = item.vertex
			}
			e.relax(prof, item.vertex, false, func(edgeID graph.EdgeID, other graph.VertexID, weight float32) {
				bwd.push(other, item.weight+weight, item.vertex, edgeID)
			})
		}
	}

	if mu == infWeight {
		return res, nil
	}
	res.Found = true
	res.Meet = meet
	res.Weight = mu
	return res, nil
}

// TraceForward walks the forward state's predecessor chain from the meeting
// vertex back to a seed, returning the edges in travel order (seed -> meet).
// predV[v] names the vertex the forward search expanded from to reach v, so
// the walk collects edges meet->seed and must be reversed before return.
func (r *BidiResult) TraceForward(g *graph.Graph) []EdgeTraversal {
	var edges []EdgeTraversal
	v := r.Meet
	for r.fwd.predE[v] != graph.NoEdge {
		e := r.fwd.predE[v]
		u := r.fwd.predV[v]
		from, _ := g.EdgeEndpoints(e)
		edges = append(edges, EdgeTraversal{Edge: e, Forward: from == u})
		v = u
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}

// TraceBackward walks the backward state's predecessor chain from the
// meeting vertex onward to a seed, returning the edges in travel order
// (meet -> target). predV[v] names the next hop toward the target, so this
// chain is already in forward travel order and needs no reversal.
func (r *BidiResult) TraceBackward(g *graph.Graph) []EdgeTraversal {
	var edges []EdgeTraversal
	v := r.Meet
	for r.bwd.predE[v] != graph.NoEdge {
		e := r.bwd.predE[v]
		w := r.bwd.predV[v]
		from, _ := g.EdgeEndpoints(e)
		edges = append(edges, EdgeTraversal{Edge: e, Forward: from == v})
		v = w
	}
	return edges
}

// SeedVertex returns the seed-chain endpoint for the given side, i.e. the
// vertex whose predecessor edge is NoEdge.
func (r *BidiResult) SeedVertex(forward bool) graph.VertexID {
	s := r.bwd
	v := r.Meet
	if forward {
		s = r.fwd
	}
	for s.predE[v] != graph.NoEdge {
		v = s.predV[v]
	}
	return v
}
