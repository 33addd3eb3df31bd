package routing

import (
	"context"
	"sync"

	"github.com/azybler/waypoint/pkg/ch"
	"github.com/azybler/waypoint/pkg/graph"
)

// CHEngine answers queries over a pre-built contraction hierarchy: no
// per-edge profile evaluation at query time, since contraction already
// baked direction and cost into the overlay arcs.
type CHEngine struct {
	chg  *ch.Graph
	pool sync.Pool
}

// NewCHEngine wraps a contraction hierarchy for querying.
func NewCHEngine(chg *ch.Graph) *CHEngine {
	e := &CHEngine{chg: chg}
	e.pool.New = func() any { return newState(chg.NumVertices()) }
	return e
}

func (e *CHEngine) acquire() *state {
	s := e.pool.Get().(*state)
	s.reset()
	return s
}

func (e *CHEngine) release(s *state) { e.pool.Put(s) }

// CHResult is a completed contraction-hierarchy bidirectional search. Each
// state's predE field doubles as the overlay arc index that last relaxed
// that vertex (rather than a base graph.EdgeID), since CH arcs only
// resolve to base edges through ch.Graph.ExpandForward/ExpandBackward.
type CHResult struct {
	Found  bool
	Meet   graph.VertexID
	Weight float32

	fwd, bwd *state
	chg      *ch.Graph
	engine   *CHEngine
}

// Release returns the search states to the engine's pool.
func (r *CHResult) Release() {
	if r.engine == nil {
		return
	}
	r.engine.release(r.fwd)
	r.engine.release(r.bwd)
}

// Search runs the upward-only bidirectional Dijkstra a contraction
// hierarchy enables: both sides only ever relax arcs toward higher rank,
// so the search space shrinks to a fraction of the base graph's.
func (e *CHEngine) Search(ctx context.Context, sourceSeeds, targetSeeds []Seed) (*CHResult, error) {
	fwd := e.acquire()
	bwd := e.acquire()
	res := &CHResult{fwd: fwd, bwd: bwd, chg: e.chg, engine: e}

	for _, sd := range sourceSeeds {
		fwd.push(sd.Vertex, sd.Weight, graph.NoVertex, graph.NoEdge)
	}
	for _, sd := range targetSeeds {
		bwd.push(sd.Vertex, sd.Weight, graph.NoVertex, graph.NoEdge)
	}

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
			start, end := e.chg.ForwardRange(item.vertex)
			for i := start; i < end; i++ {
				other := e.chg.ForwardHead(i)
				fwd.push(other, item.weight+e.chg.ForwardWeight(i), item.vertex, graph.EdgeID(i))
			}
		} else {
			item := bwd.heap.Pop()
			if item.weight > bwd.dist[item.vertex] {
				continue
			}
			if d := fwd.dist[item.vertex]; d != infWeight && item.weight+d < mu {
				mu = item.weight + d
				meet = item.vertex
			}
			start, end := e.chg.BackwardRange(item.vertex)
			for i := start; i < end; i++ {
				other := e.chg.BackwardHead(i)
				bwd.push(other, item.weight+e.chg.BackwardWeight(i), item.vertex, graph.EdgeID(i))
			}
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

// TraceForward expands the meeting vertex's forward predecessor chain into
// base-edge traversals, in seed->meet travel order.
func (r *CHResult) TraceForward() []EdgeTraversal {
	var segments [][]EdgeTraversal
	v := r.Meet
	for r.fwd.predE[v] != graph.NoEdge {
		arc := uint32(r.fwd.predE[v])
		segments = append(segments, fromCH(r.chg.ExpandForward(arc)))
		v = r.fwd.predV[v]
	}
	var out []EdgeTraversal
	for i := len(segments) - 1; i >= 0; i-- {
		out = append(out, segments[i]...)
	}
	return out
}

// TraceBackward expands the meeting vertex's backward predecessor chain
// into base-edge traversals, in meet->target travel order.
func (r *CHResult) TraceBackward() []EdgeTraversal {
	var out []EdgeTraversal
	v := r.Meet
	for r.bwd.predE[v] != graph.NoEdge {
		arc := uint32(r.bwd.predE[v])
		out = append(out, fromCH(r.chg.ExpandBackward(arc))...)
		v = r.bwd.predV[v]
	}
	return out
}

// SeedVertex returns the root of the given side's predecessor tree.
func (r *CHResult) SeedVertex(forward bool) graph.VertexID {
	s := r.bwd
	if forward {
		s = r.fwd
	}
	v := r.Meet
	for s.predE[v] != graph.NoEdge {
		v = s.predV[v]
	}
	return v
}
