package routing

import (
	"context"
	"errors"
	"sync"

	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
)

// ErrCanceled is returned by a search when its context is canceled before
// the search completes.
var ErrCanceled = errors.New("routing: search canceled")

const infWeight = float32(1) << 30

// state is one directed single-source search's working memory: settled
// distances, predecessor chain, and a touched list for a fast reset between
// queries instead of reallocating per call.
type state struct {
	dist    []float32
	predV   []graph.VertexID
	predE   []graph.EdgeID
	touched []graph.VertexID
	heap    minHeap
}

func newState(numVertices uint32) *state {
	s := &state{
		dist:  make([]float32, numVertices),
		predV: make([]graph.VertexID, numVertices),
		predE: make([]graph.EdgeID, numVertices),
	}
	for i := range s.dist {
		s.dist[i] = infWeight
	}
	return s
}

func (s *state) reset() {
	for _, v := range s.touched {
		s.dist[v] = infWeight
	}
	s.touched = s.touched[:0]
	s.heap.Reset()
}

func (s *state) push(v graph.VertexID, d float32, predV graph.VertexID, predE graph.EdgeID) {
	if d >= s.dist[v] {
		return
	}
	if s.dist[v] == infWeight {
		s.touched = append(s.touched, v)
	}
	s.dist[v] = d
	s.predV[v] = predV
	s.predE[v] = predE
	s.heap.Push(v, d)
}

// PlainEngine runs Dijkstra directly over a graph.Graph, evaluating a
// Profile's Factor/Direction per edge at query time. Used for profiles that
// have no contraction hierarchy registered, and for connectivity checks.
type PlainEngine struct {
	g    *graph.Graph
	reg  *profile.Registry
	pool sync.Pool
}

// NewPlainEngine creates an engine bound to a graph and its attribute
// registry.
func NewPlainEngine(g *graph.Graph, reg *profile.Registry) *PlainEngine {
	e := &PlainEngine{g: g, reg: reg}
	e.pool.New = func() any { return newState(g.NumVertices()) }
	return e
}

func (e *PlainEngine) acquire() *state {
	s := e.pool.Get().(*state)
	s.reset()
	return s
}

func (e *PlainEngine) release(s *state) { e.pool.Put(s) }

// relax calls visit for every edge incident to v that prof allows to be
// traversed in the given search direction. forward explores v's outgoing
// edges; !forward explores edges that could have been used to arrive at v
// while searching backward from a target.
func (e *PlainEngine) relax(prof profile.Profile, v graph.VertexID, forward bool, visit func(edgeID graph.EdgeID, other graph.VertexID, weight float32)) {
	start, end := e.g.IncidentEdges(v)
	for i := start; i < end; i++ {
		edgeID := e.g.AdjEdgeAt(i)
		other := e.g.AdjOtherAt(i)
		dist, factor, dir, ok := edgeWeight(e.g, e.reg, prof, edgeID)
		if !ok {
			continue
		}
		from, _ := e.g.EdgeEndpoints(edgeID)
		vIsFrom := from == v
		allowed := dir.Allows(vIsFrom)
		if !forward {
			allowed = dir.Allows(!vIsFrom)
		}
		if !allowed {
			continue
		}
		visit(edgeID, other, float32(dist)*factor)
	}
}

// Connectivity runs a bounded single-direction search from seeds and
// reports whether any vertex beyond maxWeight was reached: the search
// stops as soon as the first popped item exceeds maxWeight.
func (e *PlainEngine) Connectivity(ctx context.Context, prof profile.Profile, seeds []Seed, maxWeight float32, forward bool) (maxReached bool, err error) {
	s := e.acquire()
	defer e.release(s)

	for _, sd := range seeds {
		s.push(sd.Vertex, sd.Weight, graph.NoVertex, graph.NoEdge)
	}

	for s.heap.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return false, ErrCanceled
		}
		item := s.heap.Pop()
		if item.weight > s.dist[item.vertex] {
			continue
		}
		if item.weight > maxWeight {
			return true, nil
		}
		e.relax(prof, item.vertex, forward, func(edgeID graph.EdgeID, other graph.VertexID, weight float32) {
			s.push(other, item.weight+weight, item.vertex, edgeID)
		})
	}
	return false, nil
}
