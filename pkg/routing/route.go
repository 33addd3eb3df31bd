package routing

import (
	"errors"

	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
	"github.com/azybler/waypoint/pkg/resolver"
)

// ErrInvariantViolation marks a corrupt or inconsistent route assembly: an
// edge traversal sequence whose endpoints don't chain together. Indicates a
// bug in the search or CH unpacking, not a property of the query.
var ErrInvariantViolation = errors.New("routing: edge sequence does not chain")

// Segment is one traversed edge (or partial edge) in a built route.
type Segment struct {
	Edge           graph.EdgeID
	Forward        bool
	DistanceMeters float64
	Weight         float64
	Attributes     profile.AttributeSet
}

// Route is a complete path between two RouterPoints.
type Route struct {
	Shape          []graph.LatLng
	DistanceMeters float64
	Weight         float64
	Segments       []Segment
}

// endpointOffset returns the [0,1] offset of vertex v along edge e, given
// e's own endpoints: 0 if v is the from-endpoint, 1 if it is the to-endpoint.
func endpointOffset(g *graph.Graph, e graph.EdgeID, v graph.VertexID) float64 {
	from, _ := g.EdgeEndpoints(e)
	if v == from {
		return 0
	}
	return 1
}

// BuildRoute assembles a Route from an interior edge sequence (already
// reconstructed by a search engine between the origin and target seed
// vertices) plus the two partial edges at either end. originVertex and
// targetVertex are the seed vertices SourceFrontier/TargetFrontier chose,
// i.e. the two ends of the interior path.
func BuildRoute(g *graph.Graph, reg *profile.Registry, prof profile.Profile, origin, target resolver.RouterPoint, interior []EdgeTraversal, originVertex, targetVertex graph.VertexID) (Route, error) {
	var full []EdgeTraversal

	originOffset := endpointOffset(g, origin.Edge, originVertex)
	full = append(full, EdgeTraversal{Edge: origin.Edge, Forward: originOffset > origin.Offset})
	full = append(full, interior...)
	targetOffset := endpointOffset(g, target.Edge, targetVertex)
	full = append(full, EdgeTraversal{Edge: target.Edge, Forward: targetOffset < target.Offset})

	return assembleRoute(g, reg, prof, full, origin, target, originVertex, targetVertex)
}

// sameEdgeRoute handles the case where origin and target resolve onto the
// same edge: a direct partial traversal with no search at all, provided the
// profile's direction allows traveling from origin's offset to target's.
// Returns ok=false when direction forbids the direct move, so the caller
// falls back to the general search (e.g. a oneway street requiring a loop
// back around).
func sameEdgeRoute(g *graph.Graph, reg *profile.Registry, prof profile.Profile, origin, target resolver.RouterPoint) (Route, bool) {
	if origin.Edge != target.Edge {
		return Route{}, false
	}
	dist, factor, dir, ok := edgeWeight(g, reg, prof, origin.Edge)
	if !ok {
		return Route{}, false
	}
	forward := target.Offset >= origin.Offset
	if !dir.Allows(forward) {
		return Route{}, false
	}

	ratio := target.Offset - origin.Offset
	if !forward {
		ratio = origin.Offset - target.Offset
	}
	segDist := dist * ratio
	_, profileID := graph.UnpackEdgeData(g.EdgeData(origin.Edge))
	attrs := reg.Attributes(profileID)

	return Route{
		Shape:          []graph.LatLng{origin.Coord, target.Coord},
		DistanceMeters: segDist,
		Weight:         float64(factor) * segDist,
		Segments: []Segment{{
			Edge:           origin.Edge,
			Forward:        forward,
			DistanceMeters: segDist,
			Weight:         float64(factor) * segDist,
			Attributes:     attrs,
		}},
	}, true
}

// TryDirectRoute attempts the same-edge special case; callers fall back to
// a full search when it reports ok=false.
func TryDirectRoute(g *graph.Graph, reg *profile.Registry, prof profile.Profile, origin, target resolver.RouterPoint) (Route, bool) {
	return sameEdgeRoute(g, reg, prof, origin, target)
}

// assembleRoute walks a full edge-traversal sequence (partial origin edge,
// interior edges, partial target edge), validates that consecutive edges
// share an endpoint, and accumulates distance, weight, attributes and
// shape. The two boundary edges are sliced to their partial length using a
// straight chord to the resolved coordinate rather than the edge's full
// shape, since only the interior edges are traveled in full.
func assembleRoute(g *graph.Graph, reg *profile.Registry, prof profile.Profile, full []EdgeTraversal, origin, target resolver.RouterPoint, originVertex, targetVertex graph.VertexID) (Route, error) {
	if err := validateChain(g, full); err != nil {
		return Route{}, err
	}

	route := Route{Segments: make([]Segment, 0, len(full))}

	for idx, t := range full {
		dist, profileID := graph.UnpackEdgeData(g.EdgeData(t.Edge))
		attrs := reg.Attributes(profileID)
		factor, dir := prof.Factor(attrs)
		if factor <= 0 || !dir.Allows(t.Forward) {
			return Route{}, ErrInvariantViolation
		}

		segDist := dist
		var shape []graph.LatLng
		switch idx {
		case 0:
			segDist = dist * partialRatio(g, t.Edge, origin, originVertex, t.Forward)
			shape = []graph.LatLng{origin.Coord, g.VertexCoord(originVertex)}
		case len(full) - 1:
			segDist = dist * partialRatio(g, t.Edge, target, targetVertex, !t.Forward)
			shape = []graph.LatLng{g.VertexCoord(targetVertex), target.Coord}
		default:
			shape = g.FullPolyline(t.Edge)
			if !t.Forward {
				reverseShape(shape)
			}
		}

		route.Segments = append(route.Segments, Segment{
			Edge:           t.Edge,
			Forward:        t.Forward,
			DistanceMeters: segDist,
			Weight:         float64(factor) * segDist,
			Attributes:     attrs,
		})
		route.DistanceMeters += segDist
		route.Weight += float64(factor) * segDist

		if len(route.Shape) > 0 && len(shape) > 0 {
			shape = shape[1:]
		}
		route.Shape = append(route.Shape, shape...)
	}

	return route, nil
}

// partialRatio computes how much of an edge's full length the partial
// boundary segment between a RouterPoint and the interior path's seed
// vertex covers.
func partialRatio(g *graph.Graph, e graph.EdgeID, rp resolver.RouterPoint, vertex graph.VertexID, towardVertex bool) float64 {
	vOffset := endpointOffset(g, e, vertex)
	if towardVertex {
		return vOffset - rp.Offset
	}
	return rp.Offset - vOffset
}

// validateChain confirms each edge's end vertex matches the next edge's
// start vertex, catching a corrupt CH unpacking or mismatched frontier
// seeding before it produces a route that silently teleports.
func validateChain(g *graph.Graph, full []EdgeTraversal) error {
	endVertex := func(t EdgeTraversal) graph.VertexID {
		from, to := g.EdgeEndpoints(t.Edge)
		if t.Forward {
			return to
		}
		return from
	}
	startVertex := func(t EdgeTraversal) graph.VertexID {
		from, to := g.EdgeEndpoints(t.Edge)
		if t.Forward {
			return from
		}
		return to
	}
	for i := 1; i < len(full); i++ {
		if endVertex(full[i-1]) != startVertex(full[i]) {
			return ErrInvariantViolation
		}
	}
	return nil
}

func reverseShape(s []graph.LatLng) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
