// Package resolver locates the nearest traversable edge to a geographic
// coordinate and projects the query point onto it.
package resolver

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"github.com/azybler/waypoint/pkg/geo"
	"github.com/azybler/waypoint/pkg/graph"
)

// ErrNoCandidate is returned when no edge inside the search window passes
// the predicate, or none is within the maximum snap distance.
var ErrNoCandidate = errors.New("resolver: no traversable edge within range")

// RouterPoint is a resolved position on the road network: an edge id, an
// offset in [0, 1] along that edge's from->to orientation, and the
// projected coordinate.
type RouterPoint struct {
	Edge   graph.EdgeID
	Offset float64
	Coord  graph.LatLng
}

// Predicate reports whether an edge qualifies as a resolution candidate.
// Built by the router package from the requested profiles so this package
// stays free of any profile-registry dependency.
type Predicate func(e graph.EdgeID) bool

// Resolver finds the nearest qualifying edge to a coordinate.
type Resolver interface {
	Resolve(lat, lon float64, pred Predicate) (RouterPoint, error)
}

// DefaultResolver is the nearest-edge resolver: a spatial index over edge
// bounding boxes, a square search window, and deterministic tie-breaking.
type DefaultResolver struct {
	g                   *graph.Graph
	tree                rtree.RTreeG[graph.EdgeID]
	searchOffsetDegrees float64
	maxDistanceMeters   float64
}

// NewDefaultResolver indexes every edge of g by its bounding box (endpoints
// plus shape coordinates).
func NewDefaultResolver(g *graph.Graph, searchOffsetDegrees, maxDistanceMeters float64) *DefaultResolver {
	r := &DefaultResolver{g: g, searchOffsetDegrees: searchOffsetDegrees, maxDistanceMeters: maxDistanceMeters}
	for e := graph.EdgeID(0); e < graph.EdgeID(g.NumEdges()); e++ {
		poly := g.FullPolyline(e)
		minLat, minLon := poly[0].Lat, poly[0].Lon
		maxLat, maxLon := poly[0].Lat, poly[0].Lon
		for _, c := range poly[1:] {
			minLat = math.Min(minLat, c.Lat)
			minLon = math.Min(minLon, c.Lon)
			maxLat = math.Max(maxLat, c.Lat)
			maxLon = math.Max(maxLon, c.Lon)
		}
		r.tree.Insert([2]float64{minLat, minLon}, [2]float64{maxLat, maxLon}, e)
	}
	return r
}

// Resolve returns the RouterPoint on the nearest edge that passes pred and
// lies within the configured search window and max distance. Among equally
// close edges, the smaller edge id wins for determinism.
func (r *DefaultResolver) Resolve(lat, lon float64, pred Predicate) (RouterPoint, error) {
	off := r.searchOffsetDegrees
	windowMin := [2]float64{lat - off, lon - off}
	windowMax := [2]float64{lat + off, lon + off}

	var (
		found    bool
		bestEdge graph.EdgeID
		bestDist = math.Inf(1)
		bestOff  float64
		bestCrd  graph.LatLng
	)

	r.tree.Search(windowMin, windowMax, func(_, _ [2]float64, e graph.EdgeID) bool {
		if !pred(e) {
			return true
		}
		dist, offset, coord := projectOntoEdge(r.g, e, lat, lon)
		if dist < bestDist || (dist == bestDist && (!found || e < bestEdge)) {
			found = true
			bestEdge = e
			bestDist = dist
			bestOff = offset
			bestCrd = coord
		}
		return true
	})

	if !found || bestDist > r.maxDistanceMeters {
		return RouterPoint{}, ErrNoCandidate
	}
	return RouterPoint{Edge: bestEdge, Offset: bestOff, Coord: bestCrd}, nil
}

// projectOntoEdge projects (lat, lon) onto the polyline from->shape*->to of
// edge e, returning the perpendicular distance, the offset in [0, 1] along
// the whole edge (by cumulative segment length, not just the nearest
// segment's local ratio), and the projected coordinate.
func projectOntoEdge(g *graph.Graph, e graph.EdgeID, lat, lon float64) (dist, offset float64, coord graph.LatLng) {
	poly := g.FullPolyline(e)
	if len(poly) < 2 {
		c := poly[0]
		return geo.Haversine(lat, lon, c.Lat, c.Lon), 0, c
	}

	segLen := make([]float64, len(poly)-1)
	var total float64
	for i := 0; i < len(poly)-1; i++ {
		segLen[i] = geo.Haversine(poly[i].Lat, poly[i].Lon, poly[i+1].Lat, poly[i+1].Lon)
		total += segLen[i]
	}

	bestDist := math.Inf(1)
	var bestCoord graph.LatLng
	var bestCumulative float64

	var cumulative float64
	for i := 0; i < len(poly)-1; i++ {
		a, b := poly[i], poly[i+1]
		d, ratio := geo.PointToSegmentDist(lat, lon, a.Lat, a.Lon, b.Lat, b.Lon)
		if d < bestDist {
			bestDist = d
			bestCoord = graph.LatLng{Lat: a.Lat + ratio*(b.Lat-a.Lat), Lon: a.Lon + ratio*(b.Lon-a.Lon)}
			bestCumulative = cumulative + ratio*segLen[i]
		}
		cumulative += segLen[i]
	}

	if total == 0 {
		return bestDist, 0, bestCoord
	}
	return bestDist, bestCumulative / total, bestCoord
}
