package routing

import (
	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
	"github.com/azybler/waypoint/pkg/resolver"
)

// Seed is one search frontier entry: a vertex reachable (or reaching, for a
// backward frontier) from a RouterPoint, with the partial-edge weight
// already folded in.
type Seed struct {
	Vertex graph.VertexID
	Weight float32
}

// edgeWeight evaluates a base edge's distance and direction against a
// profile, returning false if the profile cannot traverse it at all.
func edgeWeight(g *graph.Graph, reg *profile.Registry, prof profile.Profile, e graph.EdgeID) (dist float64, factor float32, dir profile.Direction, ok bool) {
	distMeters, profileID := graph.UnpackEdgeData(g.EdgeData(e))
	f, d := prof.Factor(reg.Attributes(profileID))
	if f <= 0 {
		return 0, 0, profile.DirNone, false
	}
	return distMeters, f, d, true
}

// SourceFrontier returns the seeds a forward search should start from when
// the route origin is rp: the vertices rp can reach by finishing out its
// partial edge, weighted by the remaining partial distance.
func SourceFrontier(g *graph.Graph, reg *profile.Registry, prof profile.Profile, rp resolver.RouterPoint) []Seed {
	dist, factor, dir, ok := edgeWeight(g, reg, prof, rp.Edge)
	if !ok {
		return nil
	}
	from, to := g.EdgeEndpoints(rp.Edge)
	var seeds []Seed
	if dir.Allows(true) {
		seeds = append(seeds, Seed{Vertex: to, Weight: float32(dist) * factor * float32(1-rp.Offset)})
	}
	if dir.Allows(false) {
		seeds = append(seeds, Seed{Vertex: from, Weight: float32(dist) * factor * float32(rp.Offset)})
	}
	return seeds
}

// TargetFrontier returns the seeds a backward search should start from when
// the route destination is rp: the vertices that can reach rp by entering
// its partial edge, weighted by the partial distance remaining to rp.
func TargetFrontier(g *graph.Graph, reg *profile.Registry, prof profile.Profile, rp resolver.RouterPoint) []Seed {
	dist, factor, dir, ok := edgeWeight(g, reg, prof, rp.Edge)
	if !ok {
		return nil
	}
	from, to := g.EdgeEndpoints(rp.Edge)
	var seeds []Seed
	if dir.Allows(true) {
		seeds = append(seeds, Seed{Vertex: from, Weight: float32(dist) * factor * float32(rp.Offset)})
	}
	if dir.Allows(false) {
		seeds = append(seeds, Seed{Vertex: to, Weight: float32(dist) * factor * float32(1-rp.Offset)})
	}
	return seeds
}
