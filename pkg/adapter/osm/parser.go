// Package osm loads a road graph from an OSM PBF extract: it decides which
// ways are structurally routable and hands every other tag straight through
// as attributes, leaving traversability and direction to a profile.Profile
// evaluated later at query time.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/azybler/waypoint/pkg/geo"
	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
)

// routableHighways lists highway tag values that represent a physical,
// traversable road segment under any profile. A coarser filter than any one
// profile's access rules — it exists to keep plazas, proposed roads, and
// unrelated tagged ways out of the graph entirely, not to decide who may
// drive, cycle, or walk on what's left.
var routableHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
	"track":          true,
	"road":           true,
}

// routedTagKeys are the way tags copied into each edge's AttributeSet.
// Profiles read these at query time; anything else on the way is dropped.
var routedTagKeys = []string{
	"highway", "oneway", "junction", "access", "motor_vehicle",
	"bicycle", "foot", "surface", "maxspeed", "area",
}

// isRoutableHighway reports whether a way's highway tag names a physical
// road segment at all. It does not consider access restrictions — those are
// a profile's decision, not the loader's.
func isRoutableHighway(tags osm.Tags) bool {
	return routableHighways[tags.Find("highway")]
}

// isArea reports whether a way is tagged as an enclosed area (a pedestrian
// plaza, a parking lot boundary) rather than a linear segment. Areas are
// excluded structurally: no profile can route along one the way this engine
// models edges.
func isArea(tags osm.Tags) bool {
	return tags.Find("area") == "yes"
}

// wayAttributes copies the subset of a way's tags that profiles consult into
// a profile.AttributeSet, leaving the rest of the way's tags behind.
func wayAttributes(tags osm.Tags) profile.AttributeSet {
	attrs := make(profile.AttributeSet, len(routedTagKeys))
	for _, key := range routedTagKeys {
		if v := tags.Find(key); v != "" {
			attrs[key] = v
		}
	}
	return attrs
}

// wayInfo holds one routable way's node chain and tag attributes, collected
// during pass 1.
type wayInfo struct {
	NodeIDs []osm.NodeID
	Attrs   profile.AttributeSet
}

// BBox is a geographic bounding box used to restrict which edges are kept.
// The zero value means no filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero reports whether b is the unset bounding box.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains reports whether (lat, lng) falls inside b.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// LoadOptions configures Load.
type LoadOptions struct {
	// BBox, if non-zero, restricts the graph to edges whose endpoints both
	// fall inside it.
	BBox BBox

	// KeepAllComponents disables the default trim to the largest weakly
	// connected component. Real extracts are full of islands — a service
	// road cut off by a bridge not included in the extract, a parking lot
	// reachable only on foot — that no car route will ever cross into or
	// out of; leaving them in only costs contraction time and resolver
	// false positives.
	KeepAllComponents bool
}

// Load reads an OSM PBF extract and builds a routable graph.Graph plus the
// profile.Registry describing every edge's attributes. Direction and
// traversability are left entirely to whichever profile later queries the
// graph; this package only decides which ways are structurally roads.
//
// rs is scanned twice — once for ways, once for the node coordinates those
// ways reference — so it must support seeking back to the start.
func Load(ctx context.Context, rs io.ReadSeeker, opts ...LoadOptions) (*graph.Graph, *profile.Registry, error) {
	var opt LoadOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isRoutableHighway(w.Tags) || isArea(w.Tags) {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Attrs: wayAttributes(w.Tags)})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("osm: pass 1 complete: %d routable ways, %d referenced nodes", len(ways), len(referencedNodes))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("osm: pass 2 complete: %d node coordinates collected", len(nodeLat))

	b := graph.NewBuilder()
	reg := profile.NewRegistry()
	vertexOf := make(map[osm.NodeID]graph.VertexID, len(nodeLat))

	vertexFor := func(id osm.NodeID) (graph.VertexID, bool) {
		if v, ok := vertexOf[id]; ok {
			return v, true
		}
		lat, latOK := nodeLat[id]
		lon, lonOK := nodeLon[id]
		if !latOK || !lonOK {
			return 0, false
		}
		v := b.AddVertex(lat, lon)
		vertexOf[id] = v
		return v, true
	}

	var skippedEdges, bboxFiltered, zeroLength int

	for _, w := range ways {
		profileID := reg.Intern(w.Attrs)

		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromV, fromOK := vertexFor(w.NodeIDs[i])
			toV, toOK := vertexFor(w.NodeIDs[i+1])
			if !fromOK || !toOK {
				skippedEdges++
				continue
			}

			fromCoord := graph.LatLng{Lat: nodeLat[w.NodeIDs[i]], Lon: nodeLon[w.NodeIDs[i]]}
			toCoord := graph.LatLng{Lat: nodeLat[w.NodeIDs[i+1]], Lon: nodeLon[w.NodeIDs[i+1]]}

			if useBBox && (!opt.BBox.Contains(fromCoord.Lat, fromCoord.Lon) || !opt.BBox.Contains(toCoord.Lat, toCoord.Lon)) {
				bboxFiltered++
				continue
			}

			dist := geo.Haversine(fromCoord.Lat, fromCoord.Lon, toCoord.Lat, toCoord.Lon)
			if dist == 0 {
				zeroLength++
				continue
			}
			if math.IsNaN(dist) {
				skippedEdges++
				continue
			}

			b.AddEdge(fromV, toV, dist, profileID, nil)
		}
	}

	if skippedEdges > 0 {
		log.Printf("osm: skipped %d edges with missing node coordinates", skippedEdges)
	}
	if bboxFiltered > 0 {
		log.Printf("osm: filtered %d edges outside bounding box", bboxFiltered)
	}
	if zeroLength > 0 {
		log.Printf("osm: dropped %d zero-length edges (duplicate or coincident nodes)", zeroLength)
	}
	g := b.Build()
	log.Printf("osm: built graph with %d vertices, %d edges, %d distinct profile attribute sets",
		g.NumVertices(), g.NumEdges(), reg.Len())

	if opt.KeepAllComponents {
		return g, reg, nil
	}

	largest := graph.LargestComponent(g)
	if uint32(len(largest)) == g.NumVertices() {
		return g, reg, nil
	}
	log.Printf("osm: trimming %d of %d vertices outside the largest connected component",
		g.NumVertices()-uint32(len(largest)), g.NumVertices())
	return graph.FilterToComponent(g, largest), reg, nil
}
