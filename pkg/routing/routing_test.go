package routing

import (
	"context"
	"math"
	"testing"

	"github.com/azybler/waypoint/pkg/ch"
	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
	"github.com/azybler/waypoint/pkg/resolver"
)

type unitProfile struct{}

func (unitProfile) Name() string { return "unit" }
func (unitProfile) Factor(profile.AttributeSet) (float32, profile.Direction) {
	return 1, profile.DirBoth
}
func (unitProfile) CanStop(profile.AttributeSet) bool { return true }

// buildSquareGrid builds a 4-vertex square: A-B-C-D-A, all edges length 100.
func buildSquareGrid() (*graph.Graph, *profile.Registry) {
	b := graph.NewBuilder()
	a := b.AddVertex(0, 0)
	bb := b.AddVertex(0, 1)
	c := b.AddVertex(1, 1)
	d := b.AddVertex(1, 0)
	b.AddEdge(a, bb, 100, 0, nil)
	b.AddEdge(bb, c, 100, 0, nil)
	b.AddEdge(c, d, 100, 0, nil)
	b.AddEdge(d, a, 100, 0, nil)
	reg := profile.NewRegistry()
	reg.Intern(profile.AttributeSet{})
	return b.Build(), reg
}

func TestPlainEngineConnectivityWithinRadius(t *testing.T) {
	g, reg := buildSquareGrid()
	e := NewPlainEngine(g, reg)
	maxReached, err := e.Connectivity(context.Background(), unitProfile{}, []Seed{{Vertex: 0, Weight: 0}}, 1000, true)
	if err != nil {
		t.Fatalf("Connectivity: %v", err)
	}
	if maxReached {
		t.Error("maxReached = true, want false within a generous radius")
	}
}

func TestPlainEngineConnectivityBeyondRadius(t *testing.T) {
	g, reg := buildSquareGrid()
	e := NewPlainEngine(g, reg)
	maxReached, err := e.Connectivity(context.Background(), unitProfile{}, []Seed{{Vertex: 0, Weight: 0}}, 50, true)
	if err != nil {
		t.Fatalf("Connectivity: %v", err)
	}
	if !maxReached {
		t.Error("maxReached = false, want true for a radius smaller than any edge")
	}
}

func TestPlainEngineConnectivityRespectsCancellation(t *testing.T) {
	g, reg := buildSquareGrid()
	e := NewPlainEngine(g, reg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Connectivity(ctx, unitProfile{}, []Seed{{Vertex: 0, Weight: 0}}, 1000, true)
	if err != ErrCanceled {
		t.Fatalf("err = %v, want ErrCanceled", err)
	}
}

func TestBidirectionalPlainFindsShortestRoute(t *testing.T) {
	g, reg := buildSquareGrid()
	e := NewPlainEngine(g, reg)

	res, err := e.BidirectionalSearch(context.Background(), unitProfile{},
		[]Seed{{Vertex: 0, Weight: 0}}, []Seed{{Vertex: 2, Weight: 0}})
	if err != nil {
		t.Fatalf("BidirectionalSearch: %v", err)
	}
	if !res.Found {
		t.Fatal("Found = false, want true")
	}
	if math.Abs(float64(res.Weight)-200) > 1e-3 {
		t.Errorf("Weight = %v, want 200 (two 100m edges either way around the square)", res.Weight)
	}

	fwdPath := res.TraceForward(g)
	bwdPath := res.TraceBackward(g)
	full := append(fwdPath, bwdPath...)
	if len(full) != 2 {
		t.Fatalf("path length = %d, want 2 edges", len(full))
	}
	res.Release()
}

// buildLineWithShortcut builds a 5-vertex line A-B-C-D-E (each edge 100m).
// Under the contraction priority the endpoints A and E go first, then C,
// which adds a B<->D shortcut; an A->E query must unpack that shortcut back
// into base edges.
func buildLineWithShortcut() (*graph.Graph, *profile.Registry) {
	b := graph.NewBuilder()
	verts := make([]graph.VertexID, 5)
	for i := range verts {
		verts[i] = b.AddVertex(float64(i), 0)
	}
	for i := 0; i < 4; i++ {
		b.AddEdge(verts[i], verts[i+1], 100, 0, nil)
	}
	reg := profile.NewRegistry()
	reg.Intern(profile.AttributeSet{})
	return b.Build(), reg
}

func TestCHEngineMatchesPlainOnLineGraph(t *testing.T) {
	g, reg := buildLineWithShortcut()
	chg := ch.Contract(g, reg, unitProfile{})
	chEngine := NewCHEngine(chg)
	plainEngine := NewPlainEngine(g, reg)

	chRes, err := chEngine.Search(context.Background(),
		[]Seed{{Vertex: 0, Weight: 0}}, []Seed{{Vertex: 4, Weight: 0}})
	if err != nil {
		t.Fatalf("CH Search: %v", err)
	}
	if !chRes.Found {
		t.Fatal("CH Found = false, want true")
	}

	plainRes, err := plainEngine.BidirectionalSearch(context.Background(), unitProfile{},
		[]Seed{{Vertex: 0, Weight: 0}}, []Seed{{Vertex: 4, Weight: 0}})
	if err != nil {
		t.Fatalf("plain BidirectionalSearch: %v", err)
	}

	if math.Abs(float64(chRes.Weight-plainRes.Weight)) > 1e-3 {
		t.Errorf("CH weight %v != plain weight %v", chRes.Weight, plainRes.Weight)
	}

	full := append(chRes.TraceForward(), chRes.TraceBackward()...)
	var total float64
	for _, t := range full {
		dist, _ := graph.UnpackEdgeData(g.EdgeData(t.Edge))
		total += dist
	}
	if math.Abs(total-float64(chRes.Weight)) > 1e-3 {
		t.Errorf("unpacked edge sequence sums to %v, want %v", total, chRes.Weight)
	}
	if err := validateChain(g, full); err != nil {
		t.Errorf("unpacked edge sequence does not chain: %v", err)
	}
}

func TestBidirectionalSearchNoPathAcrossDisjointComponents(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddVertex(0, 0)
	b2 := b.AddVertex(0, 1)
	c := b.AddVertex(10, 10)
	d := b.AddVertex(10, 11)
	b.AddEdge(a, b2, 100, 0, nil)
	b.AddEdge(c, d, 100, 0, nil)
	g := b.Build()
	reg := profile.NewRegistry()
	reg.Intern(profile.AttributeSet{})

	e := NewPlainEngine(g, reg)
	res, err := e.BidirectionalSearch(context.Background(), unitProfile{},
		[]Seed{{Vertex: 0, Weight: 0}}, []Seed{{Vertex: 2, Weight: 0}})
	if err != nil {
		t.Fatalf("BidirectionalSearch: %v", err)
	}
	if res.Found {
		t.Error("Found = true, want false across disjoint components")
	}
}

func TestBuildRouteSameEdgeDirect(t *testing.T) {
	g, reg := buildSquareGrid()
	origin := resolver.RouterPoint{Edge: 0, Offset: 0.2, Coord: g.VertexCoord(0)}
	target := resolver.RouterPoint{Edge: 0, Offset: 0.8, Coord: g.VertexCoord(1)}

	route, ok := TryDirectRoute(g, reg, unitProfile{}, origin, target)
	if !ok {
		t.Fatal("TryDirectRoute ok = false, want true for same-edge case")
	}
	if math.Abs(route.DistanceMeters-60) > 1e-6 {
		t.Errorf("DistanceMeters = %v, want 60", route.DistanceMeters)
	}
}

func TestBuildRouteMultiHop(t *testing.T) {
	g, reg := buildSquareGrid()
	e := NewPlainEngine(g, reg)

	origin := resolver.RouterPoint{Edge: 0, Offset: 0.5, Coord: g.VertexCoord(0)}
	target := resolver.RouterPoint{Edge: 2, Offset: 0.5, Coord: g.VertexCoord(2)}

	src := SourceFrontier(g, reg, unitProfile{}, origin)
	dst := TargetFrontier(g, reg, unitProfile{}, target)

	res, err := e.BidirectionalSearch(context.Background(), unitProfile{}, src, dst)
	if err != nil {
		t.Fatalf("BidirectionalSearch: %v", err)
	}
	if !res.Found {
		t.Fatal("Found = false")
	}

	originVertex := res.SeedVertex(true)
	targetVertex := res.SeedVertex(false)
	interior := append(res.TraceForward(g), res.TraceBackward(g)...)

	route, err := BuildRoute(g, reg, unitProfile{}, origin, target, interior, originVertex, targetVertex)
	if err != nil {
		t.Fatalf("BuildRoute: %v", err)
	}
	if route.DistanceMeters <= 0 {
		t.Errorf("DistanceMeters = %v, want > 0", route.DistanceMeters)
	}
	if len(route.Shape) < 2 {
		t.Errorf("Shape has %d points, want >= 2", len(route.Shape))
	}
}
