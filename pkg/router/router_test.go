package router

import (
	"context"
	"math"
	"testing"

	"github.com/azybler/waypoint/pkg/ch"
	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
	"github.com/azybler/waypoint/pkg/resolver"
)

// resolverPointAt builds a RouterPoint sitting exactly at vertex v, via
// whichever edge happens to be first in its incidence list.
func resolverPointAt(g *graph.Graph, v graph.VertexID) resolver.RouterPoint {
	start, _ := g.IncidentEdges(v)
	e := g.AdjEdgeAt(start)
	from, _ := g.EdgeEndpoints(e)
	offset := 0.0
	if from != v {
		offset = 1.0
	}
	return resolver.RouterPoint{Edge: e, Offset: offset, Coord: g.VertexCoord(v)}
}

// testProfile is a unit-weight profile for router-level tests: every edge
// costs its raw distance, travels both ways, and cannot be stopped on if
// tagged noStop=true (used to exercise VerifyAllStoppable).
type testProfile struct{}

func (testProfile) Name() string { return "test" }
func (testProfile) Factor(attrs profile.AttributeSet) (float32, profile.Direction) {
	if attrs["blocked"] == "true" {
		return 0, profile.DirNone
	}
	return 1, profile.DirBoth
}
func (testProfile) CanStop(attrs profile.AttributeSet) bool { return attrs["noStop"] != "true" }

func buildSquare(t *testing.T) (*graph.Graph, *profile.Registry) {
	t.Helper()
	b := graph.NewBuilder()
	a := b.AddVertex(0, 0)
	bb := b.AddVertex(0, 0.001)
	c := b.AddVertex(0.001, 0.001)
	d := b.AddVertex(0.001, 0)
	reg := profile.NewRegistry()
	plain := reg.Intern(profile.AttributeSet{})
	b.AddEdge(a, bb, 1, plain, nil)
	b.AddEdge(bb, c, 1, plain, nil)
	b.AddEdge(c, d, 1, plain, nil)
	b.AddEdge(d, a, 1, plain, nil)
	return b.Build(), reg
}

func newTestRouter(t *testing.T) (*Router, *graph.Graph) {
	t.Helper()
	g, reg := buildSquare(t)
	r := New(g, reg, map[string]profile.Profile{"test": testProfile{}}, Options{})
	return r, g
}

func TestTryResolveUnknownProfile(t *testing.T) {
	r, _ := newTestRouter(t)
	_, err := r.TryResolve([]string{"bogus"}, 0, 0)
	if err == nil || err.Kind != ProfileUnsupported {
		t.Fatalf("err = %v, want ProfileUnsupported", err)
	}
}

func TestTryResolveFindsNearestEdge(t *testing.T) {
	r, _ := newTestRouter(t)
	rp, err := r.TryResolve([]string{"test"}, 0, 0.0005)
	if err != nil {
		t.Fatalf("TryResolve: %v", err)
	}
	if rp.Edge != 0 {
		t.Errorf("Edge = %d, want 0", rp.Edge)
	}
}

func TestTryCalculateSquareGridShortestPath(t *testing.T) {
	r, g := newTestRouter(t)
	source := resolverPointAt(g, 0)
	target := resolverPointAt(g, 2)

	route, err := r.TryCalculate(context.Background(), "test", source, target)
	if err != nil {
		t.Fatalf("TryCalculate: %v", err)
	}
	if math.Abs(route.Weight-2) > 1e-3 {
		t.Errorf("Weight = %v, want 2", route.Weight)
	}
	if len(route.Segments) != 2 {
		t.Errorf("Segments = %d, want 2", len(route.Segments))
	}
}

func TestTryCalculateCHAgreesWithPlain(t *testing.T) {
	r, g := newTestRouter(t)
	source := resolverPointAt(g, 0)
	target := resolverPointAt(g, 2)

	plainRoute, err := r.TryCalculate(context.Background(), "test", source, target)
	if err != nil {
		t.Fatalf("plain TryCalculate: %v", err)
	}

	chg := ch.Contract(g, r.reg, testProfile{})
	if regErr := r.RegisterCH("test", chg); regErr != nil {
		t.Fatalf("RegisterCH: %v", regErr)
	}

	chRoute, err := r.TryCalculate(context.Background(), "test", source, target)
	if err != nil {
		t.Fatalf("CH TryCalculate: %v", err)
	}
	if math.Abs(chRoute.Weight-plainRoute.Weight) > 1e-3 {
		t.Errorf("CH weight %v != plain weight %v", chRoute.Weight, plainRoute.Weight)
	}
}

func TestTryCalculateRouteNotFoundAcrossDisjointComponents(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddVertex(0, 0)
	b2 := b.AddVertex(0, 0.001)
	c := b.AddVertex(1, 1)
	d := b.AddVertex(1, 1.001)
	reg := profile.NewRegistry()
	plain := reg.Intern(profile.AttributeSet{})
	b.AddEdge(a, b2, 1, plain, nil)
	b.AddEdge(c, d, 1, plain, nil)
	g := b.Build()

	r := New(g, reg, map[string]profile.Profile{"test": testProfile{}}, Options{})
	source := resolverPointAt(g, 0)
	target := resolverPointAt(g, 2)

	_, err := r.TryCalculate(context.Background(), "test", source, target)
	if err == nil || err.Kind != RouteNotFound {
		t.Fatalf("err = %v, want RouteNotFound", err)
	}
}

func TestTryCheckConnectivity(t *testing.T) {
	r, g := newTestRouter(t)
	point := resolverPointAt(g, 0)

	reached, err := r.TryCheckConnectivity(context.Background(), "test", point, 1000)
	if err != nil {
		t.Fatalf("TryCheckConnectivity: %v", err)
	}
	if reached {
		t.Error("reached = true, want false: the whole square (perimeter 4) fits well inside radius 1000")
	}

	reached, err = r.TryCheckConnectivity(context.Background(), "test", point, 0.5)
	if err != nil {
		t.Fatalf("TryCheckConnectivity: %v", err)
	}
	if !reached {
		t.Error("reached = false, want true: radius 0.5 is smaller than the first edge (length 1)")
	}
}

func TestTryResolveVerifyAllStoppableSkipsUnstoppableEdge(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddVertex(0, 0)
	bb := b.AddVertex(0, 0.0002)
	c := b.AddVertex(0, 0.0004)
	reg := profile.NewRegistry()
	noStop := reg.Intern(profile.AttributeSet{"noStop": "true"})
	plain := reg.Intern(profile.AttributeSet{})
	b.AddEdge(a, bb, 1, noStop, nil)
	b.AddEdge(bb, c, 1, plain, nil)
	g := b.Build()

	r := New(g, reg, map[string]profile.Profile{"test": testProfile{}}, Options{VerifyAllStoppable: true})

	rp, err := r.TryResolve([]string{"test"}, 0, 0.0001)
	if err != nil {
		t.Fatalf("TryResolve: %v", err)
	}
	if rp.Edge != 1 {
		t.Errorf("Edge = %d, want 1 (the noStop edge must be skipped)", rp.Edge)
	}
}

func TestTryCalculateManyIsIndependentPerPair(t *testing.T) {
	r, g := newTestRouter(t)
	sources := []resolver.RouterPoint{resolverPointAt(g, 0), resolverPointAt(g, 1)}
	targets := []resolver.RouterPoint{resolverPointAt(g, 2)}

	results := r.TryCalculateMany(context.Background(), "test", sources, targets)
	if len(results) != 2 || len(results[0]) != 1 {
		t.Fatalf("shape = %dx%d, want 2x1", len(results), len(results[0]))
	}
	for i, row := range results {
		for j, res := range row {
			if res.Err != nil {
				t.Errorf("[%d][%d] err = %v", i, j, res.Err)
			}
		}
	}
}
