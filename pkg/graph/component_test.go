package graph

import "testing"

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	for i := range VertexID(5) {
		if uf.Find(i) != i {
			t.Errorf("Find(%d) = %d, want %d", i, uf.Find(i), i)
		}
	}

	uf.Union(0, 1)
	if uf.Find(0) != uf.Find(1) {
		t.Error("0 and 1 should be in same set")
	}

	uf.Union(2, 3)
	if uf.Find(2) != uf.Find(3) {
		t.Error("2 and 3 should be in same set")
	}

	if uf.Find(0) == uf.Find(2) {
		t.Error("0 and 2 should be in different sets")
	}

	uf.Union(1, 3)
	if uf.Find(0) != uf.Find(3) {
		t.Error("0 and 3 should now be in same set")
	}
}

func buildTwoComponentGraph() *Graph {
	b := NewBuilder()
	// Component 1: 0 <-> 1 <-> 2 (3 vertices)
	v0 := b.AddVertex(1.0, 103.0)
	v1 := b.AddVertex(1.1, 103.1)
	v2 := b.AddVertex(1.2, 103.2)
	b.AddEdge(v0, v1, 100, 1, nil)
	b.AddEdge(v1, v2, 200, 1, nil)
	// Component 2: 3 <-> 4 (2 vertices)
	v3 := b.AddVertex(2.0, 104.0)
	v4 := b.AddVertex(2.1, 104.1)
	b.AddEdge(v3, v4, 300, 1, nil)
	return b.Build()
}

func TestLargestComponent(t *testing.T) {
	g := buildTwoComponentGraph()
	vertices := LargestComponent(g)
	if len(vertices) != 3 {
		t.Fatalf("LargestComponent has %d vertices, want 3", len(vertices))
	}
}

func TestFilterToComponent(t *testing.T) {
	g := buildTwoComponentGraph()
	vertices := LargestComponent(g)
	filtered := FilterToComponent(g, vertices)

	if filtered.NumVertices() != 3 {
		t.Fatalf("filtered NumVertices = %d, want 3", filtered.NumVertices())
	}
	if filtered.NumEdges() != 2 {
		t.Fatalf("filtered NumEdges = %d, want 2", filtered.NumEdges())
	}

	var total float64
	for e := EdgeID(0); e < EdgeID(filtered.NumEdges()); e++ {
		dist, _ := UnpackEdgeData(filtered.EdgeData(e))
		total += dist
	}
	if total != 300 {
		t.Errorf("total distance = %v, want 300", total)
	}
}

func TestFilterToComponentEmptyGraph(t *testing.T) {
	g := &Graph{}
	vertices := LargestComponent(g)
	if vertices != nil {
		t.Errorf("expected nil for empty graph, got %v", vertices)
	}

	filtered := FilterToComponent(g, nil)
	if filtered.NumVertices() != 0 || filtered.NumEdges() != 0 {
		t.Errorf("expected empty graph, got %d vertices, %d edges", filtered.NumVertices(), filtered.NumEdges())
	}
}
