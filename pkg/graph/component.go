package graph

// UnionFind implements a disjoint-set data structure with path halving and
// union by rank.
type UnionFind struct {
	parent []VertexID
	rank   []byte // byte is sufficient — max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]VertexID, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = VertexID(i)
		size[i] = 1
	}
	return &UnionFind{parent: parent, rank: make([]byte, n), size: size}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x VertexID) VertexID {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y VertexID) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the vertex ids belonging to the largest weakly
// connected component (edges are already undirected in storage, so this is
// a plain connected-component pass).
func LargestComponent(g *Graph) []VertexID {
	n := g.NumVertices()
	if n == 0 {
		return nil
	}

	uf := NewUnionFind(n)
	for u := VertexID(0); u < VertexID(n); u++ {
		start, end := g.IncidentEdges(u)
		for i := start; i < end; i++ {
			uf.Union(u, g.AdjOtherAt(i))
		}
	}

	bestRoot, bestSize := VertexID(0), uint32(0)
	for i := VertexID(0); i < VertexID(n); i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot, bestSize = root, uf.size[root]
		}
	}

	vertices := make([]VertexID, 0, bestSize)
	for i := VertexID(0); i < VertexID(n); i++ {
		if uf.Find(i) == bestRoot {
			vertices = append(vertices, i)
		}
	}
	return vertices
}

// FilterToComponent creates a new graph containing only the given vertices
// and the edges with both endpoints among them.
func FilterToComponent(g *Graph, vertices []VertexID) *Graph {
	if len(vertices) == 0 {
		return &Graph{}
	}

	oldToNew := make(map[VertexID]VertexID, len(vertices))
	for newIdx, oldIdx := range vertices {
		oldToNew[oldIdx] = VertexID(newIdx)
	}

	b := NewBuilder()
	for _, old := range vertices {
		c := g.VertexCoord(old)
		b.AddVertex(c.Lat, c.Lon)
	}

	seen := make(map[EdgeID]bool)
	for _, oldU := range vertices {
		start, end := g.IncidentEdges(oldU)
		for i := start; i < end; i++ {
			e := g.AdjEdgeAt(i)
			if seen[e] {
				continue
			}
			from, to := g.EdgeEndpoints(e)
			newFrom, okFrom := oldToNew[from]
			newTo, okTo := oldToNew[to]
			if !okFrom || !okTo {
				continue
			}
			seen[e] = true
			dist, profileID := UnpackEdgeData(g.EdgeData(e))
			b.AddEdge(newFrom, newTo, dist, profileID, g.EdgeShape(e))
		}
	}

	return b.Build()
}
