// Package graph holds the geometric road graph: vertices with coordinates
// and undirected edges carrying an opaque per-edge data word plus optional
// shape geometry. It is the base layer the routing and contraction
// hierarchy packages build on.
package graph

// VertexID identifies a vertex. Stable for the lifetime of a Graph.
type VertexID uint32

// EdgeID identifies an edge. Stable for the lifetime of a Graph.
type EdgeID uint32

// NoVertex is the sentinel for "no vertex".
const NoVertex VertexID = ^VertexID(0)

// NoEdge is the sentinel for "no edge".
const NoEdge EdgeID = ^EdgeID(0)

// LatLng is a WGS84 geographic coordinate.
type LatLng struct {
	Lat float64
	Lon float64
}

// Graph is the geometric graph in CSR (compressed sparse row) form.
//
// Edges are bidirectional in storage: each edge appears once in the edge
// arrays but twice in the adjacency index (once from each endpoint), so a
// query engine can walk out of either endpoint without duplicating the
// edge-data word. Direction restrictions (oneway, etc.) are a property of
// the routing Profile evaluated against the edge's attributes, not of the
// graph storage.
type Graph struct {
	numVertices uint32
	vertexLat   []float64
	vertexLon   []float64

	edgeFrom []VertexID // len numEdges
	edgeTo   []VertexID // len numEdges
	edgeData []uint32   // len numEdges, packed (distance, profile id) — see codec.go

	// Shape coordinates strictly between (edgeFrom, edgeTo), in from->to order.
	shapeFirstOut []uint32 // len numEdges+1
	shapeLat      []float64
	shapeLon      []float64

	// Adjacency: for vertex v, adjFirstOut[v]..adjFirstOut[v+1] indexes into
	// adjEdge/adjOther, which list every edge incident to v and the vertex
	// at its other end (regardless of which endpoint is edgeFrom/edgeTo).
	adjFirstOut []uint32
	adjEdge     []EdgeID
	adjOther    []VertexID
}

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() uint32 { return g.numVertices }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() uint32 { return uint32(len(g.edgeFrom)) }

// VertexCoord returns the coordinate of vertex v.
func (g *Graph) VertexCoord(v VertexID) LatLng {
	return LatLng{Lat: g.vertexLat[v], Lon: g.vertexLon[v]}
}

// EdgeEndpoints returns the canonical (from, to) vertices of an edge, in
// the orientation the edge was added with. Shape coordinates and the
// "forward" direction of the edge's profile Factor are relative to this
// orientation.
func (g *Graph) EdgeEndpoints(e EdgeID) (from, to VertexID) {
	return g.edgeFrom[e], g.edgeTo[e]
}

// EdgeData returns the packed (distance, profile id) word for an edge.
func (g *Graph) EdgeData(e EdgeID) uint32 {
	return g.edgeData[e]
}

// EdgeShape returns the intermediate shape coordinates of an edge, strictly
// between its two endpoints, in from->to order.
func (g *Graph) EdgeShape(e EdgeID) []LatLng {
	start, end := g.shapeFirstOut[e], g.shapeFirstOut[e+1]
	if end == start {
		return nil
	}
	out := make([]LatLng, end-start)
	for i := start; i < end; i++ {
		out[i-start] = LatLng{Lat: g.shapeLat[i], Lon: g.shapeLon[i]}
	}
	return out
}

// FullPolyline returns from, shape..., to as a single coordinate sequence,
// in from->to order.
func (g *Graph) FullPolyline(e EdgeID) []LatLng {
	from, to := g.EdgeEndpoints(e)
	shape := g.EdgeShape(e)
	out := make([]LatLng, 0, len(shape)+2)
	out = append(out, g.VertexCoord(from))
	out = append(out, shape...)
	out = append(out, g.VertexCoord(to))
	return out
}

// IncidentEdges returns the range [start, end) of indices into the
// adjacency tables for vertex v. Use AdjEdgeAt / AdjOtherAt to read entries.
func (g *Graph) IncidentEdges(v VertexID) (start, end uint32) {
	return g.adjFirstOut[v], g.adjFirstOut[v+1]
}

// AdjEdgeAt returns the edge id at adjacency index i.
func (g *Graph) AdjEdgeAt(i uint32) EdgeID { return g.adjEdge[i] }

// AdjOtherAt returns the vertex at the far end of the edge at adjacency
// index i, i.e. the neighbor reached by walking out of the vertex whose
// IncidentEdges range contains i.
func (g *Graph) AdjOtherAt(i uint32) VertexID { return g.adjOther[i] }

// OtherEndpoint returns the endpoint of e that is not v.
func (g *Graph) OtherEndpoint(e EdgeID, v VertexID) VertexID {
	from, to := g.EdgeEndpoints(e)
	if from == v {
		return to
	}
	return from
}
