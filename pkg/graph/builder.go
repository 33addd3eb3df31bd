package graph

// Builder assembles a Graph incrementally: add vertices, then edges
// referencing them, then Build() to freeze into CSR form. Mirrors the
// two-phase shape graph providers (OSM import, synthetic test fixtures)
// naturally produce: collect everything, then compact once.
type Builder struct {
	vertexLat []float64
	vertexLon []float64

	edgeFrom  []VertexID
	edgeTo    []VertexID
	edgeData  []uint32
	shapeLat  [][]float64
	shapeLon  [][]float64
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddVertex appends a vertex and returns its id.
func (b *Builder) AddVertex(lat, lon float64) VertexID {
	id := VertexID(len(b.vertexLat))
	b.vertexLat = append(b.vertexLat, lat)
	b.vertexLon = append(b.vertexLon, lon)
	return id
}

// AddEdge appends an undirected edge from -> to carrying distanceMeters and
// profileID (packed via PackEdgeData), with optional shape coordinates
// strictly between from and to, in from->to order. Returns the edge id.
func (b *Builder) AddEdge(from, to VertexID, distanceMeters float64, profileID uint16, shape []LatLng) EdgeID {
	id := EdgeID(len(b.edgeFrom))
	b.edgeFrom = append(b.edgeFrom, from)
	b.edgeTo = append(b.edgeTo, to)
	b.edgeData = append(b.edgeData, PackEdgeData(distanceMeters, profileID))

	var lats, lons []float64
	if len(shape) > 0 {
		lats = make([]float64, len(shape))
		lons = make([]float64, len(shape))
		for i, c := range shape {
			lats[i] = c.Lat
			lons[i] = c.Lon
		}
	}
	b.shapeLat = append(b.shapeLat, lats)
	b.shapeLon = append(b.shapeLon, lons)
	return id
}

// NumVertices returns the number of vertices added so far.
func (b *Builder) NumVertices() uint32 { return uint32(len(b.vertexLat)) }

// Build freezes the builder into an immutable Graph, computing the
// bidirectional adjacency index by counting incident edges per vertex and
// prefix-summing, the same counting-sort technique used throughout this
// package for CSR construction.
func (b *Builder) Build() *Graph {
	numVertices := uint32(len(b.vertexLat))
	numEdges := uint32(len(b.edgeFrom))

	shapeFirstOut := make([]uint32, numEdges+1)
	var shapeLatFlat, shapeLonFlat []float64
	for i := uint32(0); i < numEdges; i++ {
		shapeFirstOut[i] = uint32(len(shapeLatFlat))
		shapeLatFlat = append(shapeLatFlat, b.shapeLat[i]...)
		shapeLonFlat = append(shapeLonFlat, b.shapeLon[i]...)
	}
	shapeFirstOut[numEdges] = uint32(len(shapeLatFlat))

	// Each edge contributes one adjacency entry at each endpoint.
	adjFirstOut := make([]uint32, numVertices+1)
	for i := uint32(0); i < numEdges; i++ {
		adjFirstOut[b.edgeFrom[i]+1]++
		adjFirstOut[b.edgeTo[i]+1]++
	}
	for i := uint32(1); i <= numVertices; i++ {
		adjFirstOut[i] += adjFirstOut[i-1]
	}

	totalAdj := adjFirstOut[numVertices]
	adjEdge := make([]EdgeID, totalAdj)
	adjOther := make([]VertexID, totalAdj)
	pos := make([]uint32, numVertices)
	copy(pos, adjFirstOut[:numVertices])

	for i := uint32(0); i < numEdges; i++ {
		from, to := b.edgeFrom[i], b.edgeTo[i]

		idx := pos[from]
		adjEdge[idx] = EdgeID(i)
		adjOther[idx] = to
		pos[from]++

		idx = pos[to]
		adjEdge[idx] = EdgeID(i)
		adjOther[idx] = from
		pos[to]++
	}

	return &Graph{
		numVertices:   numVertices,
		vertexLat:     b.vertexLat,
		vertexLon:     b.vertexLon,
		edgeFrom:      b.edgeFrom,
		edgeTo:        b.edgeTo,
		edgeData:      b.edgeData,
		shapeFirstOut: shapeFirstOut,
		shapeLat:      shapeLatFlat,
		shapeLon:      shapeLonFlat,
		adjFirstOut:   adjFirstOut,
		adjEdge:       adjEdge,
		adjOther:      adjOther,
	}
}
