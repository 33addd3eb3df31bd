package routing

import (
	"github.com/azybler/waypoint/pkg/ch"
	"github.com/azybler/waypoint/pkg/graph"
)

// EdgeTraversal names one base-graph edge traversed in a particular
// direction, the common currency path reconstruction produces regardless
// of which engine (plain or contraction hierarchy) found the route.
type EdgeTraversal struct {
	Edge    graph.EdgeID
	Forward bool
}

func fromCH(ts []ch.EdgeTraversal) []EdgeTraversal {
	out := make([]EdgeTraversal, len(ts))
	for i, t := range ts {
		out[i] = EdgeTraversal{Edge: t.Edge, Forward: t.Forward}
	}
	return out
}
