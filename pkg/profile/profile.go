// Package profile implements the cost-model contract between the graph
// engines and user-supplied edge evaluators, plus the append-only
// edge-profile attribute dictionary shared by a graph.
package profile

// AttributeSet is a bag of key/value strings describing a road segment
// (highway class, surface, maxspeed, oneway, ...).
type AttributeSet map[string]string

// Direction describes which way along an edge's from->to orientation a
// profile allows travel.
type Direction uint8

const (
	DirNone Direction = iota
	DirForward
	DirBackward
	DirBoth
)

// Allows reports whether traveling in the given search direction
// (forward meaning from->to, backward meaning to->from) is permitted.
func (d Direction) Allows(forward bool) bool {
	switch d {
	case DirBoth:
		return true
	case DirForward:
		return forward
	case DirBackward:
		return !forward
	default:
		return false
	}
}

// Profile is a named cost model: a per-edge weight multiplier plus
// direction, and whether a route may start/end on a given edge.
type Profile interface {
	// Name identifies the profile so a graph may cache a contraction
	// hierarchy per named profile.
	Name() string

	// Factor returns the multiplier applied to an edge's distance to yield
	// its weight, and the direction the edge may be traveled in. value <= 0
	// means the edge is not traversable under this profile.
	Factor(attrs AttributeSet) (value float32, dir Direction)

	// CanStop reports whether a route may start or end on an edge with the
	// given attributes.
	CanStop(attrs AttributeSet) bool
}

// Registry is the append-only edge-profile dictionary shared by a graph:
// it interns attribute bags by id so edges can carry a compact uint16
// reference instead of duplicating the bag per edge.
//
// Registration is a build-time operation; once a graph is handed to
// concurrent queries, the registry is read-only (see the package-level
// concurrency note in router.Router).
type Registry struct {
	attrs []AttributeSet
	byKey map[string]uint16
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]uint16)}
}

// Intern returns the id for the given attribute set, appending a new entry
// if an identical bag has not been interned yet (keyed by a canonical
// string so identical tag combinations share one id).
func (r *Registry) Intern(a AttributeSet) uint16 {
	key := canonicalKey(a)
	if id, ok := r.byKey[key]; ok {
		return id
	}
	id := uint16(len(r.attrs))
	r.attrs = append(r.attrs, a)
	r.byKey[key] = id
	return id
}

// Attributes returns the attribute bag for a profile id.
func (r *Registry) Attributes(id uint16) AttributeSet {
	return r.attrs[id]
}

// Len returns the number of distinct attribute bags interned.
func (r *Registry) Len() int { return len(r.attrs) }

// canonicalKey produces a stable string key for an attribute bag so equal
// bags (possibly built independently) intern to the same id. Sorts keys to
// avoid relying on Go's randomized map iteration order.
func canonicalKey(a AttributeSet) string {
	if len(a) == 0 {
		return ""
	}
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sortStrings(keys)
	buf := make([]byte, 0, 64)
	for _, k := range keys {
		buf = append(buf, k...)
		buf = append(buf, '=')
		buf = append(buf, a[k]...)
		buf = append(buf, ';')
	}
	return string(buf)
}

// sortStrings is a tiny insertion sort — attribute bags are small (a
// handful of tags), so this avoids pulling in sort for one call site.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
