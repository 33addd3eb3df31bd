package router

import "github.com/azybler/waypoint/pkg/resolver"

const (
	defaultSearchOffsetDegrees = 0.01
	defaultMaxDistanceMeters   = 50.0
)

// Options configures a Router at construction time.
type Options struct {
	// VerifyAllStoppable, when set, makes resolution additionally require
	// CanStop under every requested profile, not just traversability.
	VerifyAllStoppable bool

	// CreateCustomResolver, when set, replaces the default nearest-edge
	// resolver entirely. Built once at router construction — there is no
	// per-query hook, so a custom resolver is a fixed capability of the
	// router instance, not a mutable toggle.
	CreateCustomResolver resolver.Resolver

	// SearchOffsetDegrees is the half-width, in degrees, of the square
	// window the default resolver searches around a query point. Ignored
	// when CreateCustomResolver is set. Defaults to 0.01.
	SearchOffsetDegrees float64

	// MaxDistanceMeters is the farthest an edge may be from a query point
	// for the default resolver to accept it. Ignored when
	// CreateCustomResolver is set. Defaults to 50.
	MaxDistanceMeters float64
}

func (o Options) withDefaults() Options {
	if o.SearchOffsetDegrees == 0 {
		o.SearchOffsetDegrees = defaultSearchOffsetDegrees
	}
	if o.MaxDistanceMeters == 0 {
		o.MaxDistanceMeters = defaultMaxDistanceMeters
	}
	return o
}
