// Package router is the public facade over the resolver, plain Dijkstra,
// and contraction-hierarchy engines: it picks the right engine per
// profile, turns their results into Route values or typed failures, and
// owns the one piece of mutable state in the core — the per-profile CH
// table — behind a concurrency-safe registration path.
package router

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/azybler/waypoint/pkg/ch"
	"github.com/azybler/waypoint/pkg/graph"
	"github.com/azybler/waypoint/pkg/profile"
	"github.com/azybler/waypoint/pkg/resolver"
	"github.com/azybler/waypoint/pkg/routing"
)

// Router answers resolve, connectivity, and route queries against one
// graph and a fixed set of named profiles. Safe for concurrent use: reads
// (queries) never block on each other or on RegisterCH.
type Router struct {
	g    *graph.Graph
	reg  *profile.Registry
	opts Options

	profiles     map[string]profile.Profile
	plainEngines map[string]*routing.PlainEngine

	chEngines  atomic.Pointer[map[string]*routing.CHEngine]
	registerMu sync.Mutex

	resolver resolver.Resolver
}

// New builds a Router over g, with reg as the shared attribute dictionary
// and profiles as the set of named cost models the router may be queried
// with. No contraction hierarchy is registered for any profile until
// RegisterCH is called; until then, queries for that profile run the plain
// engine.
func New(g *graph.Graph, reg *profile.Registry, profiles map[string]profile.Profile, opts Options) *Router {
	opts = opts.withDefaults()

	r := &Router{
		g:            g,
		reg:          reg,
		opts:         opts,
		profiles:     profiles,
		plainEngines: make(map[string]*routing.PlainEngine, len(profiles)),
	}
	for name := range profiles {
		r.plainEngines[name] = routing.NewPlainEngine(g, reg)
	}

	empty := make(map[string]*routing.CHEngine)
	r.chEngines.Store(&empty)

	if opts.CreateCustomResolver != nil {
		r.resolver = opts.CreateCustomResolver
	} else {
		r.resolver = resolver.NewDefaultResolver(g, opts.SearchOffsetDegrees, opts.MaxDistanceMeters)
	}

	return r
}

// RegisterCH installs a contraction hierarchy for a named profile, making
// subsequent queries for that profile use it instead of the plain engine.
// Serialized with itself; readers never block, since a lookup only ever
// sees a complete, previously-published map (copy-on-write swap under the
// registration lock).
func (r *Router) RegisterCH(profileName string, chg *ch.Graph) *Error {
	if _, ok := r.profiles[profileName]; !ok {
		return newError(ProfileUnsupported, "unknown profile: "+profileName)
	}

	r.registerMu.Lock()
	defer r.registerMu.Unlock()

	old := *r.chEngines.Load()
	next := make(map[string]*routing.CHEngine, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[profileName] = routing.NewCHEngine(chg)
	r.chEngines.Store(&next)
	return nil
}

func (r *Router) chEngineFor(name string) (*routing.CHEngine, bool) {
	m := *r.chEngines.Load()
	e, ok := m[name]
	return e, ok
}

// TryResolve finds a RouterPoint near (lat, lon) that every named profile
// can traverse (and, if opts.VerifyAllStoppable, can stop on).
func (r *Router) TryResolve(profiles []string, lat, lon float64) (resolver.RouterPoint, *Error) {
	profs := make([]profile.Profile, len(profiles))
	for i, name := range profiles {
		p, ok := r.profiles[name]
		if !ok {
			return resolver.RouterPoint{}, newError(ProfileUnsupported, "unknown profile: "+name)
		}
		profs[i] = p
	}

	pred := func(e graph.EdgeID) bool {
		_, profileID := graph.UnpackEdgeData(r.g.EdgeData(e))
		attrs := r.reg.Attributes(profileID)
		for _, p := range profs {
			factor, _ := p.Factor(attrs)
			if factor <= 0 {
				return false
			}
			if r.opts.VerifyAllStoppable && !p.CanStop(attrs) {
				return false
			}
		}
		return true
	}

	rp, err := r.resolver.Resolve(lat, lon, pred)
	if err != nil {
		return resolver.RouterPoint{}, newError(ResolveFailed, err.Error())
	}
	return rp, nil
}

// TryCheckConnectivity reports whether the component reachable from point,
// under the named profile, extends at least as far as radiusWeight: true
// means the search was still finding further vertices when it crossed the
// radius, false means it ran out of reachable network before that.
func (r *Router) TryCheckConnectivity(ctx context.Context, profileName string, point resolver.RouterPoint, radiusWeight float32) (bool, *Error) {
	prof, ok := r.profiles[profileName]
	if !ok {
		return false, newError(ProfileUnsupported, "unknown profile: "+profileName)
	}
	engine, ok := r.plainEngines[profileName]
	if !ok {
		return false, newError(ProfileUnsupported, "no plain engine for profile: "+profileName)
	}

	seeds := routing.SourceFrontier(r.g, r.reg, prof, point)
	reached, err := engine.Connectivity(ctx, prof, seeds, radiusWeight, true)
	if err == routing.ErrCanceled {
		return false, newError(Canceled, err.Error())
	}
	if err != nil {
		return false, newError(InvariantViolation, err.Error())
	}
	return reached, nil
}

// TryCalculate computes a Route between two RouterPoints under the named
// profile, using the registered contraction hierarchy when one exists and
// falling back to the plain bidirectional engine otherwise.
func (r *Router) TryCalculate(ctx context.Context, profileName string, source, target resolver.RouterPoint) (routing.Route, *Error) {
	prof, ok := r.profiles[profileName]
	if !ok {
		return routing.Route{}, newError(ProfileUnsupported, "unknown profile: "+profileName)
	}

	if route, ok := routing.TryDirectRoute(r.g, r.reg, prof, source, target); ok {
		return route, nil
	}

	if chEngine, ok := r.chEngineFor(profileName); ok {
		return r.calculateCH(ctx, chEngine, prof, source, target)
	}
	return r.calculatePlain(ctx, profileName, prof, source, target)
}

func (r *Router) calculatePlain(ctx context.Context, profileName string, prof profile.Profile, source, target resolver.RouterPoint) (routing.Route, *Error) {
	engine := r.plainEngines[profileName]
	srcSeeds := routing.SourceFrontier(r.g, r.reg, prof, source)
	dstSeeds := routing.TargetFrontier(r.g, r.reg, prof, target)

	res, err := engine.BidirectionalSearch(ctx, prof, srcSeeds, dstSeeds)
	if err == routing.ErrCanceled {
		return routing.Route{}, newError(Canceled, err.Error())
	}
	if err != nil {
		return routing.Route{}, newError(InvariantViolation, err.Error())
	}
	defer res.Release()
	if !res.Found {
		return routing.Route{}, newError(RouteNotFound, "no path between source and target")
	}

	originVertex := res.SeedVertex(true)
	targetVertex := res.SeedVertex(false)
	interior := append(res.TraceForward(r.g), res.TraceBackward(r.g)...)

	route, buildErr := routing.BuildRoute(r.g, r.reg, prof, source, target, interior, originVertex, targetVertex)
	if buildErr != nil {
		return routing.Route{}, newError(RouteBuildFailed, buildErr.Error())
	}
	return route, nil
}

func (r *Router) calculateCH(ctx context.Context, engine *routing.CHEngine, prof profile.Profile, source, target resolver.RouterPoint) (routing.Route, *Error) {
	srcSeeds := routing.SourceFrontier(r.g, r.reg, prof, source)
	dstSeeds := routing.TargetFrontier(r.g, r.reg, prof, target)

	res, err := engine.Search(ctx, srcSeeds, dstSeeds)
	if err == routing.ErrCanceled {
		return routing.Route{}, newError(Canceled, err.Error())
	}
	if err != nil {
		return routing.Route{}, newError(InvariantViolation, err.Error())
	}
	defer res.Release()
	if !res.Found {
		return routing.Route{}, newError(RouteNotFound, "no path between source and target")
	}

	originVertex := res.SeedVertex(true)
	targetVertex := res.SeedVertex(false)
	interior := append(res.TraceForward(), res.TraceBackward()...)

	route, buildErr := routing.BuildRoute(r.g, r.reg, prof, source, target, interior, originVertex, targetVertex)
	if buildErr != nil {
		return routing.Route{}, newError(RouteBuildFailed, buildErr.Error())
	}
	return route, nil
}

// PairResult is one (source, target) outcome within a TryCalculateMany
// batch: a route on success, or a typed failure.
type PairResult struct {
	Route routing.Route
	Err   *Error
}

// TryCalculateMany computes routes for every (source, target) pair formed
// by the cross product of sources and targets, as independent TryCalculate
// calls. The source's many-to-many overload is declared but left
// unimplemented, with no specified complexity beyond "a batch of
// independent pairs" — this is the reading taken here; a shared-frontier
// optimization would change the failure-propagation contract per pair and
// isn't required by anything this engine's callers depend on.
func (r *Router) TryCalculateMany(ctx context.Context, profileName string, sources, targets []resolver.RouterPoint) [][]PairResult {
	out := make([][]PairResult, len(sources))
	for i, src := range sources {
		row := make([]PairResult, len(targets))
		for j, tgt := range targets {
			route, err := r.TryCalculate(ctx, profileName, src, tgt)
			row[j] = PairResult{Route: route, Err: err}
		}
		out[i] = row
	}
	return out
}
