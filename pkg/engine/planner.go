// Package engine holds the routing orchestrator: fetch candidate
// facilities, route and risk-assess each candidate concurrently, rank them
// safety-first, attempt a hazard-avoiding reroute of the best one, and
// report the final plan with an explanatory graph cross-check.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/floodsafe/routing/pkg/cache"
	"github.com/floodsafe/routing/pkg/datastructure"
	"github.com/floodsafe/routing/pkg/engine/routing"
	"github.com/floodsafe/routing/pkg/facility"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
	"github.com/floodsafe/routing/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// MaxFacilities is how many nearby facilities to consider at most (K).
	MaxFacilities int
	// MaxCandidates is how many of the nearest facilities get a full
	// route + risk assessment (N <= K).
	MaxCandidates int
	// SampleSize bounds hazard lookups per route polyline.
	SampleSize int
	// RouteCacheCapacity bounds the route result LRU.
	RouteCacheCapacity int
}

func DefaultOptions() Options {
	return Options{
		MaxFacilities:      8,
		MaxCandidates:      3,
		SampleSize:         8,
		RouteCacheCapacity: 50,
	}
}

type cachedRoute struct {
	path        []geo.Coordinate
	samples     []geo.Coordinate
	assessments []hazard.Assessment
}

// RoutePlanner is the long-lived routing service. The caches are the only
// state shared across concurrent requests; the road graph is built fresh
// per request.
type RoutePlanner struct {
	log        *zap.Logger
	facilities FacilityFinder
	routes     RouteProvider
	hazards    HazardOracle
	routeCache *cache.LRU[string, cachedRoute]
	opts       Options
}

func NewRoutePlanner(log *zap.Logger, facilities FacilityFinder, routes RouteProvider,
	hazards HazardOracle, opts Options) *RoutePlanner {
	if opts.MaxFacilities < 1 {
		opts = DefaultOptions()
	}
	return &RoutePlanner{
		log:        log,
		facilities: facilities,
		routes:     routes,
		hazards:    hazards,
		routeCache: cache.NewLRU[string, cachedRoute](opts.RouteCacheCapacity),
		opts:       opts,
	}
}

// RouteCacheLen for diagnostics.
func (p *RoutePlanner) RouteCacheLen() int {
	return p.routeCache.Len()
}

// AssessPointRisk is the standalone risk check for callers that do not need
// full routing.
func (p *RoutePlanner) AssessPointRisk(ctx context.Context, point geo.Coordinate, province string) (*hazard.Reading, error) {
	return p.hazards.AssessRisk(ctx, point, province)
}

// PlanSafeRoute finds the safest route from origin to a nearby facility.
// Fails only when no facility is in the radius or no candidate could be
// routed; everything else degrades into the result's Quality accounting.
func (p *RoutePlanner) PlanSafeRoute(ctx context.Context, origin geo.Coordinate, province string, radiusMeters int) (*Result, error) {
	facilities, err := p.facilities.NearbyHospitals(ctx, origin, radiusMeters)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "planner: facility lookup failed")
	}
	if len(facilities) == 0 {
		return nil, util.WrapErrorf(ErrNoFacilities, util.ErrNotFound,
			"planner: no facilities within %dm", radiusMeters)
	}
	if len(facilities) > p.opts.MaxFacilities {
		facilities = facilities[:p.opts.MaxFacilities]
	}

	toRoute := facilities
	if len(toRoute) > p.opts.MaxCandidates {
		toRoute = toRoute[:p.opts.MaxCandidates]
	}

	candidates := make([]*Candidate, len(toRoute))
	var dropped int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, fac := range toRoute {
		i, fac := i, fac
		g.Go(func() error {
			candidate, err := p.buildCandidate(gctx, origin, fac, province, nil)
			if err != nil {
				p.log.Warn("candidate dropped, route unavailable",
					zap.String("facility", fac.Name), zap.Error(err))
				mu.Lock()
				dropped++
				mu.Unlock()
				return nil
			}
			candidates[i] = candidate
			return nil
		})
	}
	_ = g.Wait()

	usable := candidates[:0]
	for _, c := range candidates {
		if c != nil {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return nil, util.WrapErrorf(ErrNoRoutableCandidate, util.ErrNotFound,
			"planner: all %d candidate route fetches failed", len(toRoute))
	}

	// safety-first ranking: any zero-warning candidate beats any candidate
	// with warnings regardless of distance
	sort.SliceStable(usable, func(i, j int) bool {
		if usable[i].IsSafe != usable[j].IsSafe {
			return usable[i].IsSafe
		}
		if usable[i].RiskScore != usable[j].RiskScore {
			return usable[i].RiskScore < usable[j].RiskScore
		}
		return usable[i].DistanceKm < usable[j].DistanceKm
	})

	primary := usable[0]
	rerouted := p.attemptReroute(ctx, origin, primary, province)

	result := &Result{
		Primary:    primary,
		Alternates: usable[1:],
		Rerouted:   rerouted,
	}

	p.crossCheck(origin, primary, facilities, result)
	p.accountQuality(usable, dropped, result)

	p.log.Info("route planned",
		zap.String("facility", primary.Facility.Name),
		zap.Float64("distance_km", primary.DistanceKm),
		zap.Bool("is_safe", primary.IsSafe),
		zap.Int("warnings", len(primary.Warnings)),
		zap.Bool("rerouted", rerouted),
		zap.Int("dropped_candidates", dropped))
	return result, nil
}

// buildCandidate fetches (or recalls) the route to one facility, samples it
// and assesses hazard risk at the sample points.
func (p *RoutePlanner) buildCandidate(ctx context.Context, origin geo.Coordinate,
	fac facility.Facility, province string, avoidZones []geo.Coordinate) (*Candidate, error) {

	key := routeCacheKey(origin, fac.Coordinate(), province, len(avoidZones))

	entry, hit := p.routeCache.Get(key)
	if !hit {
		path, err := p.routes.FetchRoute(ctx, origin, fac.Coordinate(), avoidZones)
		if err != nil {
			return nil, err
		}
		samples := geo.SamplePolyline(path, p.opts.SampleSize)
		entry = cachedRoute{
			path:        path,
			samples:     samples,
			assessments: p.hazards.BatchAssess(ctx, samples, province),
		}
		p.routeCache.Set(key, entry)
	}

	candidate := &Candidate{
		Facility:    fac,
		DistanceKm:  geo.HaversineDistance(origin, fac.Coordinate()),
		Path:        entry.path,
		Warnings:    []Warning{},
		samples:     entry.samples,
		assessments: entry.assessments,
	}
	for _, a := range entry.assessments {
		if a.Unavailable() {
			candidate.unavailable++
			continue
		}
		if a.Reading != nil && a.Reading.Flood {
			candidate.Warnings = append(candidate.Warnings, Warning{
				Lat:        a.Point.GetLat(),
				Lon:        a.Point.GetLon(),
				Severity:   a.Reading.Severity,
				Confidence: a.Reading.Confidence,
			})
		}
	}
	candidate.IsSafe = len(candidate.Warnings) == 0
	candidate.RiskScore = len(candidate.Warnings)
	return candidate, nil
}

// attemptReroute asks the provider to route around the primary candidate's
// high/severe warning zones. The reroute is kept only when it strictly
// lowers the warning count; a failed or no-better attempt is discarded
// silently, never surfaced as an error.
func (p *RoutePlanner) attemptReroute(ctx context.Context, origin geo.Coordinate,
	primary *Candidate, province string) bool {

	if primary.IsSafe {
		return false
	}
	zones := primary.highRiskZones()
	if len(zones) == 0 {
		return false
	}

	rerouted, err := p.buildCandidate(ctx, origin, primary.Facility, province, zones)
	if err != nil {
		p.log.Warn("reroute attempt failed", zap.Error(err))
		return false
	}
	if len(rerouted.Warnings) >= len(primary.Warnings) {
		p.log.Debug("reroute did not improve warning count, keeping original",
			zap.Int("before", len(primary.Warnings)),
			zap.Int("after", len(rerouted.Warnings)))
		return false
	}

	primary.Path = rerouted.Path
	primary.Warnings = rerouted.Warnings
	primary.IsSafe = rerouted.IsSafe
	primary.RiskScore = rerouted.RiskScore
	primary.samples = rerouted.samples
	primary.assessments = rerouted.assessments
	primary.unavailable = rerouted.unavailable
	return true
}

// crossCheck builds the request-scoped road graph from the primary
// candidate's sampled path and runs the safety-weighted search over it. The
// result is explanatory: scoring already happened on raw warning counts.
func (p *RoutePlanner) crossCheck(origin geo.Coordinate, primary *Candidate,
	facilities []facility.Facility, result *Result) {

	graph := buildRoadNetwork(origin, primary, facilities)
	stats := graph.Stats()
	result.GraphStats = &stats

	goal := facilityNodeID(primary.Facility)
	search := routing.NewAStar(graph)
	sp, err := search.ShortestPath(userNodeID, goal, true)
	if err != nil {
		p.log.Warn("explanatory path search failed", zap.Error(err))
		return
	}
	details := graph.GetPathDetails(sp.Path)
	result.PathDetails = &details
}

func (p *RoutePlanner) accountQuality(candidates []*Candidate, dropped int, result *Result) {
	quality := Quality{DroppedCandidates: dropped}
	for _, c := range candidates {
		quality.SampledPoints += len(c.samples)
		quality.IncompleteAssessments += c.unavailable
	}
	quality.DegradedConfidence = quality.IncompleteAssessments > 0 || dropped > 0
	result.Quality = quality
}

const userNodeID = "user"

func facilityNodeID(f facility.Facility) string {
	return fmt.Sprintf("hospital_%d", f.ID)
}

// buildRoadNetwork lays the sampled route out as a chain of intersection
// nodes from the user to the destination facility, with each segment
// carrying the flood risk assessed at its far endpoint.
func buildRoadNetwork(origin geo.Coordinate, primary *Candidate, facilities []facility.Facility) *datastructure.RoadNetwork {
	graph := datastructure.NewRoadNetwork()
	graph.AddNode(userNodeID, origin.GetLat(), origin.GetLon(), datastructure.KIND_USER)

	for _, f := range facilities {
		graph.AddNode(facilityNodeID(f), f.Lat, f.Lon, datastructure.KIND_HOSPITAL)
	}

	// Sample 0 is the user's own position, so the chain starts at the user
	// node and sample 0 never becomes a separate intersection.
	samples := primary.samples
	for i := 1; i < len(samples); i++ {
		graph.AddNode(intersectionNodeID(i), samples[i].GetLat(), samples[i].GetLon(), datastructure.KIND_INTERSECTION)
	}

	prev := userNodeID
	for i := 1; i < len(samples); i++ {
		distance := geo.HaversineDistance(samples[i-1], samples[i])
		_ = graph.AddEdge(prev, intersectionNodeID(i), distance, sampleRisk(primary, i))
		prev = intersectionNodeID(i)
	}

	if len(samples) > 0 {
		last := samples[len(samples)-1]
		distance := geo.HaversineDistance(last, primary.Facility.Coordinate())
		_ = graph.AddEdge(prev, facilityNodeID(primary.Facility), distance, 0)
	}
	return graph
}

func intersectionNodeID(i int) string {
	return fmt.Sprintf("intersection_%d", i)
}

// sampleRisk is the [0,1] edge risk at sample index i, zero when the
// assessment was unavailable (fail-open; counted in Quality).
func sampleRisk(c *Candidate, i int) float64 {
	if i >= len(c.assessments) {
		return 0
	}
	return c.assessments[i].Reading.RiskWeight()
}

func routeCacheKey(origin, destination geo.Coordinate, province string, avoidCount int) string {
	return fmt.Sprintf("%.4f,%.4f-%.4f,%.4f-%s-%d",
		origin.GetLat(), origin.GetLon(),
		destination.GetLat(), destination.GetLon(),
		province, avoidCount)
}
