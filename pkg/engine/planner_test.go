package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/floodsafe/routing/pkg/facility"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
	"go.uber.org/zap"
)

var testOrigin = geo.NewCoordinate(31.5204, 74.3587)

type fakeFacilities struct {
	list []facility.Facility
	err  error
}

func (f *fakeFacilities) NearbyHospitals(ctx context.Context, center geo.Coordinate, radiusMeters int) ([]facility.Facility, error) {
	return f.list, f.err
}

type fakeRoutes struct {
	mu         sync.Mutex
	calls      int
	avoidCalls int

	paths      map[geo.Coordinate][]geo.Coordinate
	avoidPaths map[geo.Coordinate][]geo.Coordinate
	failFor    map[geo.Coordinate]bool
}

func newFakeRoutes() *fakeRoutes {
	return &fakeRoutes{
		paths:      make(map[geo.Coordinate][]geo.Coordinate),
		avoidPaths: make(map[geo.Coordinate][]geo.Coordinate),
		failFor:    make(map[geo.Coordinate]bool),
	}
}

func (r *fakeRoutes) FetchRoute(ctx context.Context, origin, destination geo.Coordinate, avoidZones []geo.Coordinate) ([]geo.Coordinate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	if r.failFor[destination] {
		return nil, errors.New("no route to destination")
	}
	if len(avoidZones) > 0 {
		r.avoidCalls++
		if p, ok := r.avoidPaths[destination]; ok {
			return p, nil
		}
	}
	p, ok := r.paths[destination]
	if !ok {
		return nil, errors.New("unknown destination")
	}
	return p, nil
}

type fakeHazards struct {
	flooded     map[geo.Coordinate]hazard.Severity
	unavailable map[geo.Coordinate]bool
}

func newFakeHazards() *fakeHazards {
	return &fakeHazards{
		flooded:     make(map[geo.Coordinate]hazard.Severity),
		unavailable: make(map[geo.Coordinate]bool),
	}
}

func (h *fakeHazards) AssessRisk(ctx context.Context, point geo.Coordinate, province string) (*hazard.Reading, error) {
	if h.unavailable[point] {
		return nil, errors.New("providers down")
	}
	if sev, ok := h.flooded[point]; ok {
		return &hazard.Reading{Flood: true, Severity: sev, Confidence: 0.9}, nil
	}
	return &hazard.Reading{Flood: false, Severity: hazard.SEVERITY_LOW, Confidence: 0.9}, nil
}

func (h *fakeHazards) BatchAssess(ctx context.Context, points []geo.Coordinate, province string) []hazard.Assessment {
	assessments := make([]hazard.Assessment, len(points))
	for i, p := range points {
		reading, err := h.AssessRisk(ctx, p, province)
		assessments[i] = hazard.Assessment{Point: p, Reading: reading, Err: err}
	}
	return assessments
}

// threeHospitals is the canonical scenario: A is nearest but its route
// crosses two high-risk points, C is farthest with one moderate warning, B
// sits in between and is clean.
func threeHospitals() ([]facility.Facility, *fakeRoutes, *fakeHazards) {
	hospitalA := facility.Facility{ID: 1, Name: "General Hospital", Lat: 31.5384, Lon: 74.3587}
	hospitalB := facility.Facility{ID: 2, Name: "Mayo Hospital", Lat: 31.5564, Lon: 74.3587}
	hospitalC := facility.Facility{ID: 3, Name: "Services Hospital", Lat: 31.5744, Lon: 74.3587}

	a1 := geo.NewCoordinate(31.526, 74.359)
	a2 := geo.NewCoordinate(31.532, 74.359)
	b1 := geo.NewCoordinate(31.532, 74.357)
	b2 := geo.NewCoordinate(31.544, 74.357)
	c1 := geo.NewCoordinate(31.538, 74.361)
	c2 := geo.NewCoordinate(31.556, 74.361)

	routes := newFakeRoutes()
	routes.paths[hospitalA.Coordinate()] = []geo.Coordinate{testOrigin, a1, a2, hospitalA.Coordinate()}
	routes.paths[hospitalB.Coordinate()] = []geo.Coordinate{testOrigin, b1, b2, hospitalB.Coordinate()}
	routes.paths[hospitalC.Coordinate()] = []geo.Coordinate{testOrigin, c1, c2, hospitalC.Coordinate()}

	hazards := newFakeHazards()
	hazards.flooded[a1] = hazard.SEVERITY_HIGH
	hazards.flooded[a2] = hazard.SEVERITY_HIGH
	hazards.flooded[c1] = hazard.SEVERITY_MODERATE

	return []facility.Facility{hospitalA, hospitalB, hospitalC}, routes, hazards
}

func newTestPlanner(facilities []facility.Facility, routes *fakeRoutes, hazards *fakeHazards) *RoutePlanner {
	return NewRoutePlanner(zap.NewNop(), &fakeFacilities{list: facilities}, routes, hazards, DefaultOptions())
}

func TestPlanSafeRouteRanking(t *testing.T) {
	facilities, routes, hazards := threeHospitals()
	planner := newTestPlanner(facilities, routes, hazards)

	result, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if err != nil {
		t.Fatalf("PlanSafeRoute: %v", err)
	}

	// the clean candidate wins even though it is not the nearest
	if result.Primary.Facility.ID != 2 {
		t.Fatalf("primary = %s (id %d), want Mayo Hospital (id 2)",
			result.Primary.Facility.Name, result.Primary.Facility.ID)
	}
	if !result.Primary.IsSafe || result.Primary.RiskScore != 0 {
		t.Errorf("primary IsSafe = %v RiskScore = %d, want safe with 0", result.Primary.IsSafe, result.Primary.RiskScore)
	}

	// alternates ordered by warning count: C (1 moderate) before A (2 high)
	if len(result.Alternates) != 2 {
		t.Fatalf("alternates = %d, want 2", len(result.Alternates))
	}
	if result.Alternates[0].Facility.ID != 3 || result.Alternates[1].Facility.ID != 1 {
		t.Errorf("alternate order = %d, %d; want 3, 1",
			result.Alternates[0].Facility.ID, result.Alternates[1].Facility.ID)
	}
	if result.Alternates[1].RiskScore != 2 {
		t.Errorf("flooded candidate RiskScore = %d, want 2", result.Alternates[1].RiskScore)
	}

	// safe primary: no reroute attempted
	if result.Rerouted {
		t.Error("safe primary must not be rerouted")
	}
	if routes.avoidCalls != 0 {
		t.Errorf("avoid-zone fetches = %d, want 0", routes.avoidCalls)
	}

	if result.Quality.DroppedCandidates != 0 || result.Quality.DegradedConfidence {
		t.Errorf("quality = %+v, want clean", result.Quality)
	}
	if result.Quality.SampledPoints == 0 {
		t.Error("SampledPoints not accounted")
	}
}

func TestPlanSafeRouteCrossCheck(t *testing.T) {
	facilities, routes, hazards := threeHospitals()
	planner := newTestPlanner(facilities, routes, hazards)

	result, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if err != nil {
		t.Fatalf("PlanSafeRoute: %v", err)
	}

	if result.GraphStats == nil {
		t.Fatal("GraphStats missing")
	}
	// user + 3 hospitals + one intersection per sampled point past the
	// user's own position (4-point path -> 3 intersections)
	if result.GraphStats.CountByKind["hospital"] != 3 || result.GraphStats.CountByKind["user"] != 1 ||
		result.GraphStats.CountByKind["intersection"] != 3 {
		t.Errorf("CountByKind = %v", result.GraphStats.CountByKind)
	}

	if result.PathDetails == nil {
		t.Fatal("PathDetails missing")
	}
	if result.PathDetails.TotalDistanceKm <= 0 {
		t.Errorf("TotalDistanceKm = %v, want > 0", result.PathDetails.TotalDistanceKm)
	}
	if result.PathDetails.HighRiskSegments != 0 {
		t.Errorf("clean primary path has %d high-risk segments", result.PathDetails.HighRiskSegments)
	}
}

func TestPlanSafeRouteCrossCheckSinglePointPath(t *testing.T) {
	hospital := facility.Facility{ID: 7, Name: "City Hospital", Lat: 31.5384, Lon: 74.3587}

	routes := newFakeRoutes()
	routes.paths[hospital.Coordinate()] = []geo.Coordinate{testOrigin}

	planner := newTestPlanner([]facility.Facility{hospital}, routes, newFakeHazards())

	result, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if err != nil {
		t.Fatalf("PlanSafeRoute: %v", err)
	}

	// a one-point path collapses onto the user node: no intersections, and
	// the user connects straight to the hospital
	if result.GraphStats.CountByKind["intersection"] != 0 {
		t.Errorf("CountByKind = %v, want no intersections", result.GraphStats.CountByKind)
	}
	if result.PathDetails == nil {
		t.Fatal("PathDetails missing for a one-point path")
	}
	if result.PathDetails.TotalDistanceKm <= 0 {
		t.Errorf("TotalDistanceKm = %v, want > 0", result.PathDetails.TotalDistanceKm)
	}
}

func TestPlanSafeRouteReroute(t *testing.T) {
	hospital := facility.Facility{ID: 9, Name: "District Hospital", Lat: 31.5564, Lon: 74.3587}

	d1 := geo.NewCoordinate(31.532, 74.359)
	d2 := geo.NewCoordinate(31.544, 74.359)
	d3 := geo.NewCoordinate(31.544, 74.350)

	routes := newFakeRoutes()
	routes.paths[hospital.Coordinate()] = []geo.Coordinate{testOrigin, d1, d2, hospital.Coordinate()}
	routes.avoidPaths[hospital.Coordinate()] = []geo.Coordinate{testOrigin, d3, hospital.Coordinate()}

	hazards := newFakeHazards()
	hazards.flooded[d1] = hazard.SEVERITY_HIGH
	hazards.flooded[d2] = hazard.SEVERITY_SEVERE

	planner := newTestPlanner([]facility.Facility{hospital}, routes, hazards)

	result, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if err != nil {
		t.Fatalf("PlanSafeRoute: %v", err)
	}

	if !result.Rerouted {
		t.Fatal("expected reroute: detour removes both warnings")
	}
	if routes.avoidCalls != 1 {
		t.Errorf("avoid-zone fetches = %d, want 1", routes.avoidCalls)
	}
	if !result.Primary.IsSafe || len(result.Primary.Warnings) != 0 {
		t.Errorf("rerouted primary warnings = %d, want 0", len(result.Primary.Warnings))
	}
	if len(result.Primary.Path) != 3 {
		t.Errorf("primary path len = %d, want the detour's 3", len(result.Primary.Path))
	}
}

func TestPlanSafeRouteRerouteNotImproving(t *testing.T) {
	hospital := facility.Facility{ID: 9, Name: "District Hospital", Lat: 31.5564, Lon: 74.3587}

	d1 := geo.NewCoordinate(31.532, 74.359)
	d2 := geo.NewCoordinate(31.544, 74.359)
	d3 := geo.NewCoordinate(31.544, 74.350)
	d4 := geo.NewCoordinate(31.550, 74.350)

	routes := newFakeRoutes()
	routes.paths[hospital.Coordinate()] = []geo.Coordinate{testOrigin, d1, d2, hospital.Coordinate()}
	routes.avoidPaths[hospital.Coordinate()] = []geo.Coordinate{testOrigin, d3, d4, hospital.Coordinate()}

	hazards := newFakeHazards()
	hazards.flooded[d1] = hazard.SEVERITY_HIGH
	hazards.flooded[d2] = hazard.SEVERITY_SEVERE
	// the detour is just as flooded
	hazards.flooded[d3] = hazard.SEVERITY_HIGH
	hazards.flooded[d4] = hazard.SEVERITY_SEVERE

	planner := newTestPlanner([]facility.Facility{hospital}, routes, hazards)

	result, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if err != nil {
		t.Fatalf("PlanSafeRoute: %v", err)
	}

	if result.Rerouted {
		t.Error("reroute without strict improvement must be discarded")
	}
	if len(result.Primary.Path) != 4 {
		t.Errorf("primary path len = %d, want the original 4", len(result.Primary.Path))
	}
}

func TestPlanSafeRouteDroppedCandidates(t *testing.T) {
	facilities, routes, hazards := threeHospitals()
	// nearest hospital becomes unroutable
	routes.failFor[facilities[0].Coordinate()] = true

	planner := newTestPlanner(facilities, routes, hazards)

	result, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if err != nil {
		t.Fatalf("PlanSafeRoute: %v", err)
	}

	if result.Primary.Facility.ID != 2 {
		t.Errorf("primary id = %d, want 2", result.Primary.Facility.ID)
	}
	if len(result.Alternates) != 1 {
		t.Errorf("alternates = %d, want 1", len(result.Alternates))
	}
	if result.Quality.DroppedCandidates != 1 {
		t.Errorf("DroppedCandidates = %d, want 1", result.Quality.DroppedCandidates)
	}
	if !result.Quality.DegradedConfidence {
		t.Error("dropped candidate must degrade confidence")
	}
}

func TestPlanSafeRouteIncompleteAssessments(t *testing.T) {
	facilities, routes, hazards := threeHospitals()
	// one sample point on the clean route cannot be assessed
	hazards.unavailable[geo.NewCoordinate(31.532, 74.357)] = true

	planner := newTestPlanner(facilities, routes, hazards)

	result, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if err != nil {
		t.Fatalf("PlanSafeRoute: %v", err)
	}

	// unavailable points contribute no warnings, candidate stays primary
	if result.Primary.Facility.ID != 2 {
		t.Errorf("primary id = %d, want 2", result.Primary.Facility.ID)
	}
	if result.Quality.IncompleteAssessments != 1 {
		t.Errorf("IncompleteAssessments = %d, want 1", result.Quality.IncompleteAssessments)
	}
	if !result.Quality.DegradedConfidence {
		t.Error("incomplete assessment must degrade confidence")
	}
}

func TestPlanSafeRouteNoFacilities(t *testing.T) {
	planner := newTestPlanner(nil, newFakeRoutes(), newFakeHazards())

	_, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if !errors.Is(err, ErrNoFacilities) {
		t.Errorf("err = %v, want ErrNoFacilities", err)
	}
}

func TestPlanSafeRouteNoRoutableCandidate(t *testing.T) {
	facilities, routes, hazards := threeHospitals()
	for _, f := range facilities {
		routes.failFor[f.Coordinate()] = true
	}

	planner := newTestPlanner(facilities, routes, hazards)

	_, err := planner.PlanSafeRoute(context.Background(), testOrigin, "punjab", 15000)
	if !errors.Is(err, ErrNoRoutableCandidate) {
		t.Errorf("err = %v, want ErrNoRoutableCandidate", err)
	}
}

func TestPlanSafeRouteRouteCache(t *testing.T) {
	facilities, routes, hazards := threeHospitals()
	planner := newTestPlanner(facilities, routes, hazards)
	ctx := context.Background()

	if _, err := planner.PlanSafeRoute(ctx, testOrigin, "punjab", 15000); err != nil {
		t.Fatalf("first plan: %v", err)
	}
	first := routes.calls

	if _, err := planner.PlanSafeRoute(ctx, testOrigin, "punjab", 15000); err != nil {
		t.Fatalf("second plan: %v", err)
	}
	if routes.calls != first {
		t.Errorf("route fetches = %d after repeat, want %d (cache hit)", routes.calls, first)
	}
	if planner.RouteCacheLen() != 3 {
		t.Errorf("RouteCacheLen = %d, want 3", planner.RouteCacheLen())
	}

	// a different province is a different cache key
	if _, err := planner.PlanSafeRoute(ctx, testOrigin, "sindh", 15000); err != nil {
		t.Fatalf("third plan: %v", err)
	}
	if routes.calls == first {
		t.Error("distinct province must miss the route cache")
	}
}
