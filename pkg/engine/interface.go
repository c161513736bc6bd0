package engine

import (
	"context"

	"github.com/floodsafe/routing/pkg/facility"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
)

type FacilityFinder interface {
	NearbyHospitals(ctx context.Context, center geo.Coordinate, radiusMeters int) ([]facility.Facility, error)
}

type RouteProvider interface {
	FetchRoute(ctx context.Context, origin, destination geo.Coordinate, avoidZones []geo.Coordinate) ([]geo.Coordinate, error)
}

type HazardOracle interface {
	AssessRisk(ctx context.Context, point geo.Coordinate, province string) (*hazard.Reading, error)
	BatchAssess(ctx context.Context, points []geo.Coordinate, province string) []hazard.Assessment
}
