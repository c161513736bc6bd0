package usecases

import (
	"context"

	"github.com/floodsafe/routing/pkg/engine"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
)

type SafeRoutePlanner interface {
	PlanSafeRoute(ctx context.Context, origin geo.Coordinate, province string, radiusMeters int) (*engine.Result, error)
	AssessPointRisk(ctx context.Context, point geo.Coordinate, province string) (*hazard.Reading, error)
	RouteCacheLen() int
}

type Geocoder interface {
	Geocode(ctx context.Context, name string) (geo.Coordinate, error)
}
