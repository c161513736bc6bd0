package controllers

import (
	"context"

	"github.com/floodsafe/routing/pkg/engine"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
	"github.com/floodsafe/routing/pkg/http/usecases"
)

type RoutingService interface {
	PlanSafeRoute(ctx context.Context, originLat, originLon float64, area, province string,
		radiusMeters int) (*engine.Result, geo.Coordinate, error)
	AssessRisk(ctx context.Context, lat, lon float64, province string) (*hazard.Reading, error)
	Stats() usecases.CacheStats
}
