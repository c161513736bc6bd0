package usecases

import (
	"context"

	"github.com/floodsafe/routing/pkg/engine"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
	"github.com/floodsafe/routing/pkg/util"
	"go.uber.org/zap"
)

// CacheStats is cache occupancy for the diagnostics endpoint.
type CacheStats struct {
	RouteCacheEntries    int `json:"route_cache_entries"`
	HazardCacheEntries   int `json:"hazard_cache_entries"`
	FacilityCacheEntries int `json:"facility_cache_entries"`
}

type RoutingService struct {
	log              *zap.Logger
	planner          SafeRoutePlanner
	geocoder         Geocoder
	hazardCacheLen   func() int
	facilityCacheLen func() int
}

func NewRoutingService(log *zap.Logger, planner SafeRoutePlanner, geocoder Geocoder,
	hazardCacheLen, facilityCacheLen func() int) *RoutingService {
	return &RoutingService{
		log:              log,
		planner:          planner,
		geocoder:         geocoder,
		hazardCacheLen:   hazardCacheLen,
		facilityCacheLen: facilityCacheLen,
	}
}

// PlanSafeRoute resolves the origin (geocoding the area name when one is
// given) and runs the planner. The resolved origin is returned so callers
// can echo it back.
func (s *RoutingService) PlanSafeRoute(ctx context.Context, originLat, originLon float64,
	area, province string, radiusMeters int) (*engine.Result, geo.Coordinate, error) {
	origin := geo.NewCoordinate(originLat, originLon)

	if area != "" {
		geocoded, err := s.geocoder.Geocode(ctx, area)
		if err != nil {
			return nil, geo.Coordinate{}, util.WrapErrorf(err, util.ErrNotFound, "geocode %q", area)
		}
		origin = geocoded
		s.log.Info("geocoded area", zap.String("area", area),
			zap.Float64("lat", origin.GetLat()), zap.Float64("lon", origin.GetLon()))
	}

	result, err := s.planner.PlanSafeRoute(ctx, origin, province, radiusMeters)
	if err != nil {
		return nil, geo.Coordinate{}, err
	}

	return result, origin, nil
}

func (s *RoutingService) AssessRisk(ctx context.Context, lat, lon float64, province string) (*hazard.Reading, error) {
	return s.planner.AssessPointRisk(ctx, geo.NewCoordinate(lat, lon), province)
}

func (s *RoutingService) Stats() CacheStats {
	return CacheStats{
		RouteCacheEntries:    s.planner.RouteCacheLen(),
		HazardCacheEntries:   s.hazardCacheLen(),
		FacilityCacheEntries: s.facilityCacheLen(),
	}
}
