// Package hazard turns external environmental signals (weather,
// vegetation-moisture and snow proxies) into a normalized flood-risk reading
// per point, through an external prediction model. Lookups are cached by
// rounded coordinate and fail open: a point whose data providers are down is
// reported unavailable, never fatal, so routing degrades instead of blocking.
package hazard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/floodsafe/routing/pkg"
	"github.com/floodsafe/routing/pkg/cache"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reading is a normalized flood-risk assessment for one point.
type Reading struct {
	Flood      bool     `json:"flood"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
	Factors    []string `json:"factors,omitempty"`
	Features   Features `json:"features"`
}

// RiskWeight is the [0,1] edge-risk contribution of this reading.
func (r *Reading) RiskWeight() float64 {
	if r == nil || !r.Flood {
		return 0
	}
	return r.Severity.RiskWeight()
}

// Assessment pairs a point with its reading, or with the error that made it
// unavailable.
type Assessment struct {
	Point   geo.Coordinate
	Reading *Reading
	Err     error
}

// Unavailable reports whether the point could not be assessed. Unavailable
// points contribute zero risk downstream but must be counted as degraded
// confidence by the caller.
func (a Assessment) Unavailable() bool {
	return a.Err != nil
}

type Config struct {
	WeatherBaseURL    string
	VegetationBaseURL string
	PredictorBaseURL  string
	Timeout           time.Duration
	CacheCapacity     int
	CacheTTL          time.Duration
}

func DefaultConfig(predictorBaseURL string) Config {
	return Config{
		WeatherBaseURL:    "https://api.open-meteo.com",
		VegetationBaseURL: "https://power.larc.nasa.gov",
		PredictorBaseURL:  predictorBaseURL,
		Timeout:           8 * time.Second,
		CacheCapacity:     512,
		CacheTTL:          30 * time.Minute,
	}
}

// Oracle composes the three environmental signals into one payload for the
// prediction model and memoizes readings by rounded coordinate.
type Oracle struct {
	log        *zap.Logger
	cache      *cache.TTLLRU[string, *Reading]
	weather    *weatherClient
	vegetation *vegetationClient
	predictor  *predictorClient
}

func NewOracle(cfg Config, log *zap.Logger) *Oracle {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Oracle{
		log:        log,
		cache:      cache.NewTTLLRU[string, *Reading](cfg.CacheCapacity, cfg.CacheTTL),
		weather:    &weatherClient{baseURL: cfg.WeatherBaseURL, httpClient: httpClient},
		vegetation: &vegetationClient{baseURL: cfg.VegetationBaseURL, httpClient: httpClient, now: time.Now},
		predictor:  &predictorClient{baseURL: cfg.PredictorBaseURL, httpClient: httpClient, now: time.Now},
	}
}

// Cache exposes the reading cache, for stats and tests.
func (o *Oracle) Cache() *cache.TTLLRU[string, *Reading] {
	return o.cache
}

func cacheKey(point geo.Coordinate) string {
	lat := util.RoundFloat(point.GetLat(), pkg.HAZARD_CACHE_PRECISION)
	lon := util.RoundFloat(point.GetLon(), pkg.HAZARD_CACHE_PRECISION)
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// AssessRisk returns the flood-risk reading for a point. A cache hit
// short-circuits all external fetches. Any failed external call makes the
// point unavailable (error return); the caller decides how to degrade.
func (o *Oracle) AssessRisk(ctx context.Context, point geo.Coordinate, province string) (*Reading, error) {
	key := cacheKey(point)
	if reading, ok := o.cache.Get(key); ok {
		return reading, nil
	}

	temperature, dailyPrecip, rainfallNow, err := o.weather.fetch(ctx, point.GetLat(), point.GetLon())
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "hazard: weather fetch failed for %s", key)
	}

	vegetation, err := o.vegetation.fetch(ctx, point.GetLat(), point.GetLon())
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "hazard: vegetation fetch failed for %s", key)
	}

	snowIce := o.weather.fetchSnow(ctx, point.GetLat(), point.GetLon())

	features := Features{
		Temperature:     temperature,
		PrecipitationMm: dailyPrecip,
		RainfallNowMm:   rainfallNow,
		Vegetation:      vegetation,
		SnowIce:         snowIce,
	}

	prediction, err := o.predictor.predict(ctx, features, province)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "hazard: prediction failed for %s", key)
	}

	factors := prediction.Explanation
	if len(factors) == 0 {
		factors = ExplainFeatures(features, province)
	}

	reading := &Reading{
		Flood:      prediction.Flood,
		Severity:   ParseSeverity(prediction.Severity),
		Confidence: util.Clamp01(prediction.Confidence),
		Factors:    factors,
		Features:   features,
	}
	o.cache.Set(key, reading)

	return reading, nil
}

// BatchAssess assesses all points concurrently and preserves input order in
// the output. Individual failures are contained: the corresponding slot is
// marked unavailable and the rest of the batch proceeds.
func (o *Oracle) BatchAssess(ctx context.Context, points []geo.Coordinate, province string) []Assessment {
	assessments := make([]Assessment, len(points))

	g, ctx := errgroup.WithContext(ctx)
	for i, point := range points {
		i, point := i, point
		g.Go(func() error {
			reading, err := o.AssessRisk(ctx, point, province)
			if err != nil {
				o.log.Warn("hazard assessment unavailable",
					zap.Float64("lat", point.GetLat()),
					zap.Float64("lon", point.GetLon()),
					zap.Error(err))
			}
			assessments[i] = Assessment{Point: point, Reading: reading, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return assessments
}
