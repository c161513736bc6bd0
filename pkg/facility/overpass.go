// Package facility finds candidate destinations (hospitals) near a point
// via an Overpass-style lookup, behind a TTL cache and an r-tree of
// previously fetched facilities.
package facility

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/floodsafe/routing/pkg"
	"github.com/floodsafe/routing/pkg/cache"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/util"
	"go.uber.org/zap"
)

type Facility struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (f Facility) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(f.Lat, f.Lon)
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	// MinIndexHits is how many indexed facilities inside the radius are
	// enough to skip the network fetch on a cache miss.
	MinIndexHits int
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://overpass-api.de/api/interpreter",
		Timeout:      8 * time.Second,
		CacheTTL:     time.Hour,
		MinIndexHits: 3,
	}
}

type Client struct {
	log          *zap.Logger
	baseURL      string
	httpClient   *http.Client
	cache        *cache.HashMapTTL[string, []Facility]
	index        *Index
	minIndexHits int
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		log:          log,
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		cache:        cache.NewHashMapTTL[string, []Facility](cfg.CacheTTL),
		index:        NewIndex(),
		minIndexHits: cfg.MinIndexHits,
	}
}

// Cache exposes the lookup cache, for stats and tests.
func (c *Client) Cache() *cache.HashMapTTL[string, []Facility] {
	return c.cache
}

// SpatialIndex exposes the r-tree, for stats.
func (c *Client) SpatialIndex() *Index {
	return c.index
}

func lookupKey(center geo.Coordinate, radiusMeters int) string {
	lat := util.RoundFloat(center.GetLat(), pkg.FACILITY_CACHE_PRECISION)
	lon := util.RoundFloat(center.GetLon(), pkg.FACILITY_CACHE_PRECISION)
	return fmt.Sprintf("%.3f,%.3f,%d", lat, lon, radiusMeters)
}

type overpassResponse struct {
	Elements []struct {
		ID   int64   `json:"id"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
		Tags struct {
			Name string `json:"name"`
		} `json:"tags"`
	} `json:"elements"`
}

// NearbyHospitals returns hospitals within radiusMeters of center, ordered
// by great-circle distance. Resolution order: exact-key TTL cache, then the
// spatial index of earlier fetches, then the external lookup.
func (c *Client) NearbyHospitals(ctx context.Context, center geo.Coordinate, radiusMeters int) ([]Facility, error) {
	key := lookupKey(center, radiusMeters)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	radiusKm := float64(radiusMeters) / 1000.0
	if indexed := c.index.Within(center, radiusKm); len(indexed) >= c.minIndexHits {
		c.log.Debug("facility lookup served from spatial index",
			zap.String("key", key), zap.Int("count", len(indexed)))
		c.cache.Set(key, indexed)
		return indexed, nil
	}

	query := fmt.Sprintf(`[out:json];node["amenity"="hospital"](around:%d,%f,%f);out;`,
		radiusMeters, center.GetLat(), center.GetLon())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	facilities := make([]Facility, 0, len(data.Elements))
	for _, element := range data.Elements {
		name := element.Tags.Name
		if name == "" {
			name = "Medical Center"
		}
		f := Facility{ID: element.ID, Name: name, Lat: element.Lat, Lon: element.Lon}
		facilities = append(facilities, f)
		c.index.Insert(f)
	}

	sort.Slice(facilities, func(i, j int) bool {
		di := geo.CalculateHaversineDistance(center.GetLat(), center.GetLon(), facilities[i].Lat, facilities[i].Lon)
		dj := geo.CalculateHaversineDistance(center.GetLat(), center.GetLon(), facilities[j].Lat, facilities[j].Lon)
		return di < dj
	})

	c.cache.Set(key, facilities)
	c.log.Info("facilities fetched",
		zap.String("key", key), zap.Int("count", len(facilities)))
	return facilities, nil
}
