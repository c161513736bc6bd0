// Package routeprovider wraps the external turn-by-turn routing service.
// Provider coordinates are [lon,lat]; everything past this adapter is
// Coordinate ([lat,lon]). The adapter never evaluates flood risk itself: for
// hazard avoidance it only forwards buffer polygons around the given zones
// to the provider's avoid_polygons option.
package routeprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/util"
	"github.com/golang/geo/s2"
	"go.uber.org/zap"
)

// avoidZoneHalfWidthDeg is the half-width of the square buffer drawn around
// each avoid zone, in degrees (~800 m at these latitudes).
const avoidZoneHalfWidthDeg = 0.008

type Config struct {
	APIKey  string
	BaseURL string
	Profile string
	Timeout time.Duration
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.openrouteservice.org",
		Profile: "driving-car",
		Timeout: 8 * time.Second,
	}
}

type Client struct {
	log        *zap.Logger
	apiKey     string
	baseURL    string
	profile    string
	httpClient *http.Client
}

// NewClient fails at construction when the credential is missing: a missing
// API key is a deployment problem, not a per-request condition.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "routeprovider: missing API key")
	}
	if cfg.Profile == "" {
		cfg.Profile = "driving-car"
	}
	return &Client{
		log:        log,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		profile:    cfg.Profile,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type directionsRequest struct {
	Coordinates [][]float64        `json:"coordinates"`
	Options     *directionsOptions `json:"options,omitempty"`
}

type directionsOptions struct {
	AvoidPolygons *multiPolygon `json:"avoid_polygons,omitempty"`
}

type multiPolygon struct {
	Type        string          `json:"type"`
	Coordinates [][][][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// FetchRoute asks the provider for a polyline from origin to destination.
// Non-empty avoidZones become buffer polygons the provider must route
// around. Any failure (transport, status, empty body) is returned as an
// error the caller treats as "no route for this candidate".
func (c *Client) FetchRoute(ctx context.Context, origin, destination geo.Coordinate, avoidZones []geo.Coordinate) ([]geo.Coordinate, error) {
	reqBody := directionsRequest{
		Coordinates: [][]float64{
			{origin.GetLon(), origin.GetLat()},
			{destination.GetLon(), destination.GetLat()},
		},
	}
	if len(avoidZones) > 0 {
		reqBody.Options = &directionsOptions{AvoidPolygons: avoidancePolygons(avoidZones)}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling directions request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, c.profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	if len(data.Features) == 0 || len(data.Features[0].Geometry.Coordinates) == 0 {
		return nil, fmt.Errorf("directions response contains no route geometry")
	}

	path := CoordsFromLonLatPairs(data.Features[0].Geometry.Coordinates)
	c.log.Debug("route fetched",
		zap.Int("points", len(path)),
		zap.Int("avoid_zones", len(avoidZones)))
	return path, nil
}

// CoordsFromLonLatPairs converts provider [lon,lat] pairs into Coordinates.
// The axis flip lives here and nowhere else.
func CoordsFromLonLatPairs(pairs [][]float64) []geo.Coordinate {
	coords := make([]geo.Coordinate, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) < 2 {
			continue
		}
		coords = append(coords, geo.NewCoordinate(pair[1], pair[0]))
	}
	return coords
}

// avoidancePolygons expands each zone into a closed square ring in GeoJSON
// MultiPolygon [lon,lat] order.
func avoidancePolygons(zones []geo.Coordinate) *multiPolygon {
	size := s2.LatLngFromDegrees(2*avoidZoneHalfWidthDeg, 2*avoidZoneHalfWidthDeg)

	polygons := make([][][][]float64, 0, len(zones))
	for _, zone := range zones {
		center := s2.LatLngFromDegrees(zone.GetLat(), zone.GetLon())
		rect := s2.RectFromCenterSize(center, size)

		lo, hi := rect.Lo(), rect.Hi()
		ring := [][]float64{
			{lo.Lng.Degrees(), lo.Lat.Degrees()},
			{hi.Lng.Degrees(), lo.Lat.Degrees()},
			{hi.Lng.Degrees(), hi.Lat.Degrees()},
			{lo.Lng.Degrees(), hi.Lat.Degrees()},
			{lo.Lng.Degrees(), lo.Lat.Degrees()},
		}
		polygons = append(polygons, [][][]float64{ring})
	}

	return &multiPolygon{Type: "MultiPolygon", Coordinates: polygons}
}
