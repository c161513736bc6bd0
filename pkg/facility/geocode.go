package facility

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/util"
)

type Geocoder struct {
	baseURL    string
	httpClient *http.Client
}

func NewGeocoder(baseURL string, timeout time.Duration) *Geocoder {
	if baseURL == "" {
		baseURL = "https://geocoding-api.open-meteo.com"
	}
	return &Geocoder{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Geocode resolves a city/area name into coordinates.
func (g *Geocoder) Geocode(ctx context.Context, name string) (geo.Coordinate, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return geo.Coordinate{}, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	if len(data.Results) == 0 {
		return geo.Coordinate{}, util.WrapErrorf(nil, util.ErrNotFound, "geocode: no result for %q", name)
	}
	return geo.NewCoordinate(data.Results[0].Latitude, data.Results[0].Longitude), nil
}
