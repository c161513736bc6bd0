package hazard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/floodsafe/routing/pkg/util"
)

// Features is the fused environmental signal payload for one point.
type Features struct {
	Temperature     float64 `json:"temperature"`
	PrecipitationMm float64 `json:"precipitation_mm"`
	RainfallNowMm   float64 `json:"rainfall_now_mm"`
	Vegetation      float64 `json:"vegetation"`
	SnowIce         float64 `json:"snow_ice"`
}

type weatherClient struct {
	baseURL    string
	httpClient *http.Client
}

type weatherResponse struct {
	CurrentWeather struct {
		Temperature   float64 `json:"temperature"`
		Precipitation float64 `json:"precipitation"`
	} `json:"current_weather"`
	Daily struct {
		PrecipitationSum []float64 `json:"precipitation_sum"`
		SnowfallSum      []float64 `json:"snowfall_sum"`
	} `json:"daily"`
}

// fetch returns current temperature (°C), daily precipitation sum (mm) and
// current rainfall (mm) for a point.
func (w *weatherClient) fetch(ctx context.Context, lat, lon float64) (temperature, dailyPrecip, rainfallNow float64, err error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("current_weather", "true")
	q.Set("daily", "precipitation_sum")
	q.Set("timezone", "auto")

	var data weatherResponse
	if err := getJSON(ctx, w.httpClient, w.baseURL+"/v1/forecast?"+q.Encode(), &data); err != nil {
		return 0, 0, 0, err
	}

	dailyPrecip = 0
	if len(data.Daily.PrecipitationSum) > 0 {
		dailyPrecip = data.Daily.PrecipitationSum[0]
	}
	return data.CurrentWeather.Temperature, dailyPrecip, data.CurrentWeather.Precipitation, nil
}

// fetchSnow returns the snowfall sum for the day, normalized into [0,1] as a
// snow/ice (NDSI-like) proxy. Missing snow data is not an error: most of the
// service area never sees snow, so absent readings degrade to 0.
func (w *weatherClient) fetchSnow(ctx context.Context, lat, lon float64) float64 {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("daily", "snowfall_sum")
	q.Set("timezone", "auto")

	var data weatherResponse
	if err := getJSON(ctx, w.httpClient, w.baseURL+"/v1/forecast?"+q.Encode(), &data); err != nil {
		return 0
	}
	if len(data.Daily.SnowfallSum) == 0 {
		return 0
	}
	return util.Clamp01(data.Daily.SnowfallSum[0] / 10.0)
}

type vegetationClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

type vegetationResponse struct {
	Properties struct {
		Parameter struct {
			Gwetroot map[string]float64 `json:"GWETROOT"`
		} `json:"parameter"`
	} `json:"properties"`
}

// fetch returns a soil-moisture scalar for the trailing week, normalized
// into [0,1] as an NDVI-like vegetation-moisture proxy.
func (v *vegetationClient) fetch(ctx context.Context, lat, lon float64) (float64, error) {
	end := v.now()
	start := end.AddDate(0, 0, -7)

	q := url.Values{}
	q.Set("parameters", "GWETROOT")
	q.Set("community", "AG")
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("start", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("format", "JSON")

	var data vegetationResponse
	if err := getJSON(ctx, v.httpClient, v.baseURL+"/api/temporal/daily/point?"+q.Encode(), &data); err != nil {
		return 0, err
	}

	readings := data.Properties.Parameter.Gwetroot
	if len(readings) == 0 {
		return 0, fmt.Errorf("vegetation proxy returned no GWETROOT readings")
	}

	dates := make([]string, 0, len(readings))
	for d := range readings {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	latest := readings[dates[len(dates)-1]]

	return util.Clamp01(latest / 0.5), nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return nil
}
