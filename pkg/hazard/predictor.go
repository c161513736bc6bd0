package hazard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type predictorClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

type predictionRequest struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Temp     float64 `json:"temp"`
	Ice      float64 `json:"ice"`
	Veg      float64 `json:"veg"`
	RainMm   float64 `json:"rain_mm"`
	Province string  `json:"province"`
}

type predictionResponse struct {
	Flood       bool     `json:"flood"`
	Severity    string   `json:"severity"`
	Confidence  float64  `json:"confidence"`
	Explanation []string `json:"explanation"`
}

// predict calls the external flood-prediction model with the fused feature
// payload for one point.
func (p *predictorClient) predict(ctx context.Context, features Features, province string) (*predictionResponse, error) {
	if province == "" {
		province = "Punjab"
	}
	now := p.now()
	payload := predictionRequest{
		Year:     now.Year(),
		Month:    int(now.Month()),
		Temp:     features.Temperature,
		Ice:      features.SnowIce,
		Veg:      features.Vegetation,
		RainMm:   features.PrecipitationMm,
		Province: province,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling prediction payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var prediction predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return &prediction, nil
}
