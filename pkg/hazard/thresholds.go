package hazard

import (
	"fmt"
	"strings"
)

// provinceThresholds are per-province trigger levels for the rule-based
// explanation factors attached to a risk reading. They do not influence the
// model prediction itself.
type provinceThresholds struct {
	precipHigh float64
	tempHigh   float64
	ndviLow    float64
	ndsiSnow   float64
}

var provinceThresholdTable = map[string]provinceThresholds{
	"punjab":      {precipHigh: 100, tempHigh: 35, ndviLow: 0.25, ndsiSnow: 0.3},
	"sindh":       {precipHigh: 80, tempHigh: 38, ndviLow: 0.2, ndsiSnow: 0.25},
	"balochistan": {precipHigh: 50, tempHigh: 36, ndviLow: 0.15, ndsiSnow: 0.2},
	"kpk":         {precipHigh: 120, tempHigh: 33, ndviLow: 0.28, ndsiSnow: 0.4},
	"gilgit":      {precipHigh: 60, tempHigh: 25, ndviLow: 0.2, ndsiSnow: 0.5},
	"islamabad":   {precipHigh: 90, tempHigh: 34, ndviLow: 0.25, ndsiSnow: 0.3},
}

func thresholdsFor(province string) provinceThresholds {
	if t, ok := provinceThresholdTable[strings.ToLower(province)]; ok {
		return t
	}
	return provinceThresholdTable["punjab"]
}

// ExplainFeatures builds human-readable contributing factors from the raw
// environmental features against the province thresholds.
func ExplainFeatures(f Features, province string) []string {
	t := thresholdsFor(province)
	factors := []string{}

	if f.PrecipitationMm >= t.precipHigh {
		factors = append(factors, fmt.Sprintf("Heavy daily precipitation: %.1f mm", f.PrecipitationMm))
	} else if f.PrecipitationMm >= t.precipHigh*0.6 {
		factors = append(factors, fmt.Sprintf("Moderate precipitation: %.1f mm", f.PrecipitationMm))
	}

	if f.Temperature >= t.tempHigh {
		factors = append(factors, fmt.Sprintf("High temperature: %.1f °C", f.Temperature))
	}

	if f.Vegetation <= t.ndviLow {
		factors = append(factors, fmt.Sprintf("Low vegetation (NDVI %.3f) — reduced infiltration", f.Vegetation))
	}

	if f.SnowIce >= t.ndsiSnow {
		factors = append(factors, fmt.Sprintf("Snow/ice presence (NDSI %.3f) — melt risk", f.SnowIce))
	}

	if f.RainfallNowMm > 0 {
		factors = append(factors, fmt.Sprintf("Currently raining: %.1f mm", f.RainfallNowMm))
	}

	return factors
}
