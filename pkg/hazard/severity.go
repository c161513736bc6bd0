package hazard

import (
	"encoding/json"
	"strings"
)

// Severity of a flood signal as reported by the prediction model.
type Severity uint8

const (
	SEVERITY_LOW Severity = iota
	SEVERITY_MODERATE
	SEVERITY_HIGH
	SEVERITY_SEVERE
)

func (s Severity) String() string {
	switch s {
	case SEVERITY_SEVERE:
		return "severe"
	case SEVERITY_HIGH:
		return "high"
	case SEVERITY_MODERATE:
		return "moderate"
	default:
		return "low"
	}
}

// ParseSeverity maps model severity labels onto the four levels. "critical"
// counts as high, "mild" as low. Unknown labels degrade to moderate rather
// than low so an unrecognized model output never reads as safe.
func ParseSeverity(label string) Severity {
	switch strings.ToLower(label) {
	case "severe":
		return SEVERITY_SEVERE
	case "high", "critical":
		return SEVERITY_HIGH
	case "moderate":
		return SEVERITY_MODERATE
	case "low", "mild":
		return SEVERITY_LOW
	default:
		return SEVERITY_MODERATE
	}
}

// RiskWeight converts severity into the [0,1] flood-risk score injected
// onto graph edges.
func (s Severity) RiskWeight() float64 {
	switch s {
	case SEVERITY_SEVERE:
		return 1.0
	case SEVERITY_HIGH:
		return 0.85
	case SEVERITY_MODERATE:
		return 0.6
	default:
		return 0.3
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var label string
	if err := json.Unmarshal(b, &label); err != nil {
		return err
	}
	*s = ParseSeverity(label)
	return nil
}

// IsHighOrWorse reports whether warnings of this severity should trigger a
// reroute attempt around their location.
func (s Severity) IsHighOrWorse() bool {
	return s >= SEVERITY_HIGH
}
