package hazard

import (
	"encoding/json"
	"testing"
)

func TestParseSeverity(t *testing.T) {

	testCases := []struct {
		label    string
		expected Severity
	}{
		{"severe", SEVERITY_SEVERE},
		{"SEVERE", SEVERITY_SEVERE},
		{"high", SEVERITY_HIGH},
		{"critical", SEVERITY_HIGH},
		{"moderate", SEVERITY_MODERATE},
		{"low", SEVERITY_LOW},
		{"mild", SEVERITY_LOW},
		{"", SEVERITY_MODERATE},
		{"banana", SEVERITY_MODERATE},
	}

	for _, tt := range testCases {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseSeverity(tt.label); got != tt.expected {
				t.Errorf("ParseSeverity(%q) = %v, want %v", tt.label, got, tt.expected)
			}
		})
	}
}

func TestRiskWeightOrdering(t *testing.T) {
	levels := []Severity{SEVERITY_LOW, SEVERITY_MODERATE, SEVERITY_HIGH, SEVERITY_SEVERE}

	for i := 1; i < len(levels); i++ {
		if levels[i].RiskWeight() <= levels[i-1].RiskWeight() {
			t.Errorf("%v weight %v not above %v weight %v",
				levels[i], levels[i].RiskWeight(), levels[i-1], levels[i-1].RiskWeight())
		}
	}

	if SEVERITY_SEVERE.RiskWeight() != 1.0 {
		t.Errorf("severe weight = %v, want 1.0", SEVERITY_SEVERE.RiskWeight())
	}
}

func TestIsHighOrWorse(t *testing.T) {
	if SEVERITY_MODERATE.IsHighOrWorse() || SEVERITY_LOW.IsHighOrWorse() {
		t.Error("moderate and low must not trigger rerouting")
	}
	if !SEVERITY_HIGH.IsHighOrWorse() || !SEVERITY_SEVERE.IsHighOrWorse() {
		t.Error("high and severe must trigger rerouting")
	}
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(SEVERITY_HIGH)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"high"` {
		t.Errorf("marshal = %s, want \"high\"", b)
	}

	var s Severity
	if err := json.Unmarshal([]byte(`"Severe"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != SEVERITY_SEVERE {
		t.Errorf("unmarshal = %v, want severe", s)
	}
}
