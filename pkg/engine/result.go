package engine

import (
	"errors"

	"github.com/floodsafe/routing/pkg/datastructure"
	"github.com/floodsafe/routing/pkg/facility"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
)

var (
	// ErrNoFacilities no facility found within the search radius.
	ErrNoFacilities = errors.New("no facilities in radius")
	// ErrNoRoutableCandidate every candidate route fetch failed.
	ErrNoRoutableCandidate = errors.New("no route")
)

// Warning is one hazardous point detected along a candidate route.
type Warning struct {
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	Severity   hazard.Severity `json:"severity"`
	Confidence float64         `json:"confidence"`
}

// Candidate is one destination facility with its computed route and hazard
// warnings, under evaluation by the planner.
type Candidate struct {
	Facility   facility.Facility `json:"facility"`
	DistanceKm float64           `json:"distance_km"`
	Path       []geo.Coordinate  `json:"path"`
	Warnings   []Warning         `json:"warnings"`
	IsSafe     bool              `json:"is_safe"`
	RiskScore  int               `json:"risk_score"`

	// sampled path points and their assessments, kept for graph building
	// and quality accounting
	samples     []geo.Coordinate
	assessments []hazard.Assessment
	unavailable int
}

// highRiskZones returns the warning points severe enough to justify asking
// the route provider to steer around them.
func (c *Candidate) highRiskZones() []geo.Coordinate {
	zones := []geo.Coordinate{}
	for _, w := range c.Warnings {
		if w.Severity.IsHighOrWorse() {
			zones = append(zones, geo.NewCoordinate(w.Lat, w.Lon))
		}
	}
	return zones
}

// Quality is the degraded-confidence accounting a successful result must
// carry: how much hazard data was missing while it was computed.
type Quality struct {
	DroppedCandidates     int  `json:"dropped_candidates"`
	SampledPoints         int  `json:"sampled_points"`
	IncompleteAssessments int  `json:"incomplete_assessments"`
	DegradedConfidence    bool `json:"degraded_confidence"`
}

// Result is a finalized safe-route plan.
type Result struct {
	Primary     *Candidate                  `json:"primary"`
	Alternates  []*Candidate                `json:"alternates"`
	PathDetails *datastructure.PathDetails  `json:"path_details,omitempty"`
	GraphStats  *datastructure.NetworkStats `json:"graph_stats,omitempty"`
	Rerouted    bool                        `json:"rerouted"`
	Quality     Quality                     `json:"quality"`
}
