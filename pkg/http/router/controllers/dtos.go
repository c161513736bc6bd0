package controllers

import (
	"github.com/floodsafe/routing/pkg/datastructure"
	"github.com/floodsafe/routing/pkg/engine"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/hazard"
	"github.com/floodsafe/routing/pkg/http/usecases"
)

type planSafeRouteRequest struct {
	OriginLat    float64 `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon    float64 `json:"origin_lon" validate:"min=-180,max=180"`
	Area         string  `json:"area"`
	Province     string  `json:"province" validate:"required"`
	RadiusMeters int     `json:"radius_meters" validate:"min=0,max=100000"`
}

type assessRiskRequest struct {
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lon      float64 `json:"lon" validate:"min=-180,max=180"`
	Province string  `json:"province" validate:"required"`
}

type coordinateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type candidateResponse struct {
	FacilityID   int64            `json:"facility_id"`
	FacilityName string           `json:"facility_name"`
	Lat          float64          `json:"lat"`
	Lon          float64          `json:"lon"`
	DistanceKm   float64          `json:"distance_km"`
	Path         string           `json:"path"`
	Warnings     []engine.Warning `json:"warnings"`
	IsSafe       bool             `json:"is_safe"`
	RiskScore    int              `json:"risk_score"`
}

func newCandidateResponse(c *engine.Candidate) candidateResponse {
	return candidateResponse{
		FacilityID:   c.Facility.ID,
		FacilityName: c.Facility.Name,
		Lat:          c.Facility.Lat,
		Lon:          c.Facility.Lon,
		DistanceKm:   c.DistanceKm,
		Path:         geo.PolylineFromCoords(c.Path),
		Warnings:     c.Warnings,
		IsSafe:       c.IsSafe,
		RiskScore:    c.RiskScore,
	}
}

type planSafeRouteResponse struct {
	Origin      coordinateResponse          `json:"origin"`
	Primary     candidateResponse           `json:"primary"`
	Alternates  []candidateResponse         `json:"alternates"`
	PathDetails *datastructure.PathDetails  `json:"path_details,omitempty"`
	GraphStats  *datastructure.NetworkStats `json:"graph_stats,omitempty"`
	Rerouted    bool                        `json:"rerouted"`
	Quality     engine.Quality              `json:"quality"`
}

func NewPlanSafeRouteResponse(origin geo.Coordinate, result *engine.Result) planSafeRouteResponse {
	alternates := make([]candidateResponse, 0, len(result.Alternates))
	for _, alt := range result.Alternates {
		alternates = append(alternates, newCandidateResponse(alt))
	}

	return planSafeRouteResponse{
		Origin:      coordinateResponse{Lat: origin.GetLat(), Lon: origin.GetLon()},
		Primary:     newCandidateResponse(result.Primary),
		Alternates:  alternates,
		PathDetails: result.PathDetails,
		GraphStats:  result.GraphStats,
		Rerouted:    result.Rerouted,
		Quality:     result.Quality,
	}
}

type assessRiskResponse struct {
	Point   coordinateResponse `json:"point"`
	Reading *hazard.Reading    `json:"reading"`
}

func NewAssessRiskResponse(lat, lon float64, reading *hazard.Reading) assessRiskResponse {
	return assessRiskResponse{
		Point:   coordinateResponse{Lat: lat, Lon: lon},
		Reading: reading,
	}
}

type statsResponse struct {
	Caches usecases.CacheStats `json:"caches"`
}

func NewStatsResponse(stats usecases.CacheStats) statsResponse {
	return statsResponse{Caches: stats}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
