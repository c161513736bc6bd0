package pkg

const (
	// RISK_PENALTY converts flood risk into extra edge cost:
	// weight = distanceKm * (1 + floodRisk*RISK_PENALTY). A fully flooded
	// edge costs 11x its distance.
	RISK_PENALTY = 10.0

	// edges with floodRisk above this count as high-risk segments
	HIGH_RISK_THRESHOLD = 0.5
)

const (
	EARTH_RADIUS_KM = 6371.0
)

const (
	// cache key precision, in decimal places. ~110m for facility lookups,
	// ~1.1km for hazard readings. nearby repeated queries collapse to one
	// entry on purpose.
	FACILITY_CACHE_PRECISION = 3
	HAZARD_CACHE_PRECISION   = 2
)

const (
	DEBUG = false
)
