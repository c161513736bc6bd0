package geo

// SamplePolyline picks at most maxSamples evenly spaced points from a raw
// route polyline, by integer stride floor(len/maxSamples). The first and last
// original points are always part of the result, inserted back if the stride
// skipped them. Bounds the number of hazard lookups per route without losing
// endpoint fidelity.
func SamplePolyline(points []Coordinate, maxSamples int) []Coordinate {
	if maxSamples < 2 || len(points) <= maxSamples {
		return points
	}

	step := len(points) / maxSamples
	samples := make([]Coordinate, 0, maxSamples+2)

	for i := 0; i < maxSamples; i++ {
		samples = append(samples, points[i*step])
	}

	if samples[0] != points[0] {
		samples = append([]Coordinate{points[0]}, samples...)
	}
	last := points[len(points)-1]
	if samples[len(samples)-1] != last {
		samples = append(samples, last)
	}

	return samples
}
