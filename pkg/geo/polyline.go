package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords encodes coordinates into a google encoded polyline
// string for the HTTP response payload.
func PolylineFromCoords(coords []Coordinate) string {
	flat := make([][]float64, len(coords))
	for i, c := range coords {
		flat[i] = []float64{c.GetLat(), c.GetLon()}
	}
	return string(polyline.EncodeCoords(flat))
}
