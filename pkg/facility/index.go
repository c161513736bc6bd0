package facility

import (
	"math"
	"sort"
	"sync"

	"github.com/floodsafe/routing/pkg/geo"
	"github.com/tidwall/rtree"
)

// Index is an r-tree of every facility seen so far, shared across requests.
// It serves radius queries that miss the exact-key TTL cache but land inside
// already-fetched territory, before any network round trip.
type Index struct {
	mu   sync.Mutex
	tr   rtree.RTreeG[Facility]
	seen map[int64]struct{}
}

func NewIndex() *Index {
	return &Index{
		seen: make(map[int64]struct{}),
	}
}

func (idx *Index) Insert(f Facility) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.seen[f.ID]; ok {
		return
	}
	idx.seen[f.ID] = struct{}{}
	idx.tr.Insert([2]float64{f.Lon, f.Lat}, [2]float64{f.Lon, f.Lat}, f)
}

// Within returns facilities within radiusKm of center, ordered by
// great-circle distance. The r-tree is queried with a bounding box around
// the center; haversine filtering trims the box corners.
func (idx *Index) Within(center geo.Coordinate, radiusKm float64) []Facility {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	lowerLat, lowerLon := geo.GetDestinationPoint(center.GetLat(), center.GetLon(), 225, radiusKm*math.Sqrt2)
	upperLat, upperLon := geo.GetDestinationPoint(center.GetLat(), center.GetLon(), 45, radiusKm*math.Sqrt2)

	matches := []Facility{}
	idx.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, f Facility) bool {
			if geo.CalculateHaversineDistance(center.GetLat(), center.GetLon(), f.Lat, f.Lon) <= radiusKm {
				matches = append(matches, f)
			}
			return true
		})

	sort.Slice(matches, func(i, j int) bool {
		di := geo.CalculateHaversineDistance(center.GetLat(), center.GetLon(), matches[i].Lat, matches[i].Lon)
		dj := geo.CalculateHaversineDistance(center.GetLat(), center.GetLon(), matches[j].Lat, matches[j].Lon)
		return di < dj
	})
	return matches
}

func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.seen)
}
