package routing

import (
	"errors"
	"math"
	"testing"

	da "github.com/floodsafe/routing/pkg/datastructure"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/util"
)

// diamondGraph has two ways from s to g: a short flooded corridor through m1
// and a longer dry detour through m2. Edge distances are real haversine
// distances so the heuristic stays admissible.
func diamondGraph(t *testing.T) *da.RoadNetwork {
	t.Helper()

	coords := map[string]geo.Coordinate{
		"s":  geo.NewCoordinate(31.50, 74.35),
		"m1": geo.NewCoordinate(31.53, 74.38),
		"m2": geo.NewCoordinate(31.53, 74.28),
		"g":  geo.NewCoordinate(31.56, 74.41),
	}

	rn := da.NewRoadNetwork()
	rn.AddNode("s", coords["s"].GetLat(), coords["s"].GetLon(), da.KIND_USER)
	rn.AddNode("m1", coords["m1"].GetLat(), coords["m1"].GetLon(), da.KIND_INTERSECTION)
	rn.AddNode("m2", coords["m2"].GetLat(), coords["m2"].GetLon(), da.KIND_INTERSECTION)
	rn.AddNode("g", coords["g"].GetLat(), coords["g"].GetLon(), da.KIND_HOSPITAL)

	addEdge := func(from, to string, risk float64) {
		d := geo.HaversineDistance(coords[from], coords[to])
		if err := rn.AddEdge(from, to, d, risk); err != nil {
			t.Fatalf("AddEdge %s-%s: %v", from, to, err)
		}
	}

	addEdge("s", "m1", 0.85)
	addEdge("m1", "g", 0.85)
	addEdge("s", "m2", 0)
	addEdge("m2", "g", 0)

	return rn
}

func TestShortestPathPreferSafety(t *testing.T) {

	testCases := []struct {
		name         string
		preferSafety bool
		expectedPath []string
	}{
		{
			name:         "safety objective takes the dry detour",
			preferSafety: true,
			expectedPath: []string{"s", "m2", "g"},
		},
		{
			name:         "distance objective takes the short flooded corridor",
			preferSafety: false,
			expectedPath: []string{"s", "m1", "g"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rn := diamondGraph(t)

			search := NewAStar(rn)
			result, err := search.ShortestPath("s", "g", tt.preferSafety)
			if err != nil {
				t.Fatalf("ShortestPath: %v", err)
			}

			if len(result.Path) != len(tt.expectedPath) {
				t.Fatalf("path = %v, want %v", result.Path, tt.expectedPath)
			}
			for i := range result.Path {
				if result.Path[i] != tt.expectedPath[i] {
					t.Fatalf("path = %v, want %v", result.Path, tt.expectedPath)
				}
			}
			if result.TotalCost <= 0 {
				t.Errorf("TotalCost = %v, want > 0", result.TotalCost)
			}
			if search.NumSettledNodes() == 0 {
				t.Error("search settled no nodes")
			}
		})
	}
}

func TestShortestPathTotalCost(t *testing.T) {
	rn := diamondGraph(t)

	search := NewAStar(rn)
	result, err := search.ShortestPath("s", "g", true)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}

	want := 0.0
	for i := 0; i+1 < len(result.Path); i++ {
		for _, e := range rn.GetNeighbors(result.Path[i]) {
			if e.GetNeighbor() == result.Path[i+1] {
				want += e.GetWeight()
			}
		}
	}
	if math.Abs(result.TotalCost-want) > 1e-9 {
		t.Errorf("TotalCost = %v, want sum of edge weights %v", result.TotalCost, want)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	rn := da.NewRoadNetwork()
	rn.AddNode("s", 31.50, 74.35, da.KIND_USER)
	rn.AddNode("island", 32.00, 75.00, da.KIND_HOSPITAL)

	search := NewAStar(rn)
	_, err := search.ShortestPath("s", "island", true)
	if err == nil {
		t.Fatal("expected error for unreachable goal")
	}
	var appErr *util.Error
	if !errors.As(err, &appErr) || !errors.Is(appErr.Code(), util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShortestPathUnknownNodes(t *testing.T) {
	rn := da.NewRoadNetwork()
	rn.AddNode("s", 31.50, 74.35, da.KIND_USER)

	search := NewAStar(rn)
	if _, err := search.ShortestPath("ghost", "s", true); err == nil {
		t.Error("unknown start must fail")
	}

	search = NewAStar(rn)
	if _, err := search.ShortestPath("s", "ghost", true); err == nil {
		t.Error("unknown goal must fail")
	}
}

func TestShortestPathStartIsGoal(t *testing.T) {
	rn := da.NewRoadNetwork()
	rn.AddNode("s", 31.50, 74.35, da.KIND_USER)

	search := NewAStar(rn)
	result, err := search.ShortestPath("s", "s", true)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if len(result.Path) != 1 || result.Path[0] != "s" {
		t.Errorf("path = %v, want [s]", result.Path)
	}
	if result.TotalCost != 0 {
		t.Errorf("TotalCost = %v, want 0", result.TotalCost)
	}
}
