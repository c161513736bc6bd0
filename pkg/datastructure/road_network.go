package datastructure

import (
	"fmt"

	"github.com/floodsafe/routing/pkg"
	"github.com/floodsafe/routing/pkg/geo"
	"github.com/floodsafe/routing/pkg/util"
)

type NodeKind uint8

const (
	KIND_INTERSECTION NodeKind = iota
	KIND_HOSPITAL
	KIND_SHELTER
	KIND_USER
)

func (k NodeKind) String() string {
	switch k {
	case KIND_HOSPITAL:
		return "hospital"
	case KIND_SHELTER:
		return "shelter"
	case KIND_USER:
		return "user"
	default:
		return "intersection"
	}
}

type RoadNode struct {
	id   string
	lat  float64
	lon  float64
	kind NodeKind
}

func (n *RoadNode) GetID() string {
	return n.id
}

func (n *RoadNode) GetLat() float64 {
	return n.lat
}

func (n *RoadNode) GetLon() float64 {
	return n.lon
}

func (n *RoadNode) GetKind() NodeKind {
	return n.kind
}

func (n *RoadNode) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(n.lat, n.lon)
}

type RoadEdge struct {
	neighbor   string
	distanceKm float64
	floodRisk  float64
	weight     float64
}

func (e *RoadEdge) GetNeighbor() string {
	return e.neighbor
}

func (e *RoadEdge) GetDistanceKm() float64 {
	return e.distanceKm
}

func (e *RoadEdge) GetFloodRisk() float64 {
	return e.floodRisk
}

func (e *RoadEdge) GetWeight() float64 {
	return e.weight
}

func edgeWeight(distanceKm, floodRisk float64) float64 {
	return distanceKm * (1 + floodRisk*pkg.RISK_PENALTY)
}

// RoadNetwork is an adjacency-list road graph with distance+flood-risk
// weighted bidirectional edges. One instance per routing request: the graph
// is fully rebuilt (Clear then Add) per route-building call and never shared
// across concurrent requests.
type RoadNetwork struct {
	nodes         map[string]*RoadNode
	adjacencyList map[string][]*RoadEdge
}

func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		nodes:         make(map[string]*RoadNode),
		adjacencyList: make(map[string][]*RoadEdge),
	}
}

// Clear drops all nodes and edges. Called at the start of every build.
func (rn *RoadNetwork) Clear() {
	rn.nodes = make(map[string]*RoadNode)
	rn.adjacencyList = make(map[string][]*RoadEdge)
}

// AddNode registers a node. Idempotent: no-op if id already present.
func (rn *RoadNetwork) AddNode(id string, lat, lon float64, kind NodeKind) {
	if _, ok := rn.nodes[id]; ok {
		return
	}
	rn.nodes[id] = &RoadNode{id: id, lat: lat, lon: lon, kind: kind}
	rn.adjacencyList[id] = []*RoadEdge{}
}

// AddEdge adds a bidirectional edge between two registered nodes. Both
// endpoints must have been added with AddNode first; an unregistered
// endpoint is a programming error and fails loudly instead of silently
// materializing a node at (0,0).
func (rn *RoadNetwork) AddEdge(from, to string, distanceKm, floodRisk float64) error {
	if _, ok := rn.nodes[from]; !ok {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "addEdge: unregistered node %q", from)
	}
	if _, ok := rn.nodes[to]; !ok {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "addEdge: unregistered node %q", to)
	}

	floodRisk = util.Clamp01(floodRisk)
	weight := edgeWeight(distanceKm, floodRisk)

	rn.adjacencyList[from] = append(rn.adjacencyList[from], &RoadEdge{
		neighbor:   to,
		distanceKm: distanceKm,
		floodRisk:  floodRisk,
		weight:     weight,
	})
	rn.adjacencyList[to] = append(rn.adjacencyList[to], &RoadEdge{
		neighbor:   from,
		distanceKm: distanceKm,
		floodRisk:  floodRisk,
		weight:     weight,
	})
	return nil
}

// UpdateEdgeRisk recomputes floodRisk and weight for both directions of an
// existing edge, for what-if scenarios.
func (rn *RoadNetwork) UpdateEdgeRisk(from, to string, newRisk float64) error {
	newRisk = util.Clamp01(newRisk)

	updated := false
	update := func(source, target string) {
		for _, e := range rn.adjacencyList[source] {
			if e.neighbor == target {
				e.floodRisk = newRisk
				e.weight = edgeWeight(e.distanceKm, newRisk)
				updated = true
			}
		}
	}
	update(from, to)
	update(to, from)

	if !updated {
		return util.WrapErrorf(nil, util.ErrNotFound, "updateEdgeRisk: no edge %q-%q", from, to)
	}
	return nil
}

func (rn *RoadNetwork) GetNeighbors(nodeID string) []*RoadEdge {
	return rn.adjacencyList[nodeID]
}

func (rn *RoadNetwork) GetNode(nodeID string) (*RoadNode, bool) {
	n, ok := rn.nodes[nodeID]
	return n, ok
}

func (rn *RoadNetwork) NumberOfNodes() int {
	return len(rn.nodes)
}

func (rn *RoadNetwork) findEdge(from, to string) *RoadEdge {
	for _, e := range rn.adjacencyList[from] {
		if e.neighbor == to {
			return e
		}
	}
	return nil
}

// Heuristic is the haversine distance between two nodes, in km. A valid
// lower bound for the A* search in both objectives: in distance mode the
// edge cost equals distanceKm, and in safety mode weight >= distanceKm
// always, so the estimate never overestimates remaining cost.
func (rn *RoadNetwork) Heuristic(nodeID, goalID string) float64 {
	node, okN := rn.nodes[nodeID]
	goal, okG := rn.nodes[goalID]
	if !okN || !okG {
		return 0
	}
	return geo.CalculateHaversineDistance(node.lat, node.lon, goal.lat, goal.lon)
}

type PathDetails struct {
	TotalDistanceKm  float64 `json:"total_distance_km"`
	AverageRisk      float64 `json:"average_risk"`
	HighRiskSegments int     `json:"high_risk_segments"`
	Waypoints        int     `json:"waypoints"`
}

// GetPathDetails walks consecutive edges of a node path, summing distance,
// averaging flood risk and counting high-risk segments.
func (rn *RoadNetwork) GetPathDetails(path []string) PathDetails {
	details := PathDetails{Waypoints: len(path)}

	totalRisk := 0.0
	segments := 0
	for i := 0; i+1 < len(path); i++ {
		edge := rn.findEdge(path[i], path[i+1])
		if edge == nil {
			continue
		}
		details.TotalDistanceKm += edge.distanceKm
		totalRisk += edge.floodRisk
		if edge.floodRisk > pkg.HIGH_RISK_THRESHOLD {
			details.HighRiskSegments++
		}
		segments++
	}

	if segments > 0 {
		details.AverageRisk = totalRisk / float64(segments)
	}
	return details
}

type NetworkStats struct {
	Nodes         int            `json:"nodes"`
	Edges         int            `json:"edges"`
	HighRiskEdges int            `json:"high_risk_edges"`
	CountByKind   map[string]int `json:"count_by_kind"`
}

// Stats introspection for diagnostics.
func (rn *RoadNetwork) Stats() NetworkStats {
	stats := NetworkStats{
		Nodes:       len(rn.nodes),
		CountByKind: make(map[string]int),
	}

	for _, n := range rn.nodes {
		stats.CountByKind[n.kind.String()]++
	}

	totalEdges := 0
	highRisk := 0
	for _, edges := range rn.adjacencyList {
		totalEdges += len(edges)
		for _, e := range edges {
			if e.floodRisk > pkg.HIGH_RISK_THRESHOLD {
				highRisk++
			}
		}
	}
	// each undirected edge is stored as two adjacency entries
	stats.Edges = totalEdges / 2
	stats.HighRiskEdges = highRisk / 2
	return stats
}

func (rn *RoadNetwork) String() string {
	return fmt.Sprintf("RoadNetwork{nodes: %d, edges: %d}", len(rn.nodes), rn.Stats().Edges)
}
