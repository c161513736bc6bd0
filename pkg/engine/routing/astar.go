package routing

import (
	da "github.com/floodsafe/routing/pkg/datastructure"
	"github.com/floodsafe/routing/pkg/util"
)

type vertexInfo struct {
	gScore float64
	parent string
}

// AStar is an informed shortest-path search over a RoadNetwork, guided by
// the haversine heuristic. One instance per query.
type AStar struct {
	graph *da.RoadNetwork

	pq      *da.MinHeap[string]
	openSet map[string]*da.PriorityQueueNode[string]
	info    map[string]vertexInfo
	closed  map[string]struct{}
	settled int
}

func NewAStar(graph *da.RoadNetwork) *AStar {
	return &AStar{
		graph:   graph,
		pq:      da.NewFourAryHeap[string](),
		openSet: make(map[string]*da.PriorityQueueNode[string]),
		info:    make(map[string]vertexInfo),
		closed:  make(map[string]struct{}),
	}
}

type ShortestPathResult struct {
	Path      []string
	TotalCost float64
}

// ShortestPath runs A* from startID to goalID. Relaxation uses the
// safety-weighted edge cost when preferSafety, plain distance otherwise.
// Returns util.ErrNotFound wrapped error when the open set empties without
// reaching the goal.
func (as *AStar) ShortestPath(startID, goalID string, preferSafety bool) (*ShortestPathResult, error) {
	if _, ok := as.graph.GetNode(startID); !ok {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "astar: unknown start node %q", startID)
	}
	if _, ok := as.graph.GetNode(goalID); !ok {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "astar: unknown goal node %q", goalID)
	}

	as.info[startID] = vertexInfo{gScore: 0, parent: ""}
	startNode := da.NewPriorityQueueNode(as.graph.Heuristic(startID, goalID), startID)
	as.pq.Insert(startNode)
	as.openSet[startID] = startNode

	for !as.pq.IsEmpty() {
		minNode, err := as.pq.ExtractMin()
		if err != nil {
			break
		}
		current := minNode.GetItem()
		delete(as.openSet, current)
		as.settled++

		if current == goalID {
			return &ShortestPathResult{
				Path:      as.reconstructPath(startID, goalID),
				TotalCost: as.info[goalID].gScore,
			}, nil
		}

		as.closed[current] = struct{}{}

		for _, edge := range as.graph.GetNeighbors(current) {
			neighbor := edge.GetNeighbor()
			if _, done := as.closed[neighbor]; done {
				continue
			}

			cost := edge.GetDistanceKm()
			if preferSafety {
				cost = edge.GetWeight()
			}
			tentativeG := as.info[current].gScore + cost

			prev, visited := as.info[neighbor]
			if visited && tentativeG >= prev.gScore {
				continue
			}

			as.info[neighbor] = vertexInfo{gScore: tentativeG, parent: current}
			fScore := tentativeG + as.graph.Heuristic(neighbor, goalID)

			if node, inQueue := as.openSet[neighbor]; inQueue {
				as.pq.DecreaseKey(node, fScore)
			} else {
				node := da.NewPriorityQueueNode(fScore, neighbor)
				as.pq.Insert(node)
				as.openSet[neighbor] = node
			}
		}
	}

	return nil, util.WrapErrorf(nil, util.ErrNotFound, "astar: no path from %q to %q", startID, goalID)
}

// NumSettledNodes nodes finalized during the last search, for diagnostics.
func (as *AStar) NumSettledNodes() int {
	return as.settled
}

func (as *AStar) reconstructPath(startID, goalID string) []string {
	path := []string{}
	for current := goalID; current != ""; current = as.info[current].parent {
		path = append(path, current)
		if current == startID {
			break
		}
	}

	// reverse into start -> goal order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
