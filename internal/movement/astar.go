// Package movement implements pathfinding and the daily movement tick
// (design doc Section 4.3): A* over the province adjacency graph with an
// admissible Euclidean-centroid heuristic, and a map-reduce movement
// update applied to every army/fleet in flight.
package movement

import (
	"container/heap"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
)

// EdgeCostFunc computes the fixed-point cost of moving from `from` to `to`
// given a specific adjacency edge, honouring river penalties and strait
// rules; see Costs in costs.go.
type EdgeCostFunc func(data *gamedata.GameData, from, to ids.ProvinceID, edge gamedata.Adjacency) (fixedpoint.Mod32, bool)

// FindPath runs A* from start to goal over data's adjacency graph, using
// costFn for edge weights and the precomputed-centroid Euclidean distance
// as an admissible heuristic (design doc Section 4.3). Returns the path
// excluding start (path[0] is the first hop), or (nil, false) if no path
// exists.
//
// A closed set prevents revisits, and the open set is a binary min-heap
// keyed by f = g + h, matching the classic A* shape; all arithmetic is
// fixed-point, so two runs with identical graphs/costs always expand
// nodes in the same relative order (ties are broken by ascending province
// ID, which the heap's Less implements explicitly).
func FindPath(data *gamedata.GameData, start, goal ids.ProvinceID, costFn EdgeCostFunc) ([]ids.ProvinceID, bool) {
	if start == goal {
		return nil, true
	}
	goalDef, ok := data.Provinces[goal]
	if !ok {
		return nil, false
	}

	open := &nodeHeap{}
	heap.Init(open)
	gScore := map[ids.ProvinceID]fixedpoint.Mod32{start: 0}
	cameFrom := map[ids.ProvinceID]ids.ProvinceID{}
	closed := map[ids.ProvinceID]bool{}

	heap.Push(open, &pathNode{id: start, f: heuristic(data, start, goalDef)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		if closed[cur.id] {
			continue
		}
		if cur.id == goal {
			return reconstruct(cameFrom, start, goal), true
		}
		closed[cur.id] = true

		for _, edge := range data.Adjacency[cur.id] {
			if closed[edge.To] {
				continue
			}
			cost, passable := costFn(data, cur.id, edge.To, edge)
			if !passable {
				continue
			}
			tentative := gScore[cur.id] + cost
			existing, seen := gScore[edge.To]
			if !seen || tentative < existing {
				gScore[edge.To] = tentative
				cameFrom[edge.To] = cur.id
				if def, ok := data.Provinces[edge.To]; ok {
					h := heuristic(data, edge.To, def)
					heap.Push(open, &pathNode{id: edge.To, f: tentative + h})
				}
			}
		}
	}
	return nil, false
}

// heuristic is the admissible Euclidean distance (fixed-point, via
// gamedata.Distance's deterministic integer sqrt) between `from`'s
// centroid and the goal's, scaled down to the same units as edge costs
// (base edge cost 10 per design doc Section 4.3).
func heuristic(data *gamedata.GameData, from ids.ProvinceID, goal *gamedata.ProvinceDef) fixedpoint.Mod32 {
	fromDef, ok := data.Provinces[from]
	if !ok {
		return 0
	}
	d := gamedata.Distance(fromDef.Centroid, goal.Centroid)
	// Centroid units are world-space x 65536; rescale so typical
	// neighbour-to-neighbour hops cost roughly the same order of magnitude
	// as the base-10 edge cost.
	return fixedpoint.Mod32(d / 6553)
}

func reconstruct(cameFrom map[ids.ProvinceID]ids.ProvinceID, start, goal ids.ProvinceID) []ids.ProvinceID {
	var rev []ids.ProvinceID
	cur := goal
	for cur != start {
		rev = append(rev, cur)
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		cur = prev
	}
	path := make([]ids.ProvinceID, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

type pathNode struct {
	id ids.ProvinceID
	f  fixedpoint.Mod32
}

// nodeHeap is a binary min-heap on f, breaking ties by ascending province
// ID so equal-cost frontiers expand in a fixed, reproducible order.
type nodeHeap []*pathNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].id < h[j].id
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*pathNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
