package gamedata

import (
	"fmt"
	"sort"

	"github.com/talgya/concordia/internal/ids"
)

// topologicalOrder validates the trade-node graph is acyclic using
// Tarjan's strongly-connected-components algorithm (design doc Section
// 4.10), then returns a stable topological order. Load fails (returns an
// error) if any SCC has more than one member, i.e. a cycle exists.
//
// Iteration and tie-breaking are always over sorted node IDs so the
// resulting order — and therefore every checksum derived from it — is
// independent of map iteration order.
func topologicalOrder(nodes map[ids.TradeNodeID]*TradeNodeDef) ([]ids.TradeNodeID, error) {
	ids_ := sortedNodeIDs(nodes)

	tj := &tarjan{
		nodes:   nodes,
		index:   make(map[ids.TradeNodeID]int),
		lowlink: make(map[ids.TradeNodeID]int),
		onStack: make(map[ids.TradeNodeID]bool),
	}
	for _, id := range ids_ {
		if _, seen := tj.index[id]; !seen {
			tj.strongConnect(id)
		}
	}
	for _, scc := range tj.sccs {
		if len(scc) > 1 {
			return nil, fmt.Errorf("gamedata: trade node cycle detected involving %v", scc)
		}
		// A single-node SCC can still be a self-loop.
		if len(scc) == 1 {
			for _, out := range nodes[scc[0]].Outgoing {
				if out == scc[0] {
					return nil, fmt.Errorf("gamedata: trade node %d has a self-loop", scc[0])
				}
			}
		}
	}

	return kahnOrder(nodes, ids_)
}

func sortedNodeIDs(nodes map[ids.TradeNodeID]*TradeNodeDef) []ids.TradeNodeID {
	out := make([]ids.TradeNodeID, 0, len(nodes))
	for id := range nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type tarjan struct {
	nodes   map[ids.TradeNodeID]*TradeNodeDef
	index   map[ids.TradeNodeID]int
	lowlink map[ids.TradeNodeID]int
	onStack map[ids.TradeNodeID]bool
	stack   []ids.TradeNodeID
	counter int
	sccs    [][]ids.TradeNodeID
}

func (t *tarjan) strongConnect(v ids.TradeNodeID) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	neighbours := append([]ids.TradeNodeID(nil), t.nodes[v].Outgoing...)
	sort.Slice(neighbours, func(i, j int) bool { return neighbours[i] < neighbours[j] })

	for _, w := range neighbours {
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []ids.TradeNodeID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}

// kahnOrder computes a deterministic topological order via Kahn's
// algorithm, breaking ties by node ID so two loads of the same data always
// agree bit-for-bit on TradeOrder.
func kahnOrder(nodes map[ids.TradeNodeID]*TradeNodeDef, sorted []ids.TradeNodeID) ([]ids.TradeNodeID, error) {
	indegree := make(map[ids.TradeNodeID]int, len(nodes))
	for _, id := range sorted {
		indegree[id] = 0
	}
	for _, id := range sorted {
		for _, out := range nodes[id].Outgoing {
			indegree[out]++
		}
	}

	ready := make([]ids.TradeNodeID, 0)
	for _, id := range sorted {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	var order []ids.TradeNodeID
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		next := append([]ids.TradeNodeID(nil), nodes[n].Outgoing...)
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		for _, out := range next {
			indegree[out]--
			if indegree[out] == 0 {
				ready = insertSorted(ready, out)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, fmt.Errorf("gamedata: trade topology has a residual cycle after Kahn's algorithm")
	}
	return order, nil
}

func insertSorted(s []ids.TradeNodeID, v ids.TradeNodeID) []ids.TradeNodeID {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
