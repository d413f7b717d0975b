package movement

import (
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

const (
	baseEdgeCost   = 10 // design doc Section 4.3: "base 10, plus terrain and river modifiers"
	riverCostBonus = 2
)

// ArmyEdgeCost computes a land army's cost to cross one adjacency edge,
// honouring zone-of-control and strait blockade rules. It returns
// (cost, false) when the edge cannot be used at all this tick.
func ArmyEdgeCost(state worldstate.WorldState, mover ids.Tag, atWar func(a, b ids.Tag) bool) EdgeCostFunc {
	return func(data *gamedata.GameData, from, to ids.ProvinceID, edge gamedata.Adjacency) (fixedpoint.Mod32, bool) {
		if edge.Kind == gamedata.EdgeSea {
			return 0, false // land armies don't traverse sea edges directly
		}
		if edge.ThroughSeaZone != 0 && strait_blocked(state, edge.ThroughSeaZone, mover, atWar) {
			return 0, false
		}
		if zoneOfControlBlocks(state, data, from, to, mover, atWar) {
			return 0, false
		}
		cost := fixedpoint.M32FromInt(baseEdgeCost)
		if edge.Kind == gamedata.EdgeRiver {
			cost = cost.Add(fixedpoint.M32FromInt(riverCostBonus))
		}
		return cost, true
	}
}

// FleetEdgeCost computes a fleet's cost to cross one sea adjacency edge.
func FleetEdgeCost() EdgeCostFunc {
	return func(data *gamedata.GameData, from, to ids.ProvinceID, edge gamedata.Adjacency) (fixedpoint.Mod32, bool) {
		if edge.Kind != gamedata.EdgeSea {
			return 0, false
		}
		return fixedpoint.M32FromInt(baseEdgeCost), true
	}
}

// strait_blocked reports whether an enemy fleet occupies the strait's
// through sea-zone while the mover is at war with its owner — design doc
// Section 4.3's strait rule.
func strait_blocked(state worldstate.WorldState, seaZone ids.ProvinceID, mover ids.Tag, atWar func(a, b ids.Tag) bool) bool {
	blocked := false
	state.Fleets.Ascend(func(_ ids.FleetID, f *worldstate.Fleet) bool {
		if f.Location == seaZone && f.Owner != mover && atWar(mover, f.Owner) && len(f.Ships) > 0 {
			blocked = true
			return false
		}
		return true
	})
	return blocked
}

// zoneOfControlBlocks implements design doc Section 4.3's ZoC rule: moving
// from A to B is blocked if a third province C is adjacent to both A and
// B, contains an active enemy fort (fort level > 0, owned by a country at
// war with mover), and the move is not a direct attack on C itself.
func zoneOfControlBlocks(state worldstate.WorldState, data *gamedata.GameData, from, to ids.ProvinceID, mover ids.Tag, atWar func(a, b ids.Tag) bool) bool {
	neighboursOfFrom := neighbourSet(data, from)
	for _, edge := range data.Adjacency[to] {
		c := edge.To
		if c == from || c == to {
			continue
		}
		if !neighboursOfFrom[c] {
			continue
		}
		prov, ok := state.Provinces.Get(c)
		if !ok || prov.Owner == nil {
			continue
		}
		if prov.FortLevel == 0 {
			continue
		}
		if *prov.Owner == mover || !atWar(mover, *prov.Owner) {
			continue
		}
		return true
	}
	return false
}

func neighbourSet(data *gamedata.GameData, p ids.ProvinceID) map[ids.ProvinceID]bool {
	set := make(map[ids.ProvinceID]bool, len(data.Adjacency[p]))
	for _, e := range data.Adjacency[p] {
		set[e.To] = true
	}
	return set
}
