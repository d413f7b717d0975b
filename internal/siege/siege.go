// Package siege resolves sieges of fortified, hostile-controlled provinces:
// creation on arrival, the monthly dice roll, and garrison capture. See
// design doc Section 4.5.
package siege

import (
	"sort"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/simrand"
	"github.com/talgya/concordia/internal/worldstate"
)

const (
	daysPerRoll       = 30
	successThreshold  = 20
	maxProgressBonus  = 12
	maxArtilleryBonus = 5
	breachDice        = 14
	casualtyDice      = 1
)

// Tick advances every active siege by one day: new sieges are opened for
// any army sitting alone in a hostile, fortified province with no battle in
// progress (an unfortified province is captured the same day, with no
// Siege record at all); every 30 days an existing siege rolls its dice.
func Tick(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	state = detectNewSieges(state, data, atWar)

	var siegeIDs []ids.SiegeID
	state.Sieges.Ascend(func(id ids.SiegeID, s *worldstate.Siege) bool {
		siegeIDs = append(siegeIDs, id)
		return true
	})
	sort.Slice(siegeIDs, func(i, j int) bool { return siegeIDs[i] < siegeIDs[j] })

	for _, id := range siegeIDs {
		state = tickOneSiege(state, data, id)
	}
	return state
}

// detectNewSieges opens a siege wherever a besieging-capable army (not in
// battle, not already besieging) occupies a hostile province that isn't
// already under siege. Fort level 0 provinces are captured immediately
// instead of spawning a Siege record.
func detectNewSieges(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	besieged := make(map[ids.ProvinceID]bool)
	state.Sieges.Ascend(func(_ ids.SiegeID, s *worldstate.Siege) bool {
		besieged[s.Province] = true
		return true
	})

	var armyIDs []ids.ArmyID
	state.Armies.Ascend(func(id ids.ArmyID, a *worldstate.Army) bool {
		armyIDs = append(armyIDs, id)
		return true
	})
	sort.Slice(armyIDs, func(i, j int) bool { return armyIDs[i] < armyIDs[j] })

	for _, aID := range armyIDs {
		a, ok := state.Armies.Get(aID)
		if !ok || a.InBattle != nil || a.Besieging != nil || a.EmbarkedOn != nil {
			continue
		}
		prov, ok := state.Provinces.Get(a.Location)
		if !ok || prov.Owner == nil || !atWar(a.Owner, *prov.Owner) {
			continue
		}
		if besieged[a.Location] {
			continue
		}

		if prov.FortLevel == 0 {
			state = captureProvince(state, a.Location, a.Owner)
			continue
		}

		var sID ids.SiegeID
		sID, state = state.AllocSiegeID()
		s := &worldstate.Siege{
			ID:              sID,
			Province:        a.Location,
			Attacker:        a.Owner,
			BesiegingArmies: []ids.ArmyID{aID},
			FortLevel:       prov.FortLevel,
			Garrison:        prov.Development,
		}
		state = state.WithSiege(sID, s)
		na := a.Clone()
		na.Besieging = &sID
		state = state.WithArmy(aID, na)
		besieged[a.Location] = true
	}
	return state
}

func tickOneSiege(state worldstate.WorldState, data *gamedata.GameData, id ids.SiegeID) worldstate.WorldState {
	s, ok := state.Sieges.Get(id)
	if !ok {
		return state
	}
	ns := s.Clone()
	ns.DaysInPhase++
	ns.Blockaded = isBlockaded(state, data, ns.Province, ns.Attacker)

	if ns.DaysInPhase < daysPerRoll {
		return state.WithSiege(id, ns)
	}
	ns.DaysInPhase = 0

	stream := simrand.DeriveKeyed(state.Seed, state.Tick, simrand.TagSiege, uint64(id))
	dice := int32(stream.Dice(breachDice)) // 1..14; the top face is the breach roll

	artilleryRegiments := countArtillery(state, ns.BesiegingArmies)
	artilleryBonus := artilleryRegiments
	if artilleryBonus > maxArtilleryBonus {
		artilleryBonus = maxArtilleryBonus
	}

	leaderPip := bestSiegePip(state, ns.BesiegingArmies)

	blockadeBonus := 0
	if ns.Blockaded {
		blockadeBonus = 1
	}

	total := dice + ns.ProgressModifier + int32(artilleryBonus) + int32(leaderPip) + int32(blockadeBonus) - int32(ns.FortLevel)

	if dice == casualtyDice {
		state = inflictAttackerCasualty(state, ns.BesiegingArmies)
	}
	if dice == breachDice {
		ns.Breached = true
	}

	if total >= successThreshold {
		state = captureProvince(state, ns.Province, ns.Attacker)
		for _, aID := range ns.BesiegingArmies {
			a, ok := state.Armies.Get(aID)
			if !ok {
				continue
			}
			na := a.Clone()
			na.Besieging = nil
			state = state.WithArmy(aID, na)
		}
		return state.WithoutSiege(id)
	}

	ns.ProgressModifier++
	if ns.ProgressModifier > maxProgressBonus {
		ns.ProgressModifier = maxProgressBonus
	}
	return state.WithSiege(id, ns)
}

func captureProvince(state worldstate.WorldState, id ids.ProvinceID, taker ids.Tag) worldstate.WorldState {
	prov, ok := state.Provinces.Get(id)
	if !ok {
		return state
	}
	np := prov.Clone()
	np.Controller = &taker
	if np.OccupiedSince == nil {
		now := state.Date
		np.OccupiedSince = &now
	}
	return state.WithProvince(id, np)
}

func inflictAttackerCasualty(state worldstate.WorldState, armyIDs []ids.ArmyID) worldstate.WorldState {
	if len(armyIDs) == 0 {
		return state
	}
	a, ok := state.Armies.Get(armyIDs[0])
	if !ok || len(a.Regiments) == 0 {
		return state
	}
	na := a.Clone()
	na.Regiments[0].Strength = na.Regiments[0].Strength.Sub(fixedpoint.M32FromInt(1))
	if na.Regiments[0].Strength < 0 {
		na.Regiments[0].Strength = 0
	}
	return state.WithArmy(armyIDs[0], na)
}

func countArtillery(state worldstate.WorldState, armyIDs []ids.ArmyID) int {
	count := 0
	for _, id := range armyIDs {
		a, ok := state.Armies.Get(id)
		if !ok {
			continue
		}
		for _, r := range a.Regiments {
			if r.Kind == worldstate.RegimentArtillery {
				count++
			}
		}
	}
	return count
}

func bestSiegePip(state worldstate.WorldState, armyIDs []ids.ArmyID) int8 {
	var best int8
	for _, id := range armyIDs {
		a, ok := state.Armies.Get(id)
		if !ok || !a.Leader.Present {
			continue
		}
		if a.Leader.Siege > best {
			best = a.Leader.Siege
		}
	}
	return best
}

// isBlockaded reports whether prov is coastal and every adjacent sea zone
// holds at least one fleet owned by the attacker itself (design doc Section
// 4.5's blockade bonus). Fleets of the attacker's allies are not counted.
func isBlockaded(state worldstate.WorldState, data *gamedata.GameData, provID ids.ProvinceID, attacker ids.Tag) bool {
	def, ok := data.Provinces[provID]
	if !ok || !def.Coastal || len(def.AdjacentSea) == 0 {
		return false
	}
	fleetsBySeaZone := make(map[ids.ProvinceID][]*worldstate.Fleet)
	state.Fleets.Ascend(func(_ ids.FleetID, f *worldstate.Fleet) bool {
		fleetsBySeaZone[f.Location] = append(fleetsBySeaZone[f.Location], f)
		return true
	})
	for _, sea := range def.AdjacentSea {
		held := false
		for _, f := range fleetsBySeaZone[sea] {
			if f.Owner == attacker {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	return true
}
