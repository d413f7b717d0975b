// Package naval resolves fleet engagements and coastal blockades, mirroring
// internal/combat's Fire/Shock cycle over ship hulls instead of regiment
// strength. See design doc Section 4.7.
package naval

import (
	"sort"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/simrand"
	"github.com/talgya/concordia/internal/worldstate"
)

const (
	phaseLengthDays = 3
	stackwipeRatio  = 10
)

// Tick advances every active naval battle by one day and then refreshes the
// blockade flag of every active siege — a fleet that arrives and
// immediately fights can still contribute to blockade state at day end.
func Tick(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	state = detectNewBattles(state, atWar)

	var battleIDs []ids.BattleID
	state.Battles.Ascend(func(id ids.BattleID, b *worldstate.Battle) bool {
		if b.IsNaval {
			battleIDs = append(battleIDs, id)
		}
		return true
	})
	sort.Slice(battleIDs, func(i, j int) bool { return battleIDs[i] < battleIDs[j] })

	for _, id := range battleIDs {
		state = tickOneBattle(state, id)
	}

	state = refreshBlockades(state, data)
	return state
}

func detectNewBattles(state worldstate.WorldState, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	byZone := make(map[ids.ProvinceID][]ids.FleetID)
	var zones []ids.ProvinceID
	state.Fleets.Ascend(func(id ids.FleetID, f *worldstate.Fleet) bool {
		if f.InBattle != nil {
			return true
		}
		if _, seen := byZone[f.Location]; !seen {
			zones = append(zones, f.Location)
		}
		byZone[f.Location] = append(byZone[f.Location], id)
		return true
	})
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })

	for _, zone := range zones {
		fleets := byZone[zone]
		attackers, defenders := splitHostile(state, fleets, atWar)
		if len(attackers) == 0 || len(defenders) == 0 {
			continue
		}

		var battleID ids.BattleID
		battleID, state = state.AllocBattleID()
		state = state.WithBattle(battleID, navalBattle(battleID, zone, attackers, defenders))
		for _, fID := range append(append([]ids.FleetID(nil), attackers...), defenders...) {
			f, ok := state.Fleets.Get(fID)
			if !ok {
				continue
			}
			nf := f.Clone()
			nf.InBattle = &battleID
			state = state.WithFleet(fID, nf)
		}
	}
	return state
}

// navalBattle stuffs the participating fleet ids into the shared Battle
// struct's army-id slices, since worldstate.Battle is reused for both land
// and naval engagements; IsNaval is the discriminator callers must check
// before interpreting AttackerArmies/DefenderArmies as fleet ids.
func navalBattle(id ids.BattleID, zone ids.ProvinceID, attackers, defenders []ids.FleetID) *worldstate.Battle {
	return &worldstate.Battle{
		ID:             id,
		Province:       zone,
		AttackerArmies: fleetIDsAsArmyIDs(attackers),
		DefenderArmies: fleetIDsAsArmyIDs(defenders),
		Phase:          worldstate.PhaseFire,
		AttackerOrigin: zone,
		IsNaval:        true,
	}
}

func fleetIDsAsArmyIDs(f []ids.FleetID) []ids.ArmyID {
	out := make([]ids.ArmyID, len(f))
	for i, id := range f {
		out[i] = ids.ArmyID(id)
	}
	return out
}

func armyIDsAsFleetIDs(a []ids.ArmyID) []ids.FleetID {
	out := make([]ids.FleetID, len(a))
	for i, id := range a {
		out[i] = ids.FleetID(id)
	}
	return out
}

func splitHostile(state worldstate.WorldState, fleets []ids.FleetID, atWar func(a, b ids.Tag) bool) ([]ids.FleetID, []ids.FleetID) {
	if len(fleets) < 2 {
		return nil, nil
	}
	sorted := append([]ids.FleetID(nil), fleets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	anchor, ok := state.Fleets.Get(sorted[0])
	if !ok {
		return nil, nil
	}
	var attackers, defenders []ids.FleetID
	attackers = append(attackers, sorted[0])
	for _, id := range sorted[1:] {
		f, ok := state.Fleets.Get(id)
		if !ok {
			continue
		}
		if atWar(anchor.Owner, f.Owner) {
			defenders = append(defenders, id)
		}
	}
	return attackers, defenders
}

func tickOneBattle(state worldstate.WorldState, id ids.BattleID) worldstate.WorldState {
	battle, ok := state.Battles.Get(id)
	if !ok {
		return state
	}
	nb := battle.Clone()
	nb.PhaseDay++

	if nb.PhaseDay < phaseLengthDays {
		return state.WithBattle(id, nb)
	}
	nb.PhaseDay = 0

	stream := simrand.Derive(state.Seed, state.Tick, simrand.TagNavalCombat)
	attDice := stream.Dice(10)
	defDice := stream.Dice(10)

	attackers := armyIDsAsFleetIDs(nb.AttackerArmies)
	defenders := armyIDsAsFleetIDs(nb.DefenderArmies)

	attPip := bestPip(state, attackers, nb.Phase)
	defPip := bestPip(state, defenders, nb.Phase)

	attDamage := sideDamage(state, attackers, attDice, attPip)
	defDamage := sideDamage(state, defenders, defDice, defPip)

	var attSurvivors, defSurvivors []ids.FleetID
	state, attSurvivors = applyDamage(state, attackers, defDamage)
	state, defSurvivors = applyDamage(state, defenders, attDamage)

	nb.Phase = nb.Phase.Flip()
	nb.AttackerArmies = fleetIDsAsArmyIDs(attSurvivors)
	nb.DefenderArmies = fleetIDsAsArmyIDs(defSurvivors)

	attStrength := sideStrength(state, attSurvivors)
	defStrength := sideStrength(state, defSurvivors)

	attWiped := len(attSurvivors) == 0 || (defStrength > 0 && attStrength.Mul(fixedpoint.M32FromInt(stackwipeRatio)) < defStrength)
	defWiped := len(defSurvivors) == 0 || (attStrength > 0 && defStrength.Mul(fixedpoint.M32FromInt(stackwipeRatio)) < attStrength)

	if attWiped {
		state = sinkFleets(state, attSurvivors)
		nb.AttackerArmies = nil
	}
	if defWiped {
		state = sinkFleets(state, defSurvivors)
		nb.DefenderArmies = nil
	}

	if len(nb.AttackerArmies) == 0 || len(nb.DefenderArmies) == 0 {
		state = releaseFleets(state, armyIDsAsFleetIDs(nb.AttackerArmies))
		state = releaseFleets(state, armyIDsAsFleetIDs(nb.DefenderArmies))
		return state.WithoutBattle(id)
	}
	return state.WithBattle(id, nb)
}

// sideDamage sums base hull damage across all ships on a side, modulated
// by the phase dice and leader pip, the same shape as land combat's
// formula but with no terrain/river term (naval combat has neither).
func sideDamage(state worldstate.WorldState, fleetIDs []ids.FleetID, dice int, pip int8) fixedpoint.Mod32 {
	shipCount := int32(0)
	for _, id := range fleetIDs {
		f, ok := state.Fleets.Get(id)
		if !ok {
			continue
		}
		shipCount += int32(len(f.Ships))
	}
	modifier := int32(dice) + int32(pip)
	if modifier < 0 {
		modifier = 0
	}
	const baseDamage = 5
	const targetHull = 1000
	total := fixedpoint.M32FromInt(shipCount).Mul(fixedpoint.M32FromInt(baseDamage)).Mul(fixedpoint.M32FromInt(modifier))
	return total.Div(fixedpoint.M32FromInt(targetHull))
}

func applyDamage(state worldstate.WorldState, fleetIDs []ids.FleetID, dmg fixedpoint.Mod32) (worldstate.WorldState, []ids.FleetID) {
	totalShips := 0
	for _, id := range fleetIDs {
		if f, ok := state.Fleets.Get(id); ok {
			totalShips += len(f.Ships)
		}
	}
	if totalShips == 0 {
		return state, nil
	}
	perShip := dmg.Div(fixedpoint.M32FromInt(int32(totalShips)))

	var survivors []ids.FleetID
	for _, id := range fleetIDs {
		f, ok := state.Fleets.Get(id)
		if !ok {
			continue
		}
		nf := f.Clone()
		var kept []worldstate.Ship
		for _, sh := range nf.Ships {
			sh.Durability = sh.Durability.Sub(perShip)
			if sh.Durability < 0 {
				sh.Durability = 0
			}
			if sh.Durability > 0 {
				kept = append(kept, sh)
			}
		}
		nf.Ships = kept
		if len(kept) == 0 {
			state = state.WithoutFleet(id)
			continue
		}
		state = state.WithFleet(id, nf)
		survivors = append(survivors, id)
	}
	return state, survivors
}

func sideStrength(state worldstate.WorldState, fleetIDs []ids.FleetID) fixedpoint.Mod32 {
	var total fixedpoint.Mod32
	for _, id := range fleetIDs {
		f, ok := state.Fleets.Get(id)
		if !ok {
			continue
		}
		for _, s := range f.Ships {
			total = total.Add(s.Durability)
		}
	}
	return total
}

func sinkFleets(state worldstate.WorldState, fleetIDs []ids.FleetID) worldstate.WorldState {
	for _, id := range fleetIDs {
		state = state.WithoutFleet(id)
	}
	return state
}

func releaseFleets(state worldstate.WorldState, fleetIDs []ids.FleetID) worldstate.WorldState {
	for _, id := range fleetIDs {
		f, ok := state.Fleets.Get(id)
		if !ok {
			continue
		}
		nf := f.Clone()
		nf.InBattle = nil
		state = state.WithFleet(id, nf)
	}
	return state
}

func bestPip(state worldstate.WorldState, fleetIDs []ids.FleetID, phase worldstate.BattlePhase) int8 {
	var best int8
	for _, id := range fleetIDs {
		f, ok := state.Fleets.Get(id)
		if !ok || !f.Leader.Present {
			continue
		}
		pip := f.Leader.Fire
		if phase == worldstate.PhaseShock {
			pip = f.Leader.Shock
		}
		if pip > best {
			best = pip
		}
	}
	return best
}

// refreshBlockades recomputes the Blockaded flag of every active siege:
// true when the besieged province is coastal and every adjacent sea zone
// holds at least one fleet owned by the siege's attacker, the same
// predicate internal/siege evaluates for the blockade dice bonus. Fleets
// of the attacker's allies are not counted, and provinces not under siege
// get no blockade flag.
func refreshBlockades(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	var siegeIDs []ids.SiegeID
	state.Sieges.Ascend(func(id ids.SiegeID, s *worldstate.Siege) bool {
		siegeIDs = append(siegeIDs, id)
		return true
	})
	sort.Slice(siegeIDs, func(i, j int) bool { return siegeIDs[i] < siegeIDs[j] })

	fleetsBySeaZone := make(map[ids.ProvinceID][]*worldstate.Fleet)
	state.Fleets.Ascend(func(_ ids.FleetID, f *worldstate.Fleet) bool {
		fleetsBySeaZone[f.Location] = append(fleetsBySeaZone[f.Location], f)
		return true
	})

	for _, id := range siegeIDs {
		s, ok := state.Sieges.Get(id)
		if !ok {
			continue
		}
		def, ok := data.Provinces[s.Province]
		if !ok || !def.Coastal || len(def.AdjacentSea) == 0 {
			continue
		}
		blockaded := true
		for _, sea := range def.AdjacentSea {
			held := false
			for _, f := range fleetsBySeaZone[sea] {
				if f.Owner == s.Attacker {
					held = true
					break
				}
			}
			if !held {
				blockaded = false
				break
			}
		}
		if blockaded != s.Blockaded {
			ns := s.Clone()
			ns.Blockaded = blockaded
			state = state.WithSiege(id, ns)
		}
	}
	return state
}
