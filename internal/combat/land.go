// Package combat resolves land battles: automatic engagement when hostile
// armies share a province, the Fire/Shock phase cycle, casualty/stackwipe
// math, and leader pip contributions. See design doc Section 4.4.
package combat

import (
	"sort"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/simrand"
	"github.com/talgya/concordia/internal/worldstate"
)

const (
	phaseLengthDays  = 3
	stackwipeRatio   = 10 // defeated side stackwipes if its strength < 1/10th the winner's
	riverPenaltyDice = 1
)

// Tick advances every active land battle by one day: phase_day += 1; on
// reaching phaseLengthDays a single dice roll per side resolves damage and
// the phase flips. Battles created this tick by fresh collisions are
// detected first via detectNewBattles, so a unit that just arrived can
// fight the same day it moves in (design doc Section 4.1's movement-before-
// combat ordering rationale).
func Tick(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	state = detectNewBattles(state, data, atWar)

	var battleIDs []ids.BattleID
	state.Battles.Ascend(func(id ids.BattleID, b *worldstate.Battle) bool {
		if !b.IsNaval {
			battleIDs = append(battleIDs, id)
		}
		return true
	})
	sort.Slice(battleIDs, func(i, j int) bool { return battleIDs[i] < battleIDs[j] })

	for _, id := range battleIDs {
		state = tickOneBattle(state, data, id)
	}
	return state
}

// detectNewBattles scans provinces for multiple armies belonging to
// countries at war with each other and creates a Battle for any such
// collision that doesn't already have one.
func detectNewBattles(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	byProvince := make(map[ids.ProvinceID][]ids.ArmyID)
	var provinces []ids.ProvinceID
	state.Armies.Ascend(func(id ids.ArmyID, a *worldstate.Army) bool {
		if a.EmbarkedOn != nil || a.InBattle != nil {
			return true
		}
		if _, seen := byProvince[a.Location]; !seen {
			provinces = append(provinces, a.Location)
		}
		byProvince[a.Location] = append(byProvince[a.Location], id)
		return true
	})
	sort.Slice(provinces, func(i, j int) bool { return provinces[i] < provinces[j] })

	for _, prov := range provinces {
		armies := byProvince[prov]
		attackers, defenders := splitHostile(state, armies, atWar)
		if len(attackers) == 0 || len(defenders) == 0 {
			continue
		}

		var battleID ids.BattleID
		battleID, state = state.AllocBattleID()
		battle := &worldstate.Battle{
			ID:             battleID,
			Province:       prov,
			AttackerArmies: attackers,
			DefenderArmies: defenders,
			Phase:          worldstate.PhaseFire,
			AttackerOrigin: prov,
		}
		state = state.WithBattle(battleID, battle)
		for _, aID := range append(append([]ids.ArmyID(nil), attackers...), defenders...) {
			a, ok := state.Armies.Get(aID)
			if !ok {
				continue
			}
			na := a.Clone()
			na.InBattle = &battleID
			state = state.WithArmy(aID, na)
		}
	}
	return state
}

// splitHostile partitions armies at a province into two mutually-hostile
// groups: the first army present anchors the "attacker" side; every other
// army at war with it joins the "defender" side, and any army not at war
// with the anchor is left out of the battle entirely.
func splitHostile(state worldstate.WorldState, armies []ids.ArmyID, atWar func(a, b ids.Tag) bool) ([]ids.ArmyID, []ids.ArmyID) {
	if len(armies) < 2 {
		return nil, nil
	}
	sorted := append([]ids.ArmyID(nil), armies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	anchor, ok := state.Armies.Get(sorted[0])
	if !ok {
		return nil, nil
	}
	var attackers, defenders []ids.ArmyID
	attackers = append(attackers, sorted[0])
	for _, id := range sorted[1:] {
		a, ok := state.Armies.Get(id)
		if !ok {
			continue
		}
		if atWar(anchor.Owner, a.Owner) {
			defenders = append(defenders, id)
		}
	}
	return attackers, defenders
}

func tickOneBattle(state worldstate.WorldState, data *gamedata.GameData, id ids.BattleID) worldstate.WorldState {
	battle, ok := state.Battles.Get(id)
	if !ok {
		return state
	}
	nb := battle.Clone()
	nb.PhaseDay++

	if nb.PhaseDay < phaseLengthDays {
		state = state.WithBattle(id, nb)
		return state
	}

	nb.PhaseDay = 0
	stream := simrand.Derive(state.Seed, state.Tick, simrand.TagLandCombat)

	attDice := stream.Dice(10)
	defDice := stream.Dice(10)

	terrain := provinceTerrain(data, nb.Province)
	attPip := bestPip(state, nb.AttackerArmies, nb.Phase)
	defPip := bestPip(state, nb.DefenderArmies, nb.Phase)

	riverPenalty := int32(0)
	if crossesRiver(data, nb.AttackerOrigin, nb.Province) {
		riverPenalty = riverPenaltyDice
	}

	attDamage := sideDamage(state, data, nb.AttackerArmies, attDice, attPip, terrain, 0)
	defDamage := sideDamage(state, data, nb.DefenderArmies, defDice, defPip, gamedata.TerrainPlains, riverPenalty)

	state, nb.AttackerArmies = applyCasualties(state, nb.AttackerArmies, defDamage)
	state, nb.DefenderArmies = applyCasualties(state, nb.DefenderArmies, attDamage)

	nb.Phase = nb.Phase.Flip()

	attStrength := sideStrength(state, nb.AttackerArmies)
	defStrength := sideStrength(state, nb.DefenderArmies)

	attWiped := len(nb.AttackerArmies) == 0 || (defStrength > 0 && attStrength.Mul(fixedpoint.M32FromInt(stackwipeRatio)) < defStrength)
	defWiped := len(nb.DefenderArmies) == 0 || (attStrength > 0 && defStrength.Mul(fixedpoint.M32FromInt(stackwipeRatio)) < attStrength)

	if attWiped {
		state = removeArmies(state, nb.AttackerArmies)
		nb.AttackerArmies = nil
	}
	if defWiped {
		state = removeArmies(state, nb.DefenderArmies)
		nb.DefenderArmies = nil
	}

	if len(nb.AttackerArmies) == 0 || len(nb.DefenderArmies) == 0 {
		state = releaseArmies(state, nb.AttackerArmies)
		state = releaseArmies(state, nb.DefenderArmies)
		return state.WithoutBattle(id)
	}

	return state.WithBattle(id, nb)
}

// sideDamage implements design doc Section 4.4's per-side damage formula:
// regiment_count x base_damage x (dice + pip + terrain - river) / target_hull,
// clamped non-negative. Terrain contributes a flat bonus/penalty baked into
// gamedata.Terrain via terrainDiceModifier.
func sideDamage(state worldstate.WorldState, data *gamedata.GameData, armyIDs []ids.ArmyID, dice int, pip int8, terrain gamedata.Terrain, riverPenalty int32) fixedpoint.Mod32 {
	regimentCount := int32(0)
	for _, id := range armyIDs {
		a, ok := state.Armies.Get(id)
		if !ok {
			continue
		}
		regimentCount += int32(len(a.Regiments))
	}
	modifier := int32(dice) + int32(pip) + terrainDiceModifier(terrain) - riverPenalty
	if modifier < 0 {
		modifier = 0
	}
	const targetHull = 1000
	baseDamage := fixedpoint.Mod32(int32(data.Defines.BaseLandDamage))
	total := fixedpoint.M32FromInt(regimentCount).Mul(baseDamage).Mul(fixedpoint.M32FromInt(modifier))
	return total.Div(fixedpoint.M32FromInt(targetHull))
}

// applyCasualties spreads dmg evenly across a side's regiments (design doc
// leaves exact distribution unspecified beyond "regiments take casualties";
// equal split per regiment is the simplest rule consistent with the spec),
// removes any regiment whose strength hits zero, and removes any army left
// with no regiments. It returns the surviving army id list.
func applyCasualties(state worldstate.WorldState, armyIDs []ids.ArmyID, dmg fixedpoint.Mod32) (worldstate.WorldState, []ids.ArmyID) {
	totalRegiments := 0
	for _, id := range armyIDs {
		if a, ok := state.Armies.Get(id); ok {
			totalRegiments += len(a.Regiments)
		}
	}
	if totalRegiments == 0 {
		return state, nil
	}
	perRegiment := dmg.Div(fixedpoint.M32FromInt(int32(totalRegiments)))

	var survivors []ids.ArmyID
	for _, id := range armyIDs {
		a, ok := state.Armies.Get(id)
		if !ok {
			continue
		}
		na := a.Clone()
		var kept []worldstate.Regiment
		for _, r := range na.Regiments {
			r.Strength = r.Strength.Sub(perRegiment)
			if r.Strength < 0 {
				r.Strength = 0
			}
			r.Morale = r.Morale.Sub(fixedpoint.M32FromInt(1)).Clamp(0, fixedpoint.M32FromInt(3))
			if r.Strength > 0 {
				kept = append(kept, r)
			}
		}
		na.Regiments = kept
		if len(kept) == 0 {
			state = state.WithoutArmy(id)
			continue
		}
		state = state.WithArmy(id, na)
		survivors = append(survivors, id)
	}
	return state, survivors
}

func sideStrength(state worldstate.WorldState, armyIDs []ids.ArmyID) fixedpoint.Mod32 {
	var total fixedpoint.Mod32
	for _, id := range armyIDs {
		if a, ok := state.Armies.Get(id); ok {
			total = total.Add(a.TotalStrength())
		}
	}
	return total
}

func removeArmies(state worldstate.WorldState, armyIDs []ids.ArmyID) worldstate.WorldState {
	for _, id := range armyIDs {
		state = state.WithoutArmy(id)
	}
	return state
}

func releaseArmies(state worldstate.WorldState, armyIDs []ids.ArmyID) worldstate.WorldState {
	for _, id := range armyIDs {
		a, ok := state.Armies.Get(id)
		if !ok {
			continue
		}
		na := a.Clone()
		na.InBattle = nil
		state = state.WithArmy(id, na)
	}
	return state
}

// bestPip returns the highest fire/shock pip (matching the active phase)
// among the side's present leaders; maneuver and siege pips are consulted
// by their own callers (movement ZoC, siege), not here.
func bestPip(state worldstate.WorldState, armyIDs []ids.ArmyID, phase worldstate.BattlePhase) int8 {
	var best int8
	for _, id := range armyIDs {
		a, ok := state.Armies.Get(id)
		if !ok || !a.Leader.Present {
			continue
		}
		pip := a.Leader.Fire
		if phase == worldstate.PhaseShock {
			pip = a.Leader.Shock
		}
		if pip > best {
			best = pip
		}
	}
	return best
}

func provinceTerrain(data *gamedata.GameData, id ids.ProvinceID) gamedata.Terrain {
	if def, ok := data.Provinces[id]; ok {
		return def.BaseTerrain
	}
	return gamedata.TerrainPlains
}

// terrainDiceModifier applies a flat attack-side penalty for rough terrain,
// per design doc Section 4.4's "+-terrain" term; plains/desert carry no
// modifier, broken terrain penalizes the attacker's effective dice.
func terrainDiceModifier(t gamedata.Terrain) int32 {
	switch t {
	case gamedata.TerrainForest, gamedata.TerrainHills:
		return -1
	case gamedata.TerrainMountain, gamedata.TerrainMarsh, gamedata.TerrainJungle:
		return -2
	default:
		return 0
	}
}

func crossesRiver(data *gamedata.GameData, from, to ids.ProvinceID) bool {
	if from == to {
		return false
	}
	for _, e := range data.Adjacency[from] {
		if e.To == to && e.Kind == gamedata.EdgeRiver {
			return true
		}
	}
	return false
}
