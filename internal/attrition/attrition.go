// Package attrition applies the monthly supply-limit loss to armies that
// exceed the development-derived carrying capacity of the province they
// occupy. See design doc Section 4.6.
package attrition

import (
	"sort"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// Tick applies one month of attrition to every army not embarked or
// currently fighting. Armies inside a battle or siege are left out
// entirely: they neither count toward their province's regiment load nor
// take attrition losses here, since combat/siege resolve their casualties.
func Tick(state worldstate.WorldState, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	byProvince := make(map[ids.ProvinceID][]ids.ArmyID)
	var provinces []ids.ProvinceID
	state.Armies.Ascend(func(id ids.ArmyID, a *worldstate.Army) bool {
		if a.EmbarkedOn != nil || a.InBattle != nil || a.Besieging != nil {
			return true
		}
		if _, seen := byProvince[a.Location]; !seen {
			provinces = append(provinces, a.Location)
		}
		byProvince[a.Location] = append(byProvince[a.Location], id)
		return true
	})
	sort.Slice(provinces, func(i, j int) bool { return provinces[i] < provinces[j] })

	for _, provID := range provinces {
		state = tickProvince(state, provID, byProvince[provID], atWar)
	}
	return state
}

func tickProvince(state worldstate.WorldState, provID ids.ProvinceID, armyIDs []ids.ArmyID, atWar func(a, b ids.Tag) bool) worldstate.WorldState {
	prov, ok := state.Provinces.Get(provID)
	if !ok {
		return state
	}

	regimentCount := int32(0)
	for _, id := range armyIDs {
		if a, ok := state.Armies.Get(id); ok {
			regimentCount += int32(len(a.Regiments))
		}
	}
	if regimentCount == 0 {
		return state
	}

	// supply_limit = total_dev x 1.0 (design doc Section 4.6); Development
	// is already a regiment-count-scale quantity, one regiment per point.
	supplyLimit := prov.Development.Int()
	if int32(regimentCount) <= supplyLimit {
		return state
	}

	over := fixedpoint.M32FromInt(int32(regimentCount) - supplyLimit)
	limit := fixedpoint.M32FromInt(supplyLimit)
	if limit == 0 {
		limit = fixedpoint.M32FromInt(1)
	}

	lossPct := fixedpoint.M32FromInt(1).Add(fixedpoint.M32FromInt(5).Mul(over.Div(limit)))

	for _, id := range armyIDs {
		a, ok := state.Armies.Get(id)
		if !ok {
			continue
		}
		armyLoss := lossPct
		if prov.Owner == nil || atWar(a.Owner, *prov.Owner) {
			armyLoss = armyLoss.Add(fixedpoint.M32FromInt(1))
		}
		if state.Date.IsWinter() {
			armyLoss = armyLoss.Add(fixedpoint.M32FromInt(2))
		}
		state = applyLoss(state, id, armyLoss)
	}
	return state
}

func applyLoss(state worldstate.WorldState, id ids.ArmyID, lossPct fixedpoint.Mod32) worldstate.WorldState {
	a, ok := state.Armies.Get(id)
	if !ok {
		return state
	}
	na := a.Clone()
	hundred := fixedpoint.M32FromInt(100)
	var kept []worldstate.Regiment
	for _, r := range na.Regiments {
		loss := r.Strength.Mul(lossPct).Div(hundred)
		r.Strength = r.Strength.Sub(loss)
		if r.Strength < 0 {
			r.Strength = 0
		}
		if r.Strength > 0 {
			kept = append(kept, r)
		}
	}
	na.Regiments = kept
	if len(kept) == 0 {
		return state.WithoutArmy(id)
	}
	return state.WithArmy(id, na)
}
