package commands

import (
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

const recruitCost = 100 // flat treasury cost in whole currency units, per regiment

func applyRecruitRegiment(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	country, ok := state.Countries.Get(issuer)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	prov, ok := state.Provinces.Get(cmd.Province)
	if !ok {
		return state, Simple(ErrNoSuchProvince)
	}
	if prov.Owner == nil || *prov.Owner != issuer {
		return state, Simple(ErrInvalidTarget)
	}

	cost := fixedpoint.FromInt(recruitCost)
	if country.Treasury < cost {
		return state, Simple(ErrInsufficientFunds)
	}
	manpowerCost := fixedpoint.FromInt(1)
	if country.Manpower < manpowerCost {
		return state, Simple(ErrInsufficientManpower)
	}

	nc := country.Clone()
	nc.Treasury = nc.Treasury.Sub(cost)
	nc.Manpower = nc.Manpower.Sub(manpowerCost)
	state = state.WithCountry(issuer, nc)

	var armyID ids.ArmyID
	armyID, state = state.AllocArmyID()
	regimentID := ids.RegimentID(armyID)
	army := &worldstate.Army{
		ID:       armyID,
		Owner:    issuer,
		Location: cmd.Province,
		Regiments: []worldstate.Regiment{{
			ID:          regimentID,
			Kind:        cmd.RegimentKind,
			Strength:    fixedpoint.M32FromInt(1000),
			MaxStrength: fixedpoint.M32FromInt(1000),
			Morale:      fixedpoint.M32FromInt(3),
		}},
	}
	return state.WithArmy(armyID, army), nil
}

func applyDisbandArmy(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	army, ok := state.Armies.Get(cmd.Army)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if army.Owner != issuer {
		return state, Simple(ErrInvalidTarget)
	}
	if army.InBattle != nil {
		return state, Simple(ErrInvalidTarget)
	}
	return state.WithoutArmy(cmd.Army), nil
}
