// Package economy runs the monthly production, taxation, manpower,
// expense, and mana subsystems. See design doc Section 4.9. It replaces
// the teacher's internal/economy/goods.go (a float64 supply/demand market
// model) entirely — incompatible with the kernel's no-floating-point rule
// — while keeping the teacher's per-good catalog idea in spirit via
// gamedata.TradeGood.
package economy

import (
	"sort"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// Tick runs the full monthly economic pass in the order design doc Section
// 4.1 mandates: production before taxation (production seeds each trade
// node's local_value, which internal/trade needs downstream), then
// manpower, then expenses, then mana.
func Tick(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	state = ProductionTick(state, data)
	state = TaxationTick(state, data)
	state = ManpowerTick(state)
	state = ExpensesTick(state)
	state = ManaTick(state)
	return state
}

// ProductionTick computes each province's goods produced and resulting
// trade value, then deposits the value into its trade node's local_value
// for internal/trade's monthly propagation pass to pick up.
func ProductionTick(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	localValue := make(map[ids.TradeNodeID]fixedpoint.Fixed)

	state.Provinces.Ascend(func(id ids.ProvinceID, p *worldstate.ProvinceState) bool {
		goodsProduced := p.BaseProduction.MulFrac(1, 5) // x0.2
		price := goodPrice(data, p.TradeGood)
		tradeValue := goodsProduced.Mul(price)
		localValue[p.TradeNode] = localValue[p.TradeNode].Add(tradeValue.ToFixed())
		return true
	})

	var nodeIDs []ids.TradeNodeID
	for n := range localValue {
		nodeIDs = append(nodeIDs, n)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })

	for _, n := range nodeIDs {
		node, ok := state.TradeNodes.Get(n)
		if !ok {
			continue
		}
		nn := node.Clone()
		nn.LocalValue = localValue[n]
		state = state.WithTradeNode(n, nn)
	}
	return state
}

func goodPrice(data *gamedata.GameData, good uint16) fixedpoint.Mod32 {
	if g, ok := data.Goods[good]; ok {
		return fixedpoint.Mod32(int32(g.BasePrice))
	}
	return fixedpoint.M32FromInt(1)
}

// ManpowerTick regenerates every country's manpower pool by 1/120th of its
// max per month, clamped at the max (design doc Section 4.9).
func ManpowerTick(state worldstate.WorldState) worldstate.WorldState {
	for _, t := range sortedCountryTags(state) {
		c, ok := state.Countries.Get(t)
		if !ok || !c.Alive {
			continue
		}
		nc := c.Clone()
		regen := nc.MaxManpower.MulFrac(1, 120)
		nc.Manpower = nc.Manpower.Add(regen)
		if nc.Manpower.Cmp(nc.MaxManpower) > 0 {
			nc.Manpower = nc.MaxManpower
		}
		state = state.WithCountry(t, nc)
	}
	return state
}

// ExpensesTick deducts army and fort maintenance from every country's
// treasury (design doc Section 4.9: 0.2 per regiment, 1.0 per fort).
func ExpensesTick(state worldstate.WorldState) worldstate.WorldState {
	regimentCount := make(map[ids.Tag]int64)
	state.Armies.Ascend(func(_ ids.ArmyID, a *worldstate.Army) bool {
		regimentCount[a.Owner] += int64(len(a.Regiments))
		return true
	})

	fortCount := make(map[ids.Tag]int64)
	state.Provinces.Ascend(func(_ ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if p.Owner != nil && p.FortLevel > 0 {
			fortCount[*p.Owner]++
		}
		return true
	})

	for _, t := range sortedCountryTags(state) {
		c, ok := state.Countries.Get(t)
		if !ok || !c.Alive {
			continue
		}
		armyMaint := fixedpoint.FromMilli(200).MulInt(regimentCount[t]) // 0.2 per regiment
		fortMaint := fixedpoint.FromInt(1).MulInt(fortCount[t])         // 1.0 per fort
		nc := c.Clone()
		nc.Treasury = nc.Treasury.Sub(armyMaint).Sub(fortMaint)
		state = state.WithCountry(t, nc)
	}
	return state
}

// ManaTick accrues monarch-power points: base 3 plus a tech-derived bonus
// (worldstate.CountryState carries no separate ruler/advisor entity, so
// tech level stands in for "ruler stat + advisor skill" per design doc
// Section 4.9's formula shape), clamped at 999.
func ManaTick(state worldstate.WorldState) worldstate.WorldState {
	const base = 3

	for _, t := range sortedCountryTags(state) {
		c, ok := state.Countries.Get(t)
		if !ok || !c.Alive {
			continue
		}
		nc := c.Clone()
		nc.ManaADM = clampMana(int(nc.ManaADM) + base + int(nc.TechADM)/4)
		nc.ManaDIP = clampMana(int(nc.ManaDIP) + base + int(nc.TechDIP)/4)
		nc.ManaMIL = clampMana(int(nc.ManaMIL) + base + int(nc.TechMIL)/4)
		state = state.WithCountry(t, nc)
	}
	return state
}

func clampMana(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 999 {
		return 999
	}
	return uint16(v)
}

func sortedCountryTags(state worldstate.WorldState) []ids.Tag {
	var tags []ids.Tag
	state.Countries.Ascend(func(t ids.Tag, _ *worldstate.CountryState) bool {
		tags = append(tags, t)
		return true
	})
	sort.Slice(tags, func(i, j int) bool { return tags[i].Less(tags[j]) })
	return tags
}
