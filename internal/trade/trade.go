// Package trade propagates value and power through the trade-node DAG:
// power accumulation, topological value forwarding, and income collection.
// See design doc Section 4.10. Must run after internal/economy's
// ProductionTick has seeded each node's LocalValue, and trade power must be
// recomputed before trade value is propagated (design doc Section 4.1's
// ordering rationale).
package trade

import (
	"sort"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/modifiers"
	"github.com/talgya/concordia/internal/worldstate"
)

const (
	provincialPowerNum = 1
	provincialPowerDen = 5 // 0.2 x dev
	merchantBase       = 2
	merchantSteerBonus = 5 // total bonus when steering (replaces the base +2)
	nonHomeCollectHalf = 2 // divide by this when collecting outside the home node
)

// PowerTick recomputes every trade node's per-country power and total
// power, walking the DAG in topological order so upstream_power is already
// known for every node by the time it's needed downstream.
func PowerTick(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	devByNode := make(map[ids.TradeNodeID]map[ids.Tag]fixedpoint.Fixed)
	state.Provinces.Ascend(func(_ ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if p.Owner == nil {
			return true
		}
		if devByNode[p.TradeNode] == nil {
			devByNode[p.TradeNode] = make(map[ids.Tag]fixedpoint.Fixed)
		}
		devByNode[p.TradeNode][*p.Owner] = devByNode[p.TradeNode][*p.Owner].Add(p.Development.ToFixed())
		return true
	})

	upstreamPower := make(map[ids.TradeNodeID]map[ids.Tag]fixedpoint.Fixed)

	for _, nodeID := range data.TradeOrder {
		node, ok := state.TradeNodes.Get(nodeID)
		if !ok {
			continue
		}
		def := data.TradeNodes[nodeID]
		nn := node.Clone()
		nn.CountryPower = make(map[ids.Tag]fixedpoint.Fixed)

		var tags []ids.Tag
		for t := range devByNode[nodeID] {
			tags = append(tags, t)
		}
		for t := range upstreamPower[nodeID] {
			if _, ok := devByNode[nodeID][t]; !ok {
				tags = append(tags, t)
			}
		}
		for t := range node.Merchants {
			found := false
			for _, existing := range tags {
				if existing == t {
					found = true
					break
				}
			}
			if !found {
				tags = append(tags, t)
			}
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i].Less(tags[j]) })

		var total fixedpoint.Fixed
		for _, t := range tags {
			provincial := devByNode[nodeID][t].MulFrac(provincialPowerNum, provincialPowerDen)
			cot := centerOfTradeBonus(state, nodeID, t, def)
			merchant := merchantBonus(node, t)
			up := upstreamPower[nodeID][t]

			power := provincial.Add(cot).Add(merchant).Add(up)

			if assignment, has := node.Merchants[t]; has && assignment.Mode == worldstate.MerchantCollect {
				home := isHomeNode(state, t, nodeID)
				if !home {
					power = power.Div(fixedpoint.FromInt(nonHomeCollectHalf))
				}
			}

			nn.CountryPower[t] = power
			total = total.Add(power)
		}
		nn.TotalPower = total
		state = state.WithTradeNode(nodeID, nn)

		if total > 0 && def != nil && len(def.Outgoing) > 0 {
			for _, outID := range def.Outgoing {
				if upstreamPower[outID] == nil {
					upstreamPower[outID] = make(map[ids.Tag]fixedpoint.Fixed)
				}
				for t, p := range nn.CountryPower {
					upstreamPower[outID][t] = upstreamPower[outID][t].Add(p.MulFrac(1, int64(len(def.Outgoing))))
				}
			}
		}
	}
	return state
}

func centerOfTradeBonus(state worldstate.WorldState, nodeID ids.TradeNodeID, tag ids.Tag, def *gamedata.TradeNodeDef) fixedpoint.Fixed {
	if def == nil {
		return 0
	}
	var best uint8
	state.Provinces.Ascend(func(_ ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if p.TradeNode == nodeID && p.Owner != nil && *p.Owner == tag && p.CenterOfTrade > best {
			best = p.CenterOfTrade
		}
		return true
	})
	switch best {
	case 1:
		return fixedpoint.FromInt(5)
	case 2:
		return fixedpoint.FromInt(10)
	case 3:
		return fixedpoint.FromInt(25)
	default:
		return 0
	}
}

func merchantBonus(node *worldstate.TradeNodeState, tag ids.Tag) fixedpoint.Fixed {
	assignment, ok := node.Merchants[tag]
	if !ok {
		return 0
	}
	if assignment.Mode == worldstate.MerchantSteer {
		return fixedpoint.FromInt(merchantSteerBonus)
	}
	return fixedpoint.FromInt(merchantBase)
}

func isHomeNode(state worldstate.WorldState, tag ids.Tag, node ids.TradeNodeID) bool {
	c, ok := state.Countries.Get(tag)
	return ok && c.HomeTradeNode == node
}

// ValueTick propagates trade value downstream in topological order: each
// node's total is local + incoming, the portion claimed by collecting
// merchants is retained (feeds income), and the remainder is forwarded —
// magnified by the steering bonus — split across outgoing edges
// proportional to edge weight (design doc Section 4.10).
func ValueTick(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	incoming := make(map[ids.TradeNodeID]fixedpoint.Fixed)

	for _, nodeID := range data.TradeOrder {
		node, ok := state.TradeNodes.Get(nodeID)
		if !ok {
			continue
		}
		def := data.TradeNodes[nodeID]

		nn := node.Clone()
		nn.IncomingValue = incoming[nodeID]
		total := nn.LocalValue.Add(nn.IncomingValue)
		nn.TotalValue = total

		retained := retainedShare(nn, total)
		forwardable := total.Sub(retained)
		if forwardable.IsNeg() {
			forwardable = 0
		}

		steeringCount := countSteeringAll(nn)
		magnified := forwardable.Add(forwardable.MulFrac(int64(steeringCount)*5, 100))

		state = state.WithTradeNode(nodeID, nn)

		if def == nil || len(def.Outgoing) == 0 {
			continue
		}
		weights := make([]int64, len(def.Outgoing))
		var totalWeight int64
		for i, outID := range def.Outgoing {
			w := int64(1) + int64(countSteeringTo(nn, outID))
			weights[i] = w
			totalWeight += w
		}
		if totalWeight == 0 {
			continue
		}
		for i, outID := range def.Outgoing {
			share := magnified.MulFrac(weights[i], totalWeight)
			incoming[outID] = incoming[outID].Add(share)
		}
	}
	return state
}

func retainedShare(node *worldstate.TradeNodeState, total fixedpoint.Fixed) fixedpoint.Fixed {
	if node.TotalPower == 0 {
		return 0
	}
	var retained fixedpoint.Fixed
	for tag, assignment := range node.Merchants {
		if assignment.Mode != worldstate.MerchantCollect {
			continue
		}
		power, ok := node.CountryPower[tag]
		if !ok {
			continue
		}
		share := power.Div(node.TotalPower)
		retained = retained.Add(total.Mul(share))
	}
	return retained
}

// countSteeringAll counts every merchant steering out of node regardless of
// destination, used for the magnification bonus.
func countSteeringAll(node *worldstate.TradeNodeState) int {
	count := 0
	for _, a := range node.Merchants {
		if a.Mode == worldstate.MerchantSteer {
			count++
		}
	}
	return count
}

// countSteeringTo counts merchants steering specifically toward dest, used
// for the outgoing-edge weight bonus.
func countSteeringTo(node *worldstate.TradeNodeState, dest ids.TradeNodeID) int {
	count := 0
	for _, a := range node.Merchants {
		if a.Mode == worldstate.MerchantSteer && a.SteerTo == dest {
			count++
		}
	}
	return count
}

// IncomeTick collects each country's share of every node's total value —
// home countries and countries with a collecting merchant present both
// qualify — and deposits the result into their treasury (design doc
// Section 4.10's efficiency formula).
func IncomeTick(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	for _, nodeID := range data.TradeOrder {
		node, ok := state.TradeNodes.Get(nodeID)
		if !ok || node.TotalPower == 0 || node.TotalValue == 0 {
			continue
		}
		var tags []ids.Tag
		for t := range node.CountryPower {
			tags = append(tags, t)
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i].Less(tags[j]) })

		for _, t := range tags {
			home := isHomeNode(state, t, nodeID)
			_, hasMerchant := node.Merchants[t]
			if !home && !hasMerchant {
				continue
			}
			power := node.CountryPower[t]
			share := power.Div(node.TotalPower)

			efficiency := fixedpoint.FromMilli(500) // 0.5 base
			if home {
				efficiency = efficiency.Add(fixedpoint.FromMilli(100))
			}
			if hasMerchant {
				efficiency = efficiency.Add(fixedpoint.FromMilli(100))
			}
			if c, ok := state.Countries.Get(t); ok && c.Modifiers != nil {
				efficiency = efficiency.Add(c.Modifiers.Get(modifiers.KindTradeEfficiency))
			}

			income := node.TotalValue.Mul(share).Mul(efficiency)
			if c, ok := state.Countries.Get(t); ok {
				nc := c.Clone()
				nc.Treasury = nc.Treasury.Add(income)
				state = state.WithCountry(t, nc)
			}
		}
	}
	return state
}
