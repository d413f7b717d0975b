package diplomacy

import (
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

const (
	aeDecayPerMonth   = 1   // flat AE points decayed per month per target
	coalitionFormAE   = 50  // AE threshold that qualifies a country to join a coalition against its target
	coalitionMinSize  = 4   // minimum member count for a coalition to exist
	staleWarWhiteYears = 10 // auto white peace
	staleWarWillingYears = 5 // both sides flagged willing to accept peace
)

// AEDecayTick decays every country's aggressive-expansion ledger by a
// flat amount per month, per design doc Section 4.1's monthly sequence
// step i. Entries that reach zero are pruned so CoalitionTick's member
// count doesn't have to special-case a zero entry.
func AEDecayTick(state worldstate.WorldState) worldstate.WorldState {
	for _, t := range state.Countries.Keys() {
		c, ok := state.Countries.Get(t)
		if !ok || len(c.AggressiveExpansion) == 0 {
			continue
		}
		nc := c.Clone()
		for target, ae := range nc.AggressiveExpansion {
			decayed := ae.Sub(fixedpoint.FromInt(aeDecayPerMonth))
			if decayed.IsNeg() {
				decayed = 0
			}
			if decayed == 0 {
				delete(nc.AggressiveExpansion, target)
			} else {
				nc.AggressiveExpansion[target] = decayed
			}
		}
		state = state.WithCountry(t, nc)
	}
	return state
}

// CoalitionTick forms a coalition against any target with at least
// coalitionMinSize countries holding AE >= coalitionFormAE against it,
// and dissolves any existing coalition that's fallen below that
// membership threshold (design doc Section 8's boundary behaviour:
// "forms the first month after >=4 countries' AE against a target
// crosses 50; decays and dissolves deterministically as AE falls").
func CoalitionTick(state worldstate.WorldState) worldstate.WorldState {
	qualifying := make(map[ids.Tag]map[ids.Tag]bool) // target -> member set

	for _, t := range state.Countries.Keys() {
		c, ok := state.Countries.Get(t)
		if !ok {
			continue
		}
		var targets []ids.Tag
		for target := range c.AggressiveExpansion {
			targets = append(targets, target)
		}
		for _, target := range targets {
			if c.AggressiveExpansion[target].Cmp(fixedpoint.FromInt(coalitionFormAE)) >= 0 {
				if qualifying[target] == nil {
					qualifying[target] = make(map[ids.Tag]bool)
				}
				qualifying[target][t] = true
			}
		}
	}

	for target, members := range qualifying {
		if len(members) < coalitionMinSize {
			continue
		}
		if _, exists := state.Diplomacy.Coalitions[target]; exists {
			continue
		}
		state.Diplomacy.Coalitions[target] = &worldstate.Coalition{
			Target:  target,
			Members: members,
			Formed:  state.Date,
		}
	}

	for target, coalition := range state.Diplomacy.Coalitions {
		if len(qualifying[target]) < coalitionMinSize {
			delete(state.Diplomacy.Coalitions, target)
			continue
		}
		coalition.Members = qualifying[target]
	}

	return state
}

// WarScoreTick recomputes each active war's score from current
// occupation: the occupying side's score is its share of the opposing
// side's total development currently under enemy control, scaled to the
// 0..60 range the occupation component of the formula leaves after the
// battles-won component's 40-point cap (design doc Section 8's invariant
// "battles-won component of score <= 40"). Nothing in this kernel
// increments BattlesWon (combat does not attribute battles to wars), so it
// keeps the zero DeclareWar starts it at; this function only ever
// recomputes the occupation-driven component.
func WarScoreTick(state worldstate.WorldState) worldstate.WorldState {
	state.Wars.Ascend(func(id ids.WarID, w *worldstate.War) bool {
		occ := occupiedDevelopment(state, w)

		nw := w.Clone()
		nw.AttackerScore = fixedpoint.NewBounded(0, 100, nw.AttackerBattlesWon.Value()+occupationComponent(occ.attackerTaken, occ.defenderTotal))
		nw.DefenderScore = fixedpoint.NewBounded(0, 100, nw.DefenderBattlesWon.Value()+occupationComponent(occ.defenderTaken, occ.attackerTotal))
		state = state.WithWar(id, nw)
		return true
	})
	return state
}

type occupationTally struct {
	attackerTotal, defenderTotal int64 // total development owned by each side
	attackerTaken, defenderTaken int64 // development taken from the opposing side
}

// occupiedDevelopment tallies, in whole development points, each side's
// total owned development and how much of the opposing side's
// development it currently controls.
func occupiedDevelopment(state worldstate.WorldState, w *worldstate.War) occupationTally {
	var t occupationTally
	state.Provinces.Ascend(func(_ ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if p.Owner == nil {
			return true
		}
		dev := int64(p.Development.Int())
		if w.Attackers[*p.Owner] {
			t.attackerTotal += dev
		}
		if w.Defenders[*p.Owner] {
			t.defenderTotal += dev
		}
		if p.Controller != nil && p.IsOccupied() {
			if w.Defenders[*p.Owner] && w.Attackers[*p.Controller] {
				t.attackerTaken += dev
			}
			if w.Attackers[*p.Owner] && w.Defenders[*p.Controller] {
				t.defenderTaken += dev
			}
		}
		return true
	})
	return t
}

func occupationComponent(taken, opposingTotal int64) int64 {
	if opposingTotal <= 0 {
		return 0
	}
	component := taken * 60 / opposingTotal
	if component > 60 {
		component = 60
	}
	return component
}

// AutoEndStaleWarsTick ends wars that have dragged on long enough
// without resolution: at 5 years both sides are flagged willing to
// accept peace (a signal available_commands/AI can use to prioritise
// KindOfferPeace), and at 10 years the war is force-ended by white
// peace (design doc Section 4.1, monthly step m).
func AutoEndStaleWarsTick(state worldstate.WorldState) worldstate.WorldState {
	var toEnd []ids.WarID
	state.Wars.Ascend(func(id ids.WarID, w *worldstate.War) bool {
		age := state.Date.YearsSince(w.StartDate)
		if age >= staleWarWhiteYears {
			toEnd = append(toEnd, id)
			return true
		}
		if age >= staleWarWillingYears && !(w.AttackerWillingPeace && w.DefenderWillingPeace) {
			nw := w.Clone()
			nw.AttackerWillingPeace = true
			nw.DefenderWillingPeace = true
			state = state.WithWar(id, nw)
		}
		return true
	})
	for _, id := range toEnd {
		state, _ = ResolvePeace(state, id, worldstate.PeaceWhitePeace)
	}
	return state
}
