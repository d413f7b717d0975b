// Package religion runs the monthly reformation/religion-spread pass: a
// province whose faith differs from its owner's slowly converts toward
// it. See design doc Section 4.1's monthly sequence step k.
//
// Grounded on the teacher's internal/engine governance/faction ticks
// (governance.go's decayGovernance, factions.go's relation decay), which
// both drift a scalar toward a target at a fixed rate each tick; here the
// "scalar" is binary (converted or not) so the drift is expressed as a
// per-month conversion roll instead of a continuous decay, drawn from
// internal/simrand so two replays of the same tick convert the same
// provinces in the same order.
package religion

import (
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/simrand"
	"github.com/talgya/concordia/internal/worldstate"
)

// baseConversionChance is the 1-in-N odds a heretic/heathen province
// converts toward its owner's religion in a given month, before the
// autonomy adjustment below. 1-in-180 averages out to roughly once every
// 15 years, the rough cadence reformation/counter-reformation waves
// played out over in the era this kernel models.
const baseConversionChance = 180

// autonomyReliefDivisor scales how much a province's autonomy slows
// conversion: high-autonomy provinces are administered lightly and resist
// religious pressure from the core longer.
const autonomyReliefDivisor = 4

// SpreadTick walks every owned province in ascending id order and, where
// its religion differs from its owner's, rolls a deterministic chance to
// convert. Unowned provinces never convert — there is no core pressure
// to push them toward anything.
func SpreadTick(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	state.Provinces.Ascend(func(id ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if p.Owner == nil {
			return true
		}
		owner, ok := state.Countries.Get(*p.Owner)
		if !ok || p.Religion == owner.Religion {
			return true
		}

		autonomyPct := int(p.Autonomy) * 100 / fixedpoint.Scale // 0..100
		odds := baseConversionChance + autonomyPct*autonomyReliefDivisor
		stream := simrand.DeriveKeyed(state.Seed, state.Tick, simrand.TagReligion, uint64(id))
		if stream.IntRange(1, odds) != 1 {
			return true
		}

		np := p.Clone()
		np.Religion = owner.Religion
		state = state.WithProvince(id, np)
		return true
	})
	return state
}
