package diplomacy

import (
	"errors"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// ErrNoSuchWar is returned by ResolvePeace when the given war id no longer
// exists (already resolved by a concurrent offer, or never existed).
var ErrNoSuchWar = errors.New("diplomacy: no such war")

const truceYears = 5

// ResolvePeace ends a war per design doc Section 4.8: unless the term is a
// white peace, every province currently occupied by the opposing side
// changes hands, the taker accrues aggressive expansion against the former
// owner equal to the developmental value taken, a 5-year truce is recorded
// between every attacker/defender pair, and the war record is removed.
func ResolvePeace(state worldstate.WorldState, warID ids.WarID, term worldstate.PeaceTermKind) (worldstate.WorldState, error) {
	war, ok := state.Wars.Get(warID)
	if !ok {
		return state, ErrNoSuchWar
	}

	if term != worldstate.PeaceWhitePeace {
		state = transferOccupied(state, war)
	}

	now := state.Date
	expiry := now.AddYears(truceYears)
	for _, a := range worldstate.SortedTags(war.Attackers) {
		for _, d := range worldstate.SortedTags(war.Defenders) {
			state.Diplomacy.Truces[ids.MakeTagPair(a, d)] = expiry
		}
	}

	return state.WithoutWar(warID), nil
}

// transferOccupied walks every province and, for any whose controller and
// owner sit on opposing sides of war, transfers ownership to the
// controller and credits the controller's country with aggressive
// expansion against the former owner (design doc Section 4.8: "1 AE per 1
// development taken").
func transferOccupied(state worldstate.WorldState, war *worldstate.War) worldstate.WorldState {
	var toTransfer []ids.ProvinceID
	state.Provinces.Ascend(func(id ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if !p.IsOccupied() {
			return true
		}
		owner, controller := *p.Owner, *p.Controller
		if onOpposingSides(war, owner, controller) {
			toTransfer = append(toTransfer, id)
		}
		return true
	})

	for _, id := range toTransfer {
		prov, ok := state.Provinces.Get(id)
		if !ok {
			continue
		}
		former := *prov.Owner
		taker := *prov.Controller
		dev := prov.Development.ToFixed()

		np := prov.Clone()
		np.Owner = &taker
		np.Controller = &taker
		np.OccupiedSince = nil
		state = state.WithProvince(id, np)

		if c, ok := state.Countries.Get(taker); ok {
			nc := c.Clone()
			if nc.AggressiveExpansion == nil {
				nc.AggressiveExpansion = make(map[ids.Tag]fixedpoint.Fixed)
			}
			nc.AggressiveExpansion[former] = nc.AggressiveExpansion[former].Add(dev)
			state = state.WithCountry(taker, nc)
		}
	}
	return state
}

func onOpposingSides(war *worldstate.War, a, b ids.Tag) bool {
	return (war.Attackers[a] && war.Defenders[b]) || (war.Attackers[b] && war.Defenders[a])
}
