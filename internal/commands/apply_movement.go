package commands

import (
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/movement"
	"github.com/talgya/concordia/internal/worldstate"
)

func applyMoveArmy(state WorldState, issuer ids.Tag, cmd Command, data *gamedata.GameData) (WorldState, error) {
	army, ok := state.Armies.Get(cmd.Army)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if army.Owner != issuer {
		return state, Simple(ErrInvalidTarget)
	}
	if _, ok := data.Provinces[cmd.Destination]; !ok {
		return state, Simple(ErrNoSuchProvince)
	}
	if army.EmbarkedOn != nil || army.InBattle != nil {
		return state, Simple(ErrOutOfRange)
	}

	atWar := alwaysAtWarWith(state)
	path, found := movement.FindPath(data, army.Location, cmd.Destination, movement.ArmyEdgeCost(state, issuer, atWar))
	if !found {
		return state, Simple(ErrBlockedByZoc)
	}

	na := army.Clone()
	na.Movement = worldstate.MovementState{Active: len(path) > 0, Path: path}
	return state.WithArmy(cmd.Army, na), nil
}

func applyMoveFleet(state WorldState, issuer ids.Tag, cmd Command, data *gamedata.GameData) (WorldState, error) {
	fleet, ok := state.Fleets.Get(cmd.Fleet)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if fleet.Owner != issuer {
		return state, Simple(ErrInvalidTarget)
	}
	if _, ok := data.Provinces[cmd.Destination]; !ok {
		return state, Simple(ErrNoSuchProvince)
	}

	path, found := movement.FindPath(data, fleet.Location, cmd.Destination, movement.FleetEdgeCost())
	if !found {
		return state, Simple(ErrOutOfRange)
	}

	nf := fleet.Clone()
	nf.Movement = worldstate.MovementState{Active: len(path) > 0, Path: path}
	return state.WithFleet(cmd.Fleet, nf), nil
}

func applyEmbarkArmy(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	army, ok := state.Armies.Get(cmd.Army)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	fleet, ok := state.Fleets.Get(cmd.Fleet)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if army.Owner != issuer || fleet.Owner != issuer {
		return state, Simple(ErrInvalidTarget)
	}
	if army.Location != fleet.Location {
		return state, Simple(ErrNotAdjacent)
	}

	na := army.Clone()
	fid := cmd.Fleet
	na.EmbarkedOn = &fid
	na.Movement = worldstate.MovementState{}
	state = state.WithArmy(cmd.Army, na)

	nf := fleet.Clone()
	nf.CarryingArmies = append(nf.CarryingArmies, cmd.Army)
	return state.WithFleet(cmd.Fleet, nf), nil
}

func applyDisembarkArmy(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	army, ok := state.Armies.Get(cmd.Army)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if army.Owner != issuer || army.EmbarkedOn == nil {
		return state, Simple(ErrInvalidTarget)
	}
	fleet, ok := state.Fleets.Get(*army.EmbarkedOn)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}

	na := army.Clone()
	na.EmbarkedOn = nil
	na.Location = fleet.Location
	state = state.WithArmy(cmd.Army, na)

	nf := fleet.Clone()
	nf.CarryingArmies = removeArmy(nf.CarryingArmies, cmd.Army)
	return state.WithFleet(fleet.ID, nf), nil
}

func removeArmy(list []ids.ArmyID, target ids.ArmyID) []ids.ArmyID {
	out := list[:0]
	for _, a := range list {
		if a != target {
			out = append(out, a)
		}
	}
	return out
}

// alwaysAtWarWith returns a war predicate over state's active wars: a and b
// are at war when they sit on opposite sides of any war, the same test
// diplomacy.AtWar applies. MoveArmy's path search uses it for its
// zone-of-control and strait checks.
func alwaysAtWarWith(state WorldState) func(a, b ids.Tag) bool {
	return func(a, b ids.Tag) bool {
		result := false
		state.Wars.Ascend(func(_ ids.WarID, w *worldstate.War) bool {
			if w.Attackers[a] && w.Defenders[b] || w.Attackers[b] && w.Defenders[a] {
				result = true
				return false
			}
			return true
		})
		return result
	}
}
