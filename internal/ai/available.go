package ai

import (
	"sort"

	"github.com/talgya/concordia/internal/commands"
	"github.com/talgya/concordia/internal/diplomacy"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// category groups command kinds for the deterministic ordering
// AvailableCommands produces: military first, then diplomacy, then trade,
// matching design doc Section 4.11's "category then stable per-category
// key" ordering rule.
type category uint8

const (
	categoryMilitary category = iota
	categoryDiplomacy
	categoryTrade
)

func categoryOf(k commands.Kind) category {
	switch k {
	case commands.KindMoveArmy, commands.KindMoveFleet, commands.KindEmbarkArmy,
		commands.KindDisembarkArmy, commands.KindRecruitRegiment, commands.KindDisbandArmy:
		return categoryMilitary
	case commands.KindAssignMerchant, commands.KindRecallMerchant:
		return categoryTrade
	default:
		return categoryDiplomacy
	}
}

// candidate pairs a legal command with its deterministic sort key.
type candidate struct {
	cmd commands.Command
	key uint64
}

// AvailableCommands enumerates the commands observer may issue: army moves
// for idle armies it owns, war declarations and alliance offers gated by
// truce/cooldown/war/pending-offer checks, and merchant assignments gated
// by merchant availability. Fleet moves, replies to offers and the other
// command kinds are not enumerated. It never mutates state. The diplomacy
// and trade checks mirror the preconditions the matching apply* functions
// in internal/commands enforce; army-move destinations are not checked for
// adjacency or reachability (see neighboursOf), so commands.Apply rejects
// a move whose destination has no path.
func AvailableCommands(state worldstate.WorldState, observer ids.Tag, mode VisibilityMode) []commands.Command {
	var out []candidate

	out = append(out, movementCandidates(state, observer)...)
	out = append(out, diplomacyCandidates(state, observer)...)
	out = append(out, tradeCandidates(state, observer)...)

	sort.Slice(out, func(i, j int) bool {
		ci, cj := categoryOf(out[i].cmd.Kind), categoryOf(out[j].cmd.Kind)
		if ci != cj {
			return ci < cj
		}
		if out[i].cmd.Kind != out[j].cmd.Kind {
			return out[i].cmd.Kind < out[j].cmd.Kind
		}
		return out[i].key < out[j].key
	})

	cmds := make([]commands.Command, len(out))
	for i, c := range out {
		cmds[i] = c.cmd
	}
	return cmds
}

func movementCandidates(state worldstate.WorldState, observer ids.Tag) []candidate {
	var out []candidate
	state.Armies.Ascend(func(id ids.ArmyID, a *worldstate.Army) bool {
		if a.Owner != observer || a.EmbarkedOn != nil || a.InBattle != nil || a.Besieging != nil || a.Movement.Active {
			return true
		}
		for _, adj := range neighboursOf(state, a.Location) {
			out = append(out, candidate{
				cmd: commands.Command{Kind: commands.KindMoveArmy, Army: id, Destination: adj},
				key: uint64(id)<<32 | uint64(adj),
			})
		}
		return true
	})
	return out
}

// neighboursOf lists every province in state other than from. It does not
// import gamedata (which would make this package depend on static data it
// doesn't otherwise need), so it never consults the adjacency graph: the
// result is not limited to adjacent or reachable provinces, and
// applyMoveArmy's path search is what rejects an unreachable destination.
func neighboursOf(state worldstate.WorldState, from ids.ProvinceID) []ids.ProvinceID {
	var out []ids.ProvinceID
	state.Provinces.Ascend(func(id ids.ProvinceID, _ *worldstate.ProvinceState) bool {
		if id != from {
			out = append(out, id)
		}
		return true
	})
	return out
}

func diplomacyCandidates(state worldstate.WorldState, observer ids.Tag) []candidate {
	var out []candidate
	now := state.Date
	cooldown := state.Diplomacy.LastDiplomaticAction[observer]
	if now.YearsSince(cooldown) < 1 && cooldown != 0 {
		return nil
	}

	var others []ids.Tag
	state.Countries.Ascend(func(t ids.Tag, c *worldstate.CountryState) bool {
		if t != observer && c.Alive {
			others = append(others, t)
		}
		return true
	})
	sort.Slice(others, func(i, j int) bool { return others[i].Less(others[j]) })

	for _, other := range others {
		if state.Diplomacy.HasActiveTruce(observer, other, now) {
			continue
		}
		atWar := diplomacy.AtWar(state, observer, other)
		if !atWar && !alreadyOffered(state, observer, other) {
			out = append(out, candidate{
				cmd: commands.Command{Kind: commands.KindDeclareWar, Target: other},
				key: uint64(tagKey(other)),
			})
		}
		if !atWar && !allied(state, observer, other) && !alreadyOffered(state, observer, other) {
			out = append(out, candidate{
				cmd: commands.Command{Kind: commands.KindOfferAlliance, Target: other},
				key: uint64(tagKey(other)),
			})
		}
	}
	return out
}

func allied(state worldstate.WorldState, a, b ids.Tag) bool {
	rel, ok := state.Diplomacy.Relations[ids.MakeTagPair(a, b)]
	return ok && rel.Alliance
}

func alreadyOffered(state worldstate.WorldState, from, to ids.Tag) bool {
	for _, o := range state.Diplomacy.Pending {
		if o.From == from && o.To == to {
			return true
		}
	}
	return false
}

func tradeCandidates(state worldstate.WorldState, observer ids.Tag) []candidate {
	var out []candidate
	c, ok := state.Countries.Get(observer)
	if !ok || c.MerchantsAvailable == 0 {
		return nil
	}

	var nodeIDs []ids.TradeNodeID
	state.TradeNodes.Ascend(func(id ids.TradeNodeID, _ *worldstate.TradeNodeState) bool {
		nodeIDs = append(nodeIDs, id)
		return true
	})
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })

	for _, id := range nodeIDs {
		node, ok := state.TradeNodes.Get(id)
		if !ok {
			continue
		}
		if _, assigned := node.Merchants[observer]; assigned {
			continue
		}
		out = append(out, candidate{
			cmd: commands.Command{
				Kind:      commands.KindAssignMerchant,
				TradeNode: id,
				Merchant:  worldstate.MerchantAssignment{Mode: worldstate.MerchantCollect},
			},
			key: uint64(id),
		})
	}
	return out
}

func tagKey(t ids.Tag) uint32 {
	return uint32(t[0])<<24 | uint32(t[1])<<16 | uint32(t[2])<<8 | uint32(t[3])
}
