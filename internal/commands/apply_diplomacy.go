package commands

import (
	"errors"

	"github.com/talgya/concordia/internal/diplomacy"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// translateDiplomacyErr maps a diplomacy package error into the kernel's
// ActionError enum. diplomacy cannot depend on commands (commands already
// depends on diplomacy), so the two typed failures it can produce —
// TruceActiveError and ErrWarAlreadyExists — are translated here at the
// only call site that can see both packages.
func translateDiplomacyErr(err error) error {
	var truce *diplomacy.TruceActiveError
	if errors.As(err, &truce) {
		return TruceActive(truce.Target, truce.Expires)
	}
	if errors.Is(err, diplomacy.ErrWarAlreadyExists) {
		return Simple(ErrWarAlreadyExists)
	}
	return Simple(ErrInvalidTarget)
}

func applyDeclareWar(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	next, _, err := diplomacy.DeclareWar(state, issuer, cmd.Target, "")
	if err != nil {
		return state, translateDiplomacyErr(err)
	}
	return next, nil
}

func applyOfferPeace(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	war, ok := state.Wars.Get(cmd.War)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if !isParticipant(war, issuer) || !isParticipant(war, cmd.Target) {
		return state, Simple(ErrNotAParticipant)
	}
	state.Diplomacy.Pending = append(state.Diplomacy.Pending, worldstate.PendingOffer{
		Kind: worldstate.OfferPeace, From: issuer, To: cmd.Target, WarID: cmd.War, PeaceTerm: cmd.PeaceTerm, Issued: state.Date,
	})
	return state, nil
}

func applyAcceptPeace(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	offer, idx, ok := findPendingOffer(state, worldstate.OfferPeace, cmd.Target, issuer, cmd.War)
	if !ok {
		return state, Simple(ErrNotAParticipant)
	}
	next, err := diplomacy.ResolvePeace(state, offer.WarID, offer.PeaceTerm)
	if err != nil {
		return state, Simple(ErrNotAParticipant)
	}
	next.Diplomacy.Pending = removePendingOffer(next.Diplomacy.Pending, idx)
	return next, nil
}

func applyRejectPeaceOffer(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	_, idx, ok := findPendingOffer(state, worldstate.OfferPeace, cmd.Target, issuer, cmd.War)
	if !ok {
		return state, Simple(ErrNotAParticipant)
	}
	state.Diplomacy.Pending = removePendingOffer(state.Diplomacy.Pending, idx)
	return state, nil
}

func applyOfferAlliance(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	return offerBilateral(state, issuer, cmd, worldstate.OfferAlliance)
}

func applyAcceptAlliance(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	return acceptBilateral(state, issuer, cmd, worldstate.OfferAlliance, func(r *worldstate.Relation) { r.Alliance = true })
}

func applyRejectAlliance(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	return rejectBilateral(state, issuer, cmd, worldstate.OfferAlliance)
}

func applyBreakAlliance(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	pair := ids.MakeTagPair(issuer, cmd.Target)
	rel, ok := state.Diplomacy.Relations[pair]
	if !ok || !rel.Alliance {
		return state, Simple(ErrInvalidTarget)
	}
	rel.Alliance = false
	state.Diplomacy.Relations[pair] = rel
	return state, nil
}

func applyOfferRoyalMarriage(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	return offerBilateral(state, issuer, cmd, worldstate.OfferRoyalMarriage)
}

func applyAcceptRoyalMarriage(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	return acceptBilateral(state, issuer, cmd, worldstate.OfferRoyalMarriage, func(r *worldstate.Relation) { r.RoyalMarriage = true })
}

func applyOfferAccess(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	return offerBilateral(state, issuer, cmd, worldstate.OfferMilitaryAccess)
}

func applyAcceptAccess(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	return acceptBilateral(state, issuer, cmd, worldstate.OfferMilitaryAccess, func(r *worldstate.Relation) { r.Access = true })
}

func applyRevokeAccess(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	pair := ids.MakeTagPair(issuer, cmd.Target)
	rel, ok := state.Diplomacy.Relations[pair]
	if !ok || !rel.Access {
		return state, Simple(ErrInvalidTarget)
	}
	rel.Access = false
	state.Diplomacy.Relations[pair] = rel
	return state, nil
}

func applyDeclareRival(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	pair := ids.MakeTagPair(issuer, cmd.Target)
	rel := state.Diplomacy.Relations[pair]
	rel.Rival = true
	state.Diplomacy.Relations[pair] = rel
	state.Diplomacy.LastDiplomaticAction[issuer] = state.Date
	return state, nil
}

func applyRemoveRival(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	pair := ids.MakeTagPair(issuer, cmd.Target)
	rel, ok := state.Diplomacy.Relations[pair]
	if !ok || !rel.Rival {
		return state, Simple(ErrInvalidTarget)
	}
	rel.Rival = false
	state.Diplomacy.Relations[pair] = rel
	return state, nil
}

func applySendCallToArms(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	war, ok := state.Wars.Get(cmd.War)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if !isParticipant(war, issuer) {
		return state, Simple(ErrNotAParticipant)
	}
	state.Diplomacy.Pending = append(state.Diplomacy.Pending, worldstate.PendingOffer{
		Kind: worldstate.OfferCallToArms, From: issuer, To: cmd.Target, WarID: cmd.War, Issued: state.Date,
	})
	return state, nil
}

func applyAnswerCallToArms(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	offer, idx, ok := findPendingOffer(state, worldstate.OfferCallToArms, cmd.Target, issuer, cmd.War)
	if !ok {
		return state, Simple(ErrNotAParticipant)
	}
	next := diplomacy.AnswerCallToArms(state, offer, cmd.Accept)
	next.Diplomacy.Pending = removePendingOffer(next.Diplomacy.Pending, idx)
	return next, nil
}

func applyAssignMerchant(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	node, ok := state.TradeNodes.Get(cmd.TradeNode)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	country, ok := state.Countries.Get(issuer)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}

	nn := node.Clone()
	if _, already := nn.Merchants[issuer]; !already {
		if country.MerchantsAvailable == 0 {
			return state, Simple(ErrInvalidTarget)
		}
		nc := country.Clone()
		nc.MerchantsAvailable--
		state = state.WithCountry(issuer, nc)
	}
	nn.Merchants[issuer] = cmd.Merchant
	return state.WithTradeNode(cmd.TradeNode, nn), nil
}

func applyRecallMerchant(state WorldState, issuer ids.Tag, cmd Command) (WorldState, error) {
	node, ok := state.TradeNodes.Get(cmd.TradeNode)
	if !ok {
		return state, Simple(ErrUnknownEntity)
	}
	if _, assigned := node.Merchants[issuer]; !assigned {
		return state, Simple(ErrInvalidTarget)
	}

	nn := node.Clone()
	delete(nn.Merchants, issuer)
	state = state.WithTradeNode(cmd.TradeNode, nn)

	if country, ok := state.Countries.Get(issuer); ok {
		nc := country.Clone()
		if nc.MerchantsAvailable < nc.MerchantsMax {
			nc.MerchantsAvailable++
		}
		state = state.WithCountry(issuer, nc)
	}
	return state, nil
}

// offerBilateral records a pending offer of the given kind from issuer to
// cmd.Target, used by every "OfferX" command that isn't war/peace (those
// have their own shape — WarID, PeaceTerm — so they're handled directly).
func offerBilateral(state WorldState, issuer ids.Tag, cmd Command, kind worldstate.PendingOfferKind) (WorldState, error) {
	state.Diplomacy.Pending = append(state.Diplomacy.Pending, worldstate.PendingOffer{
		Kind: kind, From: issuer, To: cmd.Target, Issued: state.Date,
	})
	return state, nil
}

// acceptBilateral consumes a pending offer of kind from cmd.Target to
// issuer and applies set to the stored Relation for the pair.
func acceptBilateral(state WorldState, issuer ids.Tag, cmd Command, kind worldstate.PendingOfferKind, set func(*worldstate.Relation)) (WorldState, error) {
	_, idx, ok := findPendingOffer(state, kind, cmd.Target, issuer, 0)
	if !ok {
		return state, Simple(ErrNotAParticipant)
	}
	pair := ids.MakeTagPair(issuer, cmd.Target)
	rel := state.Diplomacy.Relations[pair]
	set(&rel)
	state.Diplomacy.Relations[pair] = rel
	state.Diplomacy.Pending = removePendingOffer(state.Diplomacy.Pending, idx)
	return state, nil
}

func rejectBilateral(state WorldState, issuer ids.Tag, cmd Command, kind worldstate.PendingOfferKind) (WorldState, error) {
	_, idx, ok := findPendingOffer(state, kind, cmd.Target, issuer, 0)
	if !ok {
		return state, Simple(ErrNotAParticipant)
	}
	state.Diplomacy.Pending = removePendingOffer(state.Diplomacy.Pending, idx)
	return state, nil
}

// findPendingOffer locates the pending offer of kind sent from -> to. war
// is matched only for kinds that carry a WarID (peace offers and calls to
// arms); pass 0 for kinds that don't use it.
func findPendingOffer(state WorldState, kind worldstate.PendingOfferKind, from, to ids.Tag, war ids.WarID) (worldstate.PendingOffer, int, bool) {
	for i, o := range state.Diplomacy.Pending {
		if o.Kind != kind || o.From != from || o.To != to {
			continue
		}
		if (kind == worldstate.OfferPeace || kind == worldstate.OfferCallToArms) && o.WarID != war {
			continue
		}
		return o, i, true
	}
	return worldstate.PendingOffer{}, -1, false
}

func removePendingOffer(offers []worldstate.PendingOffer, idx int) []worldstate.PendingOffer {
	if idx < 0 || idx >= len(offers) {
		return offers
	}
	out := make([]worldstate.PendingOffer, 0, len(offers)-1)
	out = append(out, offers[:idx]...)
	out = append(out, offers[idx+1:]...)
	return out
}

func isParticipant(war *worldstate.War, tag ids.Tag) bool {
	return war.Attackers[tag] || war.Defenders[tag]
}
