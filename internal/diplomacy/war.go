// Package diplomacy implements bilateral relations, wars, war score,
// truces, coalitions, and call-to-arms (design doc Section 4.8).
package diplomacy

import (
	"errors"
	"fmt"

	"github.com/talgya/concordia/internal/calendar"
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// ErrWarAlreadyExists mirrors design doc Section 7's WarAlreadyExists
// command error. The commands package maps this (and TruceActiveError)
// into its own ActionError enum at the call site, since commands imports
// diplomacy and not the reverse.
var ErrWarAlreadyExists = errors.New("diplomacy: war already exists between these sides")

// TruceActiveError reports a still-binding truce blocking DeclareWar.
type TruceActiveError struct {
	Target  ids.Tag
	Expires calendar.Date
}

func (e *TruceActiveError) Error() string {
	return fmt.Sprintf("diplomacy: truce with %s active until %d", e.Target, e.Expires)
}

// AtWar reports whether a and b are on opposing sides of any active war.
func AtWar(state worldstate.WorldState, a, b ids.Tag) bool {
	found := false
	state.Wars.Ascend(func(_ ids.WarID, w *worldstate.War) bool {
		if (w.Attackers[a] && w.Defenders[b]) || (w.Attackers[b] && w.Defenders[a]) {
			found = true
			return false
		}
		return true
	})
	return found
}

// DeclareWar creates a new War with attacker/defender sets expanded to
// include defensive allies of the defender (auto-called in, per design
// doc Section 4.8), and queues call-to-arms offers to the attacker's
// offensive allies. The attacker must not share an active truce with the
// defender and must not already be at war with it.
func DeclareWar(state worldstate.WorldState, attacker, defender ids.Tag, casusBelli string) (worldstate.WorldState, ids.WarID, error) {
	if state.Diplomacy.HasActiveTruce(attacker, defender, state.Date) {
		expiry := state.Diplomacy.Truces[ids.MakeTagPair(attacker, defender)]
		return state, 0, &TruceActiveError{Target: defender, Expires: expiry}
	}
	if AtWar(state, attacker, defender) {
		return state, 0, ErrWarAlreadyExists
	}

	attackers := map[ids.Tag]bool{attacker: true}
	defenders := map[ids.Tag]bool{defender: true}

	// Defensive allies of the defender are auto-called into the war.
	for pair, rel := range state.Diplomacy.Relations {
		if !rel.Alliance {
			continue
		}
		if other, ok := otherOf(pair, defender); ok && !attackers[other] {
			defenders[other] = true
		}
	}

	var warID ids.WarID
	warID, state = state.AllocWarID()
	war := &worldstate.War{
		ID:                 warID,
		Attackers:          attackers,
		Defenders:          defenders,
		StartDate:          state.Date,
		CasusBelli:         casusBelli,
		AttackerScore:      fixedpoint.NewBounded(0, 100, 0),
		DefenderScore:      fixedpoint.NewBounded(0, 100, 0),
		AttackerBattlesWon: fixedpoint.NewBounded(0, 40, 0),
		DefenderBattlesWon: fixedpoint.NewBounded(0, 40, 0),
	}
	state = state.WithWar(warID, war)

	// Offensive allies of the attacker are queued a call-to-arms rather
	// than auto-joined, per design doc Section 4.8.
	for pair, rel := range state.Diplomacy.Relations {
		if !rel.Alliance {
			continue
		}
		other, ok := otherOf(pair, attacker)
		if ok && !attackers[other] && !defenders[other] {
			state.Diplomacy.Pending = append(state.Diplomacy.Pending, worldstate.PendingOffer{
				Kind: worldstate.OfferCallToArms, From: attacker, To: other, WarID: warID, Issued: state.Date,
			})
		}
	}

	return state, warID, nil
}

// otherOf returns the tag paired with self in p, or (_, false) if self is
// not a member of the pair.
func otherOf(p ids.TagPair, self ids.Tag) (ids.Tag, bool) {
	switch self {
	case p.A:
		return p.B, true
	case p.B:
		return p.A, true
	default:
		return ids.Tag{}, false
	}
}

// Other is exported for callers outside the package (e.g. war-score
// recompute) that need the opposing member of a TagPair.
func Other(p ids.TagPair, self ids.Tag) (ids.Tag, bool) { return otherOf(p, self) }

// AnswerCallToArms applies the trust/prestige consequences of accepting or
// declining a call-to-arms (design doc Section 4.8): accepting grants +5
// trust with the caller and joins the war; declining costs 25 prestige,
// breaks the alliance with the caller, and subtracts 10 trust with every
// one of the decliner's own allies.
func AnswerCallToArms(state worldstate.WorldState, offer worldstate.PendingOffer, accept bool) worldstate.WorldState {
	caller := offer.From
	responder := offer.To

	if accept {
		war, ok := state.Wars.Get(offer.WarID)
		if ok {
			nw := war.Clone()
			if nw.Attackers[caller] {
				nw.Attackers[responder] = true
			} else {
				nw.Defenders[responder] = true
			}
			state = state.WithWar(offer.WarID, nw)
		}
		return adjustTrust(state, caller, responder, 5)
	}

	if c, ok := state.Countries.Get(responder); ok {
		nc := c.Clone()
		nc.Prestige.Add(-25)
		state = state.WithCountry(responder, nc)
	}
	pair := ids.MakeTagPair(caller, responder)
	rel := state.Diplomacy.Relations[pair]
	rel.Alliance = false
	state.Diplomacy.Relations[pair] = rel

	for otherPair, otherRel := range state.Diplomacy.Relations {
		if !otherRel.Alliance {
			continue
		}
		if ally, ok := otherOf(otherPair, responder); ok {
			state = adjustTrust(state, responder, ally, -10)
		}
	}
	return state
}

func adjustTrust(state worldstate.WorldState, a, b ids.Tag, delta int8) worldstate.WorldState {
	pair := ids.MakeTagPair(a, b)
	t := int32(state.Diplomacy.Trust[pair]) + int32(delta)
	if t < 0 {
		t = 0
	}
	if t > 100 {
		t = 100
	}
	state.Diplomacy.Trust[pair] = int8(t)
	return state
}
