package commands

import (
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// Kind enumerates every command variant the kernel's enum is frozen around
// (design doc Section 7: "all ~34 command variants exist; execution fills
// in incrementally"). Variants without an Apply case make Apply return
// ErrNotImplemented and leave the state unchanged.
type Kind uint8

const (
	KindMoveArmy Kind = iota
	KindMoveFleet
	KindEmbarkArmy
	KindDisembarkArmy
	KindRecruitRegiment
	KindDisbandArmy
	KindBuildBuilding
	KindDemolishBuilding
	KindSetAutonomy
	KindDeclareWar
	KindOfferPeace
	KindAcceptPeace
	KindRejectPeace
	KindOfferAlliance
	KindAcceptAlliance
	KindRejectAlliance
	KindBreakAlliance
	KindOfferRoyalMarriage
	KindAcceptRoyalMarriage
	KindOfferMilitaryAccess
	KindAcceptMilitaryAccess
	KindRevokeMilitaryAccess
	KindDeclareRival
	KindRemoveRival
	KindSendCallToArms
	KindAnswerCallToArms
	KindJoinCoalition
	KindLeaveCoalition
	KindAssignMerchant
	KindRecallMerchant
	KindAppointLeader
	KindVoteReform
	KindSetEmbargo
	KindLiftEmbargo
)

// Command is a single command issued by a country in a given tick. It is
// a flat struct rather than an interface-per-variant union, matching the
// wire shape design doc Section 6 describes ("countries and commands
// serialise to their stable integer ids") — Kind plus whichever typed
// fields that Kind uses; unused fields are simply zero.
type Command struct {
	Kind Kind

	Army  ids.ArmyID
	Fleet ids.FleetID
	Destination ids.ProvinceID // target province for MoveArmy/MoveFleet commands

	Province ids.ProvinceID
	Building uint16
	RegimentKind worldstate.RegimentKind

	Target    ids.Tag
	War       ids.WarID
	PeaceTerm worldstate.PeaceTermKind
	Accept    bool

	TradeNode ids.TradeNodeID
	Merchant  worldstate.MerchantAssignment

	Reform ids.ReformID
}

// Result is what applying one Command against a WorldState produces: the
// (possibly unchanged) next state, or an error recording why the command
// was rejected. The orchestrator applies Results sequentially and records
// failures against the issuing country (design doc Section 7).
type Result struct {
	State WorldState
	Err   error
}

// WorldState is re-exported so callers of this package don't need a
// second import for the one type Apply threads through.
type WorldState = worldstate.WorldState

// Apply validates and executes one command against state, honouring the
// available-commands preconditions (truces, cooldowns, affordability,
// ...), and returns the updated state or an *ActionError. Apply never
// panics on a malformed-but-well-typed Command; referential errors
// (unknown army, unknown country) are reported as ErrUnknownEntity /
// ErrNoSuchProvince rather than causing a nil dereference, because a
// panic inside the kernel aborts the process (design doc Section 9).
func Apply(state WorldState, issuer ids.Tag, cmd Command, data *gamedata.GameData) (WorldState, error) {
	switch cmd.Kind {
	case KindMoveArmy:
		return applyMoveArmy(state, issuer, cmd, data)
	case KindMoveFleet:
		return applyMoveFleet(state, issuer, cmd, data)
	case KindEmbarkArmy:
		return applyEmbarkArmy(state, issuer, cmd)
	case KindDisembarkArmy:
		return applyDisembarkArmy(state, issuer, cmd)
	case KindRecruitRegiment:
		return applyRecruitRegiment(state, issuer, cmd)
	case KindDisbandArmy:
		return applyDisbandArmy(state, issuer, cmd)
	case KindDeclareWar:
		return applyDeclareWar(state, issuer, cmd)
	case KindOfferPeace:
		return applyOfferPeace(state, issuer, cmd)
	case KindAcceptPeace:
		return applyAcceptPeace(state, issuer, cmd)
	case KindRejectPeace:
		return applyRejectPeaceOffer(state, issuer, cmd)
	case KindOfferAlliance:
		return applyOfferAlliance(state, issuer, cmd)
	case KindAcceptAlliance:
		return applyAcceptAlliance(state, issuer, cmd)
	case KindRejectAlliance:
		return applyRejectAlliance(state, issuer, cmd)
	case KindBreakAlliance:
		return applyBreakAlliance(state, issuer, cmd)
	case KindOfferRoyalMarriage:
		return applyOfferRoyalMarriage(state, issuer, cmd)
	case KindAcceptRoyalMarriage:
		return applyAcceptRoyalMarriage(state, issuer, cmd)
	case KindOfferMilitaryAccess:
		return applyOfferAccess(state, issuer, cmd)
	case KindAcceptMilitaryAccess:
		return applyAcceptAccess(state, issuer, cmd)
	case KindRevokeMilitaryAccess:
		return applyRevokeAccess(state, issuer, cmd)
	case KindDeclareRival:
		return applyDeclareRival(state, issuer, cmd)
	case KindRemoveRival:
		return applyRemoveRival(state, issuer, cmd)
	case KindSendCallToArms:
		return applySendCallToArms(state, issuer, cmd)
	case KindAnswerCallToArms:
		return applyAnswerCallToArms(state, issuer, cmd)
	case KindAssignMerchant:
		return applyAssignMerchant(state, issuer, cmd)
	case KindRecallMerchant:
		return applyRecallMerchant(state, issuer, cmd)
	default:
		// KindBuildBuilding, KindDemolishBuilding, KindSetAutonomy,
		// KindJoinCoalition, KindLeaveCoalition, KindAppointLeader,
		// KindVoteReform, KindSetEmbargo, KindLiftEmbargo: the command enum
		// is frozen but these bodies are not yet implemented.
		return state, Simple(ErrNotImplemented)
	}
}
