package diplomacy

import (
	"github.com/talgya/concordia/internal/worldstate"
)

const (
	imperialAuthorityGainPerMonth  = 1 // peaceful months build the mandate
	imperialAuthorityLossPerMonth  = 3 // internal war erodes it faster than peace builds it
)

// ImperialTick runs the monthly HRE/Celestial-Empire authority update
// (design doc Section 4.1, monthly step o). Both bodies share the same
// ImperialBody shape (see worldstate.ImperialBody's doc comment), so one
// function serves both: authority rises toward its ceiling while the
// body is at internal peace, and erodes whenever any two members are at
// war with each other. A scenario with no imperial body (Imperial == nil)
// is a no-op.
//
// Reform passage and elector/free-city churn are out of reach without a
// reform-catalog data table the kernel doesn't carry yet (see DESIGN.md);
// this tick only moves the Authority scalar, which is what
// KindVoteReform's eventual gating will read.
func ImperialTick(state worldstate.WorldState) worldstate.WorldState {
	if state.Imperial == nil {
		return state
	}

	imp := state.Imperial.Clone()
	if membersAtWarWithEachOther(state, imp) {
		imp.Authority.Add(-imperialAuthorityLossPerMonth)
	} else {
		imp.Authority.Add(imperialAuthorityGainPerMonth)
	}
	state.Imperial = imp
	return state
}

func membersAtWarWithEachOther(state worldstate.WorldState, imp *worldstate.ImperialBody) bool {
	atWar := false
	for a := range imp.Members {
		for b := range imp.Members {
			if a == b {
				continue
			}
			if AtWar(state, a, b) {
				atWar = true
			}
		}
	}
	return atWar
}
