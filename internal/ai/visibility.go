// Package ai implements the kernel-facing AI contract: a pure function of
// a filtered, observer-specific view of the world plus the set of commands
// currently legal for that observer, producing a list of commands. See
// design doc Section 4.11.
package ai

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/talgya/concordia/internal/calendar"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// VisibilityMode selects how much of the world an observer can see.
// Realistic fog-of-war is a named future extension in design doc Section
// 4.11; only Omniscient is implemented today.
type VisibilityMode uint8

const (
	Omniscient VisibilityMode = iota
	Realistic
)

// VisibleWorldState is the read-only view of the world an AI policy is
// allowed to consult. It is built fresh every time VisibleStateFor is
// called and is never mutated by a policy.
type VisibleWorldState struct {
	Date   calendar.Date
	Self   *worldstate.CountryState
	Known  map[ids.Tag]*worldstate.CountryState
	Wars   []*worldstate.War
	Owner  map[ids.ProvinceID]ids.Tag
	// VisibleProvinces is the set of provinces the observer has intel on,
	// encoded as a Roaring bitmap over province ids — in Omniscient mode
	// every province is set; Realistic mode (once implemented) would clear
	// bits for provinces outside the observer's fog-of-war radius.
	VisibleProvinces *roaring.Bitmap
}

// VisibleStateFor builds the filtered view for observer under mode. In
// Omniscient mode every country and province is visible, matching the
// full WorldState; the function still copies rather than aliasing so a
// policy can never mutate shared state through the view.
func VisibleStateFor(state worldstate.WorldState, observer ids.Tag, mode VisibilityMode) VisibleWorldState {
	self, _ := state.Countries.Get(observer)

	known := make(map[ids.Tag]*worldstate.CountryState)
	state.Countries.Ascend(func(t ids.Tag, c *worldstate.CountryState) bool {
		if mode == Realistic && !isKnownTo(state, observer, t) {
			return true
		}
		known[t] = c
		return true
	})

	var wars []*worldstate.War
	state.Wars.Ascend(func(_ ids.WarID, w *worldstate.War) bool {
		wars = append(wars, w)
		return true
	})
	sort.Slice(wars, func(i, j int) bool { return wars[i].ID < wars[j].ID })

	owner := make(map[ids.ProvinceID]ids.Tag)
	visible := roaring.New()
	state.Provinces.Ascend(func(id ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if p.Owner != nil {
			owner[id] = *p.Owner
		}
		if mode == Omniscient || isProvinceVisible(state, observer, id) {
			visible.Add(uint32(id))
		}
		return true
	})

	return VisibleWorldState{
		Date:             state.Date,
		Self:             self,
		Known:            known,
		Wars:             wars,
		Owner:            owner,
		VisibleProvinces: visible,
	}
}

// isKnownTo and isProvinceVisible are the Realistic-mode fog-of-war
// predicates; until that mode is implemented they default to "visible"
// so Realistic behaves like Omniscient rather than hiding everything.
func isKnownTo(state worldstate.WorldState, observer, other ids.Tag) bool { return true }
func isProvinceVisible(state worldstate.WorldState, observer ids.Tag, province ids.ProvinceID) bool {
	return true
}
