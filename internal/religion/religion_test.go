package religion

import (
	"testing"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/modifiers"
	"github.com/talgya/concordia/internal/worldstate"
)

func newTestState(provinceReligion, ownerReligion uint16, autonomy fixedpoint.Mod32, seed, tick uint64) worldstate.WorldState {
	tag := ids.MakeTag("TST")
	state := worldstate.New(worldstate.Date(0), seed)
	state.Tick = tick

	owner := tag
	state = state.WithProvince(1, &worldstate.ProvinceState{
		ID:        1,
		Owner:     &owner,
		Controller: &owner,
		Religion:  provinceReligion,
		Autonomy:  autonomy,
		Modifiers: modifiers.NewAccumulator(),
	})
	state = state.WithCountry(tag, &worldstate.CountryState{
		Tag:       tag,
		Alive:     true,
		Religion:  ownerReligion,
		Modifiers: modifiers.NewAccumulator(),
	})
	return state
}

func TestSpreadTick_SameReligionNeverConverts(t *testing.T) {
	state := newTestState(1, 1, 0, 1, 1)
	for tick := uint64(1); tick < 500; tick++ {
		state.Tick = tick
		state = SpreadTick(state, (*gamedata.GameData)(nil))
	}
	p, _ := state.Provinces.Get(1)
	if p.Religion != 1 {
		t.Fatalf("province religion changed with no divergence: got %d", p.Religion)
	}
}

func TestSpreadTick_EventuallyConverts(t *testing.T) {
	state := newTestState(2, 1, 0, 42, 0)
	converted := false
	for tick := uint64(1); tick < 5000; tick++ {
		state.Tick = tick
		state = SpreadTick(state, (*gamedata.GameData)(nil))
		p, _ := state.Provinces.Get(1)
		if p.Religion == 1 {
			converted = true
			break
		}
	}
	if !converted {
		t.Fatal("expected a heretic province to convert to its owner's religion within 5000 monthly rolls")
	}
}

func TestSpreadTick_DeterministicAcrossReplays(t *testing.T) {
	runOnce := func() uint16 {
		state := newTestState(2, 1, fixedpoint.Mod32(3000), 7, 0)
		for tick := uint64(1); tick < 2000; tick++ {
			state.Tick = tick
			state = SpreadTick(state, (*gamedata.GameData)(nil))
		}
		p, _ := state.Provinces.Get(1)
		return p.Religion
	}
	a, b := runOnce(), runOnce()
	if a != b {
		t.Fatalf("two identical replays diverged: %d vs %d", a, b)
	}
}

func TestSpreadTick_UnownedProvinceNeverConverts(t *testing.T) {
	state := worldstate.New(worldstate.Date(0), 1)
	state = state.WithProvince(1, &worldstate.ProvinceState{ID: 1, Religion: 2, Modifiers: modifiers.NewAccumulator()})
	for tick := uint64(1); tick < 1000; tick++ {
		state.Tick = tick
		state = SpreadTick(state, (*gamedata.GameData)(nil))
	}
	p, _ := state.Provinces.Get(1)
	if p.Religion != 2 {
		t.Fatalf("unowned province should never convert, got religion %d", p.Religion)
	}
}
