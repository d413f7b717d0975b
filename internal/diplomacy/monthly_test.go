package diplomacy

import (
	"testing"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/modifiers"
	"github.com/talgya/concordia/internal/worldstate"
)

func newCountry(tag ids.Tag) *worldstate.CountryState {
	return &worldstate.CountryState{
		Tag:                 tag,
		Alive:               true,
		AggressiveExpansion: map[ids.Tag]fixedpoint.Fixed{},
		Modifiers:           modifiers.NewAccumulator(),
	}
}

func TestAEDecayTick_DecaysAndPrunesToZero(t *testing.T) {
	a, target := ids.MakeTag("AAA"), ids.MakeTag("TGT")
	state := worldstate.New(worldstate.Date(0), 1)
	c := newCountry(a)
	c.AggressiveExpansion[target] = fixedpoint.FromInt(2)
	state = state.WithCountry(a, c)

	state = AEDecayTick(state)
	got, _ := state.Countries.Get(a)
	if got.AggressiveExpansion[target] != fixedpoint.FromInt(1) {
		t.Fatalf("expected AE to decay by 1, got %v", got.AggressiveExpansion[target])
	}

	state = AEDecayTick(state)
	got, _ = state.Countries.Get(a)
	if _, exists := got.AggressiveExpansion[target]; exists {
		t.Fatal("AE entry should be pruned once it reaches zero")
	}
}

func TestCoalitionTick_FormsAtThresholdAndDissolvesBelowIt(t *testing.T) {
	target := ids.MakeTag("TGT")
	members := []ids.Tag{ids.MakeTag("A1"), ids.MakeTag("A2"), ids.MakeTag("A3"), ids.MakeTag("A4")}

	state := worldstate.New(worldstate.Date(0), 1)
	for _, m := range members {
		c := newCountry(m)
		c.AggressiveExpansion[target] = fixedpoint.FromInt(60)
		state = state.WithCountry(m, c)
	}

	state = CoalitionTick(state)
	coalition, ok := state.Diplomacy.Coalitions[target]
	if !ok {
		t.Fatal("expected a coalition to form once 4 members cross the AE threshold")
	}
	if len(coalition.Members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(coalition.Members))
	}

	// Drop one member's AE below threshold: coalition should dissolve.
	c, _ := state.Countries.Get(members[0])
	c = c.Clone()
	c.AggressiveExpansion[target] = fixedpoint.FromInt(10)
	state = state.WithCountry(members[0], c)

	state = CoalitionTick(state)
	if _, ok := state.Diplomacy.Coalitions[target]; ok {
		t.Fatal("expected coalition to dissolve once membership fell below the minimum")
	}
}

func TestWarScoreTick_OccupationDrivesScore(t *testing.T) {
	attacker, defender := ids.MakeTag("ATK"), ids.MakeTag("DEF")
	state := worldstate.New(worldstate.Date(0), 1)

	ownerDef := defender
	controllerAtk := attacker
	state = state.WithProvince(1, &worldstate.ProvinceState{
		ID: 1, Owner: &ownerDef, Controller: &controllerAtk,
		Development: fixedpoint.M32FromInt(10),
		Modifiers:   modifiers.NewAccumulator(),
	})

	warID, state2 := state.AllocWarID()
	state = state2
	war := &worldstate.War{
		ID:                 warID,
		Attackers:          map[ids.Tag]bool{attacker: true},
		Defenders:          map[ids.Tag]bool{defender: true},
		AttackerScore:      fixedpoint.NewBounded(0, 100, 0),
		DefenderScore:      fixedpoint.NewBounded(0, 100, 0),
		AttackerBattlesWon: fixedpoint.NewBounded(0, 40, 0),
		DefenderBattlesWon: fixedpoint.NewBounded(0, 40, 0),
	}
	state = state.WithWar(warID, war)

	state = WarScoreTick(state)
	w, _ := state.Wars.Get(warID)
	if w.AttackerScore.Value() <= 0 {
		t.Fatalf("expected attacker score to rise from full occupation, got %d", w.AttackerScore.Value())
	}
	if w.DefenderScore.Value() != 0 {
		t.Fatalf("expected defender score to stay at zero, got %d", w.DefenderScore.Value())
	}
}

func TestAutoEndStaleWarsTick_WhitePeacesAfterTenYears(t *testing.T) {
	attacker, defender := ids.MakeTag("ATK"), ids.MakeTag("DEF")
	state := worldstate.New(worldstate.Date(0), 1)
	state = state.WithCountry(attacker, newCountry(attacker))
	state = state.WithCountry(defender, newCountry(defender))

	var warID ids.WarID
	warID, state = state.AllocWarID()
	state = state.WithWar(warID, &worldstate.War{
		ID:            warID,
		Attackers:     map[ids.Tag]bool{attacker: true},
		Defenders:     map[ids.Tag]bool{defender: true},
		StartDate:     state.Date,
		AttackerScore: fixedpoint.NewBounded(0, 100, 0),
		DefenderScore: fixedpoint.NewBounded(0, 100, 0),
	})
	state.Date = state.Date.AddYears(11)

	state = AutoEndStaleWarsTick(state)
	if _, ok := state.Wars.Get(warID); ok {
		t.Fatal("expected a decade-old war to be force-ended by white peace")
	}
}

func TestAutoEndStaleWarsTick_FlagsWillingAtFiveYears(t *testing.T) {
	attacker, defender := ids.MakeTag("ATK"), ids.MakeTag("DEF")
	state := worldstate.New(worldstate.Date(0), 1)

	var warID ids.WarID
	warID, state = state.AllocWarID()
	state = state.WithWar(warID, &worldstate.War{
		ID:        warID,
		Attackers: map[ids.Tag]bool{attacker: true},
		Defenders: map[ids.Tag]bool{defender: true},
		StartDate: state.Date,
	})
	state.Date = state.Date.AddYears(6)

	state = AutoEndStaleWarsTick(state)
	w, ok := state.Wars.Get(warID)
	if !ok {
		t.Fatal("war should still be active at 6 years")
	}
	if !w.AttackerWillingPeace || !w.DefenderWillingPeace {
		t.Fatal("expected both sides flagged willing to accept peace past 5 years")
	}
}
