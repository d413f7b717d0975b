package diplomacy

import (
	"testing"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

func TestImperialTick_NilBodyIsNoop(t *testing.T) {
	state := worldstate.New(worldstate.Date(0), 1)
	got := ImperialTick(state)
	if got.Imperial != nil {
		t.Fatal("ImperialTick must not create an imperial body out of nothing")
	}
}

func TestImperialTick_PeaceRaisesAuthority(t *testing.T) {
	emperor, member := ids.MakeTag("EMP"), ids.MakeTag("MEM")
	state := worldstate.New(worldstate.Date(0), 1)
	state.Imperial = &worldstate.ImperialBody{
		Kind:          worldstate.ImperialBodyHRE,
		Emperor:       emperor,
		PassedReforms: map[ids.ReformID]bool{},
		Authority:     fixedpoint.NewBounded(0, 100, 50),
		Members:       map[ids.Tag]bool{emperor: true, member: true},
		FreeCities:    map[ids.ProvinceID]bool{},
	}

	next := ImperialTick(state)
	if next.Imperial.Authority.Value() <= 50 {
		t.Fatalf("expected authority to rise during internal peace, got %d", next.Imperial.Authority.Value())
	}
}

func TestImperialTick_InternalWarErodesAuthority(t *testing.T) {
	emperor, member := ids.MakeTag("EMP"), ids.MakeTag("MEM")
	state := worldstate.New(worldstate.Date(0), 1)
	state.Imperial = &worldstate.ImperialBody{
		Kind:          worldstate.ImperialBodyHRE,
		Emperor:       emperor,
		PassedReforms: map[ids.ReformID]bool{},
		Authority:     fixedpoint.NewBounded(0, 100, 50),
		Members:       map[ids.Tag]bool{emperor: true, member: true},
		FreeCities:    map[ids.ProvinceID]bool{},
	}
	state, _, err := DeclareWar(state, emperor, member, "imperial ban")
	if err != nil {
		t.Fatalf("DeclareWar: %v", err)
	}

	next := ImperialTick(state)
	if next.Imperial.Authority.Value() >= 50 {
		t.Fatalf("expected authority to fall during internal war, got %d", next.Imperial.Authority.Value())
	}
}

func TestImperialTick_AuthorityStaysBounded(t *testing.T) {
	emperor := ids.MakeTag("EMP")
	state := worldstate.New(worldstate.Date(0), 1)
	state.Imperial = &worldstate.ImperialBody{
		Kind:          worldstate.ImperialBodyHRE,
		Emperor:       emperor,
		PassedReforms: map[ids.ReformID]bool{},
		Authority:     fixedpoint.NewBounded(0, 100, 99),
		Members:       map[ids.Tag]bool{emperor: true},
		FreeCities:    map[ids.ProvinceID]bool{},
	}
	for i := 0; i < 10; i++ {
		state = ImperialTick(state)
	}
	if v := state.Imperial.Authority.Value(); v < 0 || v > 100 {
		t.Fatalf("authority escaped its bounds: %d", v)
	}
}
