package orchestrator

import (
	"testing"

	"github.com/talgya/concordia/internal/commands"
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/integrity"
	"github.com/talgya/concordia/internal/modifiers"
	"github.com/talgya/concordia/internal/replay"
	"github.com/talgya/concordia/internal/worldstate"
)

func testScenario(seed uint64) (worldstate.WorldState, *gamedata.GameData) {
	home, away := ids.MakeTag("HOM"), ids.MakeTag("AWY")
	p1, p2 := ids.ProvinceID(1), ids.ProvinceID(2)
	node := ids.TradeNodeID(1)

	data, err := gamedata.New(
		map[ids.ProvinceID]*gamedata.ProvinceDef{
			p1: {ID: p1, Name: "Homeland", TradeNode: node, BaseTerrain: gamedata.TerrainPlains},
			p2: {ID: p2, Name: "Away", TradeNode: node, BaseTerrain: gamedata.TerrainPlains},
		},
		map[ids.ProvinceID][]gamedata.Adjacency{
			p1: {{To: p2, Kind: gamedata.EdgeLand, BaseCost: int32(fixedpoint.Scale * 10)}},
			p2: {{To: p1, Kind: gamedata.EdgeLand, BaseCost: int32(fixedpoint.Scale * 10)}},
		},
		map[ids.TradeNodeID]*gamedata.TradeNodeDef{
			node: {ID: node, Name: "Node", Members: []ids.ProvinceID{p1, p2}},
		},
		map[uint16]gamedata.Religion{1: {ID: 1, Name: "Faith"}},
		map[uint16]gamedata.Culture{1: {ID: 1, Name: "Culture"}},
		map[uint16]gamedata.TradeGood{1: {ID: 1, Name: "Grain", BasePrice: fixedpoint.Scale * 3}},
		map[uint16]gamedata.Building{},
		map[uint16]gamedata.IdeaGroup{},
		gamedata.Defines{BaseMovementSpeed: int32(fixedpoint.Scale), MaxForts: 8},
	)
	if err != nil {
		panic(err)
	}

	state := worldstate.New(worldstate.Date(0), seed)
	state = state.WithProvince(p1, testProvince(p1, home, node))
	state = state.WithProvince(p2, testProvince(p2, away, node))
	state = state.WithCountry(home, testCountry(home, node))
	state = state.WithCountry(away, testCountry(away, node))
	state = state.WithTradeNode(node, &worldstate.TradeNodeState{ID: node})
	return state, data
}

func testProvince(id ids.ProvinceID, owner ids.Tag, node ids.TradeNodeID) *worldstate.ProvinceState {
	o := owner
	return &worldstate.ProvinceState{
		ID: id, Owner: &o, Controller: &o,
		BaseTax: fixedpoint.M32FromInt(3), BaseProduction: fixedpoint.M32FromInt(3), BaseManpower: fixedpoint.M32FromInt(1),
		Religion: 1, Culture: 1, TradeGood: 1, TradeNode: node,
		Development: fixedpoint.M32FromInt(7),
		Buildings:   map[uint16]bool{},
		Modifiers:   modifiers.NewAccumulator(),
	}
}

func testCountry(tag ids.Tag, home ids.TradeNodeID) *worldstate.CountryState {
	return &worldstate.CountryState{
		Tag: tag, Alive: true,
		Treasury: fixedpoint.FromInt(100), Manpower: fixedpoint.FromInt(1000), MaxManpower: fixedpoint.FromInt(1000),
		Prestige: fixedpoint.NewBounded(-100, 100, 0), Stability: fixedpoint.NewBounded(-3, 3, 0),
		ArmyTradition: fixedpoint.NewBounded(0, 100, 0), NavyTradition: fixedpoint.NewBounded(0, 100, 0),
		Legitimacy: fixedpoint.NewBounded(0, 100, 100), Religion: 1, Culture: 1, Government: "monarchy",
		MerchantsAvailable: 1, MerchantsMax: 1, HomeTradeNode: home, ProvinceCount: 1,
		Modifiers: modifiers.NewAccumulator(),
	}
}

func testConfig() Config {
	return Config{
		Checksum: integrity.ChecksumSchedule{IntervalTicks: 1},
		Bus:      replay.NewBus(),
		Mode:     ModeAI,
	}
}

func TestStepWorld_AdvancesTickAndDate(t *testing.T) {
	state, data := testScenario(1)
	result := StepWorld(state, nil, data, testConfig())
	if result.State.Tick != state.Tick+1 {
		t.Fatalf("expected tick to advance by 1, got %d -> %d", state.Tick, result.State.Tick)
	}
	if result.State.Date != state.Date.Next() {
		t.Fatalf("expected date to advance by 1 day")
	}
}

func TestStepWorld_ChecksumOnlyWhenDue(t *testing.T) {
	state, data := testScenario(1)
	cfg := Config{Checksum: integrity.ChecksumSchedule{IntervalTicks: 5}, Bus: replay.NewBus(), Mode: ModeAI}

	var lastDue uint64
	for i := 0; i < 10; i++ {
		result := StepWorld(state, nil, data, cfg)
		state = result.State
		if result.Checksum != nil {
			if state.Tick%5 != 0 {
				t.Fatalf("checksum computed off-schedule at tick %d", state.Tick)
			}
			lastDue = state.Tick
		}
	}
	if lastDue == 0 {
		t.Fatal("expected at least one scheduled checksum across 10 ticks")
	}
}

func TestStepWorld_MonthlySubsystemsRunOnlyOnFirstOfMonth(t *testing.T) {
	state, data := testScenario(1)
	cfg := testConfig()

	startingTreasury := func(s worldstate.WorldState) fixedpoint.Fixed {
		c, _ := s.Countries.Get(ids.MakeTag("HOM"))
		return c.Treasury
	}
	before := startingTreasury(state)

	// 29 days: never crosses a month boundary from day 0, so taxation
	// (a monthly-only effect) must not have touched the treasury.
	for i := 0; i < 29; i++ {
		state = StepWorld(state, nil, data, cfg).State
	}
	if got := startingTreasury(state); got != before {
		t.Fatalf("treasury changed before any month boundary: %v -> %v", before, got)
	}

	// The 30th day crosses into month 2: taxation should have run.
	state = StepWorld(state, nil, data, cfg).State
	if got := startingTreasury(state); got == before {
		t.Fatal("expected taxation to have deposited treasury on the first day of the new month")
	}
}

func TestStepWorld_DeterministicAcrossTwoRuns(t *testing.T) {
	runOnce := func() uint64 {
		state, data := testScenario(99)
		cfg := testConfig()
		var final uint64
		for i := 0; i < 45; i++ {
			result := StepWorld(state, nil, data, cfg)
			state = result.State
			if result.Checksum != nil {
				final = *result.Checksum
			}
		}
		return final
	}
	a, b := runOnce(), runOnce()
	if a != b {
		t.Fatalf("two identical runs diverged: %x vs %x", a, b)
	}
}

func TestStepWorld_RejectsIllegalCommandInHumanMode(t *testing.T) {
	state, data := testScenario(1)
	cfg := Config{Checksum: integrity.ChecksumSchedule{IntervalTicks: 1}, Bus: replay.NewBus(), Mode: ModeHuman}

	home := ids.MakeTag("HOM")
	// HOM and AWY are not at war and share no border offer for this, so a
	// declaration of war against a bogus third tag can never appear in
	// ai.AvailableCommands for HOM.
	illegal := commands.Command{Kind: commands.KindDeclareWar, Target: ids.MakeTag("ZZZ")}
	inputs := []PlayerInput{{Country: home, Commands: []commands.Command{illegal}}}

	result := StepWorld(state, inputs, data, cfg)
	if len(result.Rejections) == 0 {
		t.Fatal("expected the illegal command to be reported as a rejection in human mode")
	}
	found := false
	for _, r := range result.Rejections {
		if r.Country == home && r.Command.Kind == commands.KindDeclareWar {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a rejection naming the offending country and command")
	}
}

func TestStepWorld_SilentlyDropsIllegalCommandInAIMode(t *testing.T) {
	state, data := testScenario(1)
	cfg := testConfig() // ModeAI

	home := ids.MakeTag("HOM")
	illegal := commands.Command{Kind: commands.KindDeclareWar, Target: ids.MakeTag("ZZZ")}
	inputs := []PlayerInput{{Country: home, Commands: []commands.Command{illegal}}}

	result := StepWorld(state, inputs, data, cfg)
	if len(result.Rejections) != 0 {
		t.Fatalf("expected no rejections reported in AI mode, got %d", len(result.Rejections))
	}
}
