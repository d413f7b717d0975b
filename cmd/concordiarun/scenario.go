package main

import (
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/modifiers"
	"github.com/talgya/concordia/internal/worldstate"
)

// demoScenario builds the smallest world the kernel can step: two
// countries, two adjacent land provinces in one trade node. The real
// game-data parser is an out-of-scope external collaborator (design doc
// Section 6), so this is what `run`/`benchmark` bootstrap from absent a
// `--data` loader; it exists purely to exercise StepWorld end to end, not
// to model anything historical.
func demoScenario(seed uint64) (worldstate.WorldState, *gamedata.GameData) {
	home, away := ids.MakeTag("ATL"), ids.MakeTag("BOR")
	provHome, provAway := ids.ProvinceID(1), ids.ProvinceID(2)
	node := ids.TradeNodeID(1)

	data, err := gamedata.New(
		map[ids.ProvinceID]*gamedata.ProvinceDef{
			provHome: {ID: provHome, Name: "Atlantia", TradeNode: node, BaseTerrain: gamedata.TerrainPlains},
			provAway: {ID: provAway, Name: "Borealis", TradeNode: node, BaseTerrain: gamedata.TerrainPlains},
		},
		map[ids.ProvinceID][]gamedata.Adjacency{
			provHome: {{To: provAway, Kind: gamedata.EdgeLand, BaseCost: int32(fixedpoint.Scale * 10)}},
			provAway: {{To: provHome, Kind: gamedata.EdgeLand, BaseCost: int32(fixedpoint.Scale * 10)}},
		},
		map[ids.TradeNodeID]*gamedata.TradeNodeDef{
			node: {ID: node, Name: "Narrow Sea", Members: []ids.ProvinceID{provHome, provAway}},
		},
		map[uint16]gamedata.Religion{1: {ID: 1, Name: "Reformed"}},
		map[uint16]gamedata.Culture{1: {ID: 1, Name: "Atlantic"}},
		map[uint16]gamedata.TradeGood{1: {ID: 1, Name: "Grain", BasePrice: fixedpoint.Scale * 3}},
		map[uint16]gamedata.Building{},
		map[uint16]gamedata.IdeaGroup{},
		gamedata.Defines{
			BaseMovementSpeed: int32(fixedpoint.Scale),
			BaseLandDamage:    int64(fixedpoint.Scale),
			BaseNavalDamage:   int64(fixedpoint.Scale),
			SupplyPerDev:      int64(fixedpoint.Scale),
			MaxForts:          8,
		},
	)
	if err != nil {
		panic("demo scenario is a fixed constant and must always build: " + err.Error())
	}

	state := worldstate.New(worldstate.Date(0), seed)
	state = state.WithProvince(provHome, newDemoProvince(provHome, home, node))
	state = state.WithProvince(provAway, newDemoProvince(provAway, away, node))
	state = state.WithCountry(home, newDemoCountry(home, node))
	state = state.WithCountry(away, newDemoCountry(away, node))
	state = state.WithTradeNode(node, &worldstate.TradeNodeState{ID: node})

	return state, data
}

func newDemoProvince(id ids.ProvinceID, owner ids.Tag, node ids.TradeNodeID) *worldstate.ProvinceState {
	o := owner
	return &worldstate.ProvinceState{
		ID:             id,
		Owner:          &o,
		Controller:     &o,
		BaseTax:        fixedpoint.M32FromInt(3),
		BaseProduction: fixedpoint.M32FromInt(3),
		BaseManpower:   fixedpoint.M32FromInt(1),
		Religion:       1,
		Culture:        1,
		TradeGood:      1,
		TradeNode:      node,
		Development:    fixedpoint.M32FromInt(7),
		Buildings:      map[uint16]bool{},
		Modifiers:      modifiers.NewAccumulator(),
	}
}

func newDemoCountry(tag ids.Tag, home ids.TradeNodeID) *worldstate.CountryState {
	return &worldstate.CountryState{
		Tag:                tag,
		Alive:              true,
		Treasury:           fixedpoint.FromInt(100),
		Manpower:           fixedpoint.FromInt(10000),
		MaxManpower:        fixedpoint.FromInt(10000),
		Prestige:           fixedpoint.NewBounded(-100, 100, 0),
		Stability:          fixedpoint.NewBounded(-3, 3, 0),
		ArmyTradition:      fixedpoint.NewBounded(0, 100, 0),
		NavyTradition:      fixedpoint.NewBounded(0, 100, 0),
		Legitimacy:         fixedpoint.NewBounded(0, 100, 100),
		Religion:           1,
		Culture:            1,
		Government:         "monarchy",
		TechADM:            3,
		TechDIP:            3,
		TechMIL:            3,
		MerchantsAvailable: 1,
		MerchantsMax:       1,
		HomeTradeNode:      home,
		ForceLimitLand:     6,
		ForceLimitNaval:    4,
		ProvinceCount:      1,
		Modifiers:          modifiers.NewAccumulator(),
	}
}
