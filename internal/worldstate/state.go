package worldstate

import (
	"github.com/talgya/concordia/internal/calendar"
	"github.com/talgya/concordia/internal/ids"
)

// WorldState is the kernel's complete mutable snapshot. Cloning it is O(1)
// amortised because every large collection is a persistent PMap; only the
// small scalar fields (Date, Seed, Tick) are copied by value.
//
// WorldState is exclusively owned by the orchestrator (design doc Section
// 3, "Ownership"): sub-systems receive it by value (a cheap struct copy
// sharing PMap trees) and return a result the orchestrator applies
// sequentially, never concurrently.
type WorldState struct {
	Date Date
	Tick uint64
	Seed uint64 // single RNG seed carried in the state, per design doc Section 3

	Provinces PMap[ids.ProvinceID, *ProvinceState]
	Countries PMap[ids.Tag, *CountryState]
	Armies    PMap[ids.ArmyID, *Army]
	Fleets    PMap[ids.FleetID, *Fleet]
	Wars      PMap[ids.WarID, *War]
	Battles   PMap[ids.BattleID, *Battle]
	Sieges    PMap[ids.SiegeID, *Siege]
	TradeNodes PMap[ids.TradeNodeID, *TradeNodeState]

	Diplomacy *DiplomacyState
	Imperial  *ImperialBody // nil if the scenario carries no HRE/Celestial Empire

	NextArmyID   ids.ArmyID
	NextFleetID  ids.FleetID
	NextWarID    ids.WarID
	NextBattleID ids.BattleID
	NextSiegeID  ids.SiegeID
}

// Date is re-exported for call sites that only import worldstate.
type Date = calendar.Date

// New builds an empty WorldState at the given start date and seed. Callers
// (normally the out-of-scope loader) then populate Provinces/Countries/etc.
func New(start Date, seed uint64) WorldState {
	return WorldState{
		Date:       start,
		Seed:       seed,
		Provinces:  NewPMapOrdered[ids.ProvinceID, *ProvinceState](),
		Countries:  NewPMap[ids.Tag, *CountryState](func(a, b ids.Tag) bool { return a.Less(b) }),
		Armies:     NewPMapOrdered[ids.ArmyID, *Army](),
		Fleets:     NewPMapOrdered[ids.FleetID, *Fleet](),
		Wars:       NewPMapOrdered[ids.WarID, *War](),
		Battles:    NewPMapOrdered[ids.BattleID, *Battle](),
		Sieges:     NewPMapOrdered[ids.SiegeID, *Siege](),
		TradeNodes: NewPMapOrdered[ids.TradeNodeID, *TradeNodeState](),
		Diplomacy:  NewDiplomacyState(),
	}
}

// Clone returns a snapshot sharing structure with the receiver — the
// foundation of safe read-only parallel access (design doc Section 4.2)
// and of replay checkpoints. Scalar fields copy by value; PMap fields
// share btree nodes until one side mutates.
func (w WorldState) Clone() WorldState {
	cp := w
	cp.Provinces = w.Provinces.Clone()
	cp.Countries = w.Countries.Clone()
	cp.Armies = w.Armies.Clone()
	cp.Fleets = w.Fleets.Clone()
	cp.Wars = w.Wars.Clone()
	cp.Battles = w.Battles.Clone()
	cp.Sieges = w.Sieges.Clone()
	cp.TradeNodes = w.TradeNodes.Clone()
	cp.Diplomacy = w.Diplomacy.Clone()
	if w.Imperial != nil {
		cp.Imperial = w.Imperial.Clone()
	}
	return cp
}

// WithProvince returns a new WorldState with province p's entry replaced.
// Sub-system "apply" phases use these With* helpers to stay pure-functional
// at the call site even though PMap mutation is in-place on the shared
// clone they were handed.
func (w WorldState) WithProvince(id ids.ProvinceID, p *ProvinceState) WorldState {
	w.Provinces = w.Provinces.Set(id, p)
	return w
}

func (w WorldState) WithCountry(tag ids.Tag, c *CountryState) WorldState {
	w.Countries = w.Countries.Set(tag, c)
	return w
}

func (w WorldState) WithArmy(id ids.ArmyID, a *Army) WorldState {
	w.Armies = w.Armies.Set(id, a)
	return w
}

func (w WorldState) WithoutArmy(id ids.ArmyID) WorldState {
	w.Armies = w.Armies.Delete(id)
	return w
}

func (w WorldState) WithFleet(id ids.FleetID, f *Fleet) WorldState {
	w.Fleets = w.Fleets.Set(id, f)
	return w
}

func (w WorldState) WithoutFleet(id ids.FleetID) WorldState {
	w.Fleets = w.Fleets.Delete(id)
	return w
}

func (w WorldState) WithWar(id ids.WarID, war *War) WorldState {
	w.Wars = w.Wars.Set(id, war)
	return w
}

func (w WorldState) WithoutWar(id ids.WarID) WorldState {
	w.Wars = w.Wars.Delete(id)
	return w
}

func (w WorldState) WithBattle(id ids.BattleID, b *Battle) WorldState {
	w.Battles = w.Battles.Set(id, b)
	return w
}

func (w WorldState) WithoutBattle(id ids.BattleID) WorldState {
	w.Battles = w.Battles.Delete(id)
	return w
}

func (w WorldState) WithSiege(id ids.SiegeID, s *Siege) WorldState {
	w.Sieges = w.Sieges.Set(id, s)
	return w
}

func (w WorldState) WithoutSiege(id ids.SiegeID) WorldState {
	w.Sieges = w.Sieges.Delete(id)
	return w
}

func (w WorldState) WithTradeNode(id ids.TradeNodeID, t *TradeNodeState) WorldState {
	w.TradeNodes = w.TradeNodes.Set(id, t)
	return w
}

// AllocArmyID, AllocFleetID, ... return a fresh ID and the updated state;
// IDs are assigned monotonically so they never collide across a replay.
func (w WorldState) AllocArmyID() (ids.ArmyID, WorldState) {
	id := w.NextArmyID + 1
	w.NextArmyID = id
	return id, w
}

func (w WorldState) AllocFleetID() (ids.FleetID, WorldState) {
	id := w.NextFleetID + 1
	w.NextFleetID = id
	return id, w
}

func (w WorldState) AllocWarID() (ids.WarID, WorldState) {
	id := w.NextWarID + 1
	w.NextWarID = id
	return id, w
}

func (w WorldState) AllocBattleID() (ids.BattleID, WorldState) {
	id := w.NextBattleID + 1
	w.NextBattleID = id
	return id, w
}

func (w WorldState) AllocSiegeID() (ids.SiegeID, WorldState) {
	id := w.NextSiegeID + 1
	w.NextSiegeID = id
	return id, w
}
