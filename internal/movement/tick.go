package movement

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/worldstate"
)

// ArrivalEvent records that a mover finished its current hop (and possibly
// its whole path) this tick; the orchestrator reports each one to
// observers as an "arrival" event. Land/naval combat and siege do not read
// these: they find today's arrivals by scanning unit locations after
// movement has run, so today's arrivals still fight today (design doc
// Section 4.1's ordering rationale).
type ArrivalEvent struct {
	ArmyID   ids.ArmyID
	FleetID  ids.FleetID
	IsFleet  bool
	Province ids.ProvinceID
	PathDone bool
}

// extractItem is the pure, parallel-safe input row the spec's map-reduce
// pattern processes: (id, location, progress, required, path...).
type extractItem struct {
	index    int // position in the sorted army/fleet slice, for stable apply order
	id       ids.ArmyID
	fleetID  ids.FleetID
	isFleet  bool
	location ids.ProvinceID
	progress fixedpoint.Mod32
	required fixedpoint.Mod32
	path     []ids.ProvinceID
}

type processedItem struct {
	extractItem
	newLocation ids.ProvinceID
	newProgress fixedpoint.Mod32
	newPath     []ids.ProvinceID
	arrived     bool
}

// Tick runs the full movement map-reduce for armies, then fleets, in
// separate spans, per design doc Section 4.3. The atWar callback lets the
// caller supply diplomacy-aware edge costs without this package importing
// diplomacy.
func Tick(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool) (worldstate.WorldState, []ArrivalEvent) {
	var events []ArrivalEvent

	state, armyEvents := tickArmies(state, data, atWar)
	events = append(events, armyEvents...)

	state, fleetEvents := tickFleets(state, data)
	events = append(events, fleetEvents...)

	return state, events
}

func tickArmies(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool) (worldstate.WorldState, []ArrivalEvent) {
	var items []extractItem
	ids_ := state.Armies.Keys()
	sort.Slice(ids_, func(i, j int) bool { return ids_[i] < ids_[j] })

	for i, id := range ids_ {
		a, _ := state.Armies.Get(id)
		if !a.Movement.Active || a.EmbarkedOn != nil || a.InBattle != nil || a.Besieging != nil {
			continue
		}
		items = append(items, extractItem{
			index: i, id: id, location: a.Location,
			progress: a.Movement.Progress, required: a.Movement.Required,
			path: append([]ids.ProvinceID(nil), a.Movement.Path...),
		})
	}

	processed := processInParallel(items, data, func(owner extractItem) ids.Tag {
		a, _ := state.Armies.Get(owner.id)
		return a.Owner
	}, func(mover ids.Tag) EdgeCostFunc {
		return ArmyEdgeCost(state, mover, atWar)
	})

	var events []ArrivalEvent
	for _, p := range processed {
		a, ok := state.Armies.Get(p.id)
		if !ok {
			continue
		}
		na := a.Clone()
		na.Location = p.newLocation
		na.Movement.Progress = p.newProgress
		na.Movement.Path = p.newPath
		na.Movement.Active = len(p.newPath) > 0
		state = state.WithArmy(p.id, na)
		if p.arrived {
			events = append(events, ArrivalEvent{ArmyID: p.id, Province: p.newLocation, PathDone: len(p.newPath) == 0})
		}
	}
	return state, events
}

func tickFleets(state worldstate.WorldState, data *gamedata.GameData) (worldstate.WorldState, []ArrivalEvent) {
	var items []extractItem
	ids_ := state.Fleets.Keys()
	sort.Slice(ids_, func(i, j int) bool { return ids_[i] < ids_[j] })

	for i, id := range ids_ {
		f, _ := state.Fleets.Get(id)
		if !f.Movement.Active || f.InBattle != nil {
			continue
		}
		items = append(items, extractItem{
			index: i, fleetID: id, isFleet: true, location: f.Location,
			progress: f.Movement.Progress, required: f.Movement.Required,
			path: append([]ids.ProvinceID(nil), f.Movement.Path...),
		})
	}

	processed := processInParallel(items, data, func(_ extractItem) ids.Tag { return ids.Tag{} }, func(_ ids.Tag) EdgeCostFunc {
		return FleetEdgeCost()
	})

	var events []ArrivalEvent
	for _, p := range processed {
		f, ok := state.Fleets.Get(p.fleetID)
		if !ok {
			continue
		}
		nf := f.Clone()
		nf.Location = p.newLocation
		nf.Movement.Progress = p.newProgress
		nf.Movement.Path = p.newPath
		nf.Movement.Active = len(p.newPath) > 0
		state = state.WithFleet(p.fleetID, nf)
		if p.arrived {
			events = append(events, ArrivalEvent{FleetID: p.fleetID, IsFleet: true, Province: p.newLocation, PathDone: len(p.newPath) == 0})
		}
	}
	return state, events
}

// processInParallel is the "map" phase: a pure function per item, fanned
// out across a bounded errgroup worker pool (the Go analogue of rayon's
// data-parallel iterators, design doc Section 5). Results are collected
// into a slice indexed by the item's original position, so the subsequent
// "apply" phase always integrates them in the same deterministic order
// regardless of which goroutine finished first.
func processInParallel(items []extractItem, data *gamedata.GameData, ownerOf func(extractItem) ids.Tag, costFnFor func(ids.Tag) EdgeCostFunc) []processedItem {
	out := make([]processedItem, len(items))
	var g errgroup.Group
	g.SetLimit(16)
	for i := range items {
		i := i
		g.Go(func() error {
			out[i] = processOne(items[i], data, costFnFor(ownerOf(items[i])))
			return nil
		})
	}
	_ = g.Wait() // processOne never errors; Wait only synchronises the fan-in
	return out
}

const baseSpeed = baseEdgeCost // progress gained per day equals one base-cost unit, per design doc defines

// processOne is the pure per-entry step of the map phase: progress' =
// progress + BASE_SPEED; if progress' >= required, the unit moves to
// path_front, pops it, resets progress to progress' - required, and
// re-queries the next edge's cost (design doc Section 4.3, step 2). The
// required cost for the current hop is recomputed from the live
// adjacency/cost function each tick rather than cached, since it can
// change tick to tick (a ZoC fort built, a strait newly blockaded).
func processOne(item extractItem, data *gamedata.GameData, costFn EdgeCostFunc) processedItem {
	result := processedItem{extractItem: item, newLocation: item.location, newProgress: item.progress, newPath: item.path}
	if len(item.path) == 0 {
		return result
	}

	required := edgeRequired(data, item.location, item.path[0], costFn)
	progress := item.progress.Add(fixedpoint.M32FromInt(baseSpeed))

	if progress < required {
		result.newProgress = progress
		return result
	}

	// Hop complete: advance to path_front, pop it, carry over remainder.
	result.newLocation = item.path[0]
	result.newPath = item.path[1:]
	result.newProgress = progress.Sub(required)
	result.arrived = true
	return result
}

func edgeRequired(data *gamedata.GameData, from, to ids.ProvinceID, costFn EdgeCostFunc) fixedpoint.Mod32 {
	for _, edge := range data.Adjacency[from] {
		if edge.To == to {
			cost, ok := costFn(data, from, to, edge)
			if ok {
				return cost
			}
		}
	}
	return fixedpoint.M32FromInt(baseEdgeCost)
}
