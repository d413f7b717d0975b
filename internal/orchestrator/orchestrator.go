// Package orchestrator runs the single entry point every other package in
// this kernel is built to serve: StepWorld, which advances a WorldState by
// exactly one day in the fixed phase order design doc Section 4.1
// mandates. It is intentionally the only place that package boundaries
// cross: every sub-system package (movement, combat, naval, siege,
// attrition, economy, trade, diplomacy, religion) is pure and
// orchestrator-agnostic, so the sequencing guarantee lives in exactly one
// function instead of being re-derived at every call site.
//
// Grounded on the teacher's internal/engine/simulation.go Tick method,
// which plays the same role for the teacher's settlement model: one
// function, one fixed phase order, pub-sub events emitted at well-defined
// points, nothing else in the codebase allowed to reorder phases.
package orchestrator

import (
	"sort"

	"github.com/talgya/concordia/internal/ai"
	"github.com/talgya/concordia/internal/attrition"
	"github.com/talgya/concordia/internal/combat"
	"github.com/talgya/concordia/internal/commands"
	"github.com/talgya/concordia/internal/diplomacy"
	"github.com/talgya/concordia/internal/economy"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/integrity"
	"github.com/talgya/concordia/internal/movement"
	"github.com/talgya/concordia/internal/naval"
	"github.com/talgya/concordia/internal/religion"
	"github.com/talgya/concordia/internal/replay"
	"github.com/talgya/concordia/internal/siege"
	"github.com/talgya/concordia/internal/trade"
	"github.com/talgya/concordia/internal/worldstate"
)

// PlayerInput is one country's commands for the tick about to run.
// Re-declared here (rather than imported from replay) because
// orchestrator is the producer of this data and replay is one of several
// consumers of it — replay.PlayerInputs is the on-disk wire shape, this
// is the in-memory shape StepWorld actually consumes; they happen to
// match field-for-field today.
type PlayerInput struct {
	Country  ids.Tag
	Commands []commands.Command
}

// InputMode controls how invalid commands are handled, per design doc
// Section 4.1 step 1: AI-issued commands that turn out to be illegal are
// dropped silently (an AI policy is expected to only ever propose
// commands already present in AvailableCommands, so a rejection there
// signals a stale view, not a user mistake); human-issued commands are
// reported back so a client can surface the error.
type InputMode uint8

const (
	ModeAI InputMode = iota
	ModeHuman
)

// Rejection records one command StepWorld refused to apply, for
// ModeHuman callers that need to report it back to the issuer.
type Rejection struct {
	Country ids.Tag
	Command commands.Command
	Err     error
}

// Config bundles the knobs StepWorld needs beyond the state/inputs/data
// triple: the checksum cadence and the bus observers are wired to.
type Config struct {
	Checksum integrity.ChecksumSchedule
	Bus      *replay.Bus // may be nil, in which case no observer events are emitted
	Mode     InputMode
}

// StepResult is everything one StepWorld call produces besides the next
// WorldState: rejected commands (ModeHuman only) and the checksum
// computed this tick, if the schedule was due.
type StepResult struct {
	State      worldstate.WorldState
	Rejections []Rejection
	Checksum   *uint64
}

// StepWorld advances state by exactly one day, in the strict phase order
// design doc Section 4.1 lays out:
//
//  1. input application, sorted by issuing country tag
//  2. daily sub-systems: movement, land combat, naval combat, sieges
//  3. end-of-day bookkeeping: tick and date advance (observer arrival
//     events are emitted earlier, as movement resolves in step 2)
//  4. monthly sub-systems, only on the new date's first day of month
//  5. checksum, only on ticks the schedule names
//
// Every sub-system below is handed the same atWar closure (backed by
// diplomacy.AtWar) rather than importing internal/diplomacy directly,
// matching the dependency-inversion pattern those packages were built
// around: movement/combat/siege/naval/attrition never import diplomacy and
// can be driven by any war predicate.
func StepWorld(state worldstate.WorldState, inputs []PlayerInput, data *gamedata.GameData, cfg Config) StepResult {
	atWar := func(a, b ids.Tag) bool { return diplomacy.AtWar(state, a, b) }

	state, rejections := applyInputs(state, inputs, data, cfg.Mode)

	state = tickMovement(state, data, atWar, cfg.Bus)
	state = combat.Tick(state, data, atWar)
	state = naval.Tick(state, data, atWar)
	state = siege.Tick(state, data, atWar)

	state.Tick++
	state.Date = state.Date.Next()

	if state.Date.IsFirstOfMonth() {
		state = runMonthly(state, data)
	}

	result := StepResult{State: state, Rejections: rejections}
	if cfg.Checksum.Due(state.Tick) {
		sum := state.Checksum()
		result.Checksum = &sum
	}
	return result
}

// applyInputs validates and applies every country's commands for this
// tick, processing countries in ascending tag order so that two replays
// fed the same (possibly concurrently-collected) inputs always apply
// them identically.
func applyInputs(state worldstate.WorldState, inputs []PlayerInput, data *gamedata.GameData, mode InputMode) (worldstate.WorldState, []Rejection) {
	sorted := append([]PlayerInput(nil), inputs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Country.Less(sorted[j].Country) })

	var rejections []Rejection
	for _, in := range sorted {
		legal := ai.AvailableCommands(state, in.Country, ai.Omniscient)
		for _, cmd := range in.Commands {
			if !isLegal(legal, cmd) {
				if mode == ModeHuman {
					rejections = append(rejections, Rejection{Country: in.Country, Command: cmd, Err: commands.Simple(commands.ErrInvalidTarget)})
				}
				continue
			}
			next, err := commands.Apply(state, in.Country, cmd, data)
			if err != nil {
				if mode == ModeHuman {
					rejections = append(rejections, Rejection{Country: in.Country, Command: cmd, Err: err})
				}
				continue
			}
			state = next
		}
	}
	return state, rejections
}

// isLegal reports whether cmd matches one of the commands
// ai.AvailableCommands offered this observer this tick. Movement commands
// are compared by kind+army+fleet+destination, DeclareWar/OfferAlliance/
// AcceptAlliance/OfferPeace by kind+target, AssignMerchant by
// kind+tradenode, and any other kind matches on kind alone.
func isLegal(available []commands.Command, cmd commands.Command) bool {
	for _, a := range available {
		if a.Kind != cmd.Kind {
			continue
		}
		switch cmd.Kind {
		case commands.KindMoveArmy, commands.KindMoveFleet:
			if a.Army == cmd.Army && a.Fleet == cmd.Fleet && a.Destination == cmd.Destination {
				return true
			}
		case commands.KindDeclareWar, commands.KindOfferAlliance, commands.KindAcceptAlliance, commands.KindOfferPeace:
			if a.Target == cmd.Target {
				return true
			}
		case commands.KindAssignMerchant:
			if a.TradeNode == cmd.TradeNode {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// tickMovement runs movement and, when a bus is attached, reports every
// arrival as an observer event.
func tickMovement(state worldstate.WorldState, data *gamedata.GameData, atWar func(a, b ids.Tag) bool, bus *replay.Bus) worldstate.WorldState {
	next, arrivals := movement.Tick(state, data, atWar)
	if bus != nil {
		for _, ev := range arrivals {
			country := ids.Tag{}
			if p, ok := next.Provinces.Get(ev.Province); ok && p.Owner != nil {
				country = *p.Owner
			}
			bus.Emit(replay.Event{
				Tick:     state.Tick,
				Category: "arrival",
				Province: ev.Province,
				Country:  country,
			})
		}
	}
	return next
}

// runMonthly runs every monthly sub-system in the strict order design doc
// Section 4.1 step 4 lays out. Truce expiry needs no action here:
// worldstate.DiplomacyState.HasActiveTruce already treats an expired
// truce as inactive, so there is nothing to sweep.
func runMonthly(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	state = economy.Tick(state, data)
	state = trade.PowerTick(state, data)
	state = trade.ValueTick(state, data)
	state = trade.IncomeTick(state, data)
	state = diplomacy.AEDecayTick(state)
	state = diplomacy.CoalitionTick(state)
	state = attrition.Tick(state, func(a, b ids.Tag) bool { return diplomacy.AtWar(state, a, b) })
	state = religion.SpreadTick(state, data)
	state = diplomacy.WarScoreTick(state)
	state = diplomacy.AutoEndStaleWarsTick(state)
	state = diplomacy.ImperialTick(state)
	return state
}
