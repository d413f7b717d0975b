// Package replay defines the wire shapes a tick's inputs serialise to,
// the observer pub-sub interface external collaborators subscribe to,
// and an append-only log (command history plus periodic snapshots) that
// together let a recorded run be replayed byte-for-byte. See design doc
// Section 6.
package replay

import (
	"github.com/google/uuid"

	"github.com/talgya/concordia/internal/commands"
	"github.com/talgya/concordia/internal/ids"
)

// PlayerInputs is every command one country issued in a single tick.
type PlayerInputs struct {
	Country  ids.Tag
	Commands []commands.Command
}

// TickInputs is everything needed to replay one tick deterministically
// given the world state at the start of it: which countries issued
// which commands, in the order they'll be applied.
type TickInputs struct {
	Tick    uint64
	Players []PlayerInputs
}

// Header is written once at the start of a replay file/stream: the
// manifest hash ties the replay to an exact game-data build, the
// initial-state hash lets a reader verify it's starting from the state
// the recording assumes (design doc Section 6).
type Header struct {
	ReplayID          uuid.UUID
	ManifestHash      string
	SimulationVersion string
	InitialStateHash  uint64
}

// Event is a notable occurrence the kernel reports to observers,
// mirroring the teacher's own Event shape (internal/engine.Event) but
// keyed to kernel entities instead of settlements/agents. StepWorld emits
// one "arrival" event per completed movement hop; battles, sieges and
// wars are not reported as events.
type Event struct {
	Tick     uint64
	Category string
	Province ids.ProvinceID
	Country  ids.Tag
	Message  string
}
