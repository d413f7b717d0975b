package integrity

import (
	"fmt"

	"github.com/talgya/concordia/internal/worldstate"
)

// ChecksumSchedule decides, from a tick's ordinal and a configured
// interval, whether the orchestrator should compute and record a state
// checksum this tick (design doc Section 4.12: "at configured tick
// frequencies"). interval <= 0 means every tick.
type ChecksumSchedule struct {
	IntervalTicks uint64
}

func (s ChecksumSchedule) Due(tick uint64) bool {
	if s.IntervalTicks <= 1 {
		return true
	}
	return tick%s.IntervalTicks == 0
}

// Checkpoint pairs a tick with the checksum computed for it, the unit
// the orchestrator appends to a rolling log for divergence detection
// against a peer or a prior recorded run.
type Checkpoint struct {
	Tick     uint64
	Checksum uint64
}

// Verify recomputes state's checksum and compares it against an
// expected value recorded earlier (by this process or a peer). A
// mismatch signals a determinism bug per design doc Section 4.12 and
// Section 7's exit-code 3 contract — it is never treated as a
// recoverable command error.
func Verify(state worldstate.WorldState, expected uint64) error {
	actual := state.Checksum()
	if actual != expected {
		return &ChecksumMismatchError{Tick: state.Tick, Expected: expected, Actual: actual}
	}
	return nil
}

// ChecksumMismatchError is fatal: the caller should abort the run rather
// than attempt to continue past a divergence.
type ChecksumMismatchError struct {
	Tick     uint64
	Expected uint64
	Actual   uint64
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch at tick %d: expected %x, got %x", e.Tick, e.Expected, e.Actual)
}
