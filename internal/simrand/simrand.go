// Package simrand provides the kernel's deterministic random number
// generation. A single u64 seed lives in WorldState; per-subsystem streams
// are derived by mixing that seed with (tick, subsystem-tag) through a
// splitmix64 counter. No thread-local or OS RNG is ever consulted here —
// see design doc Section 3 (RNG) and Section 9 ("Global mutable state").
//
// Replaces the teacher's random.org-backed internal/entropy package, whose
// network/crypto-rand sourcing is the exact non-determinism the kernel
// forbids; see DESIGN.md for the full justification.
package simrand

// Stream is a counter-based deterministic generator. Two Streams derived
// from the same (seed, tick, tag) always produce the same sequence,
// independent of thread scheduling, host, or wall-clock time.
type Stream struct {
	state  uint64
	drawn  uint64
}

// Subsystem tags mix into the seed so that, say, combat dice and siege dice
// drawn on the same tick never share a stream.
type SubsystemTag uint64

const (
	TagMovement SubsystemTag = iota + 1
	TagLandCombat
	TagNavalCombat
	TagSiege
	TagAttrition
	TagDiplomacy
	TagTrade
	TagAI
	TagReligion
)

// Derive mixes seed, tick, and tag into a fresh, independent stream.
func Derive(seed uint64, tick uint64, tag SubsystemTag) *Stream {
	s := &Stream{state: mixSeed(seed, tick, uint64(tag))}
	return s
}

// DeriveKeyed further mixes in an entity key (e.g. a province or army id)
// so that per-entity draws within one subsystem/tick are independent and
// ordered only by the caller's own iteration order over sorted keys.
func DeriveKeyed(seed uint64, tick uint64, tag SubsystemTag, key uint64) *Stream {
	s := &Stream{state: mixSeed(seed, tick, uint64(tag)^(key*0x9E3779B97F4A7C15))}
	return s
}

func mixSeed(seed, tick, tag uint64) uint64 {
	x := seed
	x = splitmix(x + tick)
	x = splitmix(x + tag)
	return x
}

// splitmix64 — Vigna's public-domain generator. One deterministic step.
func splitmix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return z
}

// Next advances the stream and returns the next raw 64-bit value.
func (s *Stream) Next() uint64 {
	s.state = splitmix(s.state)
	s.drawn++
	return s.state
}

// Drawn reports how many values have been pulled from this stream, useful
// for checksumming/diagnostics but never consumed by kernel logic itself.
func (s *Stream) Drawn() uint64 { return s.drawn }

// IntRange returns a deterministic integer in [lo, hi] inclusive.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	span := uint64(hi - lo + 1)
	return lo + int(s.Next()%span)
}

// Dice rolls a 1..sides die, matching the spec's "single random roll
// (1..10)" / "(1..14)" phrasing for combat and siege dice.
func (s *Stream) Dice(sides int) int {
	return s.IntRange(1, sides)
}

// Bool returns a deterministic coin flip.
func (s *Stream) Bool() bool {
	return s.Next()&1 == 1
}
