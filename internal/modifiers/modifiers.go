// Package modifiers resolves the Open Question in design doc Section 9:
// the exact stacking shape of per-province "effective" modifiers after
// national-idea, tech, building, and estate contributions combine. Source
// material (see original_source/_INDEX.md) did not survive the distillation
// filter, so per Section 9's own instruction this package implements an
// additive accumulator rather than guessing a multiplicative stacking rule.
package modifiers

import "github.com/talgya/concordia/internal/fixedpoint"

// Kind enumerates the modifier dimensions the kernel accumulates. New kinds
// are added here, never invented ad hoc at a call site.
type Kind uint16

const (
	KindLocalAutonomy Kind = iota
	KindLocalTax
	KindLocalProduction
	KindLocalManpower
	KindLocalUnrest
	KindGoodsProduced
	KindTradeGoodsPrice
	KindTradePower
	KindTradeEfficiency
	KindNationalTaxModifier
	KindArmyMaintenance
	KindFortMaintenance
	KindManpowerRecovery
	KindFireDamage
	KindShockDamage
	KindSiegeAbility
	KindMovementSpeed
	KindDiscipline
)

// Accumulator collects additive contributions per Kind across a month and
// is flushed (read, then reset) at the monthly recompute boundary, per
// Section 9's resolution of the stacking question. Stored inline rather
// than as a map in hot per-province loops would allocate; Accumulator
// trades a small amount of memory for a plain map here because it is only
// ever touched at month boundaries, never inside the daily tick.
type Accumulator struct {
	values map[Kind]fixedpoint.Fixed
}

func NewAccumulator() *Accumulator {
	return &Accumulator{values: make(map[Kind]fixedpoint.Fixed)}
}

// Add stacks delta onto kind additively — the only stacking rule Section 9
// sanctions in the absence of source confirmation for anything richer.
func (a *Accumulator) Add(kind Kind, delta fixedpoint.Fixed) {
	a.values[kind] = a.values[kind].Add(delta)
}

// Get returns the accumulated value for kind, or zero if untouched.
func (a *Accumulator) Get(kind Kind) fixedpoint.Fixed {
	return a.values[kind]
}

// Flush returns a snapshot of all accumulated values and clears the
// accumulator for the next month, per the monthly-recompute-boundary rule.
func (a *Accumulator) Flush() map[Kind]fixedpoint.Fixed {
	out := a.values
	a.values = make(map[Kind]fixedpoint.Fixed)
	return out
}

// Clone deep-copies the accumulator, needed so WorldState's persistent
// per-province containers can be cloned without aliasing mutable maps.
func (a *Accumulator) Clone() *Accumulator {
	cp := make(map[Kind]fixedpoint.Fixed, len(a.values))
	for k, v := range a.values {
		cp[k] = v
	}
	return &Accumulator{values: cp}
}
