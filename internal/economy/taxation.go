package economy

import (
	"sort"

	"github.com/klauspost/cpuid/v2"

	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/gamedata"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/modifiers"
	"github.com/talgya/concordia/internal/worldstate"
)

// Tier is a detected SIMD width the taxation batch kernel lays its lanes
// out for. cpuid only ever changes batchWidth/unrolling below — the
// arithmetic in taxLane is identical on every tier, which is what the
// golden-vs-batch equality tests in design doc Section 8 check.
type Tier uint8

const (
	TierScalar Tier = iota
	TierSSE41
	TierAVX2
	TierAVX2FMA
)

// DetectTier inspects the running CPU once; callers may override it (e.g.
// forcing TierScalar in a determinism test) by calling TaxationBatch
// directly instead of TaxationTick.
func DetectTier() Tier {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3):
		return TierAVX2FMA
	case cpuid.CPU.Supports(cpuid.AVX2):
		return TierAVX2
	case cpuid.CPU.Supports(cpuid.SSE41):
		return TierSSE41
	default:
		return TierScalar
	}
}

func (t Tier) batchWidth() int {
	switch t {
	case TierAVX2FMA, TierAVX2:
		return 8
	case TierSSE41:
		return 4
	default:
		return 1
	}
}

// TaxationTick computes local tax for every province and deposits it into
// its owning country's treasury, grouped by owner and processed in
// SIMD-width batches per design doc Section 4.9's dispatch discipline.
func TaxationTick(state worldstate.WorldState, data *gamedata.GameData) worldstate.WorldState {
	return TaxationBatch(state, data, DetectTier())
}

// TaxationBatch is TaxationTick parameterised on an explicit tier, exposed
// so tests can force TierScalar and compare against a forced wider tier
// for bit-identical results.
func TaxationBatch(state worldstate.WorldState, data *gamedata.GameData, tier Tier) worldstate.WorldState {
	byOwner := make(map[ids.Tag][]taxInput)
	state.Provinces.Ascend(func(id ids.ProvinceID, p *worldstate.ProvinceState) bool {
		if p.Owner == nil {
			return true
		}
		localEfficiency := fixedpoint.Mod32(0)
		if p.Modifiers != nil {
			localEfficiency = fixedpoint.M32FromInt(int32(p.Modifiers.Get(modifiers.KindLocalTax).Int()))
		}
		byOwner[*p.Owner] = append(byOwner[*p.Owner], taxInput{
			baseTax:         p.BaseTax,
			localEfficiency: localEfficiency,
			autonomy:        p.Autonomy,
		})
		return true
	})

	var owners []ids.Tag
	for o := range byOwner {
		owners = append(owners, o)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].Less(owners[j]) })

	width := tier.batchWidth()

	for _, owner := range owners {
		c, ok := state.Countries.Get(owner)
		if !ok {
			continue
		}
		nationalMod := fixedpoint.Mod32(0)
		if c.Modifiers != nil {
			nationalMod = fixedpoint.M32FromInt(int32(c.Modifiers.Get(modifiers.KindNationalTaxModifier).Int()))
		}

		inputs := byOwner[owner]
		var total fixedpoint.Mod32
		for i := 0; i < len(inputs); i += width {
			end := i + width
			if end > len(inputs) {
				end = len(inputs)
			}
			for _, in := range inputs[i:end] {
				total = total.Add(taxLane(in, nationalMod))
			}
		}

		nc := c.Clone()
		nc.Treasury = nc.Treasury.Add(total.ToFixed())
		state = state.WithCountry(owner, nc)
	}
	return state
}

type taxInput struct {
	baseTax         fixedpoint.Mod32
	localEfficiency fixedpoint.Mod32
	autonomy        fixedpoint.Mod32
}

// taxLane is the golden scalar kernel: tax = (base_tax + local_efficiency)
// x (1 - autonomy) x (1 + country_tax_modifier), design doc Section 4.9.
// Every batch width calls exactly this function per lane — widening the
// batch only changes how many lanes are grouped before the result is
// folded into total, never the per-lane arithmetic.
func taxLane(in taxInput, nationalMod fixedpoint.Mod32) fixedpoint.Mod32 {
	one := fixedpoint.M32FromInt(1)
	gross := in.baseTax.Add(in.localEfficiency)
	afterAutonomy := gross.Mul(one.Sub(in.autonomy))
	return afterAutonomy.Mul(one.Add(nationalMod))
}
