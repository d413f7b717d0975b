// Package fixedpoint provides the two deterministic scaled-integer numeric
// types used throughout the simulation kernel. No floating point value ever
// crosses a kernel boundary: every accumulation, rate, and stat is one of
// the types declared here, so that the same inputs always produce the same
// bits regardless of platform, compiler, or thread count.
// See design doc Section 3 (fixed-point numerics).
package fixedpoint

import "fmt"

// Scale is the common fixed-point scale factor: both Fixed and Mod32 use
// four decimal digits of precision (1/10000).
const Scale = 10000

// Fixed is a signed 64-bit integer scaled by Scale. Range is roughly
// +/-9.2e14 with a precision of 1e-4. Used for treasury, manpower, and any
// other quantity where repeated accumulation could overflow a 32-bit lane.
type Fixed int64

// FromInt builds a Fixed from a whole number.
func FromInt(n int64) Fixed { return Fixed(n * Scale) }

// FromMilli builds a Fixed from a value already scaled by 1000 (milli-units),
// which is how many of the spec's percentages are most naturally expressed.
func FromMilli(milli int64) Fixed { return Fixed(milli * (Scale / 1000)) }

// Int truncates toward zero to a whole number.
func (f Fixed) Int() int64 { return int64(f) / Scale }

// Add, Sub are native integer operations; overflow is the caller's concern
// and is not detected here (it wraps like any int64 arithmetic).
func (f Fixed) Add(g Fixed) Fixed { return f + g }
func (f Fixed) Sub(g Fixed) Fixed { return f - g }
func (f Fixed) Neg() Fixed        { return -f }

// Mul always widens the product to 128 bits with the hand-rolled mul64 (no
// math/big) and rescales by truncated 128-by-64 division, the "widen,
// rescale, truncate" rule.
func (f Fixed) Mul(g Fixed) Fixed {
	hi, lo := mul64(int64(f), int64(g))
	return Fixed(div128(hi, lo, Scale))
}

// Div scales the numerator up before dividing so the quotient keeps its
// fractional precision instead of truncating it away first.
func (f Fixed) Div(g Fixed) Fixed {
	if g == 0 {
		return 0
	}
	hi, lo := mul64(int64(f), Scale)
	return Fixed(div128(hi, lo, int64(g)))
}

// MulInt multiplies by a plain integer scalar (no rescale needed).
func (f Fixed) MulInt(n int64) Fixed { return f * Fixed(n) }

// MulFrac multiplies by a ratio expressed as num/den, both plain integers,
// e.g. MulFrac(1, 5) for "times 0.2" without ever materialising 0.2.
func (f Fixed) MulFrac(num, den int64) Fixed {
	hi, lo := mul64(int64(f), num)
	if den == 0 {
		return 0
	}
	return Fixed(div128(hi, lo, den))
}

func (f Fixed) Cmp(g Fixed) int {
	switch {
	case f < g:
		return -1
	case f > g:
		return 1
	default:
		return 0
	}
}

func (f Fixed) IsNeg() bool { return f < 0 }

func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Clamp returns f restricted to [lo, hi].
func (f Fixed) Clamp(lo, hi Fixed) Fixed {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

func (f Fixed) String() string {
	whole := int64(f) / Scale
	frac := int64(f) % Scale
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%04d", whole, frac)
}

// Mod32 is a signed 32-bit integer scaled by Scale, range roughly
// +/-2.1e5. Used for province-local stats, modifiers, and batched SIMD
// kernels (8 lanes in 256-bit SIMD, 16 in 512-bit).
type Mod32 int32

func M32FromInt(n int32) Mod32 { return Mod32(int64(n) * Scale) }

func (m Mod32) Int() int32 { return int32(int64(m) / Scale) }

func (m Mod32) Add(n Mod32) Mod32 { return m + n }
func (m Mod32) Sub(n Mod32) Mod32 { return m - n }

// Mul widens to 64 bits, rescales by truncated division — no overflow risk
// given Mod32's narrow range.
func (m Mod32) Mul(n Mod32) Mod32 {
	return Mod32(int64(m) * int64(n) / Scale)
}

func (m Mod32) Div(n Mod32) Mod32 {
	if n == 0 {
		return 0
	}
	return Mod32(int64(m) * Scale / int64(n))
}

func (m Mod32) MulFrac(num, den int32) Mod32 {
	if den == 0 {
		return 0
	}
	return Mod32(int64(m) * int64(num) / int64(den))
}

func (m Mod32) Clamp(lo, hi Mod32) Mod32 {
	if m < lo {
		return lo
	}
	if m > hi {
		return hi
	}
	return m
}

// ToFixed widens a Mod32 into a Fixed; both share the same scale factor.
func (m Mod32) ToFixed() Fixed { return Fixed(int64(m)) }

func (m Mod32) String() string {
	whole := int64(m) / Scale
	frac := int64(m) % Scale
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%04d", whole, frac)
}

// mul64 performs a 64x64 -> 128 bit signed multiply, returning (hi, lo) such
// that the true product is hi*2^64 + lo (lo interpreted as unsigned).
func mul64(a, b int64) (hi, lo int64) {
	neg := false
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		ua = uint64(-a)
		neg = !neg
	}
	if b < 0 {
		ub = uint64(-b)
		neg = !neg
	}
	hiU, loU := umul64(ua, ub)
	if neg {
		// two's complement negate of the 128-bit pair
		loU = ^loU + 1
		hiU = ^hiU
		if loU == 0 {
			hiU++
		}
	}
	return int64(hiU), int64(loU)
}

func umul64(a, b uint64) (hi, lo uint64) {
	const mask = 0xffffffff
	aLo, aHi := a&mask, a>>32
	bLo, bHi := b&mask, b>>32

	t := aLo * bLo
	w0 := t & mask
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	hi = aHi*bHi + w2 + k
	lo = (t << 32) | w0
	return hi, lo
}

// div128 divides the signed 128-bit value (hi*2^64+lo) by a non-zero int64
// divisor, truncating toward zero. Only the quotient ranges this package
// actually produces (results that fit back in 64 bits) are supported.
func div128(hi, lo int64, divisor int64) int64 {
	if divisor == 0 {
		return 0
	}
	neg := false
	uhi, ulo := uint64(hi), uint64(lo)
	if hi < 0 {
		ulo = ^ulo + 1
		uhi = ^uhi
		if ulo == 0 {
			uhi++
		}
		neg = !neg
	}
	ud := uint64(divisor)
	if divisor < 0 {
		ud = uint64(-divisor)
		neg = !neg
	}
	q := udiv128(uhi, ulo, ud)
	if neg {
		return -int64(q)
	}
	return int64(q)
}

// udiv128 divides an unsigned 128-bit value by a 64-bit divisor using
// long division, one bit at a time — simple, deterministic, and entirely
// integer arithmetic with no hardware-specific behaviour.
func udiv128(hi, lo, divisor uint64) uint64 {
	if hi == 0 {
		return lo / divisor
	}
	var rem uint64
	var quot uint64
	for i := 127; i >= 0; i-- {
		rem <<= 1
		var bit uint64
		if i >= 64 {
			bit = (hi >> uint(i-64)) & 1
		} else {
			bit = (lo >> uint(i)) & 1
		}
		rem |= bit
		quot <<= 1
		if rem >= divisor {
			rem -= divisor
			quot |= 1
		}
	}
	return quot
}
