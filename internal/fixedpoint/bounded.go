package fixedpoint

// Bounded wraps an integer and clamps on every write. Used for stability
// (-3..+3), prestige (-100..+100), war score (0..100), legitimacy, army
// tradition, imperial authority, mandate, meritocracy, aggressive expansion.
//
// The zero value is not usable directly — construct with NewBounded so the
// bounds are always recorded alongside the value.
type Bounded struct {
	min, max int64
	val      int64
}

// NewBounded constructs a Bounded clamped into [min, max] at start.
func NewBounded(min, max, start int64) Bounded {
	b := Bounded{min: min, max: max}
	b.Set(start)
	return b
}

func (b Bounded) Value() int64 { return b.val }
func (b Bounded) Min() int64   { return b.min }
func (b Bounded) Max() int64   { return b.max }

// Set clamps n into [min, max] and stores it, returning the updated value.
func (b *Bounded) Set(n int64) Bounded {
	if n < b.min {
		n = b.min
	}
	if n > b.max {
		n = b.max
	}
	b.val = n
	return *b
}

// Add applies a delta and re-clamps.
func (b *Bounded) Add(delta int64) Bounded {
	return b.Set(b.val + delta)
}

func (b Bounded) AtMax() bool { return b.val == b.max }
func (b Bounded) AtMin() bool { return b.val == b.min }
