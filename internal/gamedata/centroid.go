package gamedata

// Adapted from the teacher's internal/world/hex.go axial-coordinate model:
// where the teacher derived a hex grid position for terrain generation, the
// kernel instead needs a precomputed planar centroid per province purely to
// drive the A* admissible heuristic (design doc Section 4.3). Coordinates
// and the distance function stay entirely in integer fixed-point — no
// hardware float, no transcendental call — per design doc Section 3/9
// ("transcendental functions are forbidden inside the kernel; any curve
// uses table lookup").

// Distance returns the admissible Euclidean distance between two province
// centroids, in the same fixed-point units as Centroid.X/Y, computed with
// an integer-only Newton-Raphson square root (isqrt) so the result is
// identical on every platform and every run — a deterministic stand-in for
// sqrt, which the kernel may not call directly.
func Distance(a, b Centroid) int64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	sq := dx*dx + dy*dy
	return isqrt(sq)
}

// isqrt computes floor(sqrt(n)) for n >= 0 by integer Newton-Raphson
// refinement seeded with n itself. It stops as soon as the estimate stops
// decreasing, with a cap of 40 iterations. Every step is integer
// arithmetic, so the output is bit-identical across platforms.
func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	if n == 1 {
		return 1
	}
	x := n
	y := (x + 1) / 2
	for i := 0; i < 40 && y < x; i++ {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
