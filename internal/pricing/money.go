package pricing

import "math"

// round2 rounds to cents, half away from zero.
func round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Round(x*100) / 100
}

// nonNeg clamps garbage and negative amounts to zero.
func nonNeg(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

func nonNegInt(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// sum2 adds already-rounded components and rounds the result again.
func sum2(parts ...float64) float64 {
	total := 0.0
	for _, p := range parts {
		total += round2(p)
	}
	return round2(total)
}
