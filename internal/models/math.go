package models

import "math"

// SafeDiv returns n/d, or 0 when d is zero or the result is not finite.
func SafeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	r := n / d
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// SafePercent returns n/d*100 when d is positive, else 0.
func SafePercent(n, d float64) float64 {
	if d <= 0 {
		return 0
	}
	return SafeDiv(n, d) * 100
}
