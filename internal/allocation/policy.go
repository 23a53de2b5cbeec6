package allocation

import "math"

// The source systems absorb measurement anomalies instead of rejecting them.
// Each clamp is a named policy so the behavior stays visible and testable.

// ClampNegativeToZero treats a negative quantity as zero. A current reading
// below the previous one is a data-entry anomaly, not an error.
func ClampNegativeToZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// MinimumDivisorOne floors a proration denominator at one so an all-vacant
// period divides by one instead of failing.
func MinimumDivisorOne(total int) int {
	if total < 1 {
		return 1
	}
	return total
}

// CeilToWholeUnit rounds a monetary amount up to the next whole currency
// unit. Always up, never down: the pool is never short-charged.
func CeilToWholeUnit(v float64) float64 {
	return math.Ceil(v)
}
