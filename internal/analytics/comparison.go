package analytics

import "math"

// ChangePercent computes the signed period-over-period percentage
// change, rounded to two decimals. A zero previous value yields 100 when
// the current value is positive and 0 otherwise. The function is pure
// and total.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
