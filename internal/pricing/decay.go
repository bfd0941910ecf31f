package pricing

import "math"

// DecayFactor maps remaining lead time to a [0,1] multiplier on residual
// inventory value. The curve is a normalized logistic "cliff": it holds near
// 1.0 for most of the horizon and collapses sharply inside the last fraction
// p of it. k controls steepness.
//
// x = leadDays/totalLeadDays; normalization rescales so decay(1) ~= 1 and
// decay(0) = 0.
func DecayFactor(leadDays, totalLeadDays int, k, p float64) float64 {
	if leadDays <= 0 {
		return 0
	}
	if totalLeadDays <= 0 {
		return 1
	}

	x := float64(leadDays) / float64(totalLeadDays)
	decay := 1.0 / (1.0 + math.Exp(-k*(x-p)))

	fHigh := 1.0 / (1.0 + math.Exp(-k*(1.0-p)))
	fLow := 1.0 / (1.0 + math.Exp(-k*(0.0-p)))
	normalized := (decay - fLow) / (fHigh - fLow)

	return math.Max(0, math.Min(1, normalized))
}
