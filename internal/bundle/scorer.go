// Package bundle scores hotel/flight pairings, simulates bundle-versus-
// standalone outcomes day by day, and assembles portfolio recommendations.
package bundle

import (
	"fmt"
	"math"

	"yieldcore/internal/config"
)

// UrgencyScore measures how badly a unit needs help moving, in [0, 1].
// Time pressure dominates (60%) with surplus stock contributing the rest.
// A unit with no departure date has no time pressure.
func UrgencyScore(remaining, total, leadDays int, hasLead bool) float64 {
	timeUrgency := 0.0
	if hasLead && leadDays >= 0 {
		timeUrgency = math.Max(0, 1-float64(leadDays)/30.0)
	}
	surplus := 0.0
	if total > 0 {
		surplus = float64(remaining) / float64(total)
	}
	score := 0.6*timeUrgency + 0.4*surplus
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*10000) / 10000
}

// BundleDiscount returns the discount to shave off a hotel+flight package,
// as a negative delta on the summed dynamic price. The urgency-scaled amount
// is capped so the hotel never gives away more than 30% of its dynamic price.
func BundleDiscount(hotelBase, hotelDynamic int64, urgency float64, step int64) int64 {
	if step <= 0 {
		step = 1
	}
	want := int64(math.Round(float64(hotelBase)*0.25*urgency/float64(step))) * step
	ceiling := int64(math.Floor(float64(hotelDynamic)*0.30/float64(step))) * step
	d := want
	if ceiling < d {
		d = ceiling
	}
	if d < 0 {
		d = 0
	}
	return -d
}

// StrategyScore ranks a pairing by hotel urgency and flight fill rate.
func StrategyScore(hotelUrgency float64, flightRemaining, flightTotal int) float64 {
	fill := 0.0
	if flightTotal > 0 {
		fill = 1 - float64(flightRemaining)/float64(flightTotal)
	}
	score := 0.7*hotelUrgency + 0.3*fill
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*10000) / 10000
}

// pairDiscount is the standard discount for a hotel/flight pair at the
// given prices, rounded to the currency step. Always non-negative.
func pairDiscount(hotelPrice, flightPrice int64, cfg config.Engine) int64 {
	step := cfg.CurrencyStep
	if step <= 0 {
		step = 1
	}
	d := int64(math.Round(cfg.BundleDiscountRate*float64(hotelPrice+flightPrice)/float64(step))) * step
	if d < 0 {
		d = 0
	}
	return d
}

// describePace turns a daily pace into a human explanation fragment.
func describePace(pace float64) string {
	switch {
	case pace <= 0:
		return "no recent sales"
	case pace < 0.5:
		return fmt.Sprintf("slow pace (%.2f/day)", pace)
	case pace < 2:
		return fmt.Sprintf("steady pace (%.2f/day)", pace)
	default:
		return fmt.Sprintf("strong pace (%.2f/day)", pace)
	}
}
