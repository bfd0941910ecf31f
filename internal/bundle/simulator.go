package bundle

import (
	"fmt"
	"math"

	"yieldcore/internal/config"
	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
)

// Leg is one side of a candidate package, priced and paced ahead of time.
type Leg struct {
	Unit     *model.InventoryUnit
	Price    int64 // standalone dynamic price
	Cost     int64
	Pace     float64 // baseline daily sales pace, scenario-unadjusted
	Velocity model.VelocitySignal
}

func (l Leg) margin() float64 {
	return float64(l.Price - l.Cost)
}

// Simulator runs the dual-scenario day loop: A keeps both legs standalone,
// B bundles them at a discount until one leg runs dry. No randomness; the
// same inputs always produce the same trace.
type Simulator struct {
	cfg config.Engine
}

func NewSimulator(cfg config.Engine) *Simulator {
	return &Simulator{cfg: cfg}
}

// Run walks the days from horizonDays down to departure. Unsold stock in
// either scenario is written off at cost on the final day.
func (s *Simulator) Run(hotel, flight Leg, discount int64, horizonDays int, scenario model.Scenario) (*model.SimulationResult, error) {
	if hotel.Unit == nil || flight.Unit == nil {
		return nil, fmt.Errorf("simulate: both legs need a unit snapshot")
	}
	if discount < 0 {
		return nil, fmt.Errorf("simulate: discount must be non-negative, got %d", discount)
	}
	if horizonDays < 0 {
		horizonDays = 0
	}
	mult := s.cfg.ScenarioMultiplier(scenario)

	aH := float64(hotel.Unit.RemainingStock)
	aF := float64(flight.Unit.RemainingStock)
	bH := aH
	bF := aF

	hPace := hotel.Pace * mult
	fPace := flight.Pace * mult
	pkgPace := s.packagePace(hotel, flight, discount, mult)

	// Organic flight demand displaced by each package sold.
	cannibal := s.cannibalization(flight)

	var profitA, profitB float64
	var packages float64
	trace := make([]model.DayTrace, 0, horizonDays+1)

	for t := horizonDays; t >= 0; t-- {
		if t == 0 {
			profitA -= aH*float64(hotel.Cost) + aF*float64(flight.Cost)
			profitB -= bH*float64(hotel.Cost) + bF*float64(flight.Cost)
		} else {
			// Scenario A: both legs sell standalone.
			soldH := math.Min(hPace, aH)
			soldF := math.Min(fPace, aF)
			aH -= soldH
			aF -= soldF
			profitA += soldH*hotel.margin() + soldF*flight.margin()

			// Scenario B: packages while both legs last, then the
			// survivor reverts to standalone.
			soldPkg := math.Min(pkgPace, math.Min(bH, bF))
			bH -= soldPkg
			bF -= soldPkg
			packages += soldPkg
			profitB += soldPkg * (hotel.margin() + flight.margin() - float64(discount) - cannibal)

			if soldPkg < pkgPace {
				if bH > 0 {
					solo := math.Min(hPace, bH)
					bH -= solo
					profitB += solo * hotel.margin()
				}
				if bF > 0 {
					solo := math.Min(fPace, bF)
					bF -= solo
					profitB += solo * flight.margin()
				}
			}
		}

		trace = append(trace, model.DayTrace{
			Day:          t,
			ProfitA:      int64(math.Round(profitA)),
			ProfitB:      int64(math.Round(profitB)),
			HotelStockA:  round2(aH),
			FlightStockA: round2(aF),
			HotelStockB:  round2(bH),
			FlightStockB: round2(bF),
			DecayFactor:  pricing.DecayFactor(t, horizonDays, s.cfg.DecaySteepness, s.cfg.DecayCliffPosition),
		})
	}

	pa := int64(math.Round(profitA))
	pb := int64(math.Round(profitB))
	return &model.SimulationResult{
		Scenario:     scenario,
		ProfitA:      pa,
		ProfitB:      pb,
		Gain:         pb - pa,
		PackagesSold: int(math.Round(packages)),
		Trace:        trace,
	}, nil
}

// packagePace is the bundled daily pace: the slower leg sets the base, the
// bundle boost and the discount depth push it up. Discount depth is measured
// against the standard discount for the pair so the boost stays comparable
// across price levels.
func (s *Simulator) packagePace(hotel, flight Leg, discount int64, mult float64) float64 {
	base := math.Min(hotel.Pace, flight.Pace) * mult * s.cfg.BundleVelocityBoost
	ref := s.cfg.BundleDiscountRate * float64(hotel.Price+flight.Price)
	if ref < 1 {
		ref = 1
	}
	return base * (1 + float64(discount)/ref)
}

// cannibalization is the organic flight profit lost per package. A flight
// already over-pacing loses proportionally more; without a velocity signal
// a flat base rate applies.
func (s *Simulator) cannibalization(flight Leg) float64 {
	if flight.Velocity.Valid {
		return flight.margin() * math.Max(0, flight.Velocity.Ratio-1)
	}
	return flight.margin() * s.cfg.CannibalizationBaseRate
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
