package bundle

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"yieldcore/internal/config"
	"yieldcore/internal/forecast"
	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
)

// Optimizer searches hotel/flight pairings sharing a departure date,
// simulates each candidate, and resolves conflicts greedily by gain.
type Optimizer struct {
	cfg        config.Engine
	calculator *pricing.Calculator
	forecaster *forecast.Engine
	simulator  *Simulator
}

func NewOptimizer(cfg config.Engine, calc *pricing.Calculator, fc *forecast.Engine) *Optimizer {
	return &Optimizer{
		cfg:        cfg,
		calculator: calc,
		forecaster: fc,
		simulator:  NewSimulator(cfg),
	}
}

// pricedUnit carries the per-unit inputs every candidate needs.
type pricedUnit struct {
	unit     *model.InventoryUnit
	leg      Leg
	urgency  float64
	forecast model.ForecastResult
}

type candidate struct {
	hotel    *pricedUnit
	flight   *pricedUnit
	discount int64
	result   *model.SimulationResult
}

// Recommend evaluates every same-departure hotel/flight pair under the given
// scenario and returns a portfolio of bundle and standalone recommendations.
// A unit that fails to price is skipped with a warning, not fatal.
func (o *Optimizer) Recommend(units []*model.InventoryUnit, scenario model.Scenario, ref time.Time) (*model.StrategyReport, error) {
	byDate := make(map[string]*struct{ hotels, flights []*pricedUnit })
	var all []*pricedUnit

	for _, u := range units {
		pu, err := o.prepare(u, scenario, ref)
		if err != nil {
			log.Printf("[WARN] skipping unit %d (%s): %v", u.ID, u.Name, err)
			continue
		}
		all = append(all, pu)

		if u.DepartureDate == nil {
			continue
		}
		key := u.DepartureDate.Format("2006-01-02")
		g := byDate[key]
		if g == nil {
			g = &struct{ hotels, flights []*pricedUnit }{}
			byDate[key] = g
		}
		switch u.Kind {
		case model.KindHotel:
			g.hotels = append(g.hotels, pu)
		case model.KindFlight:
			g.flights = append(g.flights, pu)
		}
	}

	// Best-gain flight per hotel, ties broken by lower flight ID so the
	// outcome is independent of input order.
	best := make(map[int64]*candidate)
	for _, g := range byDate {
		for _, h := range g.hotels {
			for _, f := range g.flights {
				c, err := o.simulatePair(h, f, scenario, ref)
				if err != nil {
					log.Printf("[WARN] pair %d/%d simulation failed: %v", h.unit.ID, f.unit.ID, err)
					continue
				}
				cur := best[h.unit.ID]
				if cur == nil ||
					c.result.Gain > cur.result.Gain ||
					(c.result.Gain == cur.result.Gain && f.unit.ID < cur.flight.unit.ID) {
					best[h.unit.ID] = c
				}
			}
		}
	}

	ordered := make([]*candidate, 0, len(best))
	for _, c := range best {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].result.Gain != ordered[j].result.Gain {
			return ordered[i].result.Gain > ordered[j].result.Gain
		}
		return ordered[i].hotel.unit.ID < ordered[j].hotel.unit.ID
	})

	claimed := make(map[int64]bool)
	paired := make(map[int64]*candidate) // keyed by both unit IDs
	var recs []model.Recommendation

	for _, c := range ordered {
		if c.result.Gain <= o.cfg.BundleGainThreshold || claimed[c.flight.unit.ID] {
			continue
		}
		claimed[c.flight.unit.ID] = true
		paired[c.hotel.unit.ID] = c
		paired[c.flight.unit.ID] = c
		recs = append(recs, o.bundleRecommendation(c), o.partnerRecommendation(c))
	}

	var totalStandalone, totalOptimized int64
	for _, pu := range all {
		if c, ok := paired[pu.unit.ID]; ok {
			// Count the pair once, from the hotel side.
			if pu.unit.ID == c.hotel.unit.ID {
				totalStandalone += c.result.ProfitA
				totalOptimized += c.result.ProfitB
			}
			continue
		}
		totalStandalone += pu.forecast.ExpectedProfit
		totalOptimized += pu.forecast.ExpectedProfit
		recs = append(recs, o.standaloneRecommendation(pu))
	}

	return &model.StrategyReport{
		Scenario:              scenario,
		Recommendations:       recs,
		TotalStandaloneProfit: totalStandalone,
		TotalOptimizedProfit:  totalOptimized,
		Uplift:                totalOptimized - totalStandalone,
	}, nil
}

func (o *Optimizer) prepare(u *model.InventoryUnit, scenario model.Scenario, ref time.Time) (*pricedUnit, error) {
	priced, err := o.calculator.Price(u, ref, pricing.StrategyRuleBased)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	cost := int64(math.Round(float64(u.BasePrice) * o.cfg.CostRatio))

	pace, ok, err := o.forecaster.BaselinePace(u.ID, ref)
	if err != nil {
		return nil, fmt.Errorf("baseline pace: %w", err)
	}
	leadDays, hasLead := u.LeadDays(ref)
	if !ok {
		pace = forecast.TheoreticalPace(u.TotalStock, leadDays)
	}

	fc, err := o.forecaster.Forecast(u, ref, priced.FinalPrice, cost)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	return &pricedUnit{
		unit: u,
		leg: Leg{
			Unit:     u,
			Price:    priced.FinalPrice,
			Cost:     cost,
			Pace:     pace,
			Velocity: priced.VelocityRatio,
		},
		urgency:  UrgencyScore(u.RemainingStock, u.TotalStock, leadDays, hasLead),
		forecast: fc[scenario],
	}, nil
}

func (o *Optimizer) simulatePair(h, f *pricedUnit, scenario model.Scenario, ref time.Time) (*candidate, error) {
	discount := pairDiscount(h.leg.Price, f.leg.Price, o.cfg)
	horizon, hasLead := h.unit.LeadDays(ref)
	if !hasLead || horizon < 0 {
		horizon = 0
	}
	res, err := o.simulator.Run(h.leg, f.leg, discount, horizon, scenario)
	if err != nil {
		return nil, err
	}
	return &candidate{hotel: h, flight: f, discount: discount, result: res}, nil
}

func (o *Optimizer) bundleRecommendation(c *candidate) model.Recommendation {
	h, f := c.hotel, c.flight
	maxSets := h.unit.RemainingStock
	if f.unit.RemainingStock < maxSets {
		maxSets = f.unit.RemainingStock
	}
	score := StrategyScore(h.urgency, f.unit.RemainingStock, f.unit.TotalStock)
	reason := fmt.Sprintf(
		"bundle with %s lifts projected profit by %d yen (%d packages); hotel urgency %.2f",
		f.unit.Name, c.result.Gain, c.result.PackagesSold, h.urgency)
	return model.Recommendation{
		UnitID:        h.unit.ID,
		UnitName:      h.unit.Name,
		Kind:          h.unit.Kind,
		Strategy:      model.RecommendBundle,
		PartnerID:     f.unit.ID,
		PartnerName:   f.unit.Name,
		DepartureDate: h.unit.DepartureDate,
		BundlePrice:   h.leg.Price + f.leg.Price - c.discount,
		Discount:      c.discount,
		MaxSets:       maxSets,
		Gain:          c.result.Gain,
		Urgency:       h.urgency,
		StrategyScore: score,
		Reason:        reason,
	}
}

func (o *Optimizer) partnerRecommendation(c *candidate) model.Recommendation {
	h, f := c.hotel, c.flight
	return model.Recommendation{
		UnitID:        f.unit.ID,
		UnitName:      f.unit.Name,
		Kind:          f.unit.Kind,
		Strategy:      model.RecommendBundlePartner,
		PartnerID:     h.unit.ID,
		PartnerName:   h.unit.Name,
		DepartureDate: f.unit.DepartureDate,
		Gain:          c.result.Gain,
		Urgency:       f.urgency,
		Reason:        fmt.Sprintf("reserved as bundle partner for %s", h.unit.Name),
	}
}

func (o *Optimizer) standaloneRecommendation(pu *pricedUnit) model.Recommendation {
	reason := fmt.Sprintf("standalone sales on track, %s", describePace(pu.leg.Pace))
	if pu.urgency > 0.5 {
		reason = fmt.Sprintf("no bundle partner clears the gain threshold despite urgency %.2f, %s",
			pu.urgency, describePace(pu.leg.Pace))
	}
	return model.Recommendation{
		UnitID:        pu.unit.ID,
		UnitName:      pu.unit.Name,
		Kind:          pu.unit.Kind,
		Strategy:      model.RecommendStandalone,
		DepartureDate: pu.unit.DepartureDate,
		Urgency:       pu.urgency,
		Reason:        reason,
	}
}

// RankPackages quotes every hotel/flight combination as a cross-sell offer
// and ranks them by strategy score. All pricing is rule-based.
func (o *Optimizer) RankPackages(units []*model.InventoryUnit, ref time.Time) ([]model.PackageQuote, error) {
	var hotels, flights []*model.InventoryUnit
	for _, u := range units {
		switch u.Kind {
		case model.KindHotel:
			hotels = append(hotels, u)
		case model.KindFlight:
			flights = append(flights, u)
		}
	}

	priced := make(map[int64]*model.PricingResult, len(units))
	for _, u := range units {
		p, err := o.calculator.Price(u, ref, pricing.StrategyRuleBased)
		if err != nil {
			return nil, fmt.Errorf("price unit %d: %w", u.ID, err)
		}
		priced[u.ID] = p
	}

	var quotes []model.PackageQuote
	for _, f := range flights {
		fp := priced[f.ID]
		for _, h := range hotels {
			hp := priced[h.ID]
			leadDays, hasLead := h.LeadDays(ref)
			urgency := UrgencyScore(h.RemainingStock, h.TotalStock, leadDays, hasLead)
			discount := BundleDiscount(h.BasePrice, hp.FinalPrice, urgency, o.cfg.CurrencyStep)
			sum := hp.FinalPrice + fp.FinalPrice
			score := StrategyScore(urgency, f.RemainingStock, f.TotalStock)
			quotes = append(quotes, model.PackageQuote{
				FlightID:          f.ID,
				FlightName:        f.Name,
				FlightBase:        f.BasePrice,
				FlightPrice:       fp.FinalPrice,
				FlightVelocity:    fp.VelocityRatio,
				FlightVelocityAdj: fp.VelocityAdjustment,
				HotelID:           h.ID,
				HotelName:         h.Name,
				HotelBase:         h.BasePrice,
				HotelPrice:        hp.FinalPrice,
				HotelVelocity:     hp.VelocityRatio,
				HotelVelocityAdj:  hp.VelocityAdjustment,
				SumDynamicPrice:   sum,
				HotelUrgency:      urgency,
				BundleDiscount:    discount,
				FinalPackagePrice: sum + discount,
				StrategyScore:     score,
				Reason: fmt.Sprintf("hotel urgency %.2f, flight %d%% booked",
					urgency, percentBooked(f.RemainingStock, f.TotalStock)),
			})
		}
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].StrategyScore != quotes[j].StrategyScore {
			return quotes[i].StrategyScore > quotes[j].StrategyScore
		}
		if quotes[i].FlightID != quotes[j].FlightID {
			return quotes[i].FlightID < quotes[j].FlightID
		}
		return quotes[i].HotelID < quotes[j].HotelID
	})
	for i := range quotes {
		quotes[i].Rank = i + 1
	}
	return quotes, nil
}

func percentBooked(remaining, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(remaining)/float64(total)) * 100))
}
