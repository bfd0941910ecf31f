// Package pricing converts an inventory snapshot and a velocity signal into
// a bounded, fully explained price. Every adjustment is labeled and the
// breakdown is emitted as an ordered waterfall for downstream display.
package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"yieldcore/internal/config"
	"yieldcore/internal/forecast"
	"yieldcore/internal/model"
	"yieldcore/internal/velocity"
)

// Strategy selects the pricing model.
type Strategy string

const (
	// StrategyRuleBased is the additive band model: scarcity + lead time +
	// velocity brake, all as percentages of base price.
	StrategyRuleBased Strategy = "rule_based"
	// StrategyElasticity is the multiplicative model: pace ratio raised to
	// 1/elasticity, then scaled by the time-decay cliff.
	StrategyElasticity Strategy = "elasticity"
)

// Calculator prices units against a configuration.
type Calculator struct {
	cfg        config.Engine
	velocity   *velocity.Engine
	forecaster *forecast.Engine
	events     forecast.EventWindow
}

func NewCalculator(cfg config.Engine, vel *velocity.Engine, fc *forecast.Engine, events forecast.EventWindow) *Calculator {
	return &Calculator{cfg: cfg, velocity: vel, forecaster: fc, events: events}
}

// Price computes a PricingResult with the calculator's configuration.
func (c *Calculator) Price(u *model.InventoryUnit, ref time.Time, strategy Strategy) (*model.PricingResult, error) {
	return c.PriceWithConfig(u, ref, strategy, c.cfg)
}

// PriceWithConfig computes a PricingResult with per-call knob overrides.
// It is a pure function of (snapshot, event window, config, reference time);
// it performs no writes.
func (c *Calculator) PriceWithConfig(u *model.InventoryUnit, ref time.Time, strategy Strategy, cfg config.Engine) (*model.PricingResult, error) {
	switch strategy {
	case StrategyElasticity:
		return c.priceElasticity(u, ref, cfg)
	default:
		return c.priceRuleBased(u, ref, cfg)
	}
}

func (c *Calculator) priceRuleBased(u *model.InventoryUnit, ref time.Time, cfg config.Engine) (*model.PricingResult, error) {
	ratio := u.RemainingRatio()
	scarcityAdj, scarcityReason := scarcityAdjustment(u.BasePrice, ratio)

	leadDays, hasLead := u.LeadDays(ref)
	var (
		leadAdj    int64
		leadReason string
	)
	if hasLead {
		leadAdj, leadReason = leadTimeAdjustment(u.BasePrice, leadDays)
	} else {
		leadReason = "no departure date set, lead-time factor not applicable"
	}

	sig, err := c.velocity.Ratio(u.ID, u.TotalStock, u.RemainingStock, leadDays, hasLead, ref)
	if err != nil {
		return nil, fmt.Errorf("velocity ratio for unit %d: %w", u.ID, err)
	}
	velAdj, velReason, brake := brakeAdjustment(u.BasePrice, sig, cfg)

	theoretical := u.BasePrice + scarcityAdj + leadAdj + velAdj
	final := clampPrice(theoretical, u.BasePrice, cfg)

	res := &model.PricingResult{
		UnitID:               u.ID,
		UnitName:             u.Name,
		Strategy:             string(StrategyRuleBased),
		BasePrice:            u.BasePrice,
		ScarcityAdjustment:   scarcityAdj,
		LeadTimeAdjustment:   leadAdj,
		VelocityAdjustment:   velAdj,
		ElasticityMultiplier: 1,
		DecayFactor:          1,
		FinalPrice:           final,
		RemainingRatio:       math.Round(ratio*1000) / 1000,
		LeadDays:             leadDaysOrUnknown(leadDays, hasLead),
		HasDeparture:         hasLead,
		VelocityRatio:        sig,
		BrakeActive:          brake,
		Reason:               joinReasons(scarcityReason, leadReason, velReason),
		Waterfall: []model.WaterfallStep{
			{Label: "base price", Value: u.BasePrice, Measure: model.MeasureAbsolute},
			{Label: "scarcity adjustment", Value: scarcityAdj, Measure: model.MeasureRelative},
			{Label: "lead-time adjustment", Value: leadAdj, Measure: model.MeasureRelative},
			{Label: "velocity brake", Value: velAdj, Measure: model.MeasureRelative},
			{Label: "final price", Value: final, Measure: model.MeasureTotal},
		},
	}
	return res, nil
}

// scarcityAdjustment prices the remaining-stock ratio band.
func scarcityAdjustment(basePrice int64, ratio float64) (int64, string) {
	pct := int(ratio * 100)
	switch {
	case ratio < 0.20:
		adj := roundYen(float64(basePrice) * 0.30)
		return adj, fmt.Sprintf("%d%% stock left, scarcity premium (+%d)", pct, adj)
	case ratio < 0.50:
		adj := roundYen(float64(basePrice) * 0.10)
		return adj, fmt.Sprintf("%d%% stock left, demand-pressure markup (+%d)", pct, adj)
	case ratio < 0.70:
		return 0, fmt.Sprintf("%d%% stock left, standard price", pct)
	default:
		adj := roundYen(float64(basePrice) * -0.15)
		return adj, fmt.Sprintf("%d%% stock left, surplus discount (%d)", pct, adj)
	}
}

// leadTimeAdjustment prices the days-to-departure band.
func leadTimeAdjustment(basePrice int64, leadDays int) (int64, string) {
	switch {
	case leadDays < 0:
		return 0, "already departed, out of pricing scope"
	case leadDays <= 7:
		adj := roundYen(float64(basePrice) * -0.15)
		return adj, fmt.Sprintf("%d days to departure, last-minute discount (%d)", leadDays, adj)
	case leadDays <= 30:
		adj := roundYen(float64(basePrice) * 0.10)
		return adj, fmt.Sprintf("%d days to departure, peak-decision markup (+%d)", leadDays, adj)
	case leadDays <= 90:
		return 0, fmt.Sprintf("%d days to departure, standard price", leadDays)
	default:
		adj := roundYen(float64(basePrice) * -0.10)
		return adj, fmt.Sprintf("%d days to departure, early-bird discount (%d)", leadDays, adj)
	}
}

// brakeAdjustment applies the automatic markup when the unit sells faster
// than the pace needed to hit the sell-through target.
func brakeAdjustment(basePrice int64, sig model.VelocitySignal, cfg config.Engine) (int64, string, bool) {
	if !sig.Valid {
		return 0, "insufficient sales data, no velocity adjustment", false
	}
	if sig.Ratio >= cfg.BrakeThreshold {
		adj := roundYen(float64(basePrice) * cfg.BrakeStrengthPct)
		return adj, fmt.Sprintf("selling at %.1fx expected pace, automatic brake engaged (+%d)", sig.Ratio, adj), true
	}
	return 0, fmt.Sprintf("selling at %.1fx expected pace, within range", sig.Ratio), false
}

func (c *Calculator) priceElasticity(u *model.InventoryUnit, ref time.Time, cfg config.Engine) (*model.PricingResult, error) {
	leadDays, hasLead := u.LeadDays(ref)
	ratio := u.RemainingRatio()

	sig, err := c.velocity.Ratio(u.ID, u.TotalStock, u.RemainingStock, leadDays, hasLead, ref)
	if err != nil {
		return nil, fmt.Errorf("velocity ratio for unit %d: %w", u.ID, err)
	}

	if !hasLead {
		// Elasticity pricing steers toward a departure; without one there is
		// no target pace and no decay position.
		final := clampPrice(u.BasePrice, u.BasePrice, cfg)
		return &model.PricingResult{
			UnitID:               u.ID,
			UnitName:             u.Name,
			Strategy:             string(StrategyElasticity),
			BasePrice:            u.BasePrice,
			ElasticityMultiplier: 1,
			DecayFactor:          1,
			FinalPrice:           final,
			RemainingRatio:       math.Round(ratio*1000) / 1000,
			LeadDays:             -1,
			VelocityRatio:        sig,
			Reason:               "no departure date set, elasticity pricing not applicable, holding base price",
			Waterfall: []model.WaterfallStep{
				{Label: "base price", Value: u.BasePrice, Measure: model.MeasureAbsolute},
				{Label: "final price", Value: final, Measure: model.MeasureTotal},
			},
		}, nil
	}

	targetPace := float64(u.RemainingStock) / float64(maxInt(leadDays, 1))
	currentPace, paceReason, err := c.currentPace(u, ref, leadDays)
	if err != nil {
		return nil, err
	}

	paceRatio := 5.0
	if currentPace > 0 {
		paceRatio = targetPace / currentPace
	}
	paceRatio = math.Max(0.2, math.Min(5.0, paceRatio))

	elasticity := u.Elasticity
	if elasticity <= 0 {
		elasticity = 1
	}
	multiplier := math.Pow(paceRatio, 1/elasticity)

	horizon := u.HorizonDays(cfg.HorizonCapDays)
	decay := DecayFactor(leadDays, horizon, cfg.DecaySteepness, cfg.DecayCliffPosition)

	elastic := float64(u.BasePrice) * multiplier
	theoretical := elastic * decay
	final := clampPrice(int64(math.Round(theoretical)), u.BasePrice, cfg)

	elasticDelta := int64(math.Round(elastic)) - u.BasePrice
	decayDelta := int64(math.Round(theoretical)) - int64(math.Round(elastic))

	reason := fmt.Sprintf(
		"target pace %.2f/day vs current %.2f/day (%s), elasticity multiplier %.3f, time-decay factor %.3f",
		targetPace, currentPace, paceReason, multiplier, decay)

	return &model.PricingResult{
		UnitID:               u.ID,
		UnitName:             u.Name,
		Strategy:             string(StrategyElasticity),
		BasePrice:            u.BasePrice,
		ElasticityMultiplier: multiplier,
		DecayFactor:          decay,
		FinalPrice:           final,
		RemainingRatio:       math.Round(ratio*1000) / 1000,
		LeadDays:             leadDays,
		HasDeparture:         true,
		VelocityRatio:        sig,
		Reason:               reason,
		Waterfall: []model.WaterfallStep{
			{Label: "base price", Value: u.BasePrice, Measure: model.MeasureAbsolute},
			{Label: "demand elasticity", Value: elasticDelta, Measure: model.MeasureRelative},
			{Label: "time decay", Value: decayDelta, Measure: model.MeasureRelative},
			{Label: "final price", Value: final, Measure: model.MeasureTotal},
		},
	}, nil
}

// currentPace is the observed daily pace feeding the elasticity model:
// recent window first, lifetime average second, theoretical pace last.
func (c *Calculator) currentPace(u *model.InventoryUnit, ref time.Time, leadDays int) (float64, string, error) {
	pace, ok, err := c.forecaster.BaselinePace(u.ID, ref)
	if err != nil {
		return 0, "", err
	}
	if ok {
		return pace, "recent sales", nil
	}

	if age, hasAge := u.AgeDays(ref); hasAge {
		sum, err := c.events.SumEventQuantities(u.ID, *u.ProcuredAt, ref)
		if err != nil {
			return 0, "", fmt.Errorf("lifetime sales for unit %d: %w", u.ID, err)
		}
		if sum > 0 {
			return float64(sum) / float64(age), "lifetime average", nil
		}
	}

	return forecast.TheoreticalPace(u.TotalStock, leadDays), "theoretical pace", nil
}

// clampPrice rounds the theoretical price to the currency step and bounds it
// by the configured maximum discount and markup off base price.
func clampPrice(theoretical, basePrice int64, cfg config.Engine) int64 {
	step := float64(cfg.CurrencyStep)
	round := func(v float64) int64 {
		return int64(math.Round(v/step)) * cfg.CurrencyStep
	}

	final := round(float64(theoretical))
	minPrice := round(float64(basePrice) * (1 - cfg.MaxDiscountPct))
	maxPrice := round(float64(basePrice) * (1 + cfg.MaxMarkupPct))
	if final < minPrice {
		final = minPrice
	}
	if final > maxPrice {
		final = maxPrice
	}
	return final
}

// AvailabilityLabel bands remaining stock for display badges.
func AvailabilityLabel(remaining, total int) string {
	if remaining <= 0 {
		return "sold out"
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(remaining) / float64(total)
	}
	switch {
	case ratio <= 0.1:
		return "last units"
	case ratio <= 0.3:
		return "running low"
	default:
		return "available"
	}
}

func roundYen(v float64) int64 {
	return int64(math.Round(v))
}

func leadDaysOrUnknown(leadDays int, hasLead bool) int {
	if !hasLead {
		return -1
	}
	return leadDays
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func joinReasons(parts ...string) string {
	return strings.Join(parts, ". ") + "."
}
