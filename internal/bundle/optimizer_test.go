package bundle

import (
	"testing"
	"time"

	"yieldcore/internal/config"
	"yieldcore/internal/forecast"
	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
	"yieldcore/internal/velocity"
)

type stubEvents struct{}

func (stubEvents) SumEventQuantities(unitID int64, from, to time.Time) (int, error) {
	return 0, nil
}

var ref = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func newTestOptimizer(cfg config.Engine) *Optimizer {
	events := stubEvents{}
	vel := velocity.NewEngine(events, cfg.TargetSellRatio, cfg.VelocityWindowHours)
	fc := forecast.NewEngine(events, cfg)
	calc := pricing.NewCalculator(cfg, vel, fc, events)
	return NewOptimizer(cfg, calc, fc)
}

func testUnits(departure time.Time) []*model.InventoryUnit {
	return []*model.InventoryUnit{
		{ID: 1, Kind: model.KindHotel, Name: "Harbor View",
			TotalStock: 10, RemainingStock: 10, BasePrice: 50000,
			DepartureDate: datePtr(departure)},
		{ID: 2, Kind: model.KindFlight, Name: "HND-OKA 09:10",
			TotalStock: 10, RemainingStock: 10, BasePrice: 30000,
			DepartureDate: datePtr(departure)},
	}
}

func recByID(recs []model.Recommendation, id int64) *model.Recommendation {
	for i := range recs {
		if recs[i].UnitID == id {
			return &recs[i]
		}
	}
	return nil
}

func TestRecommend_PairsSlowHotelWithFlight(t *testing.T) {
	opt := newTestOptimizer(config.DefaultEngine())
	units := testUnits(ref.AddDate(0, 0, 30))

	rep, err := opt.Recommend(units, model.ScenarioBase, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(rep.Recommendations))
	}

	hotel := recByID(rep.Recommendations, 1)
	if hotel == nil || hotel.Strategy != model.RecommendBundle {
		t.Fatalf("expected the hotel to bundle, got %+v", hotel)
	}
	if hotel.PartnerID != 2 {
		t.Errorf("expected partner flight 2, got %d", hotel.PartnerID)
	}
	if hotel.Discount <= 0 || hotel.Gain <= 0 || hotel.MaxSets != 10 {
		t.Errorf("bundle economics off: discount %d gain %d sets %d",
			hotel.Discount, hotel.Gain, hotel.MaxSets)
	}

	flight := recByID(rep.Recommendations, 2)
	if flight == nil || flight.Strategy != model.RecommendBundlePartner {
		t.Fatalf("expected the flight reserved as partner, got %+v", flight)
	}
	if flight.PartnerID != 1 {
		t.Errorf("expected partner hotel 1, got %d", flight.PartnerID)
	}

	if rep.Uplift != rep.TotalOptimizedProfit-rep.TotalStandaloneProfit {
		t.Errorf("uplift %d inconsistent with totals", rep.Uplift)
	}
	if rep.Uplift <= 0 {
		t.Errorf("expected a positive uplift for a profitable bundle, got %d", rep.Uplift)
	}
}

func TestRecommend_HighThresholdKeepsStandalone(t *testing.T) {
	cfg := config.DefaultEngine()
	cfg.BundleGainThreshold = 100_000_000
	opt := newTestOptimizer(cfg)
	units := testUnits(ref.AddDate(0, 0, 30))

	rep, err := opt.Recommend(units, model.ScenarioBase, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rec := range rep.Recommendations {
		if rec.Strategy != model.RecommendStandalone {
			t.Errorf("unit %d: expected standalone, got %s", rec.UnitID, rec.Strategy)
		}
		if rec.Reason == "" {
			t.Errorf("unit %d: standalone recommendation needs a justification", rec.UnitID)
		}
	}
	if rep.Uplift != 0 {
		t.Errorf("an all-standalone mix has no uplift, got %d", rep.Uplift)
	}
}

func TestRecommend_ConflictResolvedByGain(t *testing.T) {
	departure := ref.AddDate(0, 0, 30)
	units := []*model.InventoryUnit{
		{ID: 1, Kind: model.KindHotel, Name: "Harbor View",
			TotalStock: 10, RemainingStock: 10, BasePrice: 50000,
			DepartureDate: datePtr(departure)},
		{ID: 3, Kind: model.KindHotel, Name: "Mountain Lodge",
			TotalStock: 10, RemainingStock: 10, BasePrice: 50000,
			DepartureDate: datePtr(departure)},
		{ID: 2, Kind: model.KindFlight, Name: "HND-OKA 09:10",
			TotalStock: 10, RemainingStock: 10, BasePrice: 30000,
			DepartureDate: datePtr(departure)},
	}
	opt := newTestOptimizer(config.DefaultEngine())

	rep, err := opt.Recommend(units, model.ScenarioBase, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Identical hotels tie on gain; the lower ID claims the only flight.
	if rec := recByID(rep.Recommendations, 1); rec == nil || rec.Strategy != model.RecommendBundle {
		t.Errorf("expected hotel 1 to win the flight, got %+v", rec)
	}
	if rec := recByID(rep.Recommendations, 3); rec == nil || rec.Strategy != model.RecommendStandalone {
		t.Errorf("expected hotel 3 to stay standalone, got %+v", rec)
	}
}

func TestRecommend_OrderIndependent(t *testing.T) {
	departure := ref.AddDate(0, 0, 30)
	units := testUnits(departure)
	reversed := []*model.InventoryUnit{units[1], units[0]}
	opt := newTestOptimizer(config.DefaultEngine())

	a, err := opt.Recommend(units, model.ScenarioBase, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := opt.Recommend(reversed, model.ScenarioBase, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []int64{1, 2} {
		ra, rb := recByID(a.Recommendations, id), recByID(b.Recommendations, id)
		if ra == nil || rb == nil || ra.Strategy != rb.Strategy || ra.PartnerID != rb.PartnerID {
			t.Errorf("unit %d: input order changed the outcome: %+v vs %+v", id, ra, rb)
		}
	}
	if a.Uplift != b.Uplift {
		t.Errorf("input order changed the uplift: %d vs %d", a.Uplift, b.Uplift)
	}
}

func TestRecommend_DifferentDatesNeverPair(t *testing.T) {
	units := testUnits(ref.AddDate(0, 0, 30))
	units[1].DepartureDate = datePtr(ref.AddDate(0, 0, 45))
	opt := newTestOptimizer(config.DefaultEngine())

	rep, err := opt.Recommend(units, model.ScenarioBase, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rec := range rep.Recommendations {
		if rec.Strategy != model.RecommendStandalone {
			t.Errorf("unit %d: mismatched departures must not bundle, got %s", rec.UnitID, rec.Strategy)
		}
	}
}

func TestRecommend_Empty(t *testing.T) {
	opt := newTestOptimizer(config.DefaultEngine())
	rep, err := opt.Recommend(nil, model.ScenarioBase, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Recommendations) != 0 || rep.Uplift != 0 {
		t.Errorf("expected an empty report, got %+v", rep)
	}
}

func TestRankPackages(t *testing.T) {
	departure := ref.AddDate(0, 0, 10)
	units := []*model.InventoryUnit{
		{ID: 1, Kind: model.KindHotel, Name: "Harbor View",
			TotalStock: 10, RemainingStock: 9, BasePrice: 50000,
			DepartureDate: datePtr(departure)},
		{ID: 3, Kind: model.KindHotel, Name: "Mountain Lodge",
			TotalStock: 10, RemainingStock: 2, BasePrice: 40000,
			DepartureDate: datePtr(departure)},
		{ID: 2, Kind: model.KindFlight, Name: "HND-OKA 09:10",
			TotalStock: 10, RemainingStock: 4, BasePrice: 30000,
			DepartureDate: datePtr(departure)},
	}
	opt := newTestOptimizer(config.DefaultEngine())

	quotes, err := opt.RankPackages(units, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 hotel-flight quotes, got %d", len(quotes))
	}

	for i, q := range quotes {
		if q.Rank != i+1 {
			t.Errorf("quote %d: expected rank %d, got %d", i, i+1, q.Rank)
		}
		if i > 0 && q.StrategyScore > quotes[i-1].StrategyScore {
			t.Errorf("quotes not sorted by score: %.4f after %.4f",
				q.StrategyScore, quotes[i-1].StrategyScore)
		}
		if q.BundleDiscount > 0 {
			t.Errorf("quote %d: discount must be a non-positive delta, got %d", i, q.BundleDiscount)
		}
		if q.FinalPackagePrice != q.SumDynamicPrice+q.BundleDiscount {
			t.Errorf("quote %d: final %d != sum %d + discount %d",
				i, q.FinalPackagePrice, q.SumDynamicPrice, q.BundleDiscount)
		}
	}

	// The fuller hotel is the more urgent one here: 9/10 left 10 days out
	// beats 2/10 left.
	if quotes[0].HotelID != 1 {
		t.Errorf("expected hotel 1 ranked first, got %d", quotes[0].HotelID)
	}
}
