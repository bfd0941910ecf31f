package scheduler

import (
	"testing"
	"time"

	"yieldcore/internal/bundle"
	"yieldcore/internal/config"
	"yieldcore/internal/forecast"
	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
	"yieldcore/internal/store"
	"yieldcore/internal/velocity"
)

func newTestScheduler(t *testing.T) (*Scheduler, *store.MemoryStore) {
	t.Helper()
	cfg := config.DefaultEngine()
	repo := store.NewMemoryStore()
	vel := velocity.NewEngine(repo, cfg.TargetSellRatio, cfg.VelocityWindowHours)
	fc := forecast.NewEngine(repo, cfg)
	calc := pricing.NewCalculator(cfg, vel, fc, repo)
	opt := bundle.NewOptimizer(cfg, calc, fc)
	return NewScheduler(repo, calc, opt), repo
}

func seed(t *testing.T, repo *store.MemoryStore) {
	t.Helper()
	departure := time.Now().AddDate(0, 0, 30)
	units := []*model.InventoryUnit{
		{Kind: model.KindHotel, Name: "Harbor View",
			TotalStock: 10, RemainingStock: 7, BasePrice: 50000,
			DepartureDate: &departure},
		{Kind: model.KindFlight, Name: "HND-OKA 09:10",
			TotalStock: 10, RemainingStock: 5, BasePrice: 30000,
			DepartureDate: &departure},
	}
	for _, u := range units {
		if err := repo.InsertUnit(u); err != nil {
			t.Fatalf("insert unit: %v", err)
		}
	}
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t)
	if err := s.RegisterAll("0 0 * * * *", "0 0 7 * * *"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RegisterAll("not a cron line", "0 0 7 * * *"); err == nil {
		t.Error("expected an error for a malformed cron expression")
	}
}

func TestSnapshotTask(t *testing.T) {
	s, repo := newTestScheduler(t)
	seed(t, repo)

	s.RunSnapshotNow()

	history := repo.PriceHistory()
	if len(history) != 2 {
		t.Fatalf("expected one snapshot per unit, got %d", len(history))
	}
	for _, snap := range history {
		if snap.DynamicPrice <= 0 {
			t.Errorf("unit %d: snapshot has no price", snap.UnitID)
		}
		if snap.LeadDays < 29 || snap.LeadDays > 30 {
			t.Errorf("unit %d: expected ~30 lead days, got %d", snap.UnitID, snap.LeadDays)
		}
	}
}

func TestDecisionTask_RunsCleanly(t *testing.T) {
	s, repo := newTestScheduler(t)
	seed(t, repo)

	// Log-only task; it must not panic or corrupt state on repeated runs.
	s.RunDecisionNow()
	s.RunDecisionNow()

	if len(repo.PriceHistory()) != 0 {
		t.Error("the decision task must not write price history")
	}
}
