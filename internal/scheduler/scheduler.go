// Package scheduler runs the engine's recurring passes: hourly price
// snapshots and the daily bundle decision report.
package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"yieldcore/internal/bundle"
	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
	"yieldcore/internal/report"
	"yieldcore/internal/store"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron       *cron.Cron
	Store      store.Repository
	Calculator *pricing.Calculator
	Optimizer  *bundle.Optimizer
}

// NewScheduler creates a new Scheduler.
func NewScheduler(repo store.Repository, calc *pricing.Calculator, opt *bundle.Optimizer) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Store:      repo,
		Calculator: calc,
		Optimizer:  opt,
	}
}

// RegisterAll registers the snapshot and decision tasks.
func (s *Scheduler) RegisterAll(snapshotCron, decisionCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	if _, err := s.Cron.AddFunc(decisionCron, s.decisionTask); err != nil {
		return fmt.Errorf("register decision task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunSnapshotNow executes the snapshot task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunSnapshotNow() {
	s.snapshotTask()
}

// RunDecisionNow executes the decision task immediately.
func (s *Scheduler) RunDecisionNow() {
	s.decisionTask()
}

// snapshotTask prices every unit and appends a price-history row per unit.
func (s *Scheduler) snapshotTask() {
	now := time.Now()
	units, err := s.Store.ListUnits()
	if err != nil {
		log.Printf("[ERROR] snapshot: list units: %v", err)
		return
	}

	recorded := 0
	for i := range units {
		u := &units[i]
		priced, err := s.Calculator.Price(u, now, pricing.StrategyRuleBased)
		if err != nil {
			log.Printf("[WARN] snapshot: price unit %d (%s): %v", u.ID, u.Name, err)
			continue
		}
		leadDays := -1
		if d, ok := u.LeadDays(now); ok {
			leadDays = d
		}
		snap := &model.PriceSnapshot{
			UnitID:         u.ID,
			RecordedAt:     now,
			RemainingStock: u.RemainingStock,
			DynamicPrice:   priced.FinalPrice,
			LeadDays:       leadDays,
		}
		if err := s.Store.RecordPriceSnapshot(snap); err != nil {
			log.Printf("[WARN] snapshot: record unit %d: %v", u.ID, err)
			continue
		}
		recorded++
	}
	log.Printf("[INFO] price snapshot recorded for %d/%d units", recorded, len(units))
}

// decisionTask runs the optimizer under the base scenario and logs the report.
func (s *Scheduler) decisionTask() {
	now := time.Now()
	units, err := s.Store.ListUnits()
	if err != nil {
		log.Printf("[ERROR] decision: list units: %v", err)
		return
	}

	refs := make([]*model.InventoryUnit, len(units))
	for i := range units {
		refs[i] = &units[i]
	}

	rep, err := s.Optimizer.Recommend(refs, model.ScenarioBase, now)
	if err != nil {
		log.Printf("[ERROR] decision: recommend: %v", err)
		return
	}
	log.Printf("[INFO] daily decision report\n%s", report.FormatStrategyReport(rep, now))

	if roi, err := s.Store.ROIMetrics(); err != nil {
		log.Printf("[WARN] decision: roi metrics: %v", err)
	} else {
		log.Printf("[INFO] %s", report.FormatROI(roi))
	}
	if rescue, err := s.Store.RescueMetrics(); err != nil {
		log.Printf("[WARN] decision: rescue metrics: %v", err)
	} else {
		log.Printf("[INFO] %s", report.FormatRescue(rescue))
	}
}
