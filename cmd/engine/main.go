package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"yieldcore/internal/bundle"
	"yieldcore/internal/config"
	"yieldcore/internal/forecast"
	"yieldcore/internal/pricing"
	"yieldcore/internal/scheduler"
	"yieldcore/internal/session"
	"yieldcore/internal/store"
	"yieldcore/internal/velocity"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] yieldcore starting...")

	// .env is optional, real env wins either way
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init repository
	var repo store.Repository
	if cfg.Database.SQLitePath != "" {
		sq, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using in-memory: %v", err)
			repo = store.NewMemoryStore()
		} else {
			repo = sq
		}
	} else {
		repo = store.NewMemoryStore()
	}
	defer repo.Close()

	// Init engines
	vel := velocity.NewEngine(repo, cfg.Engine.TargetSellRatio, cfg.Engine.VelocityWindowHours)
	fc := forecast.NewEngine(repo, cfg.Engine)
	calc := pricing.NewCalculator(cfg.Engine, vel, fc, repo)
	opt := bundle.NewOptimizer(cfg.Engine, calc, fc)

	sessions := session.NewManager(repo, calc, time.Duration(cfg.Session.TTLMinutes)*time.Minute)

	// Init scheduler
	sched := scheduler.NewScheduler(repo, calc, opt)
	if err := sched.RegisterAll(cfg.Schedule.SnapshotCron, cfg.Schedule.DecisionCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: quote one unit and hold the price (manual spot check)
	if v := os.Getenv("PRICE_HOLD_UNIT"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("[WARN] PRICE_HOLD_UNIT: %v", err)
		} else if sess, err := sessions.Create(id, time.Now()); err != nil {
			log.Printf("[WARN] create price hold: %v", err)
		} else {
			log.Printf("[INFO] price hold %s: unit %d at ¥%d until %s",
				sess.Token, sess.UnitID, sess.PriceSnapshot.DynamicPrice,
				sess.ExpiresAt.Format(time.RFC3339))
		}
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing snapshot and decision now")
		go func() {
			sched.RunSnapshotNow()
			sched.RunDecisionNow()
		}()
	}

	log.Println("[INFO] yieldcore is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}
