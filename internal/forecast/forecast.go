// Package forecast projects end-of-horizon sales and profit for a unit under
// named demand scenarios. Models are explicit deterministic rules, not fitted
// estimators.
package forecast

import (
	"fmt"
	"math"
	"time"

	"yieldcore/internal/config"
	"yieldcore/internal/model"
)

// EventWindow is the slice of the repository the engine needs.
type EventWindow interface {
	SumEventQuantities(unitID int64, from, to time.Time) (int, error)
}

// Engine derives daily paces from the recent event log and projects them.
type Engine struct {
	events EventWindow
	cfg    config.Engine
}

func NewEngine(events EventWindow, cfg config.Engine) *Engine {
	return &Engine{events: events, cfg: cfg}
}

// BaselinePace returns the observed daily sales pace over the recent window.
// The second value is false when the window holds no sales at all.
func (e *Engine) BaselinePace(unitID int64, ref time.Time) (float64, bool, error) {
	days := e.cfg.ForecastWindowDays
	from := ref.AddDate(0, 0, -days)
	sum, err := e.events.SumEventQuantities(unitID, from, ref)
	if err != nil {
		return 0, false, fmt.Errorf("baseline pace for unit %d: %w", unitID, err)
	}
	if sum == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(days), true, nil
}

// TheoreticalPace is the fallback daily pace when recent activity is
// negligible: sell 70% of total stock evenly over the lead time (floored at
// 30 days so a late fallback does not fabricate urgency).
func TheoreticalPace(totalStock, leadDays int) float64 {
	d := leadDays
	if d < 30 {
		d = 30
	}
	return float64(totalStock) * 0.7 / float64(d)
}

// Forecast projects one unit across all scenarios. price and cost are per
// unit; profit counts sold margin minus the terminal write-off of unsold
// stock at cost.
func (e *Engine) Forecast(u *model.InventoryUnit, ref time.Time, price, cost int64) (map[model.Scenario]model.ForecastResult, error) {
	leadDays, hasLead := u.LeadDays(ref)

	baseline, ok, err := e.BaselinePace(u.ID, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		baseline = TheoreticalPace(u.TotalStock, leadDays)
	}

	sellableDays := 0
	if hasLead && leadDays > 0 {
		sellableDays = leadDays
	}

	out := make(map[model.Scenario]model.ForecastResult, len(model.Scenarios))
	for _, sc := range model.Scenarios {
		pace := baseline * e.cfg.ScenarioMultiplier(sc)
		sold := math.Min(float64(u.RemainingStock), pace*float64(sellableDays))
		unsold := float64(u.RemainingStock) - sold
		profit := sold*float64(price-cost) - unsold*float64(cost)
		out[sc] = model.ForecastResult{
			DailyPace:      pace,
			PredictedSold:  sold,
			UnsoldStock:    unsold,
			ExpectedProfit: int64(math.Round(profit)),
		}
	}
	return out, nil
}
