// Package velocity derives a demand-pace ratio from the recent event window:
// actual daily sales against the daily pace needed to hit the sell-through
// target by departure.
package velocity

import (
	"math"
	"time"

	"yieldcore/internal/model"
)

// EventWindow is the slice of the repository the engine needs.
type EventWindow interface {
	SumEventQuantities(unitID int64, from, to time.Time) (int, error)
}

// Engine computes velocity signals.
type Engine struct {
	events          EventWindow
	targetSellRatio float64
	windowHours     int
}

// NewEngine creates an Engine. targetSellRatio is the share of total stock
// that should be sold by departure; windowHours is the lookback window.
func NewEngine(events EventWindow, targetSellRatio float64, windowHours int) *Engine {
	return &Engine{events: events, targetSellRatio: targetSellRatio, windowHours: windowHours}
}

// Ratio computes the velocity signal for one unit at the reference time.
// It returns an invalid signal (not an error, and never a zero ratio) when
// the window is empty, the departure is unknown or past, or the expected
// pace is degenerate. The error covers repository failures only.
func (e *Engine) Ratio(unitID int64, totalStock, remainingStock, leadDays int, hasLead bool, ref time.Time) (model.VelocitySignal, error) {
	from := ref.Add(-time.Duration(e.windowHours) * time.Hour)
	sum, err := e.events.SumEventQuantities(unitID, from, ref)
	if err != nil {
		return model.VelocitySignal{}, err
	}
	if sum == 0 {
		// No data is not "no demand"; downstream must skip the adjustment.
		return model.VelocitySignal{}, nil
	}

	if !hasLead || leadDays <= 0 {
		return model.VelocitySignal{}, nil
	}

	actualDaily := float64(sum) * 24.0 / float64(e.windowHours)
	expectedDaily := float64(totalStock) * e.targetSellRatio / float64(leadDays)
	if expectedDaily <= 0 {
		return model.VelocitySignal{}, nil
	}

	ratio := math.Round(actualDaily/expectedDaily*1000) / 1000
	return model.VelocitySignal{Ratio: ratio, Valid: true}, nil
}
