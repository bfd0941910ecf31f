package model

import (
	"fmt"
	"time"
)

// UnitKind is the closed set of inventory kinds the engine handles.
type UnitKind string

const (
	KindHotel  UnitKind = "hotel"
	KindFlight UnitKind = "flight"
)

// ParseUnitKind validates a raw kind string from storage.
func ParseUnitKind(s string) (UnitKind, error) {
	switch UnitKind(s) {
	case KindHotel:
		return KindHotel, nil
	case KindFlight:
		return KindFlight, nil
	default:
		return "", fmt.Errorf("unknown unit kind %q", s)
	}
}

// InventoryUnit is a read-only snapshot of one sellable unit of perishable
// inventory. The engine never mutates a snapshot during a computation pass.
type InventoryUnit struct {
	ID             int64
	Kind           UnitKind
	Name           string
	TotalStock     int
	RemainingStock int
	BasePrice      int64 // yen
	Elasticity     float64
	DepartureDate  *time.Time
	ProcuredAt     *time.Time
}

// RemainingRatio returns remaining/total, defaulting to 0 when total is zero.
func (u *InventoryUnit) RemainingRatio() float64 {
	if u.TotalStock <= 0 {
		return 0
	}
	return float64(u.RemainingStock) / float64(u.TotalStock)
}

// LeadDays returns the whole calendar days between the reference time and the
// departure date. The second value is false when no departure date is set.
func (u *InventoryUnit) LeadDays(ref time.Time) (int, bool) {
	if u.DepartureDate == nil {
		return 0, false
	}
	return daysBetween(ref, *u.DepartureDate), true
}

// HorizonDays returns the full procurement-to-departure span in days. It is
// the denominator of the decay curve; fallback covers units with no recorded
// procurement date.
func (u *InventoryUnit) HorizonDays(fallback int) int {
	if u.DepartureDate == nil || u.ProcuredAt == nil {
		return fallback
	}
	d := daysBetween(*u.ProcuredAt, *u.DepartureDate)
	if d <= 0 {
		return fallback
	}
	return d
}

// AgeDays returns whole days since procurement, at least 1.
func (u *InventoryUnit) AgeDays(ref time.Time) (int, bool) {
	if u.ProcuredAt == nil {
		return 0, false
	}
	d := daysBetween(*u.ProcuredAt, ref)
	if d < 1 {
		d = 1
	}
	return d, true
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
