package model

import "time"

// BookingEvent is one immutable sale record in the append-only event log.
// PartnerUnitID is non-zero only when the unit was sold as part of a bundle.
type BookingEvent struct {
	ID              string // uuid
	UnitID          int64
	PartnerUnitID   int64
	BookedAt        time.Time
	Quantity        int
	SoldPrice       int64
	BasePriceAtSale int64
	IsBundle        bool
	Discount        int64 // yen taken off the combined list price, >= 0
}

// PriceSnapshot is one row of recorded price history for trend analysis.
// LeadDays is -1 when the unit has no departure date.
type PriceSnapshot struct {
	UnitID         int64
	RecordedAt     time.Time
	RemainingStock int
	DynamicPrice   int64
	LeadDays       int
}

// PriceSession pins a quoted price for a short checkout window. The quoted
// price stays valid until ExpiresAt regardless of live price movement.
type PriceSession struct {
	Token         string
	UnitID        int64
	UnitName      string
	PriceSnapshot PriceSnapshot
	CreatedAt     time.Time
	ExpiresAt     time.Time
}
