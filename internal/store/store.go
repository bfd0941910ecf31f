package store

import (
	"errors"
	"time"

	"yieldcore/internal/model"
)

// ErrNotFound is returned when a unit or session does not exist.
var ErrNotFound = errors.New("not found")

// Repository is the storage contract the decision engine depends on. The
// inventory side is a read-only snapshot; the event log is append-only and
// the engine's only write path.
type Repository interface {
	// ListUnits returns the full inventory snapshot.
	ListUnits() ([]model.InventoryUnit, error)
	// UnitByID returns one unit, or ErrNotFound.
	UnitByID(id int64) (*model.InventoryUnit, error)
	// SumEventQuantities sums booking quantities for a unit in [from, to].
	SumEventQuantities(unitID int64, from, to time.Time) (int, error)
	// AppendEvent appends one immutable sale record.
	AppendEvent(ev *model.BookingEvent) error
	// RecordPriceSnapshot appends one price-history row.
	RecordPriceSnapshot(snap *model.PriceSnapshot) error
	// CreatePriceSession stores a price-hold session.
	CreatePriceSession(s *model.PriceSession) error
	// PriceSession returns a session by token, or ErrNotFound.
	PriceSession(token string) (*model.PriceSession, error)
	// ROIMetrics aggregates realized dynamic-vs-fixed revenue lift.
	ROIMetrics() (*model.ROIMetrics, error)
	// RescueMetrics aggregates the bundle-attributed share of sales.
	RescueMetrics() (*model.RescueMetrics, error)
	Close() error
}
