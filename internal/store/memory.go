package store

import (
	"sort"
	"sync"
	"time"

	"yieldcore/internal/model"
)

// MemoryStore is an in-memory Repository used in tests and when no SQLite
// path is configured.
type MemoryStore struct {
	mu       sync.Mutex
	units    []model.InventoryUnit
	events   []model.BookingEvent
	history  []model.PriceSnapshot
	sessions map[string]model.PriceSession
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]model.PriceSession), nextID: 1}
}

// InsertUnit adds an inventory unit, assigning an ID.
func (m *MemoryStore) InsertUnit(u *model.InventoryUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.nextID
		m.nextID++
	} else if u.ID >= m.nextID {
		m.nextID = u.ID + 1
	}
	m.units = append(m.units, *u)
	return nil
}

func (m *MemoryStore) ListUnits() ([]model.InventoryUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.InventoryUnit, len(m.units))
	copy(out, m.units)
	return out, nil
}

func (m *MemoryStore) UnitByID(id int64) (*model.InventoryUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.units {
		if m.units[i].ID == id {
			u := m.units[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SumEventQuantities(unitID int64, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, ev := range m.events {
		if ev.UnitID == unitID && !ev.BookedAt.Before(from) && !ev.BookedAt.After(to) {
			sum += ev.Quantity
		}
	}
	return sum, nil
}

func (m *MemoryStore) AppendEvent(ev *model.BookingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *MemoryStore) RecordPriceSnapshot(snap *model.PriceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, *snap)
	return nil
}

// PriceHistory returns all recorded snapshots, oldest first.
func (m *MemoryStore) PriceHistory() []model.PriceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PriceSnapshot, len(m.history))
	copy(out, m.history)
	return out
}

func (m *MemoryStore) CreatePriceSession(s *model.PriceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = *s
	return nil
}

func (m *MemoryStore) PriceSession(token string) (*model.PriceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) ROIMetrics() (*model.ROIMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := &model.ROIMetrics{}
	daily := make(map[string]*model.DailyRevenue)
	var days []string
	for _, ev := range m.events {
		q := int64(ev.Quantity)
		out.TotalDynamic += q * ev.SoldPrice
		out.TotalFixed += q * ev.BasePriceAtSale
		out.TotalUnits += ev.Quantity

		day := ev.BookedAt.UTC().Format("2006-01-02")
		d, ok := daily[day]
		if !ok {
			d = &model.DailyRevenue{Day: day}
			daily[day] = d
			days = append(days, day)
		}
		d.Dynamic += q * ev.SoldPrice
		d.Fixed += q * ev.BasePriceAtSale
	}
	out.Lift = out.TotalDynamic - out.TotalFixed
	if out.TotalFixed > 0 {
		out.LiftPct = round1(float64(out.Lift) / float64(out.TotalFixed) * 100)
	}
	sort.Strings(days)
	for _, day := range days {
		out.Daily = append(out.Daily, *daily[day])
	}
	return out, nil
}

func (m *MemoryStore) RescueMetrics() (*model.RescueMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kinds := make(map[int64]model.UnitKind, len(m.units))
	for _, u := range m.units {
		kinds[u.ID] = u.Kind
	}

	out := &model.RescueMetrics{}
	var hotelRescued, hotelTotal int
	for _, ev := range m.events {
		out.TotalUnits += ev.Quantity
		if ev.IsBundle {
			out.RescuedUnits += ev.Quantity
		}
		if kinds[ev.UnitID] == model.KindHotel {
			hotelTotal += ev.Quantity
			if ev.IsBundle {
				hotelRescued += ev.Quantity
			}
		}
	}
	if out.TotalUnits > 0 {
		out.OverallRescueRate = round1(float64(out.RescuedUnits) / float64(out.TotalUnits) * 100)
	}
	if hotelTotal > 0 {
		out.HotelRescueRate = round1(float64(hotelRescued) / float64(hotelTotal) * 100)
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
