// Package session issues short-lived price holds: a quoted price stays
// valid under an opaque token until the hold expires.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
	"yieldcore/internal/store"
)

var (
	ErrNotFound = errors.New("session: token not found")
	ErrExpired  = errors.New("session: hold expired")
)

// Pricer is the slice of the calculator the manager needs.
type Pricer interface {
	Price(u *model.InventoryUnit, ref time.Time, strategy pricing.Strategy) (*model.PricingResult, error)
}

// Manager creates and resolves price holds backed by the repository.
type Manager struct {
	store  store.Repository
	pricer Pricer
	ttl    time.Duration
}

func NewManager(repo store.Repository, pricer Pricer, ttl time.Duration) *Manager {
	return &Manager{store: repo, pricer: pricer, ttl: ttl}
}

// Create quotes the unit at the reference time and stores the quote under a
// fresh token valid for the manager's TTL.
func (m *Manager) Create(unitID int64, ref time.Time) (*model.PriceSession, error) {
	u, err := m.store.UnitByID(unitID)
	if err != nil {
		return nil, fmt.Errorf("load unit %d: %w", unitID, err)
	}

	priced, err := m.pricer.Price(u, ref, pricing.StrategyRuleBased)
	if err != nil {
		return nil, fmt.Errorf("quote unit %d: %w", unitID, err)
	}

	leadDays := -1
	if d, ok := u.LeadDays(ref); ok {
		leadDays = d
	}
	sess := &model.PriceSession{
		Token:    uuid.NewString(),
		UnitID:   u.ID,
		UnitName: u.Name,
		PriceSnapshot: model.PriceSnapshot{
			UnitID:         u.ID,
			RecordedAt:     ref,
			RemainingStock: u.RemainingStock,
			DynamicPrice:   priced.FinalPrice,
			LeadDays:       leadDays,
		},
		CreatedAt: ref,
		ExpiresAt: ref.Add(m.ttl),
	}
	if err := m.store.CreatePriceSession(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Get resolves a token. The second return value is the remaining validity
// in whole seconds.
func (m *Manager) Get(token string, ref time.Time) (*model.PriceSession, int, error) {
	sess, err := m.store.PriceSession(token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load session: %w", err)
	}
	if !ref.Before(sess.ExpiresAt) {
		return nil, 0, ErrExpired
	}
	remaining := int(sess.ExpiresAt.Sub(ref).Seconds())
	return sess, remaining, nil
}
