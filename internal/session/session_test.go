package session

import (
	"errors"
	"testing"
	"time"

	"yieldcore/internal/model"
	"yieldcore/internal/pricing"
	"yieldcore/internal/store"
)

type stubPricer struct {
	price int64
	err   error
}

func (s stubPricer) Price(u *model.InventoryUnit, ref time.Time, strategy pricing.Strategy) (*model.PricingResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.PricingResult{UnitID: u.ID, UnitName: u.Name, FinalPrice: s.price}, nil
}

var ref = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func seedRepo(t *testing.T) (*store.MemoryStore, int64) {
	t.Helper()
	repo := store.NewMemoryStore()
	u := &model.InventoryUnit{
		Kind: model.KindHotel, Name: "Harbor View",
		TotalStock: 10, RemainingStock: 7, BasePrice: 50000,
		DepartureDate: datePtr(ref.AddDate(0, 0, 30)),
	}
	if err := repo.InsertUnit(u); err != nil {
		t.Fatalf("insert unit: %v", err)
	}
	return repo, u.ID
}

func TestCreateAndGet(t *testing.T) {
	repo, unitID := seedRepo(t)
	m := NewManager(repo, stubPricer{price: 47500}, 15*time.Minute)

	sess, err := m.Create(unitID, ref)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a token")
	}
	if sess.PriceSnapshot.DynamicPrice != 47500 {
		t.Errorf("expected held price 47500, got %d", sess.PriceSnapshot.DynamicPrice)
	}
	if sess.PriceSnapshot.LeadDays != 30 {
		t.Errorf("expected lead days 30, got %d", sess.PriceSnapshot.LeadDays)
	}
	if !sess.ExpiresAt.Equal(ref.Add(15 * time.Minute)) {
		t.Errorf("expected 15 minute hold, got %v", sess.ExpiresAt)
	}

	got, remaining, err := m.Get(sess.Token, ref.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PriceSnapshot.DynamicPrice != 47500 {
		t.Errorf("held price changed: %d", got.PriceSnapshot.DynamicPrice)
	}
	if remaining != 600 {
		t.Errorf("expected 600 seconds left, got %d", remaining)
	}
}

func TestGet_Expired(t *testing.T) {
	repo, unitID := seedRepo(t)
	m := NewManager(repo, stubPricer{price: 47500}, 15*time.Minute)

	sess, err := m.Create(unitID, ref)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := m.Get(sess.Token, ref.Add(15*time.Minute)); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired at the boundary, got %v", err)
	}
	if _, _, err := m.Get(sess.Token, ref.Add(time.Hour)); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestGet_UnknownToken(t *testing.T) {
	repo, _ := seedRepo(t)
	m := NewManager(repo, stubPricer{price: 47500}, 15*time.Minute)

	if _, _, err := m.Get("no-such-token", ref); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_UnknownUnit(t *testing.T) {
	repo, _ := seedRepo(t)
	m := NewManager(repo, stubPricer{price: 47500}, 15*time.Minute)

	if _, err := m.Create(9999, ref); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected the store error to surface, got %v", err)
	}
}

func TestCreate_TokensUnique(t *testing.T) {
	repo, unitID := seedRepo(t)
	m := NewManager(repo, stubPricer{price: 47500}, 15*time.Minute)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		sess, err := m.Create(unitID, ref)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[sess.Token] {
			t.Fatalf("duplicate token %s", sess.Token)
		}
		seen[sess.Token] = true
	}
}
