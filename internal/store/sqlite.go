package store

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"yieldcore/internal/model"
)

// SQLiteStore persists the inventory snapshot, the append-only event log,
// price history and price sessions in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the engine appends.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS inventory (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			kind            TEXT NOT NULL,
			name            TEXT NOT NULL,
			total_stock     INTEGER NOT NULL,
			remaining_stock INTEGER NOT NULL,
			base_price      INTEGER NOT NULL,
			elasticity      REAL NOT NULL DEFAULT 1.0,
			departure_date  TEXT,
			procured_at     TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS booking_events (
			id                 TEXT PRIMARY KEY,
			unit_id            INTEGER NOT NULL,
			partner_unit_id    INTEGER NOT NULL DEFAULT 0,
			booked_at          INTEGER NOT NULL,
			quantity           INTEGER NOT NULL,
			sold_price         INTEGER NOT NULL,
			base_price_at_sale INTEGER NOT NULL,
			is_bundle          INTEGER NOT NULL DEFAULT 0,
			discount           INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_unit_ts ON booking_events(unit_id, booked_at)`,

		`CREATE TABLE IF NOT EXISTS price_history (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			unit_id         INTEGER NOT NULL,
			recorded_at     INTEGER NOT NULL,
			remaining_stock INTEGER NOT NULL,
			dynamic_price   INTEGER NOT NULL,
			lead_days       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_unit_ts ON price_history(unit_id, recorded_at)`,

		`CREATE TABLE IF NOT EXISTS price_sessions (
			token           TEXT PRIMARY KEY,
			unit_id         INTEGER NOT NULL,
			unit_name       TEXT NOT NULL,
			remaining_stock INTEGER NOT NULL,
			dynamic_price   INTEGER NOT NULL,
			lead_days       INTEGER NOT NULL,
			created_at      INTEGER NOT NULL,
			expires_at      INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// InsertUnit adds an inventory unit. Seeding/admin path, not part of the
// Repository contract the engine sees.
func (s *SQLiteStore) InsertUnit(u *model.InventoryUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT INTO inventory
		(kind, name, total_stock, remaining_stock, base_price, elasticity, departure_date, procured_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		string(u.Kind), u.Name, u.TotalStock, u.RemainingStock, u.BasePrice,
		u.Elasticity, timePtrToString(u.DepartureDate), timePtrToString(u.ProcuredAt),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// SetRemainingStock updates a unit's remaining stock. Admin path; a running
// computation pass keeps working on the snapshot it already fetched.
func (s *SQLiteStore) SetRemainingStock(unitID int64, remaining int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE inventory SET remaining_stock = ? WHERE id = ?`, remaining, unitID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListUnits() ([]model.InventoryUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, kind, name, total_stock, remaining_stock,
		base_price, elasticity, departure_date, procured_at
		FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []model.InventoryUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

func (s *SQLiteStore) UnitByID(id int64) (*model.InventoryUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, kind, name, total_stock, remaining_stock,
		base_price, elasticity, departure_date, procured_at
		FROM inventory WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("unit by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanUnit(rows)
}

func scanUnit(rows *sql.Rows) (*model.InventoryUnit, error) {
	var (
		u        model.InventoryUnit
		kind     string
		depDate  sql.NullString
		procured sql.NullString
	)
	if err := rows.Scan(&u.ID, &kind, &u.Name, &u.TotalStock, &u.RemainingStock,
		&u.BasePrice, &u.Elasticity, &depDate, &procured); err != nil {
		return nil, fmt.Errorf("scan unit: %w", err)
	}
	k, err := model.ParseUnitKind(kind)
	if err != nil {
		return nil, err
	}
	u.Kind = k
	if u.DepartureDate, err = stringToTimePtr(depDate); err != nil {
		return nil, fmt.Errorf("unit %d departure_date: %w", u.ID, err)
	}
	if u.ProcuredAt, err = stringToTimePtr(procured); err != nil {
		return nil, fmt.Errorf("unit %d procured_at: %w", u.ID, err)
	}
	return &u, nil
}

func (s *SQLiteStore) SumEventQuantities(unitID int64, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var qty int
	err := s.db.QueryRow(`SELECT COALESCE(SUM(quantity), 0) FROM booking_events
		WHERE unit_id = ? AND booked_at >= ? AND booked_at <= ?`,
		unitID, from.Unix(), to.Unix()).Scan(&qty)
	if err != nil {
		return 0, fmt.Errorf("sum event quantities: %w", err)
	}
	return qty, nil
}

func (s *SQLiteStore) AppendEvent(ev *model.BookingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO booking_events
		(id, unit_id, partner_unit_id, booked_at, quantity, sold_price, base_price_at_sale, is_bundle, discount)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		ev.ID, ev.UnitID, ev.PartnerUnitID, ev.BookedAt.Unix(),
		ev.Quantity, ev.SoldPrice, ev.BasePriceAtSale, boolToInt(ev.IsBundle), ev.Discount,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordPriceSnapshot(snap *model.PriceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO price_history
		(unit_id, recorded_at, remaining_stock, dynamic_price, lead_days)
		VALUES (?,?,?,?,?)`,
		snap.UnitID, snap.RecordedAt.Unix(), snap.RemainingStock, snap.DynamicPrice, snap.LeadDays,
	)
	if err != nil {
		return fmt.Errorf("record price snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreatePriceSession(sess *model.PriceSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO price_sessions
		(token, unit_id, unit_name, remaining_stock, dynamic_price, lead_days, created_at, expires_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		sess.Token, sess.UnitID, sess.UnitName,
		sess.PriceSnapshot.RemainingStock, sess.PriceSnapshot.DynamicPrice, sess.PriceSnapshot.LeadDays,
		sess.CreatedAt.Unix(), sess.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create price session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PriceSession(token string) (*model.PriceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		sess                 model.PriceSession
		createdAt, expiresAt int64
	)
	err := s.db.QueryRow(`SELECT token, unit_id, unit_name, remaining_stock, dynamic_price, lead_days, created_at, expires_at
		FROM price_sessions WHERE token = ?`, token).
		Scan(&sess.Token, &sess.UnitID, &sess.UnitName,
			&sess.PriceSnapshot.RemainingStock, &sess.PriceSnapshot.DynamicPrice,
			&sess.PriceSnapshot.LeadDays, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("price session: %w", err)
	}
	sess.PriceSnapshot.UnitID = sess.UnitID
	sess.CreatedAt = time.Unix(createdAt, 0).UTC()
	sess.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	sess.PriceSnapshot.RecordedAt = sess.CreatedAt
	return &sess, nil
}

func (s *SQLiteStore) ROIMetrics() (*model.ROIMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &model.ROIMetrics{}
	err := s.db.QueryRow(`SELECT
		COALESCE(SUM(quantity * sold_price), 0),
		COALESCE(SUM(quantity * base_price_at_sale), 0),
		COALESCE(SUM(quantity), 0)
		FROM booking_events`).
		Scan(&m.TotalDynamic, &m.TotalFixed, &m.TotalUnits)
	if err != nil {
		return nil, fmt.Errorf("roi totals: %w", err)
	}
	m.Lift = m.TotalDynamic - m.TotalFixed
	if m.TotalFixed > 0 {
		m.LiftPct = round1(float64(m.Lift) / float64(m.TotalFixed) * 100)
	}

	rows, err := s.db.Query(`SELECT
		date(booked_at, 'unixepoch'),
		SUM(quantity * sold_price),
		SUM(quantity * base_price_at_sale)
		FROM booking_events GROUP BY 1 ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("roi daily: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d model.DailyRevenue
		if err := rows.Scan(&d.Day, &d.Dynamic, &d.Fixed); err != nil {
			return nil, err
		}
		m.Daily = append(m.Daily, d)
	}
	return m, rows.Err()
}

func (s *SQLiteStore) RescueMetrics() (*model.RescueMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &model.RescueMetrics{}
	err := s.db.QueryRow(`SELECT
		COALESCE(SUM(CASE WHEN is_bundle = 1 THEN quantity ELSE 0 END), 0),
		COALESCE(SUM(quantity), 0)
		FROM booking_events`).
		Scan(&m.RescuedUnits, &m.TotalUnits)
	if err != nil {
		return nil, fmt.Errorf("rescue totals: %w", err)
	}
	if m.TotalUnits > 0 {
		m.OverallRescueRate = round1(float64(m.RescuedUnits) / float64(m.TotalUnits) * 100)
	}

	var hotelRescued, hotelTotal int
	err = s.db.QueryRow(`SELECT
		COALESCE(SUM(CASE WHEN b.is_bundle = 1 THEN b.quantity ELSE 0 END), 0),
		COALESCE(SUM(b.quantity), 0)
		FROM booking_events b
		JOIN inventory i ON b.unit_id = i.id
		WHERE i.kind = 'hotel'`).
		Scan(&hotelRescued, &hotelTotal)
	if err != nil {
		return nil, fmt.Errorf("rescue hotel totals: %w", err)
	}
	if hotelTotal > 0 {
		m.HotelRescueRate = round1(float64(hotelRescued) / float64(hotelTotal) * 100)
	}
	return m, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

func timePtrToString(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func stringToTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		// Departure dates seeded as plain dates are accepted too.
		t, err = time.Parse("2006-01-02", s.String)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
