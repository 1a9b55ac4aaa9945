package storage

import (
	"context"
	"sync"
	"time"
)

// Memory implements Storage in process memory. It backs tests and lets the
// bot run without a database; identifiers are strictly increasing per record
// set, like the SQL schema's sequences.
type Memory struct {
	mu sync.Mutex

	users   map[int64]*User // keyed by tg_id
	nextUID int64

	orders  []memOrder
	nextOID int64

	reservations []memReservation
	nextRID      int64
}

type memOrder struct {
	id        int64
	userID    int64
	item      string
	quantity  int
	total     int
	status    string
	createdAt time.Time
}

type memReservation struct {
	id        int64
	userID    int64
	date      string
	time      string
	people    int
	status    string
	createdAt time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[int64]*User)}
}

func (m *Memory) GetOrCreateUser(_ context.Context, tgID int64, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[tgID]; ok {
		u.Username = username
		return *u, nil
	}
	m.nextUID++
	u := &User{ID: m.nextUID, TgID: tgID, Username: username}
	m.users[tgID] = u
	return *u, nil
}

func (m *Memory) CreateOrder(_ context.Context, d OrderDraft, award int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextOID++
	m.orders = append(m.orders, memOrder{
		id:        m.nextOID,
		userID:    d.UserID,
		item:      d.Item,
		quantity:  d.Quantity,
		total:     d.Total,
		status:    OrderStatusNew,
		createdAt: time.Now(),
	})
	m.awardLocked(d.UserID, award)
	return m.nextOID, nil
}

func (m *Memory) CreateReservation(_ context.Context, d ReservationDraft, award int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRID++
	m.reservations = append(m.reservations, memReservation{
		id:        m.nextRID,
		userID:    d.UserID,
		date:      d.Date,
		time:      d.Time,
		people:    d.People,
		status:    ReservationStatusPending,
		createdAt: time.Now(),
	})
	m.awardLocked(d.UserID, award)
	return m.nextRID, nil
}

func (m *Memory) AddPoints(_ context.Context, userID int64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awardLocked(userID, delta)
	return nil
}

func (m *Memory) Points(_ context.Context, tgID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[tgID]; ok {
		return u.Points, nil
	}
	return 0, nil
}

func (m *Memory) ListOrders(_ context.Context, limit int) ([]OrderReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]OrderReport, 0, limit)
	for i := len(m.orders) - 1; i >= 0 && len(out) < limit; i-- {
		o := m.orders[i]
		tgID, username := m.ownerLocked(o.userID)
		out = append(out, OrderReport{
			OrderID:   o.id,
			TgID:      tgID,
			Username:  username,
			Item:      o.item,
			Quantity:  o.quantity,
			Total:     o.total,
			Status:    o.status,
			CreatedAt: o.createdAt,
		})
	}
	return out, nil
}

func (m *Memory) ListReservations(_ context.Context, limit int) ([]ReservationReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ReservationReport, 0, limit)
	for i := len(m.reservations) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.reservations[i]
		tgID, username := m.ownerLocked(r.userID)
		out = append(out, ReservationReport{
			ReservationID: r.id,
			TgID:          tgID,
			Username:      username,
			Date:          r.date,
			Time:          r.time,
			People:        r.people,
			Status:        r.status,
			CreatedAt:     r.createdAt,
		})
	}
	return out, nil
}

func (m *Memory) awardLocked(userID int64, delta int) {
	for _, u := range m.users {
		if u.ID == userID {
			u.Points += delta
			return
		}
	}
}

func (m *Memory) ownerLocked(userID int64) (int64, string) {
	for _, u := range m.users {
		if u.ID == userID {
			return u.TgID, u.Username
		}
	}
	return 0, ""
}
