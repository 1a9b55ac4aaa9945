// Package storage is the durable record of users, orders, and reservations.
// It owns identity assignment and loyalty point balances.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks failures of the durable medium. Callers surface it to
// the user as a generic failure message and never retry within one update.
var ErrUnavailable = errors.New("storage unavailable")

// Record statuses. Only the initial values are written today; the enums are
// reserved for confirmation/cancellation flows.
const (
	OrderStatusNew           = "new"
	ReservationStatusPending = "pending"
	StatusConfirmed          = "confirmed"
	StatusCancelled          = "cancelled"
)

// User is a bot user identified by a stable Telegram id.
type User struct {
	ID       int64  `db:"id"`
	TgID     int64  `db:"tg_id"`
	Username string `db:"username"`
	Points   int    `db:"points"`
}

// OrderDraft carries the fields of an order about to be created.
type OrderDraft struct {
	UserID    int64
	Item      string
	Quantity  int
	Total     int
	Latitude  *float64
	Longitude *float64
}

// ReservationDraft carries the fields of a reservation about to be created.
type ReservationDraft struct {
	UserID int64
	Date   string
	Time   string
	People int
}

// OrderReport is an order row joined with its owner, for the admin report.
type OrderReport struct {
	OrderID   int64     `db:"order_id"`
	TgID      int64     `db:"tg_id"`
	Username  string    `db:"username"`
	Item      string    `db:"item"`
	Quantity  int       `db:"quantity"`
	Total     int       `db:"total"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// ReservationReport is a reservation row joined with its owner.
type ReservationReport struct {
	ReservationID int64     `db:"reservation_id"`
	TgID          int64     `db:"tg_id"`
	Username      string    `db:"username"`
	Date          string    `db:"res_date"`
	Time          string    `db:"res_time"`
	People        int       `db:"people"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

// Storage is the durable store contract. Every operation is atomic with
// respect to a single user; CreateOrder and CreateReservation apply the
// loyalty award in the same transaction as the insert.
type Storage interface {
	// GetOrCreateUser looks a user up by Telegram id, inserting a zero-point
	// row on first contact. Idempotent under concurrent calls: the tg_id
	// uniqueness constraint guarantees at most one row per identity.
	GetOrCreateUser(ctx context.Context, tgID int64, username string) (User, error)

	// CreateOrder inserts an immutable order row and adds award points to the
	// owner in one transaction. Returns the fresh order id.
	CreateOrder(ctx context.Context, d OrderDraft, award int) (int64, error)

	// CreateReservation inserts an immutable reservation row and adds award
	// points to the owner in one transaction. Returns the fresh reservation id.
	CreateReservation(ctx context.Context, d ReservationDraft, award int) (int64, error)

	// AddPoints atomically increments a user's balance by a positive delta.
	AddPoints(ctx context.Context, userID int64, delta int) error

	// Points reports the balance for a Telegram id; unknown users have 0.
	Points(ctx context.Context, tgID int64) (int, error)

	// ListOrders returns up to limit orders, most recent first.
	ListOrders(ctx context.Context, limit int) ([]OrderReport, error)

	// ListReservations returns up to limit reservations, most recent first.
	ListReservations(ctx context.Context, limit int) ([]ReservationReport, error)
}

// unavailable wraps a driver error so callers can match ErrUnavailable while
// keeping the cause in the chain.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}
