package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/bistrobot/internal/logger"
)

// Postgres implements Storage on top of a sqlx connection pool.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// GetOrCreateUser upserts by tg_id. The ON CONFLICT clause makes concurrent
// first contacts race-free: exactly one row per tg_id ever exists.
func (s *Postgres) GetOrCreateUser(ctx context.Context, tgID int64, username string) (User, error) {
	const q = `
		INSERT INTO users (tg_id, username)
		VALUES ($1, $2)
		ON CONFLICT (tg_id) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, points`

	u := User{TgID: tgID, Username: username}
	if err := s.db.QueryRowxContext(ctx, q, tgID, username).Scan(&u.ID, &u.Points); err != nil {
		return User{}, unavailable("get or create user", err)
	}
	return u, nil
}

// CreateOrder inserts the order and applies the loyalty award in one
// transaction, so a crash between the two steps cannot lose the award.
func (s *Postgres) CreateOrder(ctx context.Context, d OrderDraft, award int) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, unavailable("create order", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO orders (user_id, item, quantity, total, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	if err := tx.QueryRowxContext(ctx, q, d.UserID, d.Item, d.Quantity, d.Total, d.Latitude, d.Longitude).Scan(&id); err != nil {
		return 0, unavailable("create order", err)
	}
	if award > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET points = points + $1 WHERE id = $2`, award, d.UserID); err != nil {
			return 0, unavailable("create order: award points", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, unavailable("create order: commit", err)
	}

	logger.Store.Debug("order created",
		slog.String("event", "order.create"),
		slog.Int64("order_id", id),
		slog.String("item", d.Item),
		slog.Int("total", d.Total),
		slog.Int("points", award),
	)
	return id, nil
}

// CreateReservation mirrors CreateOrder for the reservations table.
func (s *Postgres) CreateReservation(ctx context.Context, d ReservationDraft, award int) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, unavailable("create reservation", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO reservations (user_id, res_date, res_time, people)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	if err := tx.QueryRowxContext(ctx, q, d.UserID, d.Date, d.Time, d.People).Scan(&id); err != nil {
		return 0, unavailable("create reservation", err)
	}
	if award > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET points = points + $1 WHERE id = $2`, award, d.UserID); err != nil {
			return 0, unavailable("create reservation: award points", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, unavailable("create reservation: commit", err)
	}

	logger.Store.Debug("reservation created",
		slog.String("event", "reservation.create"),
		slog.Int64("reservation_id", id),
		slog.Int("people", d.People),
		slog.Int("points", award),
	)
	return id, nil
}

// AddPoints atomically increments the balance.
func (s *Postgres) AddPoints(ctx context.Context, userID int64, delta int) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET points = points + $1 WHERE id = $2`, delta, userID); err != nil {
		return unavailable("add points", err)
	}
	return nil
}

// Points reads the balance for a Telegram id; missing users report 0 and are
// not created.
func (s *Postgres) Points(ctx context.Context, tgID int64) (int, error) {
	var points int
	err := s.db.GetContext(ctx, &points, `SELECT points FROM users WHERE tg_id = $1`, tgID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("points", err)
	}
	return points, nil
}

// ListOrders returns the latest orders joined with their owners.
func (s *Postgres) ListOrders(ctx context.Context, limit int) ([]OrderReport, error) {
	const q = `
		SELECT o.id AS order_id, u.tg_id, u.username,
		       o.item, o.quantity, o.total, o.status, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $1`

	var rows []OrderReport
	if err := s.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, unavailable("list orders", err)
	}
	return rows, nil
}

// ListReservations returns the latest reservations joined with their owners.
func (s *Postgres) ListReservations(ctx context.Context, limit int) ([]ReservationReport, error) {
	const q = `
		SELECT r.id AS reservation_id, u.tg_id, u.username,
		       r.res_date, r.res_time, r.people, r.status, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $1`

	var rows []ReservationReport
	if err := s.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, unavailable("list reservations", err)
	}
	return rows, nil
}
