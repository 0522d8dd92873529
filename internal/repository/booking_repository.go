// Package repository contains data access logic for booking domain
// operations. Bookings carry seat coordinates directly, so there is no
// separate seats table to join; availability is a lookup on the
// `(session_id, seat_row, seat_col)` UNIQUE key.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/cinema-back-office/internal/model"
)

// mysqlDuplicateEntry is the server error code for a UNIQUE key violation.
const mysqlDuplicateEntry = 1062

// BookingRepo manages persistence for seat bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// SeatTakenTx reports whether the seat already has a booking for the
// session.  Runs inside the caller's transaction; combined with the
// session row lock taken by the service this read is stable until
// commit.
func (r *BookingRepo) SeatTakenTx(ctx context.Context, tx *sql.Tx, sessionID uint64, row, col uint32) (bool, error) {
	const q = `SELECT 1 FROM bookings WHERE session_id = ? AND seat_row = ? AND seat_col = ? LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, q, sessionID, row, col).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateBulkTx inserts the whole batch of bookings with a single
// multi-row INSERT inside the caller's transaction.  A UNIQUE key
// violation maps to ErrSeatDuplicate: it means another transaction
// booked one of the seats between our availability check and this
// insert, and the caller should surface it as a seat conflict.
func (r *BookingRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	var (
		sb   strings.Builder
		args = make([]interface{}, 0, len(bookings)*5)
	)
	sb.WriteString(`INSERT INTO bookings (session_id, user_id, seat_row, seat_col, is_vip) VALUES `)
	for i, b := range bookings {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, b.SessionID, b.UserID, b.SeatRow, b.SeatCol, b.IsVIP)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrSeatDuplicate
		}
		return err
	}
	return nil
}

// ListBySession returns all bookings for a session ordered by row then
// column.  Used to build the seat map on the session detail endpoint.
func (r *BookingRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Booking, error) {
	const q = `SELECT id, session_id, user_id, seat_row, seat_col, is_vip, created_at
	           FROM bookings
	           WHERE session_id = ?
	           ORDER BY seat_row, seat_col`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.SessionID, &b.UserID, &b.SeatRow, &b.SeatCol, &b.IsVIP, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
