// Package repository contains data access logic for session domain
// operations. This file defines repository methods for sessions. A
// session represents a scheduled screening of a movie in a hall; its
// end time is derived from the movie's duration, so neighbour lookups
// join the movies table to bring the duration along.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel checks
	"strings"      // strings builds the multi-row insert
	"time"

	"github.com/iliyamo/cinema-back-office/internal/model"
)

// SessionNeighbor is the slice of a persisted session the scheduling
// validator needs: when it starts, how long its movie runs and what
// the movie is called (for conflict messages).
type SessionNeighbor struct {
	StartsAt   time.Time // session start, UTC
	Duration   uint32    // movie runtime in minutes
	MovieTitle string    // movie name for diagnostics
}

// SessionRepo manages persistence for sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// PrevNeighborTx returns the latest ACTIVE session in the hall that
// starts at or before the given instant, excluding excludeID (pass 0
// when scheduling new sessions).  Returns nil when the hall has no
// earlier session.
//
// The read locks the matched row.  A locking read always sees the
// latest committed data instead of the transaction's repeatable-read
// snapshot, so a session committed by a concurrent scheduler after
// this transaction began (but before it won the hall lock) cannot be
// missed here.
func (r *SessionRepo) PrevNeighborTx(ctx context.Context, tx *sql.Tx, hallID uint64, at time.Time, excludeID uint64) (*SessionNeighbor, error) {
	const q = `SELECT s.starts_at, m.duration, m.name
	           FROM sessions s
	           JOIN movies m ON m.id = s.movie_id
	           WHERE s.hall_id = ? AND s.status = 'ACTIVE' AND s.id <> ? AND s.starts_at <= ?
	           ORDER BY s.starts_at DESC
	           LIMIT 1
	           FOR UPDATE`
	var n SessionNeighbor
	err := tx.QueryRowContext(ctx, q, hallID, excludeID, at).Scan(&n.StartsAt, &n.Duration, &n.MovieTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// NextNeighborTx is the mirror of PrevNeighborTx: the earliest ACTIVE
// session in the hall starting at or after the given instant, read
// with the same row lock for the same reason.
func (r *SessionRepo) NextNeighborTx(ctx context.Context, tx *sql.Tx, hallID uint64, at time.Time, excludeID uint64) (*SessionNeighbor, error) {
	const q = `SELECT s.starts_at, m.duration, m.name
	           FROM sessions s
	           JOIN movies m ON m.id = s.movie_id
	           WHERE s.hall_id = ? AND s.status = 'ACTIVE' AND s.id <> ? AND s.starts_at >= ?
	           ORDER BY s.starts_at ASC
	           LIMIT 1
	           FOR UPDATE`
	var n SessionNeighbor
	err := tx.QueryRowContext(ctx, q, hallID, excludeID, at).Scan(&n.StartsAt, &n.Duration, &n.MovieTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// CreateBulkTx inserts all sessions with a single multi-row INSERT so
// the whole batch shares one statement inside the caller's transaction.
// Generated IDs are not read back; callers that need them should query.
func (r *SessionRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, sessions []model.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	var (
		sb   strings.Builder
		args = make([]interface{}, 0, len(sessions)*6)
	)
	sb.WriteString(`INSERT INTO sessions (movie_id, hall_id, session_type_id, starts_at, price, price_vip) VALUES `)
	for i, s := range sessions {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, s.MovieID, s.HallID, s.SessionTypeID, s.StartsAt, s.Price, s.PriceVIP)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetByID retrieves a session by its ID regardless of status.  It
// returns ErrSessionNotFound if there is no matching row.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT id, movie_id, hall_id, session_type_id, starts_at, price, price_vip, status, created_at, updated_at
	           FROM sessions WHERE id = ?`
	var s model.Session
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.HallID, &s.SessionTypeID, &s.StartsAt, &s.Price, &s.PriceVIP, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetForUpdateTx loads a session and takes a row lock on it inside the
// caller's transaction.  Concurrent bookings for the same session
// serialize on this lock, which closes the window between the seat
// availability check and the insert.
func (r *SessionRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
	const q = `SELECT id, movie_id, hall_id, session_type_id, starts_at, price, price_vip, status, created_at, updated_at
	           FROM sessions WHERE id = ? FOR UPDATE`
	var s model.Session
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.HallID, &s.SessionTypeID, &s.StartsAt, &s.Price, &s.PriceVIP, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByMovie returns ACTIVE sessions for a movie ordered by start time
// ascending, optionally constrained to [from, to].  Pass nil bounds to
// leave either side open.  When no sessions exist it returns an empty
// slice and nil error.
func (r *SessionRepo) ListByMovie(ctx context.Context, movieID uint64, from, to *time.Time) ([]model.Session, error) {
	q := `SELECT id, movie_id, hall_id, session_type_id, starts_at, price, price_vip, status, created_at, updated_at
	      FROM sessions
	      WHERE movie_id = ? AND status = 'ACTIVE'`
	args := []interface{}{movieID}
	if from != nil {
		q += ` AND starts_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		q += ` AND starts_at <= ?`
		args = append(args, *to)
	}
	q += ` ORDER BY starts_at ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(
			&s.ID, &s.MovieID, &s.HallID, &s.SessionTypeID, &s.StartsAt, &s.Price, &s.PriceVIP, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTx writes the mutable fields of the session back inside the
// caller's transaction.  The service applies the partial patch to a
// loaded row first, so this is always a full-row update.
func (r *SessionRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Session) error {
	const q = `UPDATE sessions
	           SET movie_id = ?, hall_id = ?, session_type_id = ?, starts_at = ?, price = ?, price_vip = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, s.MovieID, s.HallID, s.SessionTypeID, s.StartsAt, s.Price, s.PriceVIP, s.Status, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The row was locked by the caller, so zero affected rows here
		// means the values were already identical.
		return ErrNoChange
	}
	return nil
}
