// Package repository contains data access logic for reporting
// queries. The stats queries aggregate straight in SQL; the rows are
// small and the shapes do not map onto the entity models, so each
// query gets its own result struct.
package repository

import (
	"context"
	"database/sql"
	"time"
)

// FilmSales is one row of the top-films report.
type FilmSales struct {
	MovieID uint64  // movies.id
	Name    string  // movies.name
	Tickets int     // bookings counted in the window
	Revenue float64 // sum of seat prices for those bookings
}

// DayRevenue is one row of the revenue-per-day report.
type DayRevenue struct {
	Day     string  // calendar day, YYYY-MM-DD
	Tickets int     // bookings made that day
	Revenue float64 // sum of seat prices for those bookings
}

// HallOccupancy is one row of the occupancy report.  Capacity counts
// every seat of every session the hall ran in the window.
type HallOccupancy struct {
	HallID   uint64 // halls.id
	Name     string // halls.name
	Sold     int    // seats sold in the window
	Capacity int    // sessions in window * hall grid size
}

// StatsRepo runs the admin reporting queries.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo constructs a StatsRepo with the given DB handle.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// TopFilms returns films ranked by tickets sold since the given
// instant, at most limit rows.
func (r *StatsRepo) TopFilms(ctx context.Context, since time.Time, limit int) ([]FilmSales, error) {
	const q = `SELECT m.id, m.name, COUNT(b.id) AS tickets,
	                  COALESCE(SUM(IF(b.is_vip, s.price_vip, s.price)), 0) AS revenue
	           FROM bookings b
	           JOIN sessions s ON s.id = b.session_id
	           JOIN movies m ON m.id = s.movie_id
	           WHERE b.created_at >= ?
	           GROUP BY m.id, m.name
	           ORDER BY tickets DESC, m.id ASC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FilmSales
	for rows.Next() {
		var f FilmSales
		if err := rows.Scan(&f.MovieID, &f.Name, &f.Tickets, &f.Revenue); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Revenue returns daily ticket counts and revenue for bookings made in
// [from, to], ordered by day ascending.
func (r *StatsRepo) Revenue(ctx context.Context, from, to time.Time) ([]DayRevenue, error) {
	const q = `SELECT DATE_FORMAT(b.created_at, '%Y-%m-%d') AS day,
	                  COUNT(b.id) AS tickets,
	                  COALESCE(SUM(IF(b.is_vip, s.price_vip, s.price)), 0) AS revenue
	           FROM bookings b
	           JOIN sessions s ON s.id = b.session_id
	           WHERE b.created_at >= ? AND b.created_at <= ?
	           GROUP BY day
	           ORDER BY day ASC`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayRevenue
	for rows.Next() {
		var d DayRevenue
		if err := rows.Scan(&d.Day, &d.Tickets, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Occupancy returns, per hall, seats sold against total capacity of
// the ACTIVE sessions that started since the given instant.
func (r *StatsRepo) Occupancy(ctx context.Context, since time.Time) ([]HallOccupancy, error) {
	const q = `SELECT h.id, h.name,
	                  COALESCE(COUNT(b.id), 0) AS sold,
	                  COALESCE(COUNT(DISTINCT s.id), 0) * h.seat_rows * h.seat_cols AS capacity
	           FROM halls h
	           LEFT JOIN sessions s ON s.hall_id = h.id AND s.status = 'ACTIVE' AND s.starts_at >= ?
	           LEFT JOIN bookings b ON b.session_id = s.id
	           GROUP BY h.id, h.name, h.seat_rows, h.seat_cols
	           ORDER BY h.id ASC`
	rows, err := r.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HallOccupancy
	for rows.Next() {
		var o HallOccupancy
		if err := rows.Scan(&o.HallID, &o.Name, &o.Sold, &o.Capacity); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
