package model

import "time"

// SessionStatus enumerates the lifecycle states of a session.  A
// cancelled session stays in the table for booking history but is
// excluded from listings, scheduling checks and new bookings.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionCancelled SessionStatus = "CANCELLED"
)

// Session represents a scheduled screening of a movie in a particular
// hall.  StartsAt is always stored as a UTC instant; the cinema-local
// rendering happens at the presentation layer.  The screening's end is
// derived from the owning movie's duration rather than stored.
//
// Fields:
//  ID            – primary key identifier.
//  MovieID       – movie being screened.
//  HallID        – hall where the screening takes place.
//  SessionTypeID – format of the screening (2D, 3D, IMAX, ...).
//  StartsAt      – when the screening begins (UTC).
//  Price         – standard seat price.
//  PriceVIP      – VIP seat price.
//  Status        – ACTIVE or CANCELLED.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Session struct {
	ID            uint64        // sessions.id
	MovieID       uint64        // sessions.movie_id
	HallID        uint64        // sessions.hall_id
	SessionTypeID uint64        // sessions.session_type_id
	StartsAt      time.Time     // sessions.starts_at
	Price         float64       // sessions.price
	PriceVIP      float64       // sessions.price_vip
	Status        SessionStatus // sessions.status
	CreatedAt     time.Time     // sessions.created_at
	UpdatedAt     time.Time     // sessions.updated_at
}
