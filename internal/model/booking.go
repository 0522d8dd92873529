package model

import "time"

// Booking represents a purchased seat for a session.  Seats are
// identified by their grid coordinates within the hall; there is no
// separate seats table.  The `(session_id, seat_row, seat_col)`
// UNIQUE key in the schema guarantees at most one booking per seat
// per session even under concurrent requests.
//
// Fields:
//  ID        – primary key identifier.
//  SessionID – session the seat belongs to.
//  UserID    – customer who made the booking.
//  SeatRow   – 1-based row coordinate within the hall grid.
//  SeatCol   – 1-based column coordinate within the hall grid.
//  IsVIP     – whether the seat was sold at the VIP price.
//  CreatedAt – creation timestamp.
type Booking struct {
	ID        uint64    // bookings.id
	SessionID uint64    // bookings.session_id
	UserID    uint64    // bookings.user_id
	SeatRow   uint32    // bookings.seat_row
	SeatCol   uint32    // bookings.seat_col
	IsVIP     bool      // bookings.is_vip
	CreatedAt time.Time // bookings.created_at
}
