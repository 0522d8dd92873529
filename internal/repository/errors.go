// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. For example, ErrMovieNotFound indicates a dangling movie
// reference in a scheduling request, while ErrSeatDuplicate signals
// that the UNIQUE seat key rejected an insert because a concurrent
// transaction already booked the same seat.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie lookup fails.
var ErrMovieNotFound = errors.New("movie not found")

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// ErrSessionNotFound is returned when a session lookup fails or the
// session has been cancelled.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionTypeNotFound is returned when a session type lookup fails.
var ErrSessionTypeNotFound = errors.New("session type not found")

// ErrAgeRateNotFound is returned when an age rate lookup fails.
var ErrAgeRateNotFound = errors.New("age rate not found")

// ErrUserNotFound is returned when a user lookup fails.
var ErrUserNotFound = errors.New("user not found")

// ErrSeatDuplicate is returned when the `(session_id, seat_row,
// seat_col)` UNIQUE key rejects a booking insert. Services translate
// this into the seat-taken domain error so a race lost at commit time
// looks the same to the client as a seat that was already taken.
var ErrSeatDuplicate = errors.New("seat already booked")

// ErrNoChange indicates the UPDATE attempted to set fields equal to current values.
var ErrNoChange = errors.New("no change")
