// Package queue defines message payloads exchanged over the message broker.
package queue

// BookedSession is one session's share of a confirmed booking batch.
type BookedSession struct {
	SessionID  uint64   `json:"session_id"`
	HallName   string   `json:"hall_name"`
	MovieTitle string   `json:"movie_title"`
	StartsAt   string   `json:"starts_at"` // cinema-local, yyyy-MM-dd HH:mm:ss
	Seats      []string `json:"seats"`     // "row-col" labels
}

// BookingConfirmedEvent is published when a batch of seats is
// successfully booked. A batch may span several sessions; each gets
// its own entry. The payload carries enough information for
// downstream consumers to log and notify the customer without
// querying the primary database.
type BookingConfirmedEvent struct {
	UserID      uint64          `json:"user_id"`
	UserEmail   string          `json:"user_email"`
	Sessions    []BookedSession `json:"sessions"`
	Total       float64         `json:"total"`
	ConfirmedAt string          `json:"confirmed_at"`
}
