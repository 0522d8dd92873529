package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedDate is returned when an incoming date string matches
// none of the accepted layouts.
var ErrMalformedDate = errors.New("malformed date")

// ErrDuplicateDate is returned when two proposals in one scheduling
// batch carry the same start instant.
var ErrDuplicateDate = errors.New("all sessions must have unique dates")

// ErrNoSessions is returned when a scheduling request arrives with an
// empty proposal list.
var ErrNoSessions = errors.New("no sessions provided")

// ErrEmptyUpdate is returned when a partial update carries no fields.
var ErrEmptyUpdate = errors.New("at least one field must be provided")

// ConflictError reports a scheduling conflict: the proposed session
// would overlap a neighbouring session in the same hall once the
// movie's runtime and the cleaning buffer are accounted for.  The
// *Local fields are pre-rendered in the cinema's zone so the message
// matches what the client submitted.
type ConflictError struct {
	HallID        uint64    // hall both sessions compete for
	HallName      string    // hall display name
	ProposedAt    time.Time // start of the rejected session, UTC
	ConflictsWith time.Time // start of the neighbour it collides with, UTC
	MovieTitle    string    // movie of the rejected session, when known
	Duration      uint32    // its runtime in minutes, when known
	ProposedLocal string    // ProposedAt rendered in the cinema's zone
	ConflictLocal string    // ConflictsWith rendered in the cinema's zone
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("session at %s in hall %s conflicts with session at %s",
		e.ProposedLocal, e.HallName, e.ConflictLocal)
}

// SeatRangeError reports a seat coordinate outside the hall's grid.
type SeatRangeError struct {
	Row, Col   uint32 // requested coordinate, 1-based
	Rows, Cols uint32 // hall grid dimensions
}

func (e *SeatRangeError) Error() string {
	return fmt.Sprintf("seat (%d,%d) is outside the %dx%d hall grid", e.Row, e.Col, e.Rows, e.Cols)
}

// SeatTakenError reports a seat that already has a booking for the
// session, whether found by the availability check or by losing a
// race on the UNIQUE seat key.
type SeatTakenError struct {
	SessionID uint64
	Row, Col  uint32
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat (%d,%d) is already booked for session %d", e.Row, e.Col, e.SessionID)
}
