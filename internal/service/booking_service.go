package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/cinema-back-office/internal/model"
	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
)

// ErrNoSeats is returned when a booking request carries no seats.
var ErrNoSeats = errors.New("no seats provided")

// SeatRequest is one seat the customer wants, 1-based grid
// coordinates. A batch may mix seats from different sessions; each
// request names its own session.
type SeatRequest struct {
	SessionID uint64
	Row       uint32
	Col       uint32
	IsVIP     bool
}

// BookingLine is the booked portion of one session within a batch,
// for the response and the confirmation event.
type BookingLine struct {
	SessionID  uint64
	HallName   string
	MovieTitle string
	StartsAt   string   // cinema-local rendering
	Seats      []string // "row-col" labels in request order
}

// BookingResult summarizes a successful booking.
type BookingResult struct {
	Count int
	Total float64
	Lines []BookingLine
}

// BookingService books seats. All checks and the insert run in one
// transaction holding row locks on every targeted session, so two
// customers racing for the same seat serialize; the UNIQUE seat key
// backs this up if anything slips through.
type BookingService struct {
	db       *sql.DB
	sessions *repository.SessionRepo
	halls    *repository.HallRepo
	movies   *repository.MovieRepo
	bookings *repository.BookingRepo
	clock    *schedule.Clock
}

// NewBookingService wires the service with its repositories.
func NewBookingService(db *sql.DB, sessions *repository.SessionRepo, halls *repository.HallRepo, movies *repository.MovieRepo, bookings *repository.BookingRepo, clock *schedule.Clock) *BookingService {
	return &BookingService{
		db:       db,
		sessions: sessions,
		halls:    halls,
		movies:   movies,
		bookings: bookings,
		clock:    clock,
	}
}

// groupBySession splits a batch by session, preserving each group's
// request order, and returns the distinct session IDs in ascending
// order. Session row locks are acquired in that order, so two
// concurrent multi-session bookings always lock in the same sequence
// and cannot deadlock.
func groupBySession(requests []SeatRequest) ([]uint64, map[uint64][]SeatRequest) {
	groups := make(map[uint64][]SeatRequest, len(requests))
	ids := make([]uint64, 0, len(requests))
	for _, r := range requests {
		if _, ok := groups[r.SessionID]; !ok {
			ids = append(ids, r.SessionID)
		}
		groups[r.SessionID] = append(groups[r.SessionID], r)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, groups
}

// checkSeats validates one session's batch against the hall grid and
// the taken predicate: every coordinate inside the rectangle, no
// duplicates within the batch, no seat already taken. First violation
// aborts.
func checkSeats(ctx context.Context, sessionID uint64, rows, cols uint32, seats []SeatRequest, taken func(ctx context.Context, row, col uint32) (bool, error)) error {
	seen := make(map[[2]uint32]struct{}, len(seats))
	for _, seat := range seats {
		if seat.Row < 1 || seat.Col < 1 || seat.Row > rows || seat.Col > cols {
			return &schedule.SeatRangeError{Row: seat.Row, Col: seat.Col, Rows: rows, Cols: cols}
		}
		key := [2]uint32{seat.Row, seat.Col}
		if _, dup := seen[key]; dup {
			return &schedule.SeatTakenError{SessionID: sessionID, Row: seat.Row, Col: seat.Col}
		}
		seen[key] = struct{}{}

		isTaken, err := taken(ctx, seat.Row, seat.Col)
		if err != nil {
			return err
		}
		if isTaken {
			return &schedule.SeatTakenError{SessionID: sessionID, Row: seat.Row, Col: seat.Col}
		}
	}
	return nil
}

// Book reserves the whole batch of seats or nothing at all. Requests
// may span several sessions; a conflict on any seat in any session
// rejects every request in the batch.
func (s *BookingService) Book(ctx context.Context, userID uint64, requests []SeatRequest) (*BookingResult, error) {
	if len(requests) == 0 {
		return nil, ErrNoSeats
	}
	ids, groups := groupBySession(requests)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Row locks on every targeted session, ascending ID order.
	sessions := make(map[uint64]*model.Session, len(ids))
	hallsByID := make(map[uint64]*model.Hall)
	for _, id := range ids {
		sess, err := s.sessions.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if sess.Status != model.SessionActive {
			return nil, repository.ErrSessionNotFound
		}
		sessions[id] = sess
		if _, ok := hallsByID[sess.HallID]; !ok {
			hall, err := s.halls.GetTx(ctx, tx, sess.HallID)
			if err != nil {
				return nil, err
			}
			hallsByID[sess.HallID] = hall
		}
	}

	rows := make([]model.Booking, 0, len(requests))
	for _, id := range ids {
		hall := hallsByID[sessions[id].HallID]
		sessionID := id
		err := checkSeats(ctx, id, hall.SeatRows, hall.SeatCols, groups[id], func(ctx context.Context, row, col uint32) (bool, error) {
			return s.bookings.SeatTakenTx(ctx, tx, sessionID, row, col)
		})
		if err != nil {
			return nil, err
		}
		for _, seat := range groups[id] {
			rows = append(rows, model.Booking{
				SessionID: id,
				UserID:    userID,
				SeatRow:   seat.Row,
				SeatCol:   seat.Col,
				IsVIP:     seat.IsVIP,
			})
		}
	}
	if err := s.bookings.CreateBulkTx(ctx, tx, rows); err != nil {
		if errors.Is(err, repository.ErrSeatDuplicate) {
			// A racing transaction committed one of these seats after
			// our availability check. Identify it for the message.
			for _, r := range requests {
				isTaken, checkErr := s.bookings.SeatTakenTx(ctx, tx, r.SessionID, r.Row, r.Col)
				if checkErr == nil && isTaken {
					return nil, &schedule.SeatTakenError{SessionID: r.SessionID, Row: r.Row, Col: r.Col}
				}
			}
			return nil, &schedule.SeatTakenError{}
		}
		return nil, err
	}

	titles := make(map[uint64]string)
	for _, id := range ids {
		movieID := sessions[id].MovieID
		if _, ok := titles[movieID]; ok {
			continue
		}
		_, title, err := s.movies.DurationTx(ctx, tx, movieID)
		if err != nil {
			return nil, err
		}
		titles[movieID] = title
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	result := &BookingResult{Count: len(requests)}
	for _, id := range ids {
		sess := sessions[id]
		line := BookingLine{
			SessionID:  id,
			HallName:   hallsByID[sess.HallID].Name,
			MovieTitle: titles[sess.MovieID],
			StartsAt:   s.clock.FormatLocal(sess.StartsAt),
		}
		for _, seat := range groups[id] {
			line.Seats = append(line.Seats, fmt.Sprintf("%d-%d", seat.Row, seat.Col))
			if seat.IsVIP {
				result.Total += sess.PriceVIP
			} else {
				result.Total += sess.Price
			}
		}
		result.Lines = append(result.Lines, line)
	}
	return result, nil
}
