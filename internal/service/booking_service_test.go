package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
)

func noneTaken(context.Context, uint32, uint32) (bool, error) {
	return false, nil
}

func TestCheckSeatsBoundsRectangle(t *testing.T) {
	ctx := context.Background()

	// The far corner of a 10x12 hall is a valid seat.
	err := checkSeats(ctx, 1, 10, 12, []SeatRequest{{Row: 10, Col: 12}}, noneTaken)
	assert.NoError(t, err)

	// One row beyond the grid is rejected even though row*col would
	// fit inside rows*cols.
	err = checkSeats(ctx, 1, 10, 12, []SeatRequest{{Row: 11, Col: 1}}, noneTaken)
	var rangeErr *schedule.SeatRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, uint32(11), rangeErr.Row)
	assert.Equal(t, uint32(10), rangeErr.Rows)

	err = checkSeats(ctx, 1, 10, 12, []SeatRequest{{Row: 1, Col: 13}}, noneTaken)
	assert.ErrorAs(t, err, &rangeErr)

	// Coordinates are 1-based.
	err = checkSeats(ctx, 1, 10, 12, []SeatRequest{{Row: 0, Col: 5}}, noneTaken)
	assert.ErrorAs(t, err, &rangeErr)
}

func TestCheckSeatsDuplicateWithinBatch(t *testing.T) {
	err := checkSeats(context.Background(), 9, 10, 10, []SeatRequest{
		{Row: 3, Col: 4},
		{Row: 3, Col: 4, IsVIP: true},
	}, noneTaken)

	var taken *schedule.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, uint64(9), taken.SessionID)
	assert.Equal(t, uint32(3), taken.Row)
	assert.Equal(t, uint32(4), taken.Col)
}

func TestCheckSeatsAlreadyBooked(t *testing.T) {
	// Seat (2,2) was booked by an earlier request; the whole batch is
	// rejected even though (2,3) is free.
	bookedAt22 := func(_ context.Context, row, col uint32) (bool, error) {
		return row == 2 && col == 2, nil
	}

	err := checkSeats(context.Background(), 5, 8, 8, []SeatRequest{
		{Row: 2, Col: 3},
		{Row: 2, Col: 2},
	}, bookedAt22)

	var taken *schedule.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, uint32(2), taken.Row)
	assert.Equal(t, uint32(2), taken.Col)
}

func TestCheckSeatsFreeBatchPasses(t *testing.T) {
	err := checkSeats(context.Background(), 5, 8, 8, []SeatRequest{
		{Row: 1, Col: 1},
		{Row: 1, Col: 2, IsVIP: true},
		{Row: 8, Col: 8},
	}, noneTaken)
	assert.NoError(t, err)
}

func TestGroupBySessionOrdersIDsAndKeepsRequestOrder(t *testing.T) {
	ids, groups := groupBySession([]SeatRequest{
		{SessionID: 9, Row: 1, Col: 1},
		{SessionID: 3, Row: 2, Col: 2},
		{SessionID: 9, Row: 1, Col: 2},
	})

	assert.Equal(t, []uint64{3, 9}, ids)
	require.Len(t, groups[9], 2)
	assert.Equal(t, uint32(1), groups[9][0].Col)
	assert.Equal(t, uint32(2), groups[9][1].Col)
	require.Len(t, groups[3], 1)
}

func newBookingServiceMock(t *testing.T) (*BookingService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	clock, err := schedule.NewClock("Europe/Kyiv")
	require.NoError(t, err)
	svc := NewBookingService(
		db,
		repository.NewSessionRepo(db),
		repository.NewHallRepo(db),
		repository.NewMovieRepo(db),
		repository.NewBookingRepo(db),
		clock,
	)
	return svc, mock, func() { _ = db.Close() }
}

func bookingSessionRow(id, movieID, hallID uint64) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	startsAt := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "movie_id", "hall_id", "session_type_id", "starts_at", "price", "price_vip", "status", "created_at", "updated_at",
	}).AddRow(id, movieID, hallID, 1, startsAt, 100.0, 150.0, "ACTIVE", now, now)
}

func hallRow(id uint64, name string) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "name", "seat_rows", "seat_cols", "created_at", "updated_at"}).
		AddRow(id, name, 10, 10, now, now)
}

// One call may book seats on several sessions; the session rows are
// locked in ascending ID order regardless of request order and the
// whole batch lands in a single insert.
func TestBookSpansSessionsAndLocksAscending(t *testing.T) {
	svc, mock, closeDB := newBookingServiceMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM sessions WHERE id = \? FOR UPDATE`).
		WithArgs(3).
		WillReturnRows(bookingSessionRow(3, 1, 2))
	mock.ExpectQuery(`FROM halls WHERE id = \?`).
		WithArgs(2).
		WillReturnRows(hallRow(2, "Red"))
	mock.ExpectQuery(`FROM sessions WHERE id = \? FOR UPDATE`).
		WithArgs(8).
		WillReturnRows(bookingSessionRow(8, 1, 2))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE session_id = \? AND seat_row = \? AND seat_col = \? LIMIT 1`).
		WithArgs(3, 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE session_id = \? AND seat_row = \? AND seat_col = \? LIMIT 1`).
		WithArgs(8, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO bookings \(session_id, user_id, seat_row, seat_col, is_vip\) VALUES \(\?, \?, \?, \?, \?\), \(\?, \?, \?, \?, \?\)`).
		WithArgs(3, 77, 2, 2, true, 8, 77, 1, 1, false).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectQuery(`SELECT duration, name FROM movies WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"duration", "name"}).AddRow(120, "Dune"))
	mock.ExpectCommit()

	result, err := svc.Book(context.Background(), 77, []SeatRequest{
		{SessionID: 8, Row: 1, Col: 1},
		{SessionID: 3, Row: 2, Col: 2, IsVIP: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 250.0, result.Total)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, uint64(3), result.Lines[0].SessionID)
	assert.Equal(t, []string{"2-2"}, result.Lines[0].Seats)
	assert.Equal(t, uint64(8), result.Lines[1].SessionID)
	assert.Equal(t, "Dune", result.Lines[1].MovieTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A taken seat on any session rejects every request in the batch,
// including the ones aimed at other sessions.
func TestBookMultiSessionBatchIsAtomic(t *testing.T) {
	svc, mock, closeDB := newBookingServiceMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM sessions WHERE id = \? FOR UPDATE`).
		WithArgs(3).
		WillReturnRows(bookingSessionRow(3, 1, 2))
	mock.ExpectQuery(`FROM halls WHERE id = \?`).
		WithArgs(2).
		WillReturnRows(hallRow(2, "Red"))
	mock.ExpectQuery(`FROM sessions WHERE id = \? FOR UPDATE`).
		WithArgs(8).
		WillReturnRows(bookingSessionRow(8, 1, 2))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE session_id = \? AND seat_row = \? AND seat_col = \? LIMIT 1`).
		WithArgs(3, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE session_id = \? AND seat_row = \? AND seat_col = \? LIMIT 1`).
		WithArgs(8, 4, 4).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), 77, []SeatRequest{
		{SessionID: 3, Row: 1, Col: 1},
		{SessionID: 8, Row: 4, Col: 4},
	})

	var taken *schedule.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, uint64(8), taken.SessionID)
	assert.Equal(t, uint32(4), taken.Row)
	assert.NoError(t, mock.ExpectationsWereMet())
}
