package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
)

// newSessionServiceMock builds a SessionService over a mocked DB so the
// transaction scripts can be asserted statement by statement.
func newSessionServiceMock(t *testing.T) (*SessionService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	clock, err := schedule.NewClock("Europe/Kyiv")
	require.NoError(t, err)
	svc := NewSessionService(
		db,
		repository.NewSessionRepo(db),
		repository.NewHallRepo(db),
		repository.NewMovieRepo(db),
		repository.NewCatalogRepo(db),
		clock,
		schedule.NewValidator(clock, 15),
	)
	return svc, mock, db
}

func sessionRow(id, movieID, hallID, typeID uint64, startsAt time.Time, status string) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "movie_id", "hall_id", "session_type_id", "starts_at", "price", "price_vip", "status", "created_at", "updated_at",
	}).AddRow(id, movieID, hallID, typeID, startsAt, 100.0, 150.0, status, now, now)
}

func emptyNeighborRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"starts_at", "duration", "name"})
}

// The hall row lock must be the first statement of a scheduling
// transaction and the neighbour lookups must be locking reads, so a
// batch committed by a concurrent scheduler while this one waited for
// the hall cannot be missed behind the transaction's read snapshot.
func TestAddSessionsLocksHallFirstAndReadsNeighborsLocked(t *testing.T) {
	svc, mock, db := newSessionServiceMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM halls WHERE id = \? FOR UPDATE`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`SELECT duration, name FROM movies WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"duration", "name"}).AddRow(120, "Dune"))
	mock.ExpectQuery(`SELECT 1 FROM session_types WHERE id = \? LIMIT 1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(`s\.starts_at <= \? ORDER BY s\.starts_at DESC LIMIT 1 FOR UPDATE`).
		WillReturnRows(emptyNeighborRows())
	mock.ExpectQuery(`s\.starts_at >= \? ORDER BY s\.starts_at ASC LIMIT 1 FOR UPDATE`).
		WillReturnRows(emptyNeighborRows())
	mock.ExpectExec(`INSERT INTO sessions \(movie_id, hall_id, session_type_id, starts_at, price, price_vip\) VALUES \(\?, \?, \?, \?, \?, \?\)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE movies SET created_at = IF\(`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := svc.AddSessions(context.Background(), []AddSessionInput{
		{MovieID: 1, Date: "2025-07-01 12:00:00", Price: 100, PriceVIP: 150, HallID: 2, SessionTypeID: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A price-only patch must never re-run the scheduling rules: the whole
// transaction is the locked session read and the row update.
func TestUpdateSessionPriceOnlySkipsScheduling(t *testing.T) {
	svc, mock, db := newSessionServiceMock(t)
	defer db.Close()

	startsAt := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM sessions WHERE id = \? FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sessionRow(7, 1, 2, 3, startsAt, "ACTIVE"))
	mock.ExpectExec(`UPDATE sessions SET movie_id = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	price := 135.0
	err := svc.UpdateSession(context.Background(), SessionPatch{ID: 7, Price: &price})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Moving a session's date re-runs the scheduling rules with the moved
// session excluded, so it cannot collide with its own old slot.
func TestUpdateSessionDateChangeRevalidatesExcludingSelf(t *testing.T) {
	svc, mock, db := newSessionServiceMock(t)
	defer db.Close()

	startsAt := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM sessions WHERE id = \? FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sessionRow(7, 1, 2, 3, startsAt, "ACTIVE"))
	mock.ExpectQuery(`SELECT id FROM halls WHERE id = \? FOR UPDATE`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`SELECT duration, name FROM movies WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"duration", "name"}).AddRow(120, "Dune"))
	mock.ExpectQuery(`s\.starts_at <= \? ORDER BY s\.starts_at DESC LIMIT 1 FOR UPDATE`).
		WithArgs(2, 7, sqlmock.AnyArg()).
		WillReturnRows(emptyNeighborRows())
	mock.ExpectQuery(`s\.starts_at >= \? ORDER BY s\.starts_at ASC LIMIT 1 FOR UPDATE`).
		WithArgs(2, 7, sqlmock.AnyArg()).
		WillReturnRows(emptyNeighborRows())
	mock.ExpectExec(`UPDATE sessions SET movie_id = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	date := "2025-07-01 12:00:00"
	err := svc.UpdateSession(context.Background(), SessionPatch{ID: 7, Date: &date})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Pointing a cancelled session at a hall that does not exist must fail
// the referential check, not surface later as an FK violation.
func TestUpdateSessionHallChangeCheckedEvenWhenCancelled(t *testing.T) {
	svc, mock, db := newSessionServiceMock(t)
	defer db.Close()

	startsAt := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM sessions WHERE id = \? FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sessionRow(7, 1, 2, 3, startsAt, "CANCELLED"))
	mock.ExpectQuery(`SELECT id FROM halls WHERE id = \? FOR UPDATE`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	hallID := uint64(9)
	err := svc.UpdateSession(context.Background(), SessionPatch{ID: 7, HallID: &hallID})
	assert.ErrorIs(t, err, repository.ErrHallNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalsFromInputsNormalizesDates(t *testing.T) {
	clock, err := schedule.NewClock("Europe/Kyiv")
	require.NoError(t, err)

	inputs := []AddSessionInput{
		{MovieID: 1, Date: "2025-07-01T12:00:00", HallID: 2},
		{MovieID: 1, Date: "2025-07-01 15:00:00", HallID: 2},
	}
	movies := map[uint64]movieInfo{1: {duration: 120, title: "Dune"}}

	proposals, err := proposalsFromInputs(clock, inputs, movies)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), proposals[0].StartsAt)
	assert.Equal(t, uint32(120), proposals[0].Duration)
	assert.Equal(t, "Dune", proposals[0].MovieTitle)
	assert.Equal(t, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC), proposals[1].StartsAt)
}

func TestProposalsFromInputsRejectsMalformedDate(t *testing.T) {
	clock, err := schedule.NewClock("Europe/Kyiv")
	require.NoError(t, err)

	_, err = proposalsFromInputs(clock, []AddSessionInput{
		{MovieID: 1, Date: "01.07.2025 12:00", HallID: 2},
	}, map[uint64]movieInfo{1: {duration: 90}})
	assert.ErrorIs(t, err, schedule.ErrMalformedDate)
}

func TestSessionPatchEmpty(t *testing.T) {
	var p SessionPatch
	assert.True(t, p.Empty())

	price := 120.0
	p.Price = &price
	assert.False(t, p.Empty())

	deleted := true
	assert.False(t, (&SessionPatch{IsDeleted: &deleted}).Empty())
}
