// Package service holds the transactional coordinators that sit
// between the HTTP handlers and the repositories. Handlers stay thin
// for the scheduling and booking flows because both must run inside a
// single carefully ordered transaction.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/cinema-back-office/internal/model"
	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
)

// AddSessionInput is one proposed session from the admin API. Date is
// the raw wall-clock string exactly as submitted.
type AddSessionInput struct {
	MovieID       uint64
	Date          string
	Price         float64
	PriceVIP      float64
	HallID        uint64
	SessionTypeID uint64
}

// MovieInput carries a new movie and its associations for
// CreateMovieWithSessions.
type MovieInput struct {
	Name        string
	Description *string
	Duration    uint32
	Year        uint16
	RateID      uint64
	PosterURL   *string
	Genres      []string
	Actors      []string
	Directors   []string
	Studios     []string
}

// SessionPatch is a partial update of one session. Nil fields stay
// untouched. IsDeleted maps onto the status column: true cancels the
// session, false restores it.
type SessionPatch struct {
	ID            uint64
	Date          *string
	HallID        *uint64
	SessionTypeID *uint64
	Price         *float64
	PriceVIP      *float64
	IsDeleted     *bool
}

// Empty reports whether the patch carries no fields at all.
func (p *SessionPatch) Empty() bool {
	return p.Date == nil && p.HallID == nil && p.SessionTypeID == nil &&
		p.Price == nil && p.PriceVIP == nil && p.IsDeleted == nil
}

// movieInfo memoizes a movie's runtime and title during one batch.
type movieInfo struct {
	duration uint32
	title    string
}

// SessionService coordinates scheduling transactions: hall locks,
// conflict validation, the batch insert and the movie window update
// all commit or roll back together.
type SessionService struct {
	db        *sql.DB
	sessions  *repository.SessionRepo
	halls     *repository.HallRepo
	movies    *repository.MovieRepo
	catalog   *repository.CatalogRepo
	clock     *schedule.Clock
	validator *schedule.Validator
}

// NewSessionService wires the service with its repositories and the
// scheduling core.
func NewSessionService(db *sql.DB, sessions *repository.SessionRepo, halls *repository.HallRepo, movies *repository.MovieRepo, catalog *repository.CatalogRepo, clock *schedule.Clock, validator *schedule.Validator) *SessionService {
	return &SessionService{
		db:        db,
		sessions:  sessions,
		halls:     halls,
		movies:    movies,
		catalog:   catalog,
		clock:     clock,
		validator: validator,
	}
}

// txScheduleStore adapts the repositories to the validator's Store
// interface within one transaction.
type txScheduleStore struct {
	tx       *sql.Tx
	sessions *repository.SessionRepo
	halls    *repository.HallRepo
}

func (s *txScheduleStore) PrevNeighbor(ctx context.Context, hallID uint64, at time.Time, excludeID uint64) (*schedule.Neighbor, error) {
	n, err := s.sessions.PrevNeighborTx(ctx, s.tx, hallID, at, excludeID)
	if err != nil || n == nil {
		return nil, err
	}
	return &schedule.Neighbor{StartsAt: n.StartsAt, Duration: n.Duration, MovieTitle: n.MovieTitle}, nil
}

func (s *txScheduleStore) NextNeighbor(ctx context.Context, hallID uint64, at time.Time, excludeID uint64) (*schedule.Neighbor, error) {
	n, err := s.sessions.NextNeighborTx(ctx, s.tx, hallID, at, excludeID)
	if err != nil || n == nil {
		return nil, err
	}
	return &schedule.Neighbor{StartsAt: n.StartsAt, Duration: n.Duration, MovieTitle: n.MovieTitle}, nil
}

func (s *txScheduleStore) HallName(ctx context.Context, hallID uint64) (string, error) {
	return s.halls.NameTx(ctx, s.tx, hallID)
}

// proposalsFromInputs normalizes the raw dates and attaches the
// memoized movie runtimes. Pure except for the clock, so it is
// testable without a database.
func proposalsFromInputs(clock *schedule.Clock, inputs []AddSessionInput, movies map[uint64]movieInfo) ([]schedule.Proposal, error) {
	proposals := make([]schedule.Proposal, 0, len(inputs))
	for _, in := range inputs {
		at, err := clock.Normalize(in.Date)
		if err != nil {
			return nil, err
		}
		info := movies[in.MovieID]
		proposals = append(proposals, schedule.Proposal{
			MovieID:    in.MovieID,
			HallID:     in.HallID,
			StartsAt:   at,
			Duration:   info.duration,
			MovieTitle: info.title,
		})
	}
	return proposals, nil
}

// AddSessions schedules a batch of sessions atomically. Either every
// proposal passes validation and all rows are inserted, or nothing is.
func (s *SessionService) AddSessions(ctx context.Context, inputs []AddSessionInput) (int, error) {
	if len(inputs) == 0 {
		return 0, schedule.ErrNoSessions
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	n, err := s.addSessionsTx(ctx, tx, inputs)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return n, nil
}

// addSessionsTx is the shared core of AddSessions and
// CreateMovieWithSessions. It expects a live transaction and performs:
// hall existence + row locks (ascending ID order), movie runtime
// resolution, session type checks, conflict validation, the bulk
// insert and the movie window update.
func (s *SessionService) addSessionsTx(ctx context.Context, tx *sql.Tx, inputs []AddSessionInput) (int, error) {
	hallIDs := make([]uint64, 0, len(inputs))
	for _, in := range inputs {
		hallIDs = append(hallIDs, in.HallID)
	}
	// Locking the hall rows first serializes concurrent scheduling for
	// the same halls before any other statement runs in this
	// transaction; the neighbour reads below are themselves locking
	// reads, so they see every session committed before the lock was
	// granted and stay valid until commit.
	if err := s.halls.LockTx(ctx, tx, hallIDs); err != nil {
		return 0, err
	}

	movies := make(map[uint64]movieInfo)
	for _, in := range inputs {
		if _, ok := movies[in.MovieID]; ok {
			continue
		}
		duration, title, err := s.movies.DurationTx(ctx, tx, in.MovieID)
		if err != nil {
			return 0, err
		}
		movies[in.MovieID] = movieInfo{duration: duration, title: title}
	}

	checkedTypes := make(map[uint64]struct{})
	for _, in := range inputs {
		if _, ok := checkedTypes[in.SessionTypeID]; ok {
			continue
		}
		ok, err := s.catalog.SessionTypeExistsTx(ctx, tx, in.SessionTypeID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, repository.ErrSessionTypeNotFound
		}
		checkedTypes[in.SessionTypeID] = struct{}{}
	}

	proposals, err := proposalsFromInputs(s.clock, inputs, movies)
	if err != nil {
		return 0, err
	}

	store := &txScheduleStore{tx: tx, sessions: s.sessions, halls: s.halls}
	if err := s.validator.ValidateBatch(ctx, store, proposals, 0); err != nil {
		return 0, err
	}

	rows := make([]model.Session, 0, len(inputs))
	for i, in := range inputs {
		rows = append(rows, model.Session{
			MovieID:       in.MovieID,
			HallID:        in.HallID,
			SessionTypeID: in.SessionTypeID,
			StartsAt:      proposals[i].StartsAt,
			Price:         in.Price,
			PriceVIP:      in.PriceVIP,
		})
	}
	if err := s.sessions.CreateBulkTx(ctx, tx, rows); err != nil {
		return 0, err
	}

	// Widen each movie's visible window to cover its new sessions.
	type window struct{ earliest, latest time.Time }
	windows := make(map[uint64]window)
	for _, p := range proposals {
		w, ok := windows[p.MovieID]
		if !ok {
			windows[p.MovieID] = window{earliest: p.StartsAt, latest: p.StartsAt}
			continue
		}
		if p.StartsAt.Before(w.earliest) {
			w.earliest = p.StartsAt
		}
		if p.StartsAt.After(w.latest) {
			w.latest = p.StartsAt
		}
		windows[p.MovieID] = w
	}
	for movieID, w := range windows {
		if err := s.movies.WidenWindowTx(ctx, tx, movieID, w.earliest, w.latest); err != nil {
			return 0, err
		}
	}

	return len(inputs), nil
}

// CreateMovieWithSessions inserts a movie with its associations and
// schedules its first sessions as one atomic unit. Any referential
// failure aborts everything, including the movie row.
func (s *SessionService) CreateMovieWithSessions(ctx context.Context, in MovieInput, sessions []AddSessionInput) (uint64, int, error) {
	if len(sessions) == 0 {
		return 0, 0, schedule.ErrNoSessions
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ok, err := s.catalog.AgeRateExistsTx(ctx, tx, in.RateID)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, repository.ErrAgeRateNotFound
	}

	movie := model.Movie{
		Name:        in.Name,
		Description: in.Description,
		Duration:    in.Duration,
		Year:        in.Year,
		RateID:      in.RateID,
		PosterURL:   in.PosterURL,
	}
	if err := s.movies.CreateTx(ctx, tx, &movie); err != nil {
		return 0, 0, err
	}
	if err := s.movies.LinkGenresTx(ctx, tx, movie.ID, in.Genres); err != nil {
		return 0, 0, err
	}
	if err := s.movies.LinkActorsTx(ctx, tx, movie.ID, in.Actors); err != nil {
		return 0, 0, err
	}
	if err := s.movies.LinkDirectorsTx(ctx, tx, movie.ID, in.Directors); err != nil {
		return 0, 0, err
	}
	if err := s.movies.LinkStudiosTx(ctx, tx, movie.ID, in.Studios); err != nil {
		return 0, 0, err
	}

	// The proposals always reference the movie created above.
	withID := make([]AddSessionInput, len(sessions))
	copy(withID, sessions)
	for i := range withID {
		withID[i].MovieID = movie.ID
	}

	n, err := s.addSessionsTx(ctx, tx, withID)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	committed = true
	return movie.ID, n, nil
}

// UpdateSession applies one partial update in its own transaction.
func (s *SessionService) UpdateSession(ctx context.Context, patch SessionPatch) error {
	return s.UpdateSessions(ctx, []SessionPatch{patch})
}

// UpdateSessions applies every patch inside one shared transaction:
// if any element fails, none of the updates are kept.
func (s *SessionService) UpdateSessions(ctx context.Context, patches []SessionPatch) error {
	if len(patches) == 0 {
		return schedule.ErrNoSessions
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for i := range patches {
		if err := s.applyPatchTx(ctx, tx, patches[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// applyPatchTx validates and applies one patch. The session row is
// locked first; when the date or hall moves, the scheduling rules run
// again with the session itself excluded so it does not collide with
// its own old slot.
func (s *SessionService) applyPatchTx(ctx context.Context, tx *sql.Tx, patch SessionPatch) error {
	if patch.Empty() {
		return schedule.ErrEmptyUpdate
	}

	sess, err := s.sessions.GetForUpdateTx(ctx, tx, patch.ID)
	if err != nil {
		return err
	}

	reschedule := false
	if patch.Date != nil {
		at, err := s.clock.Normalize(*patch.Date)
		if err != nil {
			return err
		}
		if !at.Equal(sess.StartsAt) {
			sess.StartsAt = at
			reschedule = true
		}
	}
	if patch.HallID != nil && *patch.HallID != sess.HallID {
		// The target hall must exist even when the session is (or is
		// being) cancelled; LockTx verifies that and takes the row lock
		// the rescheduling check below relies on.
		if err := s.halls.LockTx(ctx, tx, []uint64{*patch.HallID}); err != nil {
			return err
		}
		sess.HallID = *patch.HallID
		reschedule = true
	}
	if patch.SessionTypeID != nil && *patch.SessionTypeID != sess.SessionTypeID {
		ok, err := s.catalog.SessionTypeExistsTx(ctx, tx, *patch.SessionTypeID)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrSessionTypeNotFound
		}
		sess.SessionTypeID = *patch.SessionTypeID
	}
	if patch.Price != nil {
		sess.Price = *patch.Price
	}
	if patch.PriceVIP != nil {
		sess.PriceVIP = *patch.PriceVIP
	}
	if patch.IsDeleted != nil {
		if *patch.IsDeleted {
			sess.Status = model.SessionCancelled
		} else {
			sess.Status = model.SessionActive
			// A restored session competes for its slot again.
			reschedule = true
		}
	}

	if reschedule && sess.Status == model.SessionActive {
		// LockTx also verifies the (possibly new) hall exists.
		if err := s.halls.LockTx(ctx, tx, []uint64{sess.HallID}); err != nil {
			return err
		}
		duration, title, err := s.movies.DurationTx(ctx, tx, sess.MovieID)
		if err != nil {
			return err
		}
		store := &txScheduleStore{tx: tx, sessions: s.sessions, halls: s.halls}
		proposal := schedule.Proposal{
			MovieID:    sess.MovieID,
			HallID:     sess.HallID,
			StartsAt:   sess.StartsAt,
			Duration:   duration,
			MovieTitle: title,
		}
		if err := s.validator.ValidateBatch(ctx, store, []schedule.Proposal{proposal}, sess.ID); err != nil {
			return err
		}
	}

	if err := s.sessions.UpdateTx(ctx, tx, sess); err != nil && err != repository.ErrNoChange {
		return err
	}
	return nil
}
