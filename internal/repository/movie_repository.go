// Package repository contains data access logic for movie domain
// operations. Movies own the runtime that drives scheduling checks and
// the visible window (created_at/expires_at) that drives listings.
// Genres, actors, directors and studios are name tables linked through
// join tables and created on demand.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-back-office/internal/model"
)

// MovieRepo manages persistence for movies and their associations.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// DurationTx returns the movie's runtime in minutes and its title
// within the caller's transaction.  Returns ErrMovieNotFound when the
// movie does not exist.
func (r *MovieRepo) DurationTx(ctx context.Context, tx *sql.Tx, id uint64) (uint32, string, error) {
	var (
		duration uint32
		name     string
	)
	err := tx.QueryRowContext(ctx, `SELECT duration, name FROM movies WHERE id = ?`, id).Scan(&duration, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrMovieNotFound
		}
		return 0, "", err
	}
	return duration, name, nil
}

// GetByID retrieves a movie by its ID.  It returns ErrMovieNotFound if
// there is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, name, description, duration, year, rate_id, poster_url, created_at, expires_at FROM movies WHERE id = ?`
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.Duration, &m.Year, &m.RateID, &m.PosterURL, &m.CreatedAt, &m.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// CreateTx inserts a new movie using the provided transaction and
// assigns the generated ID back to the struct.  The visible window
// stays NULL until the movie's first sessions are scheduled.
func (r *MovieRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	const q = `INSERT INTO movies (name, description, duration, year, rate_id, poster_url) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, m.Name, m.Description, m.Duration, m.Year, m.RateID, m.PosterURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update writes the mutable fields of a movie back.  The handler
// applies the partial patch to a loaded row first.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies SET name = ?, description = ?, rate_id = ?, expires_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Name, m.Description, m.RateID, m.ExpiresAt, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoChange
	}
	return nil
}

// WidenWindowTx pushes the visible window outward so it covers
// [earliest, latest].  Bounds only ever widen: a NULL bound or one
// inside the new range is replaced, an already wider bound is kept.
func (r *MovieRepo) WidenWindowTx(ctx context.Context, tx *sql.Tx, id uint64, earliest, latest time.Time) error {
	const q = `UPDATE movies
	           SET created_at = IF(created_at IS NULL OR created_at > ?, ?, created_at),
	               expires_at = IF(expires_at IS NULL OR expires_at < ?, ?, expires_at)
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, earliest, earliest, latest, latest, id)
	return err
}

// ListActiveAndUpcoming returns movies whose visible window covers now,
// plus movies whose window opens within the horizon.  Ordered by window
// start ascending; limit <= 0 means no limit.
func (r *MovieRepo) ListActiveAndUpcoming(ctx context.Context, now, horizon time.Time, limit int) ([]model.Movie, error) {
	q := `SELECT id, name, description, duration, year, rate_id, poster_url, created_at, expires_at
	      FROM movies
	      WHERE (created_at <= ? AND expires_at >= ?)
	         OR (created_at >= ? AND created_at <= ?)
	      ORDER BY created_at ASC`
	args := []interface{}{now, now, now, horizon}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Movie
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Description, &m.Duration, &m.Year, &m.RateID, &m.PosterURL, &m.CreatedAt, &m.ExpiresAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ensureNamedTx finds or creates a row in a single-name table
// (genres, actors, directors, studios) and returns its ID.  The
// INSERT ... ON DUPLICATE KEY trick keeps this one round trip and
// race-safe under the table's UNIQUE name key.
func (r *MovieRepo) ensureNamedTx(ctx context.Context, tx *sql.Tx, table, name string) (uint64, error) {
	q := `INSERT INTO ` + table + ` (name) VALUES (?) ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
	res, err := tx.ExecContext(ctx, q, name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// linkNamedTx attaches a list of names to a movie through the given
// join table, creating missing name rows on the way.
func (r *MovieRepo) linkNamedTx(ctx context.Context, tx *sql.Tx, movieID uint64, table, joinTable, joinCol string, names []string) error {
	for _, name := range names {
		id, err := r.ensureNamedTx(ctx, tx, table, name)
		if err != nil {
			return err
		}
		q := `INSERT IGNORE INTO ` + joinTable + ` (movie_id, ` + joinCol + `) VALUES (?, ?)`
		if _, err := tx.ExecContext(ctx, q, movieID, id); err != nil {
			return err
		}
	}
	return nil
}

// LinkGenresTx attaches genres to a movie, creating unseen genre names.
func (r *MovieRepo) LinkGenresTx(ctx context.Context, tx *sql.Tx, movieID uint64, names []string) error {
	return r.linkNamedTx(ctx, tx, movieID, "genres", "movie_genres", "genre_id", names)
}

// LinkActorsTx attaches actors to a movie, creating unseen actor names.
func (r *MovieRepo) LinkActorsTx(ctx context.Context, tx *sql.Tx, movieID uint64, names []string) error {
	return r.linkNamedTx(ctx, tx, movieID, "actors", "movie_actors", "actor_id", names)
}

// LinkDirectorsTx attaches directors to a movie.
func (r *MovieRepo) LinkDirectorsTx(ctx context.Context, tx *sql.Tx, movieID uint64, names []string) error {
	return r.linkNamedTx(ctx, tx, movieID, "directors", "movie_directors", "director_id", names)
}

// LinkStudiosTx attaches studios to a movie.
func (r *MovieRepo) LinkStudiosTx(ctx context.Context, tx *sql.Tx, movieID uint64, names []string) error {
	return r.linkNamedTx(ctx, tx, movieID, "studios", "movie_studios", "studio_id", names)
}

// namesByMovie lists the names linked to a movie through a join table.
func (r *MovieRepo) namesByMovie(ctx context.Context, movieID uint64, table, joinTable, joinCol string) ([]string, error) {
	q := `SELECT t.name FROM ` + table + ` t
	      JOIN ` + joinTable + ` j ON j.` + joinCol + ` = t.id
	      WHERE j.movie_id = ?
	      ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GenresByMovie lists the genre names attached to a movie.
func (r *MovieRepo) GenresByMovie(ctx context.Context, movieID uint64) ([]string, error) {
	return r.namesByMovie(ctx, movieID, "genres", "movie_genres", "genre_id")
}

// ActorsByMovie lists the actor names attached to a movie.
func (r *MovieRepo) ActorsByMovie(ctx context.Context, movieID uint64) ([]string, error) {
	return r.namesByMovie(ctx, movieID, "actors", "movie_actors", "actor_id")
}

// DirectorsByMovie lists the director names attached to a movie.
func (r *MovieRepo) DirectorsByMovie(ctx context.Context, movieID uint64) ([]string, error) {
	return r.namesByMovie(ctx, movieID, "directors", "movie_directors", "director_id")
}

// StudiosByMovie lists the studio names attached to a movie.
func (r *MovieRepo) StudiosByMovie(ctx context.Context, movieID uint64) ([]string, error) {
	return r.namesByMovie(ctx, movieID, "studios", "movie_studios", "studio_id")
}
