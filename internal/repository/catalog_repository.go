package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-back-office/internal/model"
)

// CatalogRepo serves the small lookup tables: genres, age rates and
// session types.  These back the public reference endpoints and the
// referential checks on scheduling and movie updates.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo constructs a CatalogRepo with the given DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) listNamed(ctx context.Context, table string) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Genres lists all genres ordered by ID.
func (r *CatalogRepo) Genres(ctx context.Context) ([]model.Genre, error) {
	return r.listNamed(ctx, "genres")
}

// AgeRates lists all age rates ordered by ID.
func (r *CatalogRepo) AgeRates(ctx context.Context) ([]model.AgeRate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM age_rates ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AgeRate
	for rows.Next() {
		var a model.AgeRate
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionTypes lists all session types ordered by ID.
func (r *CatalogRepo) SessionTypes(ctx context.Context) ([]model.SessionType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM session_types ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SessionType
	for rows.Next() {
		var t model.SessionType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepo) existsTx(ctx context.Context, tx *sql.Tx, table string, id uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SessionTypeExistsTx checks a session type reference within the
// caller's transaction.
func (r *CatalogRepo) SessionTypeExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	return r.existsTx(ctx, tx, "session_types", id)
}

// AgeRateExistsTx checks an age rate reference within the caller's
// transaction.
func (r *CatalogRepo) AgeRateExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	return r.existsTx(ctx, tx, "age_rates", id)
}

// AgeRateExists checks an age rate reference outside any transaction.
func (r *CatalogRepo) AgeRateExists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM age_rates WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
