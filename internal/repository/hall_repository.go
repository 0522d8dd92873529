package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel checks
	"sort"

	"github.com/iliyamo/cinema-back-office/internal/model"
)

// HallRepo provides methods to retrieve and lock halls.  It embeds a
// database handle to perform queries and commands.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when
// no row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM halls WHERE id = ?`
	var h model.Hall
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.SeatRows, &h.SeatCols, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// GetTx is like GetByID but participates in the caller's transaction.
func (r *HallRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Hall, error) {
	const q = `SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM halls WHERE id = ?`
	var h model.Hall
	err := tx.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.SeatRows, &h.SeatCols, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// NameTx returns the hall's display name within the caller's
// transaction.  Used when composing scheduling conflict messages.
func (r *HallRepo) NameTx(ctx context.Context, tx *sql.Tx, id uint64) (string, error) {
	var name string
	err := tx.QueryRowContext(ctx, `SELECT name FROM halls WHERE id = ?`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrHallNotFound
		}
		return "", err
	}
	return name, nil
}

// LockTx takes row locks on the given halls inside the caller's
// transaction.  IDs are deduplicated and locked in ascending order so
// two concurrent scheduling transactions touching the same halls always
// acquire locks in the same sequence and cannot deadlock.  Returns
// ErrHallNotFound when any of the halls does not exist.
func (r *HallRepo) LockTx(ctx context.Context, tx *sql.Tx, ids []uint64) error {
	seen := make(map[uint64]struct{}, len(ids))
	ordered := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	const q = `SELECT id FROM halls WHERE id = ? FOR UPDATE`
	for _, id := range ordered {
		var got uint64
		if err := tx.QueryRowContext(ctx, q, id).Scan(&got); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrHallNotFound
			}
			return err
		}
	}
	return nil
}

// List returns all halls ordered by ID.  Used by the public catalog
// endpoint.  When no halls exist it returns an empty slice and nil error.
func (r *HallRepo) List(ctx context.Context) ([]model.Hall, error) {
	const q = `SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM halls ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Hall
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.ID, &h.Name, &h.SeatRows, &h.SeatCols, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
