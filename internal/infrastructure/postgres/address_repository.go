package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotifood/spotifood-api/internal/domain/entity"
	"github.com/spotifood/spotifood-api/internal/domain/repository"
)

type AddressRepository struct {
	pool *pgxpool.Pool
}

func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

const addressColumns = `id, user_id, address_name, address, latitude, longitude, is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (*entity.Address, error) {
	a := &entity.Address{}
	if err := row.Scan(&a.ID, &a.UserID, &a.AddressName, &a.Address, &a.Latitude, &a.Longitude,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Address, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]entity.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *a)
	}
	return addresses, rows.Err()
}

// Get is scoped by (userID, addressID); an address owned by someone else is
// indistinguishable from a missing one.
func (r *AddressRepository) Get(ctx context.Context, userID, addressID int64) (*entity.Address, error) {
	return scanAddress(r.pool.QueryRow(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`, addressID, userID))
}

// Create inserts the address. When a.IsDefault is set, the default flag on
// every other address of the same user is cleared in the same transaction so
// concurrent set-default requests cannot leave two defaults behind.
func (r *AddressRepository) Create(ctx context.Context, a *entity.Address) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if a.IsDefault {
			if _, err := tx.Exec(ctx, `
				UPDATE addresses SET is_default = false, updated_at = now()
				WHERE user_id = $1 AND is_default = true
			`, a.UserID); err != nil {
				return err
			}
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO addresses (user_id, address_name, address, latitude, longitude, is_default)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`, a.UserID, a.AddressName, a.Address, a.Latitude, a.Longitude, a.IsDefault)
		return row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	})
}

// Update applies the full row state. Clearing sibling defaults excludes the
// row being updated and runs in the same transaction as the write.
func (r *AddressRepository) Update(ctx context.Context, a *entity.Address) error {
	a.UpdatedAt = time.Now().UTC()
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if a.IsDefault {
			if _, err := tx.Exec(ctx, `
				UPDATE addresses SET is_default = false, updated_at = now()
				WHERE user_id = $1 AND id <> $2 AND is_default = true
			`, a.UserID, a.ID); err != nil {
				return err
			}
		}
		res, err := tx.Exec(ctx, `
			UPDATE addresses
			SET address_name = $1, address = $2, latitude = $3, longitude = $4,
			    is_default = $5, updated_at = $6
			WHERE id = $7 AND user_id = $8
		`, a.AddressName, a.Address, a.Latitude, a.Longitude, a.IsDefault, a.UpdatedAt, a.ID, a.UserID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *AddressRepository) Delete(ctx context.Context, userID, addressID int64) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM addresses WHERE id = $1 AND user_id = $2
	`, addressID, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AddressRepository = (*AddressRepository)(nil)
