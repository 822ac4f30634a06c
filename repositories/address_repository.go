package repositories

import (
	"context"

	"medcart/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddressRepository struct {
	db *pgxpool.Pool
}

func NewAddressRepository(db *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{db: db}
}

const addressColumns = `id, user_id, full_name, address_line1, address_line2, city, state, postal_code,
	phone_number, address_type, latitude, longitude, created_at, updated_at`

func scanAddress(row pgx.Row) (models.Address, error) {
	var a models.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.FullName, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State, &a.PostalCode,
		&a.PhoneNumber, &a.AddressType, &a.Latitude, &a.Longitude, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *AddressRepository) Get(ctx context.Context, userID, id string) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	a, err := scanAddress(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r *AddressRepository) Create(ctx context.Context, a *models.Address) error {
	query := `
		INSERT INTO addresses (user_id, full_name, address_line1, address_line2, city, state, postal_code,
			phone_number, address_type, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		a.UserID, a.FullName, a.AddressLine1, a.AddressLine2, a.City, a.State, a.PostalCode,
		a.PhoneNumber, a.AddressType, a.Latitude, a.Longitude,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapError(err)
}

func (r *AddressRepository) Update(ctx context.Context, a *models.Address) error {
	query := `
		UPDATE addresses SET full_name = $1, address_line1 = $2, address_line2 = $3, city = $4, state = $5,
			postal_code = $6, phone_number = $7, address_type = $8, latitude = $9, longitude = $10, updated_at = NOW()
		WHERE id = $11 AND user_id = $12
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		a.FullName, a.AddressLine1, a.AddressLine2, a.City, a.State,
		a.PostalCode, a.PhoneNumber, a.AddressType, a.Latitude, a.Longitude,
		a.ID, a.UserID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapError(err)
}

func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
