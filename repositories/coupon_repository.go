package repositories

import (
	"context"

	"medcart/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `SELECT id, code, discount, min_order_amount, expires_at, active FROM coupons WHERE UPPER(code) = UPPER($1)`

	c := &models.Coupon{}
	err := r.db.QueryRow(ctx, query, code).Scan(&c.ID, &c.Code, &c.Discount, &c.MinOrderAmount, &c.ExpiresAt, &c.Active)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}
