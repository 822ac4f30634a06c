package repositories

import (
	"context"

	"medcart/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Record inserts the payment attempt. It reports false when the same
// (order, status, provider payment id) was already recorded.
func (r *PaymentRepository) Record(ctx context.Context, p *models.Payment) (bool, error) {
	if p.Metadata == nil {
		p.Metadata = map[string]string{}
	}
	query := `
		INSERT INTO payments (order_id, provider, provider_payment_id, status, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id, status, provider_payment_id) DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, p.OrderID, p.Provider, p.ProviderPaymentID, p.Status, p.Metadata).
		Scan(&p.ID, &p.CreatedAt)
	if err = mapError(err); err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PaymentRepository) Find(ctx context.Context, orderID, status, providerPaymentID string) (*models.Payment, error) {
	query := `
		SELECT id, order_id, provider, provider_payment_id, status, metadata, created_at
		FROM payments WHERE order_id = $1 AND status = $2 AND provider_payment_id = $3
	`
	p := &models.Payment{}
	err := r.db.QueryRow(ctx, query, orderID, status, providerPaymentID).
		Scan(&p.ID, &p.OrderID, &p.Provider, &p.ProviderPaymentID, &p.Status, &p.Metadata, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, provider, provider_payment_id, status, metadata, created_at
		FROM payments WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Provider, &p.ProviderPaymentID, &p.Status, &p.Metadata, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
