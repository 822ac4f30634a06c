package repositories

import (
	"context"

	"medcart/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderSelect = `
	SELECT o.id, o.user_id, o.address, o.subtotal, o.delivery_fee, o.platform_fee, o.discount, o.total_amount,
		o.coupon_code, o.payment_method, o.status, o.gateway_order_id, u.full_name, u.email, o.created_at, o.updated_at
	FROM orders o
	JOIN users u ON u.id = o.user_id
`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Address, &o.Subtotal, &o.DeliveryFee, &o.PlatformFee, &o.Discount,
		&o.TotalAmount, &o.CouponCode, &o.PaymentMethod, &o.Status, &o.GatewayOrderID,
		&o.CustomerName, &o.CustomerEmail, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Create stores the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (user_id, address, subtotal, delivery_fee, platform_fee, discount, total_amount,
			coupon_code, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		order.UserID, order.Address, order.Subtotal, order.DeliveryFee, order.PlatformFee, order.Discount,
		order.TotalAmount, order.CouponCode, order.PaymentMethod, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, medicine_id, name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			order.ID, item.ProductID, item.MedicineID, item.Name, item.Quantity, item.UnitPrice,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&item.ID)
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *OrderRepository) items(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, medicine_id, name, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.MedicineID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetGatewayOrderID stores gatewayOrderID unless the order already has one,
// and returns the id the order ends up with.
func (r *OrderRepository) SetGatewayOrderID(ctx context.Context, id, gatewayOrderID string) (string, error) {
	var stored string
	err := r.db.QueryRow(ctx, `
		WITH claimed AS (
			UPDATE orders SET gateway_order_id = $1, updated_at = NOW()
			WHERE id = $2 AND gateway_order_id = ''
			RETURNING gateway_order_id
		)
		SELECT gateway_order_id FROM claimed
		UNION ALL
		SELECT gateway_order_id FROM orders WHERE id = $2 AND NOT EXISTS (SELECT 1 FROM claimed)`,
		gatewayOrderID, id).Scan(&stored)
	if err != nil {
		return "", mapError(err)
	}
	return stored, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	var cond conditions
	if filter.Status != "" {
		cond.add("o.status = ?", filter.Status)
	}
	if filter.Search != "" {
		cond.add("(CAST(o.id AS TEXT) ILIKE ? OR u.full_name ILIKE ? OR u.email ILIKE ?)", "%"+filter.Search+"%")
	}
	if filter.StartDate != nil {
		cond.add("o.created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		cond.add("o.created_at < ?", *filter.EndDate)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id` + cond.where()
	if err := r.db.QueryRow(ctx, countQuery, cond.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := orderSelect + cond.where() + ` ORDER BY o.created_at DESC` + cond.page(filter.Page, filter.Limit)
	rows, err := r.db.Query(ctx, query, cond.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// Summary counts orders per status. Revenue covers paid orders and placed COD orders.
func (r *OrderRepository) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &models.DashboardSummary{OrdersByStatus: map[string]int{}}
	for _, s := range models.OrderStatuses {
		summary.OrdersByStatus[s] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary.OrdersByStatus[status] = count
		summary.TotalOrders += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)::float8 FROM orders
		WHERE status IN ('paid', 'shipped', 'delivered')
			OR (payment_method = 'cod' AND status = 'placed')`).Scan(&summary.Revenue)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
