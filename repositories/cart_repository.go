package repositories

import (
	"context"

	"medcart/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: db}
}

const cartSelect = `
	SELECT c.id, c.user_id, c.quantity, c.product_id, c.medicine_id,
		ci.id, ci.name, ci.price, ci.image_url, c.created_at, c.updated_at
	FROM cart_items c
	JOIN catalog_items ci ON ci.id = COALESCE(c.product_id, c.medicine_id)
`

func scanCartItem(row pgx.Row) (models.CartItem, error) {
	var (
		item     models.CartItem
		snapshot models.ItemSnapshot
	)
	err := row.Scan(&item.ID, &item.UserID, &item.Quantity, &item.ProductID, &item.MedicineID,
		&snapshot.ID, &snapshot.Name, &snapshot.Price, &snapshot.Image, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return item, err
	}
	if item.ProductID != nil {
		item.Product = &snapshot
	} else {
		item.Medicine = &snapshot
	}
	return item, nil
}

func (r *CartRepository) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	rows, err := r.db.Query(ctx, cartSelect+` WHERE c.user_id = $1 ORDER BY c.created_at, c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CartRepository) Get(ctx context.Context, userID, id string) (*models.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRow(ctx, cartSelect+` WHERE c.id = $1 AND c.user_id = $2`, id, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

// Add inserts a line or increments the quantity of the existing line for the same item.
func (r *CartRepository) Add(ctx context.Context, userID string, req models.AddToCartRequest) (*models.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) WHERE product_id IS NOT NULL
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id
	`
	itemID := req.ProductID
	if req.MedicineID != nil {
		query = `
			INSERT INTO cart_items (user_id, medicine_id, quantity) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, medicine_id) WHERE medicine_id IS NOT NULL
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
			RETURNING id
		`
		itemID = req.MedicineID
	}

	var id string
	if err := r.db.QueryRow(ctx, query, userID, *itemID, req.Quantity).Scan(&id); err != nil {
		return nil, mapError(err)
	}
	return r.Get(ctx, userID, id)
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, id string, quantity int) (*models.CartItem, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		quantity, id, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, userID, id)
}

func (r *CartRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
