package repositories

import (
	"context"

	"medcart/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const catalogColumns = `id, kind, name, description, price, image_url, cloudinary_id, stock, is_active, created_at, updated_at`

func scanCatalogItem(row pgx.Row) (models.CatalogItem, error) {
	var c models.CatalogItem
	err := row.Scan(&c.ID, &c.Kind, &c.Name, &c.Description, &c.Price, &c.ImageURL, &c.CloudinaryID,
		&c.Stock, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CatalogRepository) List(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, int, error) {
	var cond conditions
	cond.add("is_active = ?", true)
	if filter.Kind != "" {
		cond.add("kind = ?", filter.Kind)
	}
	if filter.Search != "" {
		cond.add("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_items`+cond.where(), cond.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + catalogColumns + ` FROM catalog_items` + cond.where() + ` ORDER BY name`
	query += cond.page(filter.Page, filter.Limit)

	rows, err := r.db.Query(ctx, query, cond.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (*models.CatalogItem, error) {
	item, err := scanCatalogItem(r.db.QueryRow(ctx, `SELECT `+catalogColumns+` FROM catalog_items WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

// GetMany returns the requested items keyed by id; unknown ids are absent.
func (r *CatalogRepository) GetMany(ctx context.Context, ids []string) (map[string]models.CatalogItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+catalogColumns+` FROM catalog_items WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string]models.CatalogItem, len(ids))
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

func (r *CatalogRepository) Create(ctx context.Context, item *models.CatalogItem) error {
	query := `
		INSERT INTO catalog_items (kind, name, description, price, image_url, cloudinary_id, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING id, is_active, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		item.Kind, item.Name, item.Description, item.Price, item.ImageURL, item.CloudinaryID, item.Stock,
	).Scan(&item.ID, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
}

func (r *CatalogRepository) Update(ctx context.Context, item *models.CatalogItem) error {
	query := `
		UPDATE catalog_items SET name = $1, description = $2, price = $3, image_url = $4, cloudinary_id = $5,
			stock = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.Name, item.Description, item.Price, item.ImageURL, item.CloudinaryID,
		item.Stock, item.IsActive, item.ID,
	).Scan(&item.UpdatedAt)
	return mapError(err)
}

func (r *CatalogRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE catalog_items SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
