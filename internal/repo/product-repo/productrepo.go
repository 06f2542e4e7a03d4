package productrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `
        SELECT id, store_id, title, price, discount, in_stock, is_active
        FROM products
        WHERE id = $1
    `
	var p domain.Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.StoreID, &p.Title, &p.Price, &p.Discount, &p.InStock, &p.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get product", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// DecrementStock atomically takes quantity units off a tracked product.
// Products with NULL in_stock do not track stock and always succeed.
// Returns false when the product is inactive or has fewer than quantity
// units left; the caller is expected to abort its transaction.
func (r *Repository) DecrementStock(ctx context.Context, productID, quantity int) (bool, error) {
	query := `
        UPDATE products
        SET in_stock = in_stock - $2
        WHERE id = $1 AND in_stock IS NOT NULL AND in_stock >= $2 AND is_active
    `
	tag, err := r.db.Exec(ctx, query, productID, quantity)
	if err != nil {
		zap.L().Error("can't decrement stock", zap.Error(err))
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var tracked bool
	check := `
        SELECT in_stock IS NOT NULL
        FROM products
        WHERE id = $1
    `
	if err := r.db.QueryRow(ctx, check, productID).Scan(&tracked); err != nil {
		zap.L().Error("can't check product stock tracking", zap.Error(err))
		return false, err
	}
	return !tracked, nil
}
