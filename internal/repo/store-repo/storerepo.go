package storerepo

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

const storeColumns = `id, slug, title, owner_id, balance, created_at`

func scanStore(row pgx.Row) (*domain.Store, error) {
	var store domain.Store
	err := row.Scan(&store.ID, &store.Slug, &store.Title, &store.OwnerID, &store.Balance, &store.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan store", zap.Error(err))
		return nil, err
	}
	return &store, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Store, error) {
	query := `
        SELECT ` + storeColumns + `
        FROM stores
        WHERE id = $1
    `
	return scanStore(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	query := `
        SELECT ` + storeColumns + `
        FROM stores
        WHERE slug = $1
    `
	return scanStore(r.db.QueryRow(ctx, query, slug))
}

// AddBalance credits (or debits) a store. Settlement calls it once per store
// inside the settlement transaction.
func (r *Repository) AddBalance(ctx context.Context, storeID int, delta int64) error {
	query := `
        UPDATE stores
        SET balance = balance + $1
        WHERE id = $2
    `
	if _, err := r.db.Exec(ctx, query, delta, storeID); err != nil {
		zap.L().Error("can't update store balance", zap.Error(err))
		return err
	}
	return nil
}
