package transactionrepo

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

const txnColumns = `id, uuid, card_id, type, amount, status, order_id, order_item_id, seller_id, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(&txn.ID, &txn.UUID, &txn.CardID, &txn.Type, &txn.Amount, &txn.Status,
		&txn.OrderID, &txn.OrderItemID, &txn.SellerID, &txn.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan transaction", zap.Error(err))
		return nil, err
	}
	return &txn, nil
}

// Create appends a ledger record. The record is immutable afterwards apart
// from the Pending deposit status transition.
func (r *Repository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
        INSERT INTO transactions (uuid, card_id, type, amount, status, order_id, order_item_id, seller_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, txn.UUID, txn.CardID, txn.Type, txn.Amount, txn.Status,
		txn.OrderID, txn.OrderItemID, txn.SellerID).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		zap.L().Error("can't create transaction", zap.Error(err))
		return err
	}
	return nil
}

// GetByUUIDForUpdate locks the transaction row so a webhook replay cannot
// complete the same deposit twice.
func (r *Repository) GetByUUIDForUpdate(ctx context.Context, txnUUID string) (*domain.Transaction, error) {
	query := `
        SELECT ` + txnColumns + `
        FROM transactions
        WHERE uuid = $1
        FOR UPDATE
    `
	return scanTransaction(r.db.QueryRow(ctx, query, txnUUID))
}

// Finalize moves a Pending deposit to its terminal status and records the
// confirmed amount.
func (r *Repository) Finalize(ctx context.Context, id int, status string, amount int64) error {
	query := `
        UPDATE transactions
        SET status = $1, amount = $2
        WHERE id = $3
    `
	if _, err := r.db.Exec(ctx, query, status, amount, id); err != nil {
		zap.L().Error("can't finalize transaction", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListByCardID(ctx context.Context, cardID int) ([]domain.Transaction, error) {
	query := `
        SELECT ` + txnColumns + `
        FROM transactions
        WHERE card_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, cardID)
	if err != nil {
		zap.L().Error("can't list transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		err := rows.Scan(&txn.ID, &txn.UUID, &txn.CardID, &txn.Type, &txn.Amount, &txn.Status,
			&txn.OrderID, &txn.OrderItemID, &txn.SellerID, &txn.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
