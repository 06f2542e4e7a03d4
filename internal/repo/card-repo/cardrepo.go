package cardrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

const cardColumns = `id, uuid, user_id, card_number, balance, created_at`

func (r *Repository) scanCard(row pgx.Row) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(&card.ID, &card.UUID, &card.UserID, &card.CardNumber, &card.Balance, &card.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't scan card", zap.Error(err))
		return nil, err
	}
	return &card, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Card, error) {
	query := `
        SELECT ` + cardColumns + `
        FROM cards
        WHERE id = $1
    `
	return r.scanCard(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetByUUID(ctx context.Context, cardUUID string) (*domain.Card, error) {
	query := `
        SELECT ` + cardColumns + `
        FROM cards
        WHERE uuid = $1
    `
	return r.scanCard(r.db.QueryRow(ctx, query, cardUUID))
}

// GetByIDForUpdate locks the card row for the current transaction to
// serialize concurrent balance mutations.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int) (*domain.Card, error) {
	query := `
        SELECT ` + cardColumns + `
        FROM cards
        WHERE id = $1
        FOR UPDATE
    `
	return r.scanCard(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetByUUIDForUpdate(ctx context.Context, cardUUID string) (*domain.Card, error) {
	query := `
        SELECT ` + cardColumns + `
        FROM cards
        WHERE uuid = $1
        FOR UPDATE
    `
	return r.scanCard(r.db.QueryRow(ctx, query, cardUUID))
}

// Create persists a card; userID nil makes an ownerless card used by
// anonymous checkout.
func (r *Repository) Create(ctx context.Context, userID *int, cardNumber string) (*domain.Card, error) {
	query := `
        INSERT INTO cards (uuid, user_id, card_number, balance)
        VALUES ($1, $2, $3, 0)
        RETURNING ` + cardColumns + `
    `
	card, err := r.scanCard(r.db.QueryRow(ctx, query, uuid.NewString(), userID, cardNumber))
	if err != nil {
		zap.L().Error("can't create card", zap.Error(err))
		return nil, err
	}
	return card, nil
}

// AddBalance applies a signed delta to the card balance. The balance CHECK
// constraint backs the service-level funds check.
func (r *Repository) AddBalance(ctx context.Context, cardID int, delta int64) error {
	query := `
        UPDATE cards
        SET balance = balance + $1
        WHERE id = $2
    `
	if _, err := r.db.Exec(ctx, query, delta, cardID); err != nil {
		zap.L().Error("can't update card balance", zap.Error(err))
		return err
	}
	return nil
}
