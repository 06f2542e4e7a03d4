package userrepo

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

func (r *Repository) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	query := `
        SELECT id, login, first_name, phone_number, email, created_at
        FROM users
        WHERE id = $1
    `
	var user domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Login, &user.FirstName, &user.PhoneNumber, &user.Email, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetAddressByID(ctx context.Context, id int) (*domain.Address, error) {
	query := `
        SELECT id, user_id, address, created_at
        FROM addresses
        WHERE id = $1
    `
	var addr domain.Address
	err := r.db.QueryRow(ctx, query, id).Scan(&addr.ID, &addr.UserID, &addr.Address, &addr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get address", zap.Error(err))
		return nil, err
	}
	return &addr, nil
}

// CreateAddress persists an address; userID nil makes an ownerless address
// used by anonymous checkout.
func (r *Repository) CreateAddress(ctx context.Context, userID *int, address string) (*domain.Address, error) {
	query := `
        INSERT INTO addresses (user_id, address)
        VALUES ($1, $2)
        RETURNING id, user_id, address, created_at
    `
	var addr domain.Address
	err := r.db.QueryRow(ctx, query, userID, address).Scan(&addr.ID, &addr.UserID, &addr.Address, &addr.CreatedAt)
	if err != nil {
		zap.L().Error("can't create address", zap.Error(err))
		return nil, err
	}
	return &addr, nil
}
