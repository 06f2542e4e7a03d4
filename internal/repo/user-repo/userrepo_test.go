package userrepo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_GetUserByID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "login", "first_name", "phone_number", "email", "created_at"}).
		AddRow(7, "anna", "Anna", "79261234567", "anna@example.com", now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, login, first_name, phone_number, email, created_at FROM users WHERE id = $1`)).
		WithArgs(7).
		WillReturnRows(rows)

	user, err := repo.GetUserByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "Anna", user.FirstName)
}

func TestRepository_GetAddressByID(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, address, created_at FROM addresses WHERE id = $1`)).
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	addr, err := repo.GetAddressByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, addr)
}

func TestRepository_CreateAddress(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	userID := 7

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO addresses (user_id, address) VALUES ($1, $2) RETURNING id, user_id, address, created_at`)).
		WithArgs(&userID, "Moscow, Arbat st. 1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "address", "created_at"}).
			AddRow(3, &userID, "Moscow, Arbat st. 1", now))

	addr, err := repo.CreateAddress(context.Background(), &userID, "Moscow, Arbat st. 1")
	assert.NoError(t, err)
	assert.Equal(t, 3, addr.ID)
	assert.Equal(t, "Moscow, Arbat st. 1", addr.Address)
}
