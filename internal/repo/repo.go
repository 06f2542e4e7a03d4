package repo

import (
	"github.com/VladisB/cosmarket/internal/pg"
	cardrepo "github.com/VladisB/cosmarket/internal/repo/card-repo"
	orderrepo "github.com/VladisB/cosmarket/internal/repo/order-repo"
	productrepo "github.com/VladisB/cosmarket/internal/repo/product-repo"
	storerepo "github.com/VladisB/cosmarket/internal/repo/store-repo"
	transactionrepo "github.com/VladisB/cosmarket/internal/repo/transaction-repo"
	userrepo "github.com/VladisB/cosmarket/internal/repo/user-repo"
)

type Repositories struct {
	OrderRepo       *orderrepo.Repository
	ProductRepo     *productrepo.Repository
	CardRepo        *cardrepo.Repository
	UserRepo        *userrepo.Repository
	StoreRepo       *storerepo.Repository
	TransactionRepo *transactionrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		OrderRepo:       orderrepo.New(conn, txManager),
		ProductRepo:     productrepo.New(conn),
		CardRepo:        cardrepo.New(conn),
		UserRepo:        userrepo.New(conn),
		StoreRepo:       storerepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
	}
}
