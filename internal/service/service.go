package service

import (
	"github.com/VladisB/cosmarket/internal/config"
	"github.com/VladisB/cosmarket/internal/gateway"
	"github.com/VladisB/cosmarket/internal/notify"
	"github.com/VladisB/cosmarket/internal/pg"
	"github.com/VladisB/cosmarket/internal/repo"
	orderservice "github.com/VladisB/cosmarket/internal/service/orderservice"
	paymentservice "github.com/VladisB/cosmarket/internal/service/paymentservice"
)

type Services struct {
	OrderService   *orderservice.Service
	PaymentService *paymentservice.Service
}

func New(cfg *config.Config, repo *repo.Repositories, txManager pg.TXManager,
	gw *gateway.Client, notifier *notify.Service) *Services {
	orderService := orderservice.New(repo.OrderRepo, repo.ProductRepo, repo.CardRepo,
		repo.UserRepo, repo.StoreRepo, txManager, notifier)
	paymentService := paymentservice.New(repo.OrderRepo, repo.CardRepo, repo.StoreRepo,
		repo.ProductRepo, repo.TransactionRepo, gw, txManager, notifier, cfg)

	return &Services{
		OrderService:   orderService,
		PaymentService: paymentService,
	}
}
