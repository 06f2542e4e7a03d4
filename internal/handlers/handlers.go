package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/VladisB/cosmarket/docs"
	"github.com/VladisB/cosmarket/internal/gateway"
	cardshandlers "github.com/VladisB/cosmarket/internal/handlers/cards"
	checkouthandlers "github.com/VladisB/cosmarket/internal/handlers/checkout"
	ordershandlers "github.com/VladisB/cosmarket/internal/handlers/orders"
	paymentshandlers "github.com/VladisB/cosmarket/internal/handlers/payments"
	storeshandlers "github.com/VladisB/cosmarket/internal/handlers/stores"
	"github.com/VladisB/cosmarket/internal/service"
	"github.com/VladisB/cosmarket/pkg/auth"
	"github.com/VladisB/cosmarket/pkg/metrics"
)

type CheckoutHandler interface {
	Checkout(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	GetOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	PayOrder(w http.ResponseWriter, r *http.Request)
}

type StoreHandler interface {
	UpdateItemStatus(w http.ResponseWriter, r *http.Request)
}

type CardHandler interface {
	Deposit(w http.ResponseWriter, r *http.Request)
	GetCard(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Callback(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	CheckoutHandler CheckoutHandler
	OrderHandler    OrderHandler
	StoreHandler    StoreHandler
	CardHandler     CardHandler
	PaymentHandler  PaymentHandler
}

func New(s *service.Services, gw *gateway.Client) *Handlers {
	return &Handlers{
		CheckoutHandler: checkouthandlers.New(s.OrderService),
		OrderHandler:    ordershandlers.New(s.OrderService, s.PaymentService),
		StoreHandler:    storeshandlers.New(s.OrderService),
		CardHandler:     cardshandlers.New(s.PaymentService),
		PaymentHandler:  paymentshandlers.New(s.PaymentService, gw),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/payment-callback", h.PaymentHandler.Callback)

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth)
			r.Post("/checkout", h.CheckoutHandler.Checkout)
			r.Get("/orders/{slug}", h.OrderHandler.GetOrder)
			r.Post("/orders/{slug}/pay", h.OrderHandler.PayOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/orders", h.OrderHandler.GetOrders)
			r.Route("/cards/{uuid}", func(r chi.Router) {
				r.Get("/", h.CardHandler.GetCard)
				r.Post("/deposit", h.CardHandler.Deposit)
			})
			r.Post("/stores/{slug}/orders/{item_slug}/update-status/{new_status}", h.StoreHandler.UpdateItemStatus)
		})
	})

	return r
}
