package orders

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/dto"
	orderservice "github.com/VladisB/cosmarket/internal/service/orderservice"
	paymentservice "github.com/VladisB/cosmarket/internal/service/paymentservice"
	"github.com/VladisB/cosmarket/pkg/auth"
	"github.com/VladisB/cosmarket/pkg/utils"
)

type Service interface {
	GetOrders(ctx context.Context, userID int) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID *int, slug string) (*domain.Order, error)
}

type PaymentService interface {
	PayOrder(ctx context.Context, userID *int, slug string) (*domain.Order, error)
}

type OrderHandler struct {
	orderService   Service
	paymentService PaymentService
}

func New(orderService Service, paymentService PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

// GetOrders godoc
//
//	@Summary		Get orders list for the buyer
//	@Description	Retrieve the authorized buyer's orders, newest first.
//	@Tags			Orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.OrderResponseDTO
//	@Failure		204	{object}	utils.Response	"No data available"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	orders, err := h.orderService.GetOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(orders) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}

	var response []dto.OrderResponseDTO
	for i := range orders {
		response = append(response, dto.NewOrderResponse(&orders[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetOrder godoc
//
//	@Summary		Get order detail
//	@Description	Retrieve one order with its items by slug. Orders placed anonymously are readable by anyone holding the slug.
//	@Tags			Orders
//	@Produce		json
//	@Param			slug	path		string	true	"Order slug"
//	@Success		200		{object}	dto.OrderResponseDTO
//	@Failure		403		{object}	utils.Response	"Order belongs to another user"
//	@Failure		404		{object}	utils.Response	"Order not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{slug} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	slug := chi.URLParam(r, "slug")

	order, err := h.orderService.GetOrder(r.Context(), userID, slug)
	if err != nil {
		switch {
		case errors.Is(err, orderservice.ErrOrderNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, orderservice.ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

// PayOrder godoc
//
//	@Summary		Pay for an order
//	@Description	Settle the order from the attached card: debit the buyer, credit every seller minus the platform commission, decrement stock and mark the order Paid. All or nothing.
//	@Tags			Orders
//	@Produce		json
//	@Param			slug	path		string	true	"Order slug"
//	@Success		200		{object}	dto.OrderResponseDTO	"Order settled"
//	@Failure		400		{object}	utils.Response			"Insufficient funds, unavailable product or order not payable"
//	@Failure		404		{object}	utils.Response			"Order not found"
//	@Failure		405		{object}	utils.Response			"Order belongs to another user"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/orders/{slug}/pay [post]
func (h *OrderHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	slug := chi.URLParam(r, "slug")

	order, err := h.paymentService.PayOrder(r.Context(), userID, slug)
	if err != nil {
		switch {
		case errors.Is(err, paymentservice.ErrOrderNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, paymentservice.ErrForbidden):
			utils.RespondWithError(w, http.StatusMethodNotAllowed, err.Error())
		case errors.Is(err, paymentservice.ErrInvalidState),
			errors.Is(err, paymentservice.ErrInsufficientFunds),
			errors.Is(err, paymentservice.ErrProductUnavailable):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}
