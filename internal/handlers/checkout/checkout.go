package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/dto"
	orderservice "github.com/VladisB/cosmarket/internal/service/orderservice"
	"github.com/VladisB/cosmarket/pkg/auth"
	"github.com/VladisB/cosmarket/pkg/utils"
)

type Service interface {
	Checkout(ctx context.Context, userID *int, in orderservice.CheckoutInput) (*domain.Order, error)
}

type CheckoutHandler struct {
	orderService Service
}

func New(orderService Service) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orderService,
	}
}

// Checkout godoc
//
//	@Summary		Place an order from a cart snapshot
//	@Description	Create an order in status Created. Works for both authenticated and anonymous buyers; anonymous buyers must supply contact, address and card details inline.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CheckoutRequestDTO	true	"Cart lines plus contact, address and payment selections"
//	@Success		201		{object}	dto.OrderResponseDTO	"Order created"
//	@Failure		400		{object}	utils.Response			"Empty cart or invalid input"
//	@Failure		403		{object}	utils.Response			"Referenced card or address belongs to another user"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/checkout [post]
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req dto.CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := orderservice.CheckoutInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		AddressID:   req.AddressID,
		Address:     req.Address,
		CardID:      req.CardID,
		CardNumber:  req.CardNumber,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, orderservice.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.Checkout(r.Context(), userID, in)
	if err != nil {
		var vErr *orderservice.ValidationError
		switch {
		case errors.Is(err, orderservice.ErrEmptyCart):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &vErr):
			utils.RespondWithError(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, orderservice.ErrOwnership):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dto.NewOrderResponse(order))
}
