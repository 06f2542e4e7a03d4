package stores

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/VladisB/cosmarket/internal/domain"
	orderservice "github.com/VladisB/cosmarket/internal/service/orderservice"
	"github.com/VladisB/cosmarket/pkg/auth"
	"github.com/VladisB/cosmarket/pkg/utils"
)

type Service interface {
	UpdateItemStatus(ctx context.Context, userID int, storeSlug, itemSlug string, newStatus domain.ItemStatus) error
}

type StoreHandler struct {
	orderService Service
}

func New(orderService Service) *StoreHandler {
	return &StoreHandler{
		orderService: orderService,
	}
}

// UpdateItemStatus godoc
//
//	@Summary		Update an order item status
//	@Description	Move one fulfillment line to a new status on behalf of the store that sells it. The parent order status is recomputed in the same transaction.
//	@Tags			Stores
//	@Produce		json
//	@Security		BearerAuth
//	@Param			slug		path		string	true	"Store slug"
//	@Param			item_slug	path		string	true	"Order item slug"
//	@Param			new_status	path		int		true	"New item status code"
//	@Success		200			{object}	utils.Response	"Status updated"
//	@Failure		400			{object}	utils.Response	"Invalid, repeated or terminal status transition"
//	@Failure		401			{object}	utils.Response	"User not authorized"
//	@Failure		403			{object}	utils.Response	"Store belongs to another user"
//	@Failure		404			{object}	utils.Response	"Store or item not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/stores/{slug}/orders/{item_slug}/update-status/{new_status} [post]
func (h *StoreHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	storeSlug := chi.URLParam(r, "slug")
	itemSlug := chi.URLParam(r, "item_slug")

	newStatus, err := strconv.Atoi(chi.URLParam(r, "new_status"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	err = h.orderService.UpdateItemStatus(r.Context(), userID, storeSlug, itemSlug, domain.ItemStatus(newStatus))
	if err != nil {
		switch {
		case errors.Is(err, orderservice.ErrStoreNotFound), errors.Is(err, orderservice.ErrItemNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, orderservice.ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, orderservice.ErrInvalidStatus),
			errors.Is(err, orderservice.ErrSameStatus),
			errors.Is(err, orderservice.ErrItemFinal):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Status updated"})
}
