package cards

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/dto"
	"github.com/VladisB/cosmarket/internal/gateway"
	paymentservice "github.com/VladisB/cosmarket/internal/service/paymentservice"
	"github.com/VladisB/cosmarket/pkg/auth"
	"github.com/VladisB/cosmarket/pkg/utils"
)

type Service interface {
	CreateDeposit(ctx context.Context, userID *int, cardUUID string, amount int64) (*dto.DepositResponseDTO, error)
	GetCard(ctx context.Context, userID *int, cardUUID string) (*domain.Card, []domain.Transaction, error)
}

type CardHandler struct {
	paymentService Service
}

func New(paymentService Service) *CardHandler {
	return &CardHandler{
		paymentService: paymentService,
	}
}

// Deposit godoc
//
//	@Summary		Top up a card
//	@Description	Open a pending deposit and register it with the payment gateway. The balance is credited when the gateway webhook confirms; the response carries the confirmation URL to redirect the buyer to.
//	@Tags			Cards
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			uuid	path		string					true	"Card uuid"
//	@Param			request	body		dto.DepositRequestDTO	true	"Deposit amount in minor units"
//	@Success		201		{object}	dto.DepositResponseDTO
//	@Failure		400		{object}	utils.Response	"Non-positive amount"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Card belongs to another user"
//	@Failure		404		{object}	utils.Response	"Card not found"
//	@Failure		502		{object}	utils.Response	"Payment gateway unavailable"
//	@Router			/api/cards/{uuid}/deposit [post]
func (h *CardHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	cardUUID := chi.URLParam(r, "uuid")

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.paymentService.CreateDeposit(r.Context(), userID, cardUUID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, paymentservice.ErrInvalidAmount):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, paymentservice.ErrCardNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, paymentservice.ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, gateway.ErrUnavailable):
			utils.RespondWithError(w, http.StatusBadGateway, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// GetCard godoc
//
//	@Summary		Get a card with its transactions
//	@Description	Retrieve the card balance and its ledger history, newest first.
//	@Tags			Cards
//	@Produce		json
//	@Security		BearerAuth
//	@Param			uuid	path		string	true	"Card uuid"
//	@Success		200		{object}	dto.CardResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Card belongs to another user"
//	@Failure		404		{object}	utils.Response	"Card not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/cards/{uuid} [get]
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	cardUUID := chi.URLParam(r, "uuid")

	card, txns, err := h.paymentService.GetCard(r.Context(), userID, cardUUID)
	if err != nil {
		switch {
		case errors.Is(err, paymentservice.ErrCardNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, paymentservice.ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	resp := dto.CardResponseDTO{
		UUID:       card.UUID,
		CardNumber: card.CardNumber,
		Balance:    card.Balance,
	}
	for _, txn := range txns {
		resp.Transactions = append(resp.Transactions, dto.TransactionResponseDTO{
			UUID:      txn.UUID,
			Type:      txn.Type,
			Amount:    txn.Amount,
			Status:    txn.Status,
			CreatedAt: txn.CreatedAt.Format(time.RFC3339),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
