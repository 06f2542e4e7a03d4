package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/VladisB/cosmarket/internal/dto"
	paymentservice "github.com/VladisB/cosmarket/internal/service/paymentservice"
	"github.com/VladisB/cosmarket/pkg/utils"
)

type Service interface {
	HandleCallback(ctx context.Context, cb *dto.CallbackDTO) error
}

type Verifier interface {
	VerifySignature(body []byte, signature string) bool
}

type PaymentHandler struct {
	paymentService Service
	verifier       Verifier
}

func New(paymentService Service, verifier Verifier) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		verifier:       verifier,
	}
}

// Callback godoc
//
//	@Summary		Payment gateway webhook
//	@Description	Complete a pending deposit from a gateway event. The body must carry a valid HMAC signature; replays of an already finalized transaction are acknowledged without effect.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Signature	header		string			true	"HMAC-SHA256 hex signature of the body"
//	@Param			request		body		dto.CallbackDTO	true	"Gateway event"
//	@Success		200			{object}	utils.Response	"Event processed"
//	@Failure		400			{object}	utils.Response	"Unrecognized event or malformed body"
//	@Failure		403			{object}	utils.Response	"Invalid signature"
//	@Failure		404			{object}	utils.Response	"Unknown transaction"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/payment-callback [post]
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if !h.verifier.VerifySignature(body, r.Header.Get("X-Signature")) {
		utils.RespondWithError(w, http.StatusForbidden, "Invalid signature")
		return
	}

	var cb dto.CallbackDTO
	if err := json.Unmarshal(body, &cb); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.paymentService.HandleCallback(r.Context(), &cb); err != nil {
		switch {
		case errors.Is(err, paymentservice.ErrUnrecognizedEvent):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, paymentservice.ErrTransactionNotFound),
			errors.Is(err, paymentservice.ErrCardNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Event processed"})
}
