package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/VladisB/cosmarket/internal/domain"
	"github.com/VladisB/cosmarket/internal/dto"
	"github.com/VladisB/cosmarket/internal/gateway"
	paymentservice "github.com/VladisB/cosmarket/internal/service/paymentservice"
	"github.com/VladisB/cosmarket/pkg/auth"
)

func NewMock(t *testing.T) (*CardHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func requestWithUUID(method, target, cardUUID string, body *bytes.Buffer) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, body)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uuid", cardUUID)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, auth.UserIDKey, 1)
	return r.WithContext(ctx)
}

func TestDepositHandler(t *testing.T) {
	userID := 1

	tests := []struct {
		name         string
		body         string
		prepareMock  func(service *MockService)
		expectedCode int
	}{
		{
			name: "deposit registered",
			body: `{"amount":1000}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().CreateDeposit(gomock.Any(), &userID, "card-uuid", int64(1000)).
					Return(&dto.DepositResponseDTO{
						TransactionUUID: "txn-uuid",
						ConfirmationURL: "https://gateway.example/pay/abc",
					}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "malformed body",
			body:         "{not json",
			prepareMock:  func(service *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "non-positive amount",
			body: `{"amount":0}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().CreateDeposit(gomock.Any(), &userID, "card-uuid", int64(0)).
					Return(nil, paymentservice.ErrInvalidAmount)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "gateway unavailable",
			body: `{"amount":1000}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().CreateDeposit(gomock.Any(), &userID, "card-uuid", int64(1000)).
					Return(nil, gateway.ErrUnavailable)
			},
			expectedCode: http.StatusBadGateway,
		},
		{
			name: "foreign card",
			body: `{"amount":1000}`,
			prepareMock: func(service *MockService) {
				service.EXPECT().CreateDeposit(gomock.Any(), &userID, "card-uuid", int64(1000)).
					Return(nil, paymentservice.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			r := requestWithUUID(http.MethodPost, "/api/cards/card-uuid/deposit", "card-uuid", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.Deposit(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetCardHandler(t *testing.T) {
	userID := 1

	t.Run("card with transactions", func(t *testing.T) {
		handler, service := NewMock(t)
		service.EXPECT().GetCard(gomock.Any(), &userID, "card-uuid").
			Return(&domain.Card{UUID: "card-uuid", CardNumber: "4561261212345467", Balance: 5000},
				[]domain.Transaction{{UUID: "t1", Type: domain.TxnDeposit, Amount: 1000, Status: domain.TxnStatusSuccess}}, nil)

		r := requestWithUUID(http.MethodGet, "/api/cards/card-uuid", "card-uuid", nil)
		w := httptest.NewRecorder()
		handler.GetCard(w, r)
		assert.Equal(t, http.StatusOK, w.Code)

		var body dto.CardResponseDTO
		err := json.NewDecoder(w.Body).Decode(&body)
		assert.NoError(t, err)
		assert.Equal(t, int64(5000), body.Balance)
		assert.Len(t, body.Transactions, 1)
	})

	t.Run("unknown card", func(t *testing.T) {
		handler, service := NewMock(t)
		service.EXPECT().GetCard(gomock.Any(), &userID, "missing").
			Return(nil, nil, paymentservice.ErrCardNotFound)

		r := requestWithUUID(http.MethodGet, "/api/cards/missing", "missing", nil)
		w := httptest.NewRecorder()
		handler.GetCard(w, r)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
