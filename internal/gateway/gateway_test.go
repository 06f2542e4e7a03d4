package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/VladisB/cosmarket/internal/config"
	"github.com/VladisB/cosmarket/pkg/clients"
)

func NewMock(t *testing.T) (*Client, *clients.MockHTTPClientI) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &config.Config{
		GatewayAddress: "http://localhost:8082",
		GatewayShopID:  "shop-1",
		GatewaySecret:  "test-secret",
	}
	client := clients.NewMockHTTPClientI(ctrl)
	return New(cfg, client), client
}

func TestCreatePayment(t *testing.T) {
	okBody := `{"id":"pay-1","confirmation":{"confirmation_url":"https://gateway.example/confirm/pay-1"}}`

	t.Run("payment registered", func(t *testing.T) {
		gw, client := NewMock(t)
		client.EXPECT().
			Post(gomock.Any(), "http://localhost:8082/api/payments", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, headers http.Header, body []byte) (int, []byte, error) {
				assert.Equal(t, "shop-1", headers.Get("X-Shop-Id"))
				assert.NotEmpty(t, headers.Get("Idempotence-Key"))

				var req createPaymentRequest
				assert.NoError(t, json.Unmarshal(body, &req))
				assert.Equal(t, int64(1000), req.Amount)
				assert.True(t, req.Capture)
				assert.Equal(t, "txn-uuid", req.Metadata["transaction_uuid"])
				assert.Equal(t, "card-uuid", req.Metadata["card_uuid"])
				return http.StatusOK, []byte(okBody), nil
			}).Times(1)

		url, err := gw.CreatePayment(context.Background(), 1000, "txn-uuid", "card-uuid")
		assert.NoError(t, err)
		assert.Equal(t, "https://gateway.example/confirm/pay-1", url)
	})

	t.Run("succeeds after transient failure", func(t *testing.T) {
		gw, client := NewMock(t)
		gomock.InOrder(
			client.EXPECT().
				Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(0, nil, errors.New("connection refused")),
			client.EXPECT().
				Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(http.StatusOK, []byte(okBody), nil),
		)

		url, err := gw.CreatePayment(context.Background(), 1000, "txn-uuid", "card-uuid")
		assert.NoError(t, err)
		assert.Equal(t, "https://gateway.example/confirm/pay-1", url)
	})

	t.Run("unavailable after retries", func(t *testing.T) {
		gw, client := NewMock(t)
		client.EXPECT().
			Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(http.StatusInternalServerError, nil, nil).
			Times(3)

		_, err := gw.CreatePayment(context.Background(), 1000, "txn-uuid", "card-uuid")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("rejected payment", func(t *testing.T) {
		gw, client := NewMock(t)
		client.EXPECT().
			Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(http.StatusUnprocessableEntity, []byte(`{"error":"invalid amount"}`), nil).
			Times(1)

		_, err := gw.CreatePayment(context.Background(), 1000, "txn-uuid", "card-uuid")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("missing confirmation url", func(t *testing.T) {
		gw, client := NewMock(t)
		client.EXPECT().
			Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(http.StatusOK, []byte(`{"id":"pay-1"}`), nil).
			Times(1)

		_, err := gw.CreatePayment(context.Background(), 1000, "txn-uuid", "card-uuid")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("context canceled", func(t *testing.T) {
		gw, _ := NewMock(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := gw.CreatePayment(ctx, 1000, "txn-uuid", "card-uuid")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestVerifySignature(t *testing.T) {
	gw, _ := NewMock(t)
	body := []byte(`{"event":"payment.succeeded","object":{"id":"txn-uuid"}}`)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, gw.VerifySignature(body, signature))
	assert.False(t, gw.VerifySignature(body, "deadbeef"))
	assert.False(t, gw.VerifySignature([]byte("tampered"), signature))
}
