package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VladisB/cosmarket/internal/config"
	"github.com/VladisB/cosmarket/pkg/clients"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

var ErrUnavailable = errors.New("payment gateway unavailable")

type createPaymentRequest struct {
	Amount   int64             `json:"amount"`
	Capture  bool              `json:"capture"`
	Metadata map[string]string `json:"metadata"`
}

type createPaymentResponse struct {
	ID           string `json:"id"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

// Client talks to the external payment gateway. Deposits are asynchronous:
// CreatePayment only returns the redirect URL, completion arrives on the
// webhook.
type Client struct {
	url    string
	shopID string
	secret string
	client clients.HTTPClientI
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		url:    cfg.GatewayAddress,
		shopID: cfg.GatewayShopID,
		secret: cfg.GatewaySecret,
		client: client,
	}
}

// CreatePayment registers a payment carrying the ledger transaction uuid in
// metadata so the webhook callback can correlate. Returns the confirmation
// URL the buyer is redirected to.
func (c *Client) CreatePayment(ctx context.Context, amount int64, txnUUID, cardUUID string) (string, error) {
	body, err := json.Marshal(createPaymentRequest{
		Amount:  amount,
		Capture: true,
		Metadata: map[string]string{
			"transaction_uuid": txnUUID,
			"card_uuid":        cardUUID,
		},
	})
	if err != nil {
		return "", err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Idempotence-Key", uuid.NewString())
	headers.Set("X-Shop-Id", c.shopID)

	url := c.url + "/api/payments"
	var statusCode int
	var respBody []byte

	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		statusCode, respBody, err = c.client.Post(ctx, url, headers, body)
		if err != nil || statusCode >= http.StatusInternalServerError {
			zap.L().Warn("gateway request failed, retrying",
				zap.Int("attempt", attempt), zap.Int("status", statusCode), zap.Error(err))
			if attempt < maxRetries {
				time.Sleep(retryInterval * time.Duration(attempt))
				continue
			}
			return "", fmt.Errorf("%w: after %d retries", ErrUnavailable, maxRetries)
		}
		break
	}

	if statusCode != http.StatusOK && statusCode != http.StatusCreated {
		zap.L().Error("gateway rejected payment", zap.Int("status", statusCode))
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, statusCode)
	}

	var resp createPaymentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if resp.Confirmation.ConfirmationURL == "" {
		return "", fmt.Errorf("%w: no confirmation url in response", ErrUnavailable)
	}
	return resp.Confirmation.ConfirmationURL, nil
}

// VerifySignature checks the webhook body against its HMAC-SHA256 hex
// signature. The callback path is unauthenticated otherwise.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
