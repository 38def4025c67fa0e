// internal/domain/payment/gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// InitializeResult is the gateway's answer to starting a transaction.
type InitializeResult struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
}

// VerifyResult is the gateway's view of a transaction's outcome.
// Status is the raw gateway status string ("success", "failed",
// "abandoned", ...).
type VerifyResult struct {
	Reference string
	Status    string
	Amount    int64
}

// Gateway abstracts the payment provider so the lifecycle logic can be
// exercised without network access.
type Gateway interface {
	Initialize(ctx context.Context, email string, amount int64, callbackURL string) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// PaystackClient talks to the Paystack REST API.
type PaystackClient struct {
	config     *config.PaystackConfig
	httpClient *http.Client
}

// NewPaystackClient creates a new Paystack gateway client
func NewPaystackClient(cfg *config.PaystackConfig) *PaystackClient {
	return &PaystackClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

// Initialize starts a transaction for the given amount in minor
// currency units and returns the reference and checkout URL.
func (c *PaystackClient) Initialize(ctx context.Context, email string, amount int64, callbackURL string) (*InitializeResult, error) {
	payload := map[string]interface{}{
		"email":        email,
		"amount":       amount,
		"callback_url": callbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize payload: %w", err)
	}

	url := c.config.BaseURL + "/transaction/initialize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	var data paystackInitializeData
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return &InitializeResult{
		Reference:        data.Reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}, nil
}

// Verify asks the gateway for the current outcome of a transaction.
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	url := c.config.BaseURL + "/transaction/verify/" + reference
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	var data paystackVerifyData
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return &VerifyResult{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount,
	}, nil
}

// do executes a request and decodes the Paystack envelope. Transport
// failures, non-2xx responses and envelope rejections all come back as
// gateway errors so callers treat them as transient.
func (c *PaystackClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Wrap(apperror.KindGateway, err, "paystack request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Wrap(apperror.KindGateway, err, "failed to read paystack response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperror.New(apperror.KindGateway, "paystack returned status %d: %s", resp.StatusCode, string(raw))
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apperror.Wrap(apperror.KindGateway, err, "failed to decode paystack response")
	}
	if !envelope.Status {
		return apperror.New(apperror.KindGateway, "paystack rejected request: %s", envelope.Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperror.Wrap(apperror.KindGateway, err, "failed to decode paystack data")
	}
	return nil
}
