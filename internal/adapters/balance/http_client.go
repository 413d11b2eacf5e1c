// Package balance provides adapters for the remote balance-of-record
// service. Both adapters are synchronous: AdjustBalance returns only once
// the peer has confirmed (or refused) the adjustment.
package balance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	portsgw "github.com/digiwallet/wallet_backend/internal/core/ports/gateways"
)

// HTTPAdjuster calls a peer deployment's update-balance endpoint.
type HTTPAdjuster struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// NewHTTPAdjuster creates an adjuster for the peer at baseURL. The token
// is sent on the Authorization header; timeout caps each call.
func NewHTTPAdjuster(baseURL, apiToken string, timeout time.Duration) *HTTPAdjuster {
	return &HTTPAdjuster{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: timeout},
	}
}

var _ portsgw.BalanceAdjuster = (*HTTPAdjuster)(nil)

type adjustRequest struct {
	Email  string `json:"email"`
	Amount int64  `json:"amount"`
}

// AdjustBalance posts the signed delta to the peer and treats anything
// but a 2xx as failure.
func (a *HTTPAdjuster) AdjustBalance(ctx context.Context, email string, delta int64) error {
	body, err := json.Marshal(adjustRequest{Email: email, Amount: delta})
	if err != nil {
		return fmt.Errorf("failed to encode adjustment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/user/updatebalance", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build adjustment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiToken != "" {
		req.Header.Set("Authorization", a.apiToken)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("balance service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for the error message.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("balance service returned %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
