package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to wallet-service. Credit carries an idempotency key so
// a retried settlement credit is deduplicated by the wallet itself.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

type creditRequest struct {
	UserID      string `json:"userId"`
	AmountKyat  int64  `json:"amount_kyat"`
	Reason      string `json:"reason"`
	ExternalRef string `json:"external_ref"` // idempotency key
}

type commitRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}

func (c *Client) Credit(ctx context.Context, userID string, amountKyat int64, reason, idempotencyKey string) error {
	return c.post(ctx, "/wallet/credit", creditRequest{
		UserID:      userID,
		AmountKyat:  amountKyat,
		Reason:      reason,
		ExternalRef: idempotencyKey,
	})
}

func (c *Client) CommitStake(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/commit", commitRequest{UserID: userID, ExternalRef: externalRef})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet %s http %d", path, res.StatusCode)
	}
	return nil
}
