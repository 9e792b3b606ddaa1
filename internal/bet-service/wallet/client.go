package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	walletdto "github.com/mm2d3d/lottery-platform/internal/bet-service/wallet/dto"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) Reserve(ctx context.Context, userID string, kyat int64, externalRef string) (string, error) {
	body, _ := json.Marshal(walletdto.ReserveRequest{UserID: userID, AmountKyat: kyat, ExternalRef: externalRef})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/reserve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return "", fmt.Errorf("wallet reserve http %d", res.StatusCode)
	}
	var out walletdto.ReserveResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ReservationID, nil
}

func (c *Client) Refund(ctx context.Context, userID, externalRef string) error {
	body, _ := json.Marshal(walletdto.RefundRequest{UserID: userID, ExternalRef: externalRef})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/refund", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet refund http %d", res.StatusCode)
	}
	return nil
}
