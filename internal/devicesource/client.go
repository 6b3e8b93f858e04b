// Package devicesource fetches raw activity batches from the external
// device-data API. The payload shape is untrusted; validation happens in the
// domain layer.
package devicesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"example.com/wellness/internal/domain"
)

// Client talks to the device-data HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchActivity retrieves the pending device batch for a user.
func (c *Client) FetchActivity(ctx context.Context, userID string) ([]domain.DeviceRecord, error) {
	endpoint := fmt.Sprintf("%s/device-activity?user_id=%s", c.baseURL, url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device api returned status %d", resp.StatusCode)
	}

	var batch []domain.DeviceRecord
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("device api payload: %w", err)
	}
	return batch, nil
}
