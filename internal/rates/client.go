// Package rates fetches current exchange-rate snapshots from the public
// open.er-api.com provider. Rates are illustrative current-value snapshots:
// no caching, no retries — a failed fetch is surfaced as ErrRateUnavailable
// and the caller decides whether to re-issue.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fxplay/currencyquiz/internal/quiz"
)

const DefaultBaseURL = "https://open.er-api.com"

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a provider client. baseURL may be empty to use the public
// endpoint; httpClient may be nil for a default with a sane timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type latestResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Latest fetches the snapshot for one unit of the base currency.
func (c *Client) Latest(ctx context.Context, base string) (quiz.Snapshot, error) {
	url := fmt.Sprintf("%s/v6/latest/%s", c.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", quiz.ErrRateUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s rates: %w", quiz.ErrRateUnavailable, base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %d for %s", quiz.ErrRateUnavailable, resp.StatusCode, base)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding %s rates: %w", quiz.ErrRateUnavailable, base, err)
	}
	if body.Result != "success" || len(body.Rates) == 0 {
		return nil, fmt.Errorf("%w: provider result %q for %s", quiz.ErrRateUnavailable, body.Result, base)
	}

	return quiz.Snapshot(body.Rates), nil
}
