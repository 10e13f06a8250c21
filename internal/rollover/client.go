// Package rollover triggers the API's period rollover for automatic budgets.
package rollover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"budgetbuddy/internal/services"
)

// Path is the pipeline endpoint the client calls, relative to the API URL.
const Path = "/api/v1/pipeline/budgets/rollover"

// Client calls the rollover pipeline endpoint.
type Client struct {
	url    string
	apiKey string
	client *http.Client
	log    *zap.SugaredLogger
}

// NewClient creates a rollover client for the API at baseURL.
func NewClient(baseURL, apiKey string, httpClient *http.Client, log *zap.SugaredLogger) *Client {
	return &Client{
		url:    strings.TrimRight(baseURL, "/") + Path,
		apiKey: apiKey,
		client: httpClient,
		log:    log,
	}
}

type response struct {
	Rollover services.RolloverResult `json:"rollover"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Run asks the API to archive every automatic budget whose period ended
// before now.
func (c *Client) Run(ctx context.Context, now time.Time) (*services.RolloverResult, error) {
	body, err := json.Marshal(map[string]time.Time{"now": now})
	if err != nil {
		return nil, fmt.Errorf("marshaling rollover request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("running rollover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Code != "" {
			return nil, fmt.Errorf("running rollover: unexpected status %d: %s", resp.StatusCode, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("running rollover: unexpected status %d", resp.StatusCode)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding rollover response: %w", err)
	}

	c.log.Infow("rollover completed",
		"checked", result.Rollover.Checked,
		"archived", result.Rollover.Archived,
		"failed", result.Rollover.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &result.Rollover, nil
}
