// Package pipeline is an HTTP client for the API's machine-to-machine
// endpoints, used by the scheduled syncer when it runs apart from the API.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"finsight/internal/services"
)

// Client calls the pipeline endpoints with an API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a pipeline client for the API at baseURL.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// SyncAllUsers triggers a sync of every user and returns the run summary.
func (c *Client) SyncAllUsers(ctx context.Context) (*services.SyncAllResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/pipeline/sync", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("triggering sync: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error.Code != "" {
			return nil, fmt.Errorf("triggering sync: unexpected status %d (%s)", resp.StatusCode, body.Error.Code)
		}
		return nil, fmt.Errorf("triggering sync: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Sync services.SyncAllResult `json:"sync"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding sync response: %w", err)
	}
	return &result.Sync, nil
}
