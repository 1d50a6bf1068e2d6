// Package functions calls the serverless validation functions over
// JSON HTTP. The client implements validation.RemoteValidator; the
// built-in net/http client is enough here since the functions speak
// plain JSON with an API key header.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wm-metals/trade-api/internal/config"
	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a functions client from configuration. Returns nil
// when no base URL is configured, which disables remote validation.
func NewClient(cfg *config.FunctionsConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}
}

type validateRequest struct {
	Entity  string      `json:"entity"`
	Payload interface{} `json:"payload"`
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Validate posts the payload to the validate-{entity} function and
// returns its field error map. A nil map means the function accepted
// the payload.
func (c *Client) Validate(ctx context.Context, entity string, payload interface{}) (map[string]string, error) {
	body, err := json.Marshal(validateRequest{Entity: entity, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode validation request: %w", err)
	}

	url := fmt.Sprintf("%s/validate-%s", c.baseURL, entity)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validation function unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("validation function returned status %d", resp.StatusCode)
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode validation response: %w", err)
	}

	if out.Valid {
		return nil, nil
	}
	if len(out.Errors) == 0 {
		// Rejected without details; surface a generic field error
		return map[string]string{"payload": "rejected by remote validation"}, nil
	}
	return out.Errors, nil
}
