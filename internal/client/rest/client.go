// Package rest implements the IdentityAPI and CartAPI boundaries against the
// storefront's REST backend, classifying transport failures into the domain
// error taxonomy and normalizing the historically inconsistent cart payload
// shapes in one place.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltmart/storefront/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

// Client talks to the storefront REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient returns a Client rooted at baseURL. A nil httpClient gets a
// default with a request timeout.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, http: httpClient, log: log}
}

// do issues a request and decodes a 2xx response body into out (skipped when
// out is nil). 401/403 map to domain.ErrUnauthenticated, every other failure
// to domain.ErrRequestFailed.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrInvalidResponse, method, path, err)
	}
	return nil
}

// doRaw issues a request and returns the undecoded 2xx response body.
func (c *Client) doRaw(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %v", domain.ErrRequestFailed, method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s %s: status %d", domain.ErrUnauthenticated, method, path, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s %s: status %d", domain.ErrRequestFailed, method, path, resp.StatusCode)
	}

	return raw, nil
}
