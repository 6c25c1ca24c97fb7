package preferences

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 15 * time.Second
	themePath      = "/api/preferences/theme"
)

// ErrUnavailable wraps any transport or server failure of the remote
// preference store. Callers treat it as non-fatal.
var ErrUnavailable = errors.New("preferences: store unavailable")

// ClientConfig describes how the preference store client should be
// initialised. Authentication travels with the injected HTTPClient (for
// example a cookie-jar client holding the session).
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is the HTTP implementation of Store against the preference API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client for the given preference API endpoint.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("preferences: base URL must not be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Fetch retrieves the stored preference.
func (c *Client) Fetch(ctx context.Context) (Preference, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+themePath, nil)
	if err != nil {
		return Preference{}, fmt.Errorf("preferences: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Preference{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Preference{}, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return Preference{}, fmt.Errorf("preferences: decode response: %w", err)
	}
	return pref, nil
}

// Save writes the preference back to the store.
func (c *Client) Save(ctx context.Context, pref Preference) error {
	body, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("preferences: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+themePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("preferences: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}
	return nil
}
