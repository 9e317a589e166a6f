// Package docstore implements the storage interfaces against a PostgREST
// style document database (Supabase and compatibles).
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

const (
	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

// Config holds document store connection settings.
type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// Client is a thin REST client for the document store.
type Client struct {
	url        string
	serviceKey string
	httpClient *http.Client
}

// NewClient validates the configuration and builds a client.
func NewClient(cfg Config) (*Client, error) {
	url := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if url == "" {
		return nil, fmt.Errorf("docstore URL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		url:        url,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// statusError distinguishes store rejections from transport failures so the
// caller can fall back on a missing-index 400 without retrying real outages.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("document store error %d: %s", e.status, e.message)
}

// request performs one REST call against a table. extraHeaders may override
// the default Prefer header.
func (c *Client) request(ctx context.Context, method, table string, body interface{}, query string, extraHeaders map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.url, table)
	if query != "" {
		url += "?" + query
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Prefer", "return=representation")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := strings.TrimSpace(string(raw))
		// PostgREST wraps the cause in a JSON "message" field.
		if parsed := gjson.GetBytes(raw, "message"); parsed.Exists() {
			msg = parsed.String()
		}
		if resp.StatusCode >= 500 {
			return nil, apperrors.StoreUnavailable(&statusError{status: resp.StatusCode, message: msg})
		}
		return nil, &statusError{status: resp.StatusCode, message: msg}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("read response: %w", err))
	}
	return respBody, nil
}

// isQueryRejected reports whether the store rejected the request itself, for
// example an order clause on a column with no index.
func isQueryRejected(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusBadRequest
}

// isMissing reports whether the store answered 404 for the addressed row.
func isMissing(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusNotFound
}
