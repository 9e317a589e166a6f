// Package relay holds thin clients for the third-party services the site
// fronts: the contact-form mailer, the call scheduler, and the image host.
// Each call reports a boolean outcome; callers decide how to surface failure.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/atelierhq/studio-platform/internal/app/metrics"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

const defaultTimeout = 15 * time.Second

// Client is the shared transport for outbound relay calls.
type Client struct {
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient constructs a relay transport. A zero timeout gets the default.
func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewDefault("relay")
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// postJSON sends body to url and returns the raw response bytes. Network
// failures and 5xx map to StoreUnavailable-style service errors so the HTTP
// layer surfaces them uniformly.
func (c *Client) postJSON(ctx context.Context, relay, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", relay, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", relay, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRelayRequest(relay, time.Since(start), false)
		return nil, apperrors.StoreUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	success := err == nil && resp.StatusCode < 300
	metrics.RecordRelayRequest(relay, time.Since(start), success)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 500 {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("%s responded %d", relay, resp.StatusCode))
	}
	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "message").String()
		if msg == "" {
			msg = fmt.Sprintf("%s responded %d", relay, resp.StatusCode)
		}
		return nil, apperrors.Validation(msg)
	}
	return raw, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(http.MaxBytesReader(nil, resp.Body, 1<<20)); err != nil {
		return nil, fmt.Errorf("read relay response: %w", err)
	}
	return buf.Bytes(), nil
}
