package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/atelierhq/studio-platform/internal/app/metrics"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

const maxUploadBytes = 10 << 20

// UploadResult describes a stored image.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Bytes    int64  `json:"bytes"`
}

// UploadClient pushes image files to the hosting provider using its unsigned
// preset upload endpoint.
type UploadClient struct {
	client   *Client
	endpoint string
	preset   string
}

// NewUploadClient constructs an upload client. preset names the provider-side
// unsigned upload preset.
func NewUploadClient(client *Client, endpoint, preset string) *UploadClient {
	return &UploadClient{client: client, endpoint: endpoint, preset: preset}
}

// Upload streams the file to the provider and returns the hosted URL.
func (u *UploadClient) Upload(ctx context.Context, filename string, file io.Reader) (UploadResult, error) {
	if filename == "" {
		return UploadResult{}, apperrors.Validation("filename is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("upload_preset", u.preset); err != nil {
		return UploadResult{}, fmt.Errorf("write preset field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create form file: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if n > maxUploadBytes {
		return UploadResult{}, apperrors.Validation("file exceeds the 10MB upload limit")
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := u.client.httpClient.Do(req)
	if err != nil {
		metrics.RecordRelayRequest("uploads", time.Since(start), false)
		return UploadResult{}, apperrors.StoreUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	success := err == nil && resp.StatusCode < 300
	metrics.RecordRelayRequest("uploads", time.Since(start), success)
	if err != nil {
		return UploadResult{}, err
	}
	if resp.StatusCode >= 500 {
		return UploadResult{}, apperrors.StoreUnavailable(fmt.Errorf("upload provider responded %d", resp.StatusCode))
	}
	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = fmt.Sprintf("upload provider responded %d", resp.StatusCode)
		}
		return UploadResult{}, apperrors.Validation(msg)
	}

	result := UploadResult{
		URL:      gjson.GetBytes(raw, "secure_url").String(),
		PublicID: gjson.GetBytes(raw, "public_id").String(),
		Bytes:    gjson.GetBytes(raw, "bytes").Int(),
	}
	if result.URL == "" {
		return UploadResult{}, apperrors.StoreUnavailable(nil)
	}

	u.client.log.WithField("public_id", result.PublicID).Info("image uploaded")
	return result, nil
}
