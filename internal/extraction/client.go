package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single extraction request.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps the decoded response body.
const maxResponseBytes = 4 << 20

// ClientConfig configures the HTTP extraction client.
type ClientConfig struct {
	// Endpoint receives the raw image as the POST body.
	Endpoint string
	Timeout  time.Duration

	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// Client posts images to a remote extraction service. The service answers
// with a JSON array of rows, or an object whose "rows" field holds that array.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("extraction: endpoint is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{endpoint: cfg.Endpoint, http: httpClient}, nil
}

// Extract implements Extractor.
func (c *Client) Extract(ctx context.Context, image Image) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(image.Data))
	if err != nil {
		return nil, errors.Wrap(err, "building extraction request")
	}
	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling extraction service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "reading extraction response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return decodeRows(body)
}

func decodeRows(body []byte) ([]Row, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var rows []Row
	if trimmed[0] == '{' {
		var envelope struct {
			Rows []Row `json:"rows"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, errors.Wrap(err, "decoding extraction response")
		}
		rows = envelope.Rows
	} else if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, errors.Wrap(err, "decoding extraction response")
	}
	return rows, nil
}
