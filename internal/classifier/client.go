// Package classifier talks to the waste image classification service.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultTimeout covers cold starts of the hosted model.
const DefaultTimeout = 60 * time.Second

// Prediction is one predicted class. Every field may be absent in the response.
type Prediction struct {
	Label      *string  `json:"label,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// ParentPrediction is the top-level category (organik, anorganik, residu, B3).
type ParentPrediction struct {
	Prediction
	Uncertain *bool `json:"uncertain,omitempty"`
}

// Result is the service response.
type Result struct {
	Parent  *ParentPrediction `json:"parent,omitempty"`
	Sub     *Prediction       `json:"sub,omitempty"`
	TopSubs []Prediction      `json:"top3_sub,omitempty"`
}

// Client posts images to the classification endpoint.
type Client struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New returns a client for endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("classification endpoint is required")
	}
	c := &Client{
		endpoint: endpoint,
		timeout:  DefaultTimeout,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify uploads the image at path as multipart field "file" and decodes
// the prediction. The call is bounded by the client timeout.
func (c *Client) Classify(ctx context.Context, path string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	body, contentType := multipartBody(file, filepath.Base(path))
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("classification failed (status %d): %s", resp.StatusCode, string(raw))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode classification response: %w", err)
	}
	return &result, nil
}

// multipartBody streams src as a single form file without buffering it.
func multipartBody(src io.Reader, filename string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("create form file: %w", err))
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(fmt.Errorf("copy image: %w", err))
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	return pr, writer.FormDataContentType()
}
