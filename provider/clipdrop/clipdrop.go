// Package clipdrop implements background removal via the Clipdrop HTTP API:
// a multipart POST of the image returns the same image with a transparent
// background.
package clipdrop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// maxResponseBytes bounds a processed image payload.
const maxResponseBytes = 16 << 20

// Options configures the Clipdrop client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements provider.BackgroundRemover against the Clipdrop API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New creates a Client for the given API key.
func New(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    "https://clipdrop-api.co",
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{apiKey: apiKey, baseURL: opts.BaseURL, http: opts.HTTPClient}
}

// Configured reports whether the client holds an API key.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Remove implements provider.BackgroundRemover.
func (c *Client) Remove(ctx context.Context, image []byte) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("clipdrop: no API key configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image_file", "image.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/remove-background/v1", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clipdrop: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("clipdrop: unexpected status %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}
