// Package webstock implements the reference image search and the sound
// search against a stock-media HTTP API. An unconfigured client degrades:
// reference searches report no result and sound searches return the local
// fallback set, so the pipeline never depends on the service being present.
package webstock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/provider"
)

// maxImageBytes bounds a downloaded reference image.
const maxImageBytes = 8 << 20

// Options configures the stock-media client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the stock-media search API. It implements both
// provider.ReferenceSearcher and provider.SoundProvider.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New creates a Client. An empty apiKey yields an unconfigured client whose
// lookups degrade instead of failing.
func New(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    "https://api.webstock.dev",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{apiKey: apiKey, baseURL: opts.BaseURL, http: opts.HTTPClient}
}

// Configured reports whether the client holds an API key.
func (c *Client) Configured() bool { return c.apiKey != "" }

type searchResult struct {
	Results []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

// FindReference implements provider.ReferenceSearcher. A nil image with a
// nil error means no usable result.
func (c *Client) FindReference(ctx context.Context, query string) (*core.Image, error) {
	if !c.Configured() {
		return nil, nil
	}

	var res searchResult
	if err := c.getJSON(ctx, "/v1/images/search", url.Values{"query": {query}, "per_page": {"1"}}, &res); err != nil {
		return nil, err
	}
	if len(res.Results) == 0 || res.Results[0].URL == "" {
		return nil, nil
	}
	return c.download(ctx, res.Results[0].URL)
}

// FindSounds implements provider.SoundProvider: one lookup per category,
// topping up missing categories from the local fallback set.
func (c *Client) FindSounds(ctx context.Context, theme string) (core.SoundSet, error) {
	set := provider.FallbackSounds()
	if !c.Configured() {
		return set, nil
	}

	for _, cat := range provider.SoundCategories() {
		var res searchResult
		q := url.Values{"query": {theme + " " + cat}, "per_page": {"1"}}
		if err := c.getJSON(ctx, "/v1/sounds/search", q, &res); err != nil {
			return nil, err
		}
		if len(res.Results) == 0 || res.Results[0].URL == "" {
			continue
		}
		set[cat] = core.SoundRef{
			Category: cat,
			Name:     res.Results[0].Name,
			URL:      res.Results[0].URL,
		}
	}
	return set, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stock media search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stock media search: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) download(ctx context.Context, imageURL string) (*core.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading reference image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading reference image: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return &core.Image{Data: data, MIME: mime, SourceURL: imageURL}, nil
}
