// Package lrclib fetches lyrics from an LRCLIB-compatible service.
package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tagsmith/internal/shared"
)

const (
	defaultBaseURL      = "https://lrclib.net"
	defaultTimeout      = 15 * time.Second
	defaultRateLimit    = 500 * time.Millisecond
	defaultBurstLimit   = 2
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 15 * time.Second
)

// Client is an HTTP client for the lyrics provider.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxRetries  int
	debug       bool
}

// NewClient creates a lyrics client. An empty endpoint uses the public
// LRCLIB instance.
func NewClient(endpoint string, maxRetries int, debug bool) *Client {
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(defaultRateLimit), defaultBurstLimit),
		maxRetries:  maxRetries,
		debug:       debug,
	}
}

// Get fetches lyrics for a track. The duration (in seconds) disambiguates
// recordings sharing a title. A nil result means no lyrics are known.
func (c *Client) Get(ctx context.Context, title, artist, album string, duration float64) (*shared.Lyrics, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)
	params.Set("album_name", album)
	params.Set("duration", strconv.Itoa(int(math.Round(duration))))
	fullURL := fmt.Sprintf("%s/api/get?%s", c.endpoint, params.Encode())

	var body []byte
	var notFound bool
	err := shared.RetryWithBackoffForHTTPWithDebug(
		c.maxRetries,
		defaultInitialDelay,
		defaultMaxDelay,
		func() error {
			var err error
			body, notFound, err = c.get(ctx, fullURL)
			return err
		},
		c.debug,
	)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, nil
	}

	var lyrics shared.Lyrics
	if err := json.Unmarshal(body, &lyrics); err != nil {
		return nil, fmt.Errorf("failed to decode lyrics response: %w", err)
	}
	if lyrics.Synced == "" && lyrics.Plain == "" {
		return nil, nil
	}
	return &lyrics, nil
}

// get executes a single GET request. A 404 reports "no lyrics" rather than
// an error so it is never retried.
func (c *Client) get(ctx context.Context, fullURL string) (body []byte, notFound bool, err error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, false, &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, true, nil
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > 200 {
			message = message[:200] + "..."
		}
		return nil, false, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}

	return body, false, nil
}
