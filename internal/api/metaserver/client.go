// Package metaserver talks to a metadata resolver service exposing a single
// find endpoint. Records arrive with track positions already normalized, so
// they are used as-is.
package metaserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
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
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = 500 * time.Millisecond
	defaultBurstLimit   = 2
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 30 * time.Second
)

// Client is an HTTP client for the metadata resolver service.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxRetries  int
	debug       bool
}

// NewClient creates a client for the service at the given base URL.
func NewClient(endpoint string, maxRetries int, debug bool) *Client {
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

// findResponse is the service's response envelope.
type findResponse struct {
	Code int                 `json:"code"`
	Data *shared.AlbumRecord `json:"data"`
}

// Find asks the service for the canonical record of an (artist, album) pair.
// A nil record with a nil error means the service found nothing.
func (c *Client) Find(ctx context.Context, artist, album string, trackCount int) (*shared.AlbumRecord, error) {
	params := url.Values{}
	params.Set("artist", artist)
	params.Set("album", album)
	params.Set("trackc", strconv.Itoa(trackCount))
	fullURL := fmt.Sprintf("%s/api/find?%s", c.endpoint, params.Encode())

	var body []byte
	err := shared.RetryWithBackoffForHTTPWithDebug(
		c.maxRetries,
		defaultInitialDelay,
		defaultMaxDelay,
		func() error {
			var err error
			body, err = c.post(ctx, fullURL)
			return err
		},
		c.debug,
	)
	if err != nil {
		return nil, err
	}

	var resp findResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode find response: %w", err)
	}
	return resp.Data, nil
}

// post executes a single POST request against the service.
func (c *Client) post(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > 200 {
			message = message[:200] + "..."
		}
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}

	return body, nil
}
