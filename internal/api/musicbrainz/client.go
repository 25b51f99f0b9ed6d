package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"tagsmith/internal/shared"
)

// 1. Constants and types
const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2/"
	defaultUserAgent    = "tagsmith/1.0 ( https://example.com/tagsmith )"
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = 333 * time.Millisecond // MusicBrainz allows ~3 requests per second
	defaultBurstLimit   = 6
	defaultMaxRetries   = 5
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 60 * time.Second
)

// Config holds configuration for the MusicBrainz API client
type Config struct {
	BaseURL      string        `json:"base_url"`
	UserAgent    string        `json:"user_agent"`
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	RateLimit    time.Duration `json:"rate_limit"`
	BurstLimit   int           `json:"burst_limit"`
	Debug        bool          `json:"debug"`

	// CumulativeDiscOffsets switches global track positions to the corrected
	// cumulative sum across all preceding discs. Off by default: the stock
	// rule offsets by the previous disc's track count only, which is wrong
	// for releases with more than two discs but matches existing cached data.
	CumulativeDiscOffsets bool `json:"cumulative_disc_offsets"`
}

// Client resolves (artist, album) pairs directly against the MusicBrainz API.
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// 2. Constructor and configuration

// DefaultConfig returns sensible defaults for the MusicBrainz API client
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		UserAgent:    defaultUserAgent,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		RateLimit:    defaultRateLimit,
		BurstLimit:   defaultBurstLimit,
		Debug:        false,
	}
}

// NewClient creates a new MusicBrainz API client with default configuration
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new MusicBrainz API client with custom configuration
func NewClientWithConfig(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Every(config.RateLimit), config.BurstLimit),
	}
}

// GetConfig returns the current client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// SetDebug enables or disables debug logging for the client
func (c *Client) SetDebug(debug bool) {
	c.config.Debug = debug
}

// 3. Core HTTP methods (private)

// makeRequest creates and executes an HTTP request with proper headers
func (c *Client) makeRequest(ctx context.Context, path string) (*http.Response, error) {
	reqURL, err := url.Parse(c.config.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// get makes a single GET request to the MusicBrainz API
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.makeRequest(ctx, path)
	if err != nil {
		// Handle network timeouts
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

// getWithRetry makes a GET request with retry logic
func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var result []byte
	var err error

	retryErr := shared.RetryWithBackoffForHTTPWithDebug(
		c.config.MaxRetries,
		c.config.InitialDelay,
		c.config.MaxDelay,
		func() error {
			result, err = c.get(ctx, path)
			return err
		},
		c.config.Debug,
	)

	if retryErr != nil {
		return nil, retryErr
	}
	return result, nil
}

// 4. Public API methods

// Find resolves an (artist, album) pair to a canonical album record. It
// searches for the best-matching release, fetches it with artist credits and
// recordings, and normalizes track positions across discs. A nil record
// means no release matched.
func (c *Client) Find(ctx context.Context, artist, album string, trackCount int) (*shared.AlbumRecord, error) {
	release, err := c.SearchRelease(ctx, artist, album, trackCount)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, nil
	}

	full, err := c.GetRelease(ctx, release.ID)
	if err != nil {
		return nil, err
	}
	return c.BuildRecord(full), nil
}

// SearchRelease searches for a release by artist, album title and track
// count, returning the top result or nil when nothing matched.
func (c *Client) SearchRelease(ctx context.Context, artist, album string, trackCount int) (*Release, error) {
	if artist == "" || album == "" {
		return nil, fmt.Errorf("artist and album cannot be empty")
	}

	query := buildReleaseSearchQuery(artist, album, trackCount)
	path := fmt.Sprintf("release?query=%s&limit=1", url.QueryEscape(query))

	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to search release: %w", err)
	}

	var searchResult struct {
		Releases []Release `json:"releases"`
	}
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal release search result: %w", err)
	}

	if len(searchResult.Releases) == 0 {
		return nil, nil
	}
	return &searchResult.Releases[0], nil
}

// GetRelease fetches full release metadata (artist credits and recordings)
// from MusicBrainz by MBID.
func (c *Client) GetRelease(ctx context.Context, mbid string) (*Release, error) {
	if mbid == "" {
		return nil, fmt.Errorf("MBID cannot be empty")
	}

	path := fmt.Sprintf("release/%s?inc=artist-credits+recordings", mbid)
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release metadata for MBID %s: %w", mbid, err)
	}

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("failed to unmarshal release metadata: %w", err)
	}
	return &release, nil
}

// BuildRecord flattens a release into the album record shape used by the
// rest of the pipeline. Track positions on the first disc are the published
// positions; tracks on later discs are offset by the previous disc's track
// count (or the cumulative count of all preceding discs when configured).
func (c *Client) BuildRecord(release *Release) *shared.AlbumRecord {
	record := &shared.AlbumRecord{
		IDs: shared.RecordIDs{
			Album: release.ID,
		},
		Artists: creditNames(release.ArtistCredit),
		Date:    release.Date,
		Album:   release.Title,
	}
	if len(release.ArtistCredit) > 0 {
		record.IDs.Artist = release.ArtistCredit[0].Artist.ID
	}

	cumulative := 0
	for i, medium := range release.Media {
		offset := 0
		if i > 0 {
			if c.config.CumulativeDiscOffsets {
				offset = cumulative
			} else {
				offset = release.Media[i-1].TrackCount
			}
		}
		for _, track := range medium.Tracks {
			artists := creditNames(track.Recording.ArtistCredit)
			if len(artists) == 0 {
				artists = creditNames(track.ArtistCredit)
			}
			record.Tracks = append(record.Tracks, shared.TrackRecord{
				Disc:     i + 1,
				Artists:  artists,
				Title:    track.Recording.Title,
				Position: track.Position + offset,
			})
		}
		cumulative += medium.TrackCount
	}

	return record
}

// 5. Helper/utility functions

// buildReleaseSearchQuery constructs a Lucene query for release searches
func buildReleaseSearchQuery(artist, album string, trackCount int) string {
	query := fmt.Sprintf("release:%q AND artist:%q", album, artist)
	if trackCount > 0 {
		query = fmt.Sprintf("%s AND tracks:%d", query, trackCount)
	}
	return query
}

func creditNames(credits []ArtistCredit) []string {
	var names []string
	for _, credit := range credits {
		if credit.Artist.Name != "" {
			names = append(names, credit.Artist.Name)
		}
	}
	return names
}

// Data types

// Artist represents a MusicBrainz artist
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistCredit represents artist credit information
type ArtistCredit struct {
	Artist Artist `json:"artist"`
}

// Recording represents the recording behind a media track
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int            `json:"length"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
}

// MediaTrack represents a track within media
type MediaTrack struct {
	ID           string         `json:"id"`
	Number       string         `json:"number"`
	Position     int            `json:"position"`
	Title        string         `json:"title"`
	Recording    Recording      `json:"recording"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
}

// Media represents one disc of a release
type Media struct {
	Format     string       `json:"format"`
	Position   int          `json:"position"`
	TrackCount int          `json:"track-count"`
	Tracks     []MediaTrack `json:"tracks"`
}

// Release represents a MusicBrainz release (album)
type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Status       string         `json:"status"`
	Date         string         `json:"date"`
	Country      string         `json:"country"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Media        []Media        `json:"media"`
}
