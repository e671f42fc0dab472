// Package opentrip provides a client for the OpenTrip destination and
// points-of-interest API.
package opentrip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/tripcraft/tripcraft/internal/resilience"
)

// ErrNotFound indicates the API has no data for the requested place.
var ErrNotFound = eris.New("opentrip: place not found")

// Client defines the OpenTrip operations.
type Client interface {
	// Destination returns profile data for a city.
	Destination(ctx context.Context, city string) (*DestinationResponse, error)
	// Attractions returns up to limit points of interest for a city.
	Attractions(ctx context.Context, city string, limit int) ([]Attraction, error)
}

// DestinationResponse is the parsed destination profile.
type DestinationResponse struct {
	Name            string  `json:"name"`
	Country         string  `json:"country"`
	Description     string  `json:"description"`
	Timezone        string  `json:"timezone"`
	Currency        string  `json:"currency"`
	Language        string  `json:"language"`
	BestTimeToVisit string  `json:"best_time_to_visit"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
}

// Attraction is a single point of interest.
type Attraction struct {
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Description   string  `json:"description"`
	Address       string  `json:"address"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	OpeningHours  string  `json:"opening_hours"`
	EntranceFee   float64 `json:"entrance_fee"`
	DurationHours float64 `json:"duration_hours"`
}

type attractionsResponse struct {
	Attractions []Attraction `json:"attractions"`
}

// Option configures the OpenTrip client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new OpenTrip client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.opentripmap.io/v1",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Destination(ctx context.Context, city string) (*DestinationResponse, error) {
	reqURL := fmt.Sprintf("%s/places/%s", c.baseURL, url.PathEscape(city))

	body, err := c.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result DestinationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "opentrip: unmarshal destination")
	}
	return &result, nil
}

func (c *httpClient) Attractions(ctx context.Context, city string, limit int) ([]Attraction, error) {
	reqURL := fmt.Sprintf("%s/places/%s/attractions?limit=%d", c.baseURL, url.PathEscape(city), limit)

	body, err := c.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result attractionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "opentrip: unmarshal attractions")
	}
	return result.Attractions, nil
}

// getJSON performs a rate-limited GET and classifies failures so callers can
// distinguish transient errors (worth retrying) from terminal ones.
func (c *httpClient) getJSON(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "opentrip: rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "opentrip: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "opentrip: request failed"))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "opentrip: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.Transient(eris.Errorf("opentrip: status %d: %s", resp.StatusCode, string(body)))
	default:
		return nil, eris.Errorf("opentrip: unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
