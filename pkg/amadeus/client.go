// Package amadeus provides a client for the Amadeus flight-offers API.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/resilience"
)

// ErrNoFlights indicates the API returned zero offers for the route.
var ErrNoFlights = eris.New("amadeus: no flight offers found")

// Client defines the Amadeus operations used by the transport tier.
type Client interface {
	// SearchFlights returns flight options for one direction of a route.
	SearchFlights(ctx context.Context, q FlightQuery) ([]model.Flight, error)
}

// FlightQuery describes one flight-offers search.
type FlightQuery struct {
	Origin      string     // city or IATA code
	Destination string     // city or IATA code
	Date        model.Date // departure date
	CabinClass  string     // economy, premium_economy, business, first
	Travelers   int
	MaxResults  int
}

// Option configures the Amadeus client.
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
	key     string
	secret  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new Amadeus client using OAuth client credentials.
func NewClient(key, secret string, opts ...Option) Client {
	c := &httpClient{
		key:     key,
		secret:  secret,
		baseURL: "https://api.amadeus.com",
		http: &http.Client{
			Timeout: 20 * time.Second,
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

// flightOffersResponse is the subset of the offers payload we consume.
type flightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"` // ISO-8601, e.g. PT7H30M
			Segments []struct {
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
				Departure   struct {
					IATACode string    `json:"iataCode"`
					At       time.Time `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IATACode string    `json:"iataCode"`
					At       time.Time `json:"at"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
		TravelerPricings []struct {
			FareDetailsBySegment []struct {
				Cabin string `json:"cabin"`
			} `json:"fareDetailsBySegment"`
		} `json:"travelerPricings"`
	} `json:"data"`
}

func (c *httpClient) SearchFlights(ctx context.Context, q FlightQuery) ([]model.Flight, error) {
	if q.Origin == "" || q.Destination == "" {
		return nil, eris.New("amadeus: origin and destination are required")
	}
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	travelers := q.Travelers
	if travelers < 1 {
		travelers = 1
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("originLocationCode", strings.ToUpper(q.Origin))
	params.Set("destinationLocationCode", strings.ToUpper(q.Destination))
	params.Set("departureDate", q.Date.String())
	params.Set("adults", fmt.Sprintf("%d", travelers))
	params.Set("max", fmt.Sprintf("%d", maxResults))
	if q.CabinClass != "" {
		params.Set("travelClass", strings.ToUpper(q.CabinClass))
	}

	reqURL := c.baseURL + "/v2/shopping/flight-offers?" + params.Encode()
	body, err := c.getJSON(ctx, reqURL, token)
	if err != nil {
		return nil, err
	}

	var parsed flightOffersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "amadeus: unmarshal offers")
	}
	if len(parsed.Data) == 0 {
		return nil, ErrNoFlights
	}

	flights := make([]model.Flight, 0, len(parsed.Data))
	for _, offer := range parsed.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}
		it := offer.Itineraries[0]
		first := it.Segments[0]
		last := it.Segments[len(it.Segments)-1]

		var price float64
		fmt.Sscanf(offer.Price.GrandTotal, "%f", &price)

		cabin := "economy"
		if len(offer.TravelerPricings) > 0 && len(offer.TravelerPricings[0].FareDetailsBySegment) > 0 {
			cabin = strings.ToLower(offer.TravelerPricings[0].FareDetailsBySegment[0].Cabin)
		}

		flights = append(flights, model.Flight{
			Airline:          first.CarrierCode,
			FlightNumber:     first.CarrierCode + first.Number,
			DepartureAirport: first.Departure.IATACode,
			ArrivalAirport:   last.Arrival.IATACode,
			DepartureTime:    first.Departure.At,
			ArrivalTime:      last.Arrival.At,
			DurationHours:    parseISODuration(it.Duration),
			Price:            price,
			Stops:            len(it.Segments) - 1,
			CabinClass:       cabin,
		})
	}
	if len(flights) == 0 {
		return nil, ErrNoFlights
	}
	return flights, nil
}

// token returns a cached OAuth access token, refreshing when expired.
func (c *httpClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.key)
	form.Set("client_secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "amadeus: create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", resilience.Transient(eris.Wrap(err, "amadeus: token request failed"))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "amadeus: read token response")
	}
	if resp.StatusCode != http.StatusOK {
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(eris.Errorf("amadeus: token status %d", resp.StatusCode), resp.StatusCode)
		}
		return "", eris.Errorf("amadeus: token status %d: %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", eris.Wrap(err, "amadeus: unmarshal token")
	}
	if tok.AccessToken == "" {
		return "", eris.New("amadeus: empty access token")
	}

	c.accessToken = tok.AccessToken
	// Refresh one minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

// getJSON performs a rate-limited GET and classifies failures so callers can
// distinguish transient errors (worth retrying) from terminal ones.
func (c *httpClient) getJSON(ctx context.Context, reqURL, token string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "amadeus: rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "amadeus: create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "amadeus: request failed"))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "amadeus: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoFlights
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(eris.Errorf("amadeus: status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
	default:
		return nil, eris.Errorf("amadeus: unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// parseISODuration converts an ISO-8601 duration like PT7H30M to hours.
func parseISODuration(s string) float64 {
	s = strings.TrimPrefix(s, "PT")
	var hours, minutes float64
	if idx := strings.Index(s, "H"); idx >= 0 {
		fmt.Sscanf(s[:idx], "%f", &hours)
		s = s[idx+1:]
	}
	if idx := strings.Index(s, "M"); idx >= 0 {
		fmt.Sscanf(s[:idx], "%f", &minutes)
	}
	return hours + minutes/60
}
