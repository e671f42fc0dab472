package retrieval

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/resilience"
	"github.com/tripcraft/tripcraft/pkg/amadeus"
	"github.com/tripcraft/tripcraft/pkg/opentrip"
)

// LiveOptions tunes the Tier-1 fault boundary: per-call timeout, a small
// retry budget for transient failures only, and a circuit breaker per
// upstream service.
type LiveOptions struct {
	Timeout time.Duration
	Retry   resilience.RetryConfig
	Breaker *resilience.CircuitBreaker
}

func (o LiveOptions) withDefaults(service string) LiveOptions {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = resilience.DefaultRetryConfig()
	}
	if o.Retry.OnRetry == nil {
		o.Retry.OnRetry = resilience.RetryLogger(service, "retrieve")
	}
	if o.Breaker == nil {
		o.Breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	}
	return o
}

// callLive runs fn under the tier's timeout, retry budget, and breaker.
// Non-transient errors (auth, not-found) skip the retry budget entirely and
// surface immediately so the chain can fall through to the catalog.
func callLive[T any](ctx context.Context, opts LiveOptions, fn func(ctx context.Context) (T, error)) (T, error) {
	return resilience.ExecuteVal(ctx, opts.Breaker, func(ctx context.Context) (T, error) {
		return resilience.DoVal(ctx, opts.Retry, func(ctx context.Context) (T, error) {
			callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
			return fn(callCtx)
		})
	})
}

// destinationLiveTier resolves destination info and attractions from the
// OpenTrip API.
type destinationLiveTier struct {
	client opentrip.Client
	opts   LiveOptions
}

// NewDestinationLiveTier builds the destination category's Tier-1.
func NewDestinationLiveTier(client opentrip.Client, opts LiveOptions) Tier {
	return &destinationLiveTier{client: client, opts: opts.withDefaults("opentrip")}
}

func (t *destinationLiveTier) Name() string                 { return "opentrip-live" }
func (t *destinationLiveTier) Provenance() model.Provenance { return model.ProvenanceLiveAPI }

func (t *destinationLiveTier) Attempt(ctx context.Context, q Query) (any, bool, error) {
	count := q.Count
	if count <= 0 {
		count = 10
	}

	payload, err := callLive(ctx, t.opts, func(ctx context.Context) (*model.DestinationPayload, error) {
		dest, err := t.client.Destination(ctx, q.City)
		if err != nil {
			return nil, err
		}
		attractions, err := t.client.Attractions(ctx, q.City, count)
		if err != nil {
			return nil, err
		}

		p := &model.DestinationPayload{
			Info: model.DestinationInfo{
				Name:            dest.Name,
				Country:         dest.Country,
				Description:     dest.Description,
				BestTimeToVisit: dest.BestTimeToVisit,
				Timezone:        dest.Timezone,
				Currency:        dest.Currency,
				Language:        dest.Language,
				Lat:             dest.Lat,
				Lon:             dest.Lon,
			},
		}
		for _, a := range attractions {
			p.Attractions = append(p.Attractions, model.Attraction{
				Name:          a.Name,
				Kind:          a.Kind,
				Description:   a.Description,
				Address:       a.Address,
				Lat:           a.Lat,
				Lon:           a.Lon,
				OpeningHours:  a.OpeningHours,
				EntranceFee:   a.EntranceFee,
				DurationHours: a.DurationHours,
			})
		}
		return p, nil
	})
	if err != nil {
		// Plain absence is a fall-through, not a tier fault.
		if eris.Is(err, opentrip.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, Sufficient(q.Category, payload), nil
}

// transportLiveTier resolves flight options from the Amadeus API, one search
// per direction.
type transportLiveTier struct {
	client amadeus.Client
	opts   LiveOptions
}

// NewTransportLiveTier builds the transport category's Tier-1.
func NewTransportLiveTier(client amadeus.Client, opts LiveOptions) Tier {
	return &transportLiveTier{client: client, opts: opts.withDefaults("amadeus")}
}

func (t *transportLiveTier) Name() string                 { return "amadeus-live" }
func (t *transportLiveTier) Provenance() model.Provenance { return model.ProvenanceLiveAPI }

func (t *transportLiveTier) Attempt(ctx context.Context, q Query) (any, bool, error) {
	if q.Origin == "" {
		// No origin means no flight search is possible.
		return nil, false, nil
	}

	payload, err := callLive(ctx, t.opts, func(ctx context.Context) (*FlightOptions, error) {
		outbound, err := t.client.SearchFlights(ctx, amadeus.FlightQuery{
			Origin:      q.Origin,
			Destination: q.City,
			Date:        q.DepartDate,
			CabinClass:  q.CabinClass,
			Travelers:   q.Travelers,
			MaxResults:  q.Count,
		})
		if err != nil {
			return nil, err
		}

		fo := &FlightOptions{Outbound: outbound}
		if !q.ReturnDate.IsZero() {
			ret, err := t.client.SearchFlights(ctx, amadeus.FlightQuery{
				Origin:      q.City,
				Destination: q.Origin,
				Date:        q.ReturnDate,
				CabinClass:  q.CabinClass,
				Travelers:   q.Travelers,
				MaxResults:  q.Count,
			})
			if err != nil && !eris.Is(err, amadeus.ErrNoFlights) {
				return nil, err
			}
			fo.Return = ret
		}
		return fo, nil
	})
	if err != nil {
		if eris.Is(err, amadeus.ErrNoFlights) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, Sufficient(q.Category, payload), nil
}
