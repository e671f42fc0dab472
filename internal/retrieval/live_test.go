package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/tripcraft/internal/model"
	"github.com/tripcraft/tripcraft/internal/resilience"
	"github.com/tripcraft/tripcraft/pkg/amadeus"
	"github.com/tripcraft/tripcraft/pkg/opentrip"
)

// fastLiveOpts keeps retry backoff out of test runtime.
func fastLiveOpts() LiveOptions {
	return LiveOptions{
		Timeout: time.Second,
		Retry:   resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond},
	}
}

type fakeOpenTrip struct {
	dest        *opentrip.DestinationResponse
	destErr     error
	attractions []opentrip.Attraction
	attrErr     error
	destCalls   int
}

func (f *fakeOpenTrip) Destination(context.Context, string) (*opentrip.DestinationResponse, error) {
	f.destCalls++
	return f.dest, f.destErr
}

func (f *fakeOpenTrip) Attractions(context.Context, string, int) ([]opentrip.Attraction, error) {
	return f.attractions, f.attrErr
}

type fakeAmadeus struct {
	byRoute map[string][]model.Flight
	err     error
}

func (f *fakeAmadeus) SearchFlights(_ context.Context, q amadeus.FlightQuery) ([]model.Flight, error) {
	if f.err != nil {
		return nil, f.err
	}
	flights, ok := f.byRoute[q.Origin+"-"+q.Destination]
	if !ok {
		return nil, amadeus.ErrNoFlights
	}
	return flights, nil
}

func TestDestinationLiveTier(t *testing.T) {
	fake := &fakeOpenTrip{
		dest: &opentrip.DestinationResponse{Name: "Kyoto", Country: "Japan"},
		attractions: []opentrip.Attraction{
			{Name: "Fushimi Inari", Kind: "temple", EntranceFee: 0, DurationHours: 2.5},
			{Name: "Kinkaku-ji", Kind: "temple", EntranceFee: 4, DurationHours: 1.5},
		},
	}
	tier := NewDestinationLiveTier(fake, fastLiveOpts())
	assert.Equal(t, model.ProvenanceLiveAPI, tier.Provenance())

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryDestination,
		City:     "Kyoto",
		Count:    8,
	})
	require.NoError(t, err)
	require.True(t, ok)
	p := payload.(*model.DestinationPayload)
	assert.Equal(t, "Kyoto", p.Info.Name)
	require.Len(t, p.Attractions, 2)
	assert.Equal(t, "Fushimi Inari", p.Attractions[0].Name)
}

func TestDestinationLiveTierNotFoundFallsThrough(t *testing.T) {
	fake := &fakeOpenTrip{destErr: opentrip.ErrNotFound}
	tier := NewDestinationLiveTier(fake, fastLiveOpts())

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryDestination,
		City:     "Nowhere",
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, payload)
	// Not-found is not transient, so no retry is burned on it.
	assert.Equal(t, 1, fake.destCalls)
}

func TestDestinationLiveTierTransientRetriesThenFails(t *testing.T) {
	fake := &fakeOpenTrip{destErr: resilience.NewTransientError(eris.New("upstream 503"), 503)}
	tier := NewDestinationLiveTier(fake, fastLiveOpts())

	_, _, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryDestination,
		City:     "Kyoto",
	})
	require.Error(t, err)
	assert.Equal(t, 2, fake.destCalls)
}

func TestTransportLiveTierRoundTrip(t *testing.T) {
	fake := &fakeAmadeus{byRoute: map[string][]model.Flight{
		"London-Lisbon": {{Airline: "TAP", FlightNumber: "TP1363", Price: 120}},
		"Lisbon-London": {{Airline: "TAP", FlightNumber: "TP1362", Price: 135}},
	}}
	tier := NewTransportLiveTier(fake, fastLiveOpts())

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category:   model.CategoryTransport,
		City:       "Lisbon",
		Origin:     "London",
		DepartDate: model.NewDate(2026, 9, 1),
		ReturnDate: model.NewDate(2026, 9, 8),
	})
	require.NoError(t, err)
	require.True(t, ok)
	fo := payload.(*FlightOptions)
	require.Len(t, fo.Outbound, 1)
	require.Len(t, fo.Return, 1)
	assert.Equal(t, "TP1362", fo.Return[0].FlightNumber)
}

func TestTransportLiveTierMissingReturnLegTolerated(t *testing.T) {
	fake := &fakeAmadeus{byRoute: map[string][]model.Flight{
		"London-Lisbon": {{Airline: "TAP", FlightNumber: "TP1363", Price: 120}},
	}}
	tier := NewTransportLiveTier(fake, fastLiveOpts())

	payload, ok, err := tier.Attempt(context.Background(), Query{
		Category:   model.CategoryTransport,
		City:       "Lisbon",
		Origin:     "London",
		DepartDate: model.NewDate(2026, 9, 1),
		ReturnDate: model.NewDate(2026, 9, 8),
	})
	require.NoError(t, err)
	require.True(t, ok)
	fo := payload.(*FlightOptions)
	assert.Len(t, fo.Outbound, 1)
	assert.Empty(t, fo.Return)
}

func TestTransportLiveTierNoRouteFallsThrough(t *testing.T) {
	tier := NewTransportLiveTier(&fakeAmadeus{}, fastLiveOpts())

	_, ok, err := tier.Attempt(context.Background(), Query{
		Category:   model.CategoryTransport,
		City:       "Lisbon",
		Origin:     "London",
		DepartDate: model.NewDate(2026, 9, 1),
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransportLiveTierNoOrigin(t *testing.T) {
	tier := NewTransportLiveTier(&fakeAmadeus{}, fastLiveOpts())

	_, ok, err := tier.Attempt(context.Background(), Query{
		Category: model.CategoryTransport,
		City:     "Lisbon",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}
